package worker

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/renzyndrome/tasty-telegram-bot/internal/domain"
	"github.com/renzyndrome/tasty-telegram-bot/internal/queue"
	"github.com/renzyndrome/tasty-telegram-bot/internal/store"
)

// Flusher periodically drains the ingestion queue and appends one store row
// per report. Write failures are isolated per record: a failed envelope is
// re-enqueued with a bumped attempt count until MaxAttempts, then dead-lettered
// with its full row payload in the log.
type Flusher struct {
	queue       queue.Queue
	store       store.RowStore
	interval    time.Duration
	maxAttempts int
	logger      zerolog.Logger

	dlqMu sync.Mutex
	dlq   []domain.ReportEnvelope
}

func NewFlusher(
	q queue.Queue,
	rowStore store.RowStore,
	interval time.Duration,
	maxAttempts int,
	logger zerolog.Logger,
) *Flusher {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	return &Flusher{
		queue:       q,
		store:       rowStore,
		interval:    interval,
		maxAttempts: maxAttempts,
		logger:      logger,
		dlq:         make([]domain.ReportEnvelope, 0),
	}
}

// Start ticks until ctx is done, then runs one last flush so buffered reports
// are not lost on shutdown. Nothing a single tick does can stop future ticks.
func (f *Flusher) Start(ctx context.Context) {
	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			finalCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			f.FlushOnce(finalCtx)
			cancel()
			return
		case <-ticker.C:
			f.FlushOnce(ctx)
		}
	}
}

// FlushOnce drains the queue and writes each envelope. The queue's atomic
// drain is the serialization point, so a tick overlapping a slow previous
// flush simply drains whatever arrived since.
func (f *Flusher) FlushOnce(ctx context.Context) {
	batch, err := f.queue.DrainAll(ctx)
	if err != nil {
		f.logger.Error().Err(err).Msg("queue drain failed")
		return
	}
	if len(batch) == 0 {
		return
	}

	written := 0
	for _, envelope := range batch {
		if err := f.store.AppendRow(ctx, envelope.Row()); err != nil {
			f.handleWriteFailure(ctx, envelope, err)
			continue
		}
		written++
	}
	f.logger.Info().Int("drained", len(batch)).Int("written", written).Msg("flush complete")
}

func (f *Flusher) handleWriteFailure(ctx context.Context, envelope domain.ReportEnvelope, writeErr error) {
	envelope.Attempt++
	if envelope.Attempt >= f.maxAttempts {
		f.deadLetter(envelope, writeErr)
		return
	}

	f.logger.Warn().
		Err(writeErr).
		Str("envelope_id", envelope.ID).
		Int("attempt", envelope.Attempt).
		Msg("store write failed, re-enqueued")
	if err := f.queue.Enqueue(ctx, envelope); err != nil {
		f.deadLetter(envelope, err)
	}
}

// deadLetter logs the complete record so an operator can recover it by hand.
func (f *Flusher) deadLetter(envelope domain.ReportEnvelope, cause error) {
	f.logger.Error().
		Err(cause).
		Str("envelope_id", envelope.ID).
		Int64("chat_id", envelope.ChatID).
		Int64("message_id", envelope.MessageID).
		Int("attempt", envelope.Attempt).
		Strs("row", envelope.Row()).
		Msg("report dead-lettered after repeated write failures")

	f.dlqMu.Lock()
	f.dlq = append(f.dlq, envelope)
	f.dlqMu.Unlock()
}

// DeadLetters returns a copy of the dead-letter buffer.
func (f *Flusher) DeadLetters() []domain.ReportEnvelope {
	f.dlqMu.Lock()
	defer f.dlqMu.Unlock()
	return append([]domain.ReportEnvelope(nil), f.dlq...)
}
