// Package service wires extraction, validation, queueing and chat
// acknowledgement into the per-message ingestion path.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/renzyndrome/tasty-telegram-bot/internal/domain"
	"github.com/renzyndrome/tasty-telegram-bot/internal/extract"
	"github.com/renzyndrome/tasty-telegram-bot/internal/queue"
)

// Transport is the outbound chat surface: both calls are fire-and-forget for
// the pipeline, failures are logged and dropped.
type Transport interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
	SetMessageReaction(ctx context.Context, chatID, messageID int64, emoji string) error
}

const (
	acceptedReaction = "\U0001F44D"

	rejectedTemplate = "Could not log that report (%s).\n\n" +
		"Expected format:\n" +
		"Summary of Tips and VIPs for <name>\n" +
		"<date> <shift window> PST\n" +
		"Shift (8 hours)\n" +
		"Creator: @handle\n" +
		"$50 TIP from @user\n" +
		"$25 PPV PAID from @user\n" +
		"TOTAL GROSS SALE: $500\n" +
		"TOTAL NET SALE: $450"
)

// Ingestor handles one inbound chat message end to end: trigger check,
// extraction, validation, enqueue, acknowledgement. No error escapes
// HandleMessage; a bad message or a transport hiccup never halts the bot.
type Ingestor struct {
	queue     queue.Queue
	transport Transport
	required  []domain.Field
	logger    zerolog.Logger
}

func NewIngestor(q queue.Queue, transport Transport, required []domain.Field, logger zerolog.Logger) *Ingestor {
	if len(required) == 0 {
		required = domain.DefaultRequiredFields
	}
	return &Ingestor{
		queue:     q,
		transport: transport,
		required:  required,
		logger:    logger,
	}
}

func (s *Ingestor) HandleMessage(ctx context.Context, message domain.RawMessage) {
	if !extract.HasTrigger(message.Text) {
		// Unrelated chat traffic: no extraction, no acknowledgement.
		return
	}

	fields := extract.Extract(message.Text)
	report, rejection := extract.Validate(fields, s.required)
	if rejection != nil {
		s.logger.Info().
			Int64("chat_id", message.ChatID).
			Int64("message_id", message.MessageID).
			Str("reason", rejection.Reason()).
			Msg("report rejected")
		s.acknowledgeRejected(ctx, message, rejection)
		return
	}

	report.ChatID = message.ChatID
	report.MessageID = message.MessageID
	report.Fields[domain.FieldSourceLink] = message.SourceLink()

	envelope := domain.ReportEnvelope{
		ID:         uuid.NewString(),
		ChatID:     report.ChatID,
		MessageID:  report.MessageID,
		Fields:     report.Fields,
		EnqueuedAt: time.Now().UTC(),
	}
	if err := s.queue.Enqueue(ctx, envelope); err != nil {
		// Enqueue precedes acknowledgement, so a failure here must not show
		// the sender a success marker.
		s.logger.Error().Err(err).Str("envelope_id", envelope.ID).Msg("enqueue failed")
		return
	}

	s.logger.Info().
		Str("envelope_id", envelope.ID).
		Str("name", envelope.Fields[domain.FieldName]).
		Str("creator", envelope.Fields[domain.FieldCreator]).
		Msg("report accepted")

	if err := s.transport.SetMessageReaction(ctx, message.ChatID, message.MessageID, acceptedReaction); err != nil {
		s.logger.Error().Err(err).Str("envelope_id", envelope.ID).Msg("acknowledgement reaction failed")
	}
}

func rejectedReply(rejection *extract.Rejection) string {
	return fmt.Sprintf(rejectedTemplate, rejection.Reason())
}

func (s *Ingestor) acknowledgeRejected(ctx context.Context, message domain.RawMessage, rejection *extract.Rejection) {
	reply := rejectedReply(rejection)
	if err := s.transport.SendMessage(ctx, message.ChatID, reply); err != nil {
		s.logger.Error().Err(err).Int64("chat_id", message.ChatID).Msg("rejection reply failed")
	}
}
