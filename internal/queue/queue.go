package queue

import (
	"context"

	"github.com/renzyndrome/tasty-telegram-bot/internal/domain"
)

// Queue buffers validated reports between message handling and the periodic
// flush. Enqueue must not block on downstream writes; DrainAll atomically
// snapshots and empties the buffer, preserving enqueue order. DrainAll is the
// only removal operation, so an envelope is delivered by exactly one drain.
type Queue interface {
	Enqueue(ctx context.Context, envelope domain.ReportEnvelope) error
	DrainAll(ctx context.Context) ([]domain.ReportEnvelope, error)
}
