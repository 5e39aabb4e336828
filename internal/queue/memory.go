package queue

import (
	"context"
	"sync"

	"github.com/renzyndrome/tasty-telegram-bot/internal/domain"
)

// MemoryQueue is the default in-process queue: an unbounded FIFO guarded by a
// mutex. Arrival rate is human-message-paced, so no capacity bound is applied.
type MemoryQueue struct {
	mu      sync.Mutex
	entries []domain.ReportEnvelope
}

func NewMemoryQueue() *MemoryQueue {
	return &MemoryQueue{entries: make([]domain.ReportEnvelope, 0)}
}

func (q *MemoryQueue) Enqueue(_ context.Context, envelope domain.ReportEnvelope) error {
	q.mu.Lock()
	q.entries = append(q.entries, envelope)
	q.mu.Unlock()
	return nil
}

// DrainAll swaps the buffer out under the lock, so entries enqueued after the
// snapshot land in the next drain and the lock is never held during store
// writes.
func (q *MemoryQueue) DrainAll(_ context.Context) ([]domain.ReportEnvelope, error) {
	q.mu.Lock()
	drained := q.entries
	q.entries = make([]domain.ReportEnvelope, 0)
	q.mu.Unlock()
	return drained, nil
}

func (q *MemoryQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.entries)
}
