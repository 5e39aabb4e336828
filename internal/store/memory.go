package store

import (
	"context"
	"sync"
)

// MemoryStore keeps appended rows in memory. Used for local development when
// no sheet or database is configured, and as the test double.
type MemoryStore struct {
	mu   sync.RWMutex
	rows [][]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{rows: make([][]string, 0)}
}

func (s *MemoryStore) AppendRow(_ context.Context, cells []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append(s.rows, append([]string(nil), cells...))
	return nil
}

func (s *MemoryStore) Rows() [][]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows := make([][]string, 0, len(s.rows))
	for _, row := range s.rows {
		rows = append(rows, append([]string(nil), row...))
	}
	return rows
}
