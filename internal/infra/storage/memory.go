package storage

import (
	"context"
	"sync"
)

// MemoryAuditStore keeps execution records in memory. Used in tests and
// when no database is configured.
type MemoryAuditStore struct {
	mu      sync.RWMutex
	records []ExecutionRecord
}

// NewMemoryAuditStore creates an empty store.
func NewMemoryAuditStore() *MemoryAuditStore {
	return &MemoryAuditStore{}
}

// SaveExecution appends one record.
func (s *MemoryAuditStore) SaveExecution(ctx context.Context, rec ExecutionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, rec)
	return nil
}

// RecentExecutions returns up to limit records, newest first.
func (s *MemoryAuditStore) RecentExecutions(ctx context.Context, limit int) ([]ExecutionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := len(s.records)
	if limit > n {
		limit = n
	}
	out := make([]ExecutionRecord, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		out = append(out, s.records[i])
	}
	return out, nil
}

// Close is a no-op for the in-memory store.
func (s *MemoryAuditStore) Close() error {
	return nil
}
