// Package storage defines the audit trail contract: terminal cascade
// outcomes persisted for offline inspection.
package storage

import (
	"context"
	"time"
)

// ExecutionRecord is one persisted cascade outcome.
type ExecutionRecord struct {
	ExecutionID string        `db:"execution_id" json:"execution_id"`
	Stage       string        `db:"stage"        json:"stage"`
	Success     bool          `db:"success"      json:"success"`
	Error       string        `db:"error"        json:"error,omitempty"`
	Duration    time.Duration `db:"duration_ns"  json:"duration"`
	CreatedAt   time.Time     `db:"created_at"   json:"created_at"`
}

// AuditStore persists execution records.
type AuditStore interface {
	// SaveExecution appends one record.
	SaveExecution(ctx context.Context, rec ExecutionRecord) error

	// RecentExecutions returns up to limit records, newest first.
	RecentExecutions(ctx context.Context, limit int) ([]ExecutionRecord, error)

	// Close releases the underlying resources.
	Close() error
}
