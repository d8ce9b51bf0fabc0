package postgres

import (
	"context"
	"fmt"

	"github.com/vietddude/cascade/internal/infra/storage"
)

// AuditRepo implements storage.AuditStore on PostgreSQL.
type AuditRepo struct {
	db *DB
}

// NewAuditRepo creates a repository bound to db.
func NewAuditRepo(db *DB) *AuditRepo {
	return &AuditRepo{db: db}
}

// SaveExecution appends one record.
func (r *AuditRepo) SaveExecution(ctx context.Context, rec storage.ExecutionRecord) error {
	query := `
		INSERT INTO executions (execution_id, stage, success, error, duration_ns, created_at)
		VALUES (:execution_id, :stage, :success, :error, :duration_ns, :created_at)`

	if _, err := r.db.NamedExecContext(ctx, query, rec); err != nil {
		return fmt.Errorf("insert execution: %w", err)
	}
	return nil
}

// RecentExecutions returns up to limit records, newest first.
func (r *AuditRepo) RecentExecutions(ctx context.Context, limit int) ([]storage.ExecutionRecord, error) {
	query := `
		SELECT execution_id, stage, success, error, duration_ns, created_at
		FROM executions
		ORDER BY created_at DESC
		LIMIT $1`

	var records []storage.ExecutionRecord
	if err := r.db.SelectContext(ctx, &records, query, limit); err != nil {
		return nil, fmt.Errorf("select executions: %w", err)
	}
	return records, nil
}

// Close closes the underlying pool.
func (r *AuditRepo) Close() error {
	return r.db.Close()
}
