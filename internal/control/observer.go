package control

import (
	"context"
	"log/slog"
	"time"

	"github.com/vietddude/cascade/internal/core/domain"
	"github.com/vietddude/cascade/internal/infra/storage"
)

const auditWriteTimeout = 5 * time.Second

// auditObserver persists terminal cascade outcomes to the audit store.
// Write failures are logged, never propagated: the audit trail must not
// affect cascade results.
type auditObserver struct {
	store storage.AuditStore
}

func (a *auditObserver) OnStart(executionID string, input map[string]any) {}

func (a *auditObserver) OnComplete(executionID string, result domain.ExecutionResult) {
	a.save(executionID, result)
}

func (a *auditObserver) OnFailed(executionID string, result domain.ExecutionResult) {
	a.save(executionID, result)
}

func (a *auditObserver) save(executionID string, result domain.ExecutionResult) {
	ctx, cancel := context.WithTimeout(context.Background(), auditWriteTimeout)
	defer cancel()

	rec := storage.ExecutionRecord{
		ExecutionID: executionID,
		Stage:       result.Stage,
		Success:     result.Success,
		Error:       result.Error,
		Duration:    result.Duration,
		CreatedAt:   time.Now().UTC(),
	}
	if err := a.store.SaveExecution(ctx, rec); err != nil {
		slog.Warn("Failed to persist execution record",
			"execution_id", executionID, "error", err)
	}
}
