package domain

import (
	"context"
	"time"
)

// StageFunc performs the actual data retrieval for a stage.
// It must honor ctx cancellation; the orchestrator races it against the
// stage timeout.
type StageFunc func(ctx context.Context, input map[string]any) (*StageResult, error)

// Stage is a prioritized, independently retryable unit of fallback work.
// Lower priority means more preferred; priority 1 is the primary source.
type Stage struct {
	Name       string
	Priority   int
	Func       StageFunc
	Timeout    time.Duration
	RetryCount int
}

// LiveStagePriority is the highest priority still considered a live source.
// Successes from stages at or below this priority are cached; degraded
// stages (inference, static defaults) must never populate the cache.
const LiveStagePriority = 2

// Live reports whether a success from this stage qualifies for cache
// write-back.
func (s Stage) Live() bool {
	return s.Priority <= LiveStagePriority
}

// StageResult is the outcome of a single stage execution.
type StageResult struct {
	Success  bool
	Data     any
	Err      error
	Metadata map[string]any
}
