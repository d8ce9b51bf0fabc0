package fallback

import (
	"context"
	"fmt"
	"time"

	"github.com/vietddude/cascade/internal/core/domain"
)

// retryBaseDelay is the backoff base: attempt N sleeps baseDelay * 2^N.
// No jitter; the schedule (100ms, 200ms, 400ms, ...) is a documented
// property relied on by callers tuning stage budgets.
const retryBaseDelay = 100 * time.Millisecond

// runStageWithRetry executes a stage up to RetryCount+1 times, racing each
// attempt against the stage timeout. The first success wins; persistent
// failure surfaces the last error. Breaker state is never touched here —
// the orchestrator records exactly one breaker outcome per call to this
// function, not one per retry.
func runStageWithRetry(ctx context.Context, stage domain.Stage, input map[string]any) (*domain.StageResult, error) {
	var lastErr error

	for attempt := 0; attempt <= stage.RetryCount; attempt++ {
		result, err := runStageOnce(ctx, stage, input)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if attempt == stage.RetryCount {
			break
		}

		delay := backoffDelay(attempt)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}

	return nil, lastErr
}

// runStageOnce dispatches one attempt with a hard per-attempt timeout. A
// timer win yields a StageTimeoutError; the dispatched goroutine keeps
// running to completion but its late result is discarded.
func runStageOnce(ctx context.Context, stage domain.Stage, input map[string]any) (*domain.StageResult, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, stage.Timeout)
	defer cancel()

	type outcome struct {
		result *domain.StageResult
		err    error
	}
	// Buffered so a late-finishing attempt never leaks a goroutine.
	done := make(chan outcome, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome{err: &domain.StageExecutionError{
					Stage: stage.Name,
					Err:   fmt.Errorf("panic: %v", r),
				}}
			}
		}()
		result, err := stage.Func(attemptCtx, input)
		done <- outcome{result: result, err: err}
	}()

	select {
	case <-attemptCtx.Done():
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &domain.StageTimeoutError{Stage: stage.Name, Timeout: stage.Timeout}
	case out := <-done:
		if out.err != nil {
			return nil, &domain.StageExecutionError{Stage: stage.Name, Err: out.err}
		}
		if out.result == nil || !out.result.Success {
			err := fmt.Errorf("stage reported failure")
			if out.result != nil && out.result.Err != nil {
				err = out.result.Err
			}
			return nil, &domain.StageExecutionError{Stage: stage.Name, Err: err}
		}
		return out.result, nil
	}
}

func backoffDelay(attempt int) time.Duration {
	return retryBaseDelay * time.Duration(1<<attempt)
}
