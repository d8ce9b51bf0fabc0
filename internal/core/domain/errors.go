package domain

import (
	"errors"
	"fmt"
	"time"
)

// ErrAllStagesExhausted marks total cascade failure. It is carried inside
// the terminal ExecutionResult and never raised to callers of Execute.
var ErrAllStagesExhausted = errors.New("all fallback stages failed")

// StageTimeoutError indicates a stage exceeded its configured timeout.
// Retryable.
type StageTimeoutError struct {
	Stage   string
	Timeout time.Duration
}

func (e *StageTimeoutError) Error() string {
	return fmt.Sprintf("stage %s timed out after %s", e.Stage, e.Timeout)
}

// StageExecutionError indicates a stage returned an error or an
// unsuccessful result. Retryable.
type StageExecutionError struct {
	Stage string
	Err   error
}

func (e *StageExecutionError) Error() string {
	return fmt.Sprintf("stage %s failed: %v", e.Stage, e.Err)
}

func (e *StageExecutionError) Unwrap() error {
	return e.Err
}

// IsTimeout reports whether err is a stage timeout.
func IsTimeout(err error) bool {
	var te *StageTimeoutError
	return errors.As(err, &te)
}
