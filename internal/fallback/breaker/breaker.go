// Package breaker implements the per-stage circuit breaker used by the
// fallback orchestrator.
//
// The breaker is a three-state machine (closed, open, half-open). It opens
// after a configured number of consecutive failures, stays open for the
// reset timeout, then admits exactly one probe in half-open state. The next
// recorded outcome decides whether it closes again or re-opens.
package breaker

import (
	"sync"
	"time"

	"github.com/vietddude/cascade/internal/core/domain"
)

// State represents the circuit breaker state.
type State int

const (
	StateClosed   State = iota // Normal operation; requests pass through.
	StateOpen                  // Failing; requests are rejected immediately.
	StateHalfOpen              // Probing; one request allowed to test recovery.
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// Config holds circuit breaker thresholds.
type Config struct {
	Threshold    int           // Consecutive failures before opening
	ResetTimeout time.Duration // Wait before admitting a half-open probe
}

// DefaultConfig provides sensible defaults for external data sources.
var DefaultConfig = Config{
	Threshold:    5,
	ResetTimeout: 60 * time.Second,
}

// Breaker tracks failures for a single stage. Safe for concurrent use;
// every caller routed through the stage shares the same instance.
type Breaker struct {
	mu sync.Mutex

	state        State
	failureCount int
	lastFailure  time.Time
	probing      bool

	threshold    int
	resetTimeout time.Duration

	now func() time.Time // overridable for tests
}

// New creates a breaker in closed state.
func New(cfg Config) *Breaker {
	if cfg.Threshold <= 0 {
		cfg.Threshold = DefaultConfig.Threshold
	}
	if cfg.ResetTimeout <= 0 {
		cfg.ResetTimeout = DefaultConfig.ResetTimeout
	}
	return &Breaker{
		threshold:    cfg.Threshold,
		resetTimeout: cfg.ResetTimeout,
		now:          time.Now,
	}
}

// Allow reports whether a request may proceed. When the breaker is open and
// the reset timeout has elapsed it transitions to half-open and admits
// exactly one probe; concurrent callers racing on the same open breaker get
// false until the probe resolves.
func (b *Breaker) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateClosed:
		return true
	case StateHalfOpen:
		// A probe is already in flight.
		return false
	case StateOpen:
		if b.now().Sub(b.lastFailure) < b.resetTimeout {
			return false
		}
		b.state = StateHalfOpen
		b.probing = true
		return true
	}
	return true
}

// RecordSuccess resets the failure count and closes the breaker. In
// half-open state this completes the probe successfully.
func (b *Breaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.failureCount = 0
	b.state = StateClosed
	b.probing = false
}

// RecordFailure increments the failure count and opens the breaker once the
// threshold is reached. A half-open probe failure re-opens immediately.
func (b *Breaker) RecordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.failureCount++
	b.lastFailure = b.now()

	if b.probing {
		b.state = StateOpen
		b.probing = false
		return
	}
	if b.failureCount >= b.threshold {
		b.state = StateOpen
	}
}

// Reset forces the breaker back to closed state with a clean count.
func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.state = StateClosed
	b.failureCount = 0
	b.probing = false
}

// State returns the current state.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Snapshot returns a read-only view for health reporting.
func (b *Breaker) Snapshot() domain.BreakerState {
	b.mu.Lock()
	defer b.mu.Unlock()

	return domain.BreakerState{
		State:        b.state.String(),
		FailureCount: b.failureCount,
		LastFailure:  b.lastFailure,
		Threshold:    b.threshold,
		ResetTimeout: b.resetTimeout.String(),
	}
}
