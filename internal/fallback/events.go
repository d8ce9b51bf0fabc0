package fallback

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/vietddude/cascade/internal/core/domain"
)

// Observer receives cascade lifecycle notifications. Callbacks run
// synchronously on the executing goroutine; observers doing slow work
// should hand off internally.
type Observer interface {
	// OnStart fires when a cascade begins, before the cache lookup.
	OnStart(executionID string, input map[string]any)

	// OnComplete fires on any successful terminal outcome (cache hit or
	// stage success).
	OnComplete(executionID string, result domain.ExecutionResult)

	// OnFailed fires when every stage was skipped or failed.
	OnFailed(executionID string, result domain.ExecutionResult)
}

// notifier fans lifecycle events out to registered observers. Observer
// panics are recovered and logged so a broken observer cannot take down a
// cascade.
type notifier struct {
	mu        sync.RWMutex
	observers []Observer
}

func (n *notifier) attach(obs Observer) {
	if obs == nil {
		return
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.observers = append(n.observers, obs)
}

func (n *notifier) detachAll() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.observers = nil
}

func (n *notifier) snapshot() []Observer {
	n.mu.RLock()
	defer n.mu.RUnlock()
	observers := make([]Observer, len(n.observers))
	copy(observers, n.observers)
	return observers
}

func (n *notifier) notifyStart(id string, input map[string]any) {
	for _, obs := range n.snapshot() {
		safeNotify(id, func() { obs.OnStart(id, input) })
	}
}

func (n *notifier) notifyComplete(id string, result domain.ExecutionResult) {
	for _, obs := range n.snapshot() {
		safeNotify(id, func() { obs.OnComplete(id, result) })
	}
}

func (n *notifier) notifyFailed(id string, result domain.ExecutionResult) {
	for _, obs := range n.snapshot() {
		safeNotify(id, func() { obs.OnFailed(id, result) })
	}
}

func safeNotify(id string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Observer panicked", "execution_id", id, "panic", r)
		}
	}()
	fn()
}

// newExecutionID returns a unique correlation identifier for one cascade
// run, suitable for log and trace correlation.
func newExecutionID() string {
	return uuid.NewString()
}
