package breaker

import (
	"sync"
	"testing"
	"time"
)

// fakeClock lets tests control breaker time without sleeping.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestBreaker(threshold int, reset time.Duration) (*Breaker, *fakeClock) {
	clock := &fakeClock{now: time.Unix(1700000000, 0)}
	b := New(Config{Threshold: threshold, ResetTimeout: reset})
	b.now = clock.Now
	return b, clock
}

func TestOpensAtExactThreshold(t *testing.T) {
	b, _ := newTestBreaker(5, time.Minute)

	for i := 0; i < 4; i++ {
		b.RecordFailure()
		if got := b.State(); got != StateClosed {
			t.Fatalf("after %d failures state = %v, want closed", i+1, got)
		}
	}

	b.RecordFailure()
	if got := b.State(); got != StateOpen {
		t.Fatalf("after 5 failures state = %v, want open", got)
	}
	if b.Allow() {
		t.Fatal("open breaker must reject requests before reset timeout")
	}
}

func TestSuccessResetsFailureCount(t *testing.T) {
	b, _ := newTestBreaker(3, time.Minute)

	b.RecordFailure()
	b.RecordFailure()
	b.RecordSuccess()
	b.RecordFailure()
	b.RecordFailure()

	if got := b.State(); got != StateClosed {
		t.Fatalf("state = %v, want closed (count reset by success)", got)
	}

	b.RecordFailure()
	if got := b.State(); got != StateOpen {
		t.Fatalf("state = %v, want open", got)
	}
}

func TestHalfOpenAdmitsSingleProbe(t *testing.T) {
	b, clock := newTestBreaker(2, 30*time.Second)

	b.RecordFailure()
	b.RecordFailure()
	if b.Allow() {
		t.Fatal("breaker should be open")
	}

	clock.Advance(31 * time.Second)

	if !b.Allow() {
		t.Fatal("first call after reset timeout must admit a probe")
	}
	if got := b.State(); got != StateHalfOpen {
		t.Fatalf("state = %v, want half-open", got)
	}
	if b.Allow() {
		t.Fatal("second caller must not get a concurrent probe")
	}
}

func TestProbeSuccessCloses(t *testing.T) {
	b, clock := newTestBreaker(1, 10*time.Second)

	b.RecordFailure()
	clock.Advance(11 * time.Second)

	if !b.Allow() {
		t.Fatal("probe not admitted")
	}
	b.RecordSuccess()

	if got := b.State(); got != StateClosed {
		t.Fatalf("state = %v, want closed after probe success", got)
	}
	if !b.Allow() {
		t.Fatal("closed breaker must allow requests")
	}
}

func TestProbeFailureReopens(t *testing.T) {
	b, clock := newTestBreaker(3, 10*time.Second)

	for i := 0; i < 3; i++ {
		b.RecordFailure()
	}
	clock.Advance(11 * time.Second)

	if !b.Allow() {
		t.Fatal("probe not admitted")
	}
	b.RecordFailure()

	if got := b.State(); got != StateOpen {
		t.Fatalf("state = %v, want open after probe failure", got)
	}
	if b.Allow() {
		t.Fatal("re-opened breaker must reject until the next reset timeout")
	}

	// A second window admits another probe.
	clock.Advance(11 * time.Second)
	if !b.Allow() {
		t.Fatal("second probe window not admitted")
	}
}

func TestResetForcesClosed(t *testing.T) {
	b, _ := newTestBreaker(1, time.Hour)

	b.RecordFailure()
	if b.Allow() {
		t.Fatal("breaker should be open")
	}

	b.Reset()
	if got := b.State(); got != StateClosed {
		t.Fatalf("state = %v, want closed after reset", got)
	}
	if !b.Allow() {
		t.Fatal("reset breaker must allow requests")
	}

	snap := b.Snapshot()
	if snap.FailureCount != 0 {
		t.Fatalf("failure count = %d, want 0 after reset", snap.FailureCount)
	}
}

func TestConcurrentProbeAdmission(t *testing.T) {
	b, clock := newTestBreaker(1, time.Second)

	b.RecordFailure()
	clock.Advance(2 * time.Second)

	var admitted int32
	var mu sync.Mutex
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if b.Allow() {
				mu.Lock()
				admitted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if admitted != 1 {
		t.Fatalf("admitted %d concurrent probes, want exactly 1", admitted)
	}
}
