package metrics

import (
	"testing"
	"time"

	"github.com/vietddude/cascade/internal/core/domain"
)

func TestCollectorStageStats(t *testing.T) {
	c := NewCollector()

	c.RecordStage("primary", true, 100*time.Millisecond)
	c.RecordStage("primary", false, 300*time.Millisecond)
	c.RecordStage("primary", true, 200*time.Millisecond)

	stats, ok := c.StageStats("primary")
	if !ok {
		t.Fatal("expected stats for primary")
	}
	if stats.Invocations != 3 {
		t.Errorf("invocations = %d, want 3", stats.Invocations)
	}
	if stats.Successes != 2 {
		t.Errorf("successes = %d, want 2", stats.Successes)
	}
	if stats.AvgLatency != 200*time.Millisecond {
		t.Errorf("avg latency = %v, want 200ms", stats.AvgLatency)
	}
}

func TestCollectorUnknownStage(t *testing.T) {
	c := NewCollector()
	if _, ok := c.StageStats("nope"); ok {
		t.Fatal("unexpected stats for unknown stage")
	}
}

func TestCollectorSnapshot(t *testing.T) {
	c := NewCollector()

	c.RecordRequest(domain.ExecutionResult{Success: true, Stage: domain.StageCache})
	c.RecordRequest(domain.ExecutionResult{Success: true, Stage: "primary"})
	c.RecordRequest(domain.ExecutionResult{Success: false, Stage: domain.StageNone})
	c.RecordStage("primary", true, 50*time.Millisecond)

	snap := c.Snapshot()
	if snap.Requests != 3 {
		t.Errorf("requests = %d, want 3", snap.Requests)
	}
	if snap.CacheHits != 1 {
		t.Errorf("cache hits = %d, want 1", snap.CacheHits)
	}
	if snap.TotalFailures != 1 {
		t.Errorf("total failures = %d, want 1", snap.TotalFailures)
	}
	if got := snap.Stages["primary"].Invocations; got != 1 {
		t.Errorf("primary invocations = %d, want 1", got)
	}
}
