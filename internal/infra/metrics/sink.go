// Package metrics provides the metrics sink consumed by the fallback
// orchestrator plus the Prometheus collectors exported at /metrics.
package metrics

import (
	"context"
	"sync"
	"time"

	"github.com/vietddude/cascade/internal/core/domain"
)

// StageStats holds aggregated per-stage statistics.
type StageStats struct {
	Invocations int           `json:"invocations"`
	Successes   int           `json:"successes"`
	AvgLatency  time.Duration `json:"avg_latency"`
}

// Snapshot is an aggregate view over all recorded activity.
type Snapshot struct {
	Requests      int                   `json:"requests"`
	CacheHits     int                   `json:"cache_hits"`
	TotalFailures int                   `json:"total_failures"`
	Stages        map[string]StageStats `json:"stages"`
}

// Sink is the metrics contract the orchestrator depends on. Implementations
// must be safe for concurrent use.
type Sink interface {
	// RecordRequest records a terminal cascade outcome.
	RecordRequest(result domain.ExecutionResult)

	// RecordStage records one stage attempt sequence outcome with its
	// duration.
	RecordStage(stageName string, success bool, duration time.Duration)

	// StageStats returns aggregated stats for a stage, ok=false when the
	// stage has never been invoked.
	StageStats(stageName string) (StageStats, bool)

	// Snapshot returns an aggregate view of all recorded activity.
	Snapshot() Snapshot

	// Flush pushes any buffered data before shutdown.
	Flush(ctx context.Context) error
}

type stageCounters struct {
	invocations  int
	successes    int
	totalLatency time.Duration
}

// Collector is the in-memory Sink implementation. It aggregates per-stage
// counters for health reporting and mirrors every observation into the
// Prometheus collectors.
type Collector struct {
	mu            sync.RWMutex
	requests      int
	cacheHits     int
	totalFailures int
	stages        map[string]*stageCounters
}

// NewCollector creates an empty collector.
func NewCollector() *Collector {
	return &Collector{stages: make(map[string]*stageCounters)}
}

// RecordRequest records a terminal cascade outcome.
func (c *Collector) RecordRequest(result domain.ExecutionResult) {
	c.mu.Lock()
	c.requests++
	switch {
	case result.Stage == domain.StageCache:
		c.cacheHits++
	case !result.Success:
		c.totalFailures++
	}
	c.mu.Unlock()

	outcome := "success"
	if !result.Success {
		outcome = "failure"
	}
	RequestsTotal.WithLabelValues(result.Stage, outcome).Inc()

	if result.Stage == domain.StageCache {
		CacheHitsTotal.WithLabelValues("hit").Inc()
	} else {
		CacheHitsTotal.WithLabelValues("miss").Inc()
	}
}

// RecordStage records one stage attempt sequence outcome.
func (c *Collector) RecordStage(stageName string, success bool, duration time.Duration) {
	c.mu.Lock()
	counters, ok := c.stages[stageName]
	if !ok {
		counters = &stageCounters{}
		c.stages[stageName] = counters
	}
	counters.invocations++
	if success {
		counters.successes++
	}
	counters.totalLatency += duration
	c.mu.Unlock()

	outcome := "failure"
	if success {
		outcome = "success"
	}
	StageAttemptsTotal.WithLabelValues(stageName, outcome).Inc()
	StageLatency.WithLabelValues(stageName).Observe(duration.Seconds())
}

// StageStats returns aggregated stats for a stage.
func (c *Collector) StageStats(stageName string) (StageStats, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	counters, ok := c.stages[stageName]
	if !ok {
		return StageStats{}, false
	}
	stats := StageStats{
		Invocations: counters.invocations,
		Successes:   counters.successes,
	}
	if counters.invocations > 0 {
		stats.AvgLatency = counters.totalLatency / time.Duration(counters.invocations)
	}
	return stats, true
}

// Snapshot returns an aggregate view of all recorded activity.
func (c *Collector) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	snap := Snapshot{
		Requests:      c.requests,
		CacheHits:     c.cacheHits,
		TotalFailures: c.totalFailures,
		Stages:        make(map[string]StageStats, len(c.stages)),
	}
	for name, counters := range c.stages {
		stats := StageStats{
			Invocations: counters.invocations,
			Successes:   counters.successes,
		}
		if counters.invocations > 0 {
			stats.AvgLatency = counters.totalLatency / time.Duration(counters.invocations)
		}
		snap.Stages[name] = stats
	}
	return snap
}

// Flush is a no-op for the in-memory collector; Prometheus scrapes pull
// the exported state.
func (c *Collector) Flush(ctx context.Context) error {
	return nil
}
