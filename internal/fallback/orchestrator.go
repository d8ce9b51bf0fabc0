// Package fallback implements the cascade engine: an ordered sequence of
// data-retrieval stages attempted until one succeeds, with a cache-first
// shortcut, per-stage circuit breaking, retry with exponential backoff,
// and aggregated health reporting.
package fallback

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/vietddude/cascade/internal/core/domain"
	"github.com/vietddude/cascade/internal/fallback/breaker"
	"github.com/vietddude/cascade/internal/infra/cache"
	"github.com/vietddude/cascade/internal/infra/metrics"
)

// Config holds orchestrator-level settings.
type Config struct {
	// CacheTTL is applied to every cache write-back from a live stage.
	CacheTTL time.Duration

	// Breaker settings are shared by every per-stage breaker.
	Breaker breaker.Config
}

// DefaultConfig provides sensible defaults.
var DefaultConfig = Config{
	CacheTTL: 5 * time.Minute,
	Breaker:  breaker.DefaultConfig,
}

// Orchestrator runs the fallback cascade. It serves many concurrent
// Execute calls; each call runs an independent, strictly sequential
// stage loop. Stages and their breakers are fixed at construction.
type Orchestrator struct {
	cfg      Config
	stages   []domain.Stage
	breakers map[string]*breaker.Breaker
	store    cache.Store
	sink     metrics.Sink
	events   notifier
}

// New validates and registers the stage set. Stage names and priorities
// must be unique; the set is sorted by ascending priority once, here.
func New(cfg Config, stages []domain.Stage, store cache.Store, sink metrics.Sink) (*Orchestrator, error) {
	if len(stages) == 0 {
		return nil, fmt.Errorf("at least one stage is required")
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = DefaultConfig.CacheTTL
	}

	sorted := make([]domain.Stage, len(stages))
	copy(sorted, stages)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Priority < sorted[j].Priority
	})

	names := make(map[string]struct{}, len(sorted))
	priorities := make(map[int]struct{}, len(sorted))
	breakers := make(map[string]*breaker.Breaker, len(sorted))
	for _, s := range sorted {
		if s.Name == "" {
			return nil, fmt.Errorf("stage with priority %d has no name", s.Priority)
		}
		if s.Func == nil {
			return nil, fmt.Errorf("stage %s has no execute func", s.Name)
		}
		if s.Timeout <= 0 {
			return nil, fmt.Errorf("stage %s: timeout must be positive", s.Name)
		}
		if s.RetryCount < 0 {
			return nil, fmt.Errorf("stage %s: retry count must not be negative", s.Name)
		}
		if _, dup := names[s.Name]; dup {
			return nil, fmt.Errorf("duplicate stage name %s", s.Name)
		}
		if _, dup := priorities[s.Priority]; dup {
			return nil, fmt.Errorf("duplicate stage priority %d", s.Priority)
		}
		names[s.Name] = struct{}{}
		priorities[s.Priority] = struct{}{}
		breakers[s.Name] = breaker.New(cfg.Breaker)
	}

	return &Orchestrator{
		cfg:      cfg,
		stages:   sorted,
		breakers: breakers,
		store:    store,
		sink:     sink,
	}, nil
}

// Attach registers a lifecycle observer.
func (o *Orchestrator) Attach(obs Observer) {
	o.events.attach(obs)
}

// Execute runs the cascade for input. It is total: every outcome, including
// exhaustion of all stages, is returned as a structured ExecutionResult and
// never as an error.
func (o *Orchestrator) Execute(ctx context.Context, input map[string]any) domain.ExecutionResult {
	start := time.Now()
	executionID := newExecutionID()
	o.events.notifyStart(executionID, input)

	key := CacheKey(input)

	if value, hit := o.cacheLookup(ctx, key); hit {
		result := domain.ExecutionResult{
			Success:  true,
			Data:     value,
			Stage:    domain.StageCache,
			Duration: time.Since(start),
			Metadata: map[string]any{
				"source":   domain.StageCache,
				"cacheHit": true,
			},
		}
		o.sink.RecordRequest(result)
		o.events.notifyComplete(executionID, result)
		return result
	}

	for _, stage := range o.stages {
		br := o.breakers[stage.Name]
		if !br.Allow() {
			// Unavailable, not an execution failure: the loop advances
			// without touching retry budgets or failure metrics.
			slog.Debug("Skipping stage, breaker open",
				"execution_id", executionID, "stage", stage.Name)
			o.publishBreakerState(stage.Name)
			continue
		}

		stageStart := time.Now()
		stageResult, err := runStageWithRetry(ctx, stage, input)
		stageDuration := time.Since(stageStart)

		if err != nil {
			br.RecordFailure()
			o.sink.RecordStage(stage.Name, false, stageDuration)
			o.publishBreakerState(stage.Name)
			slog.Warn("Stage failed, advancing cascade",
				"execution_id", executionID, "stage", stage.Name,
				"duration", stageDuration, "error", err)
			continue
		}

		br.RecordSuccess()
		o.sink.RecordStage(stage.Name, true, stageDuration)
		o.publishBreakerState(stage.Name)

		if stage.Live() {
			o.cacheWrite(ctx, key, stageResult.Data)
		}

		result := domain.ExecutionResult{
			Success:  true,
			Data:     stageResult.Data,
			Stage:    stage.Name,
			Duration: time.Since(start),
			Metadata: domain.MergeMetadata(stageResult.Metadata, map[string]any{
				"source":        stage.Name,
				"stageDuration": stageDuration.String(),
			}),
		}
		o.sink.RecordRequest(result)
		o.events.notifyComplete(executionID, result)
		return result
	}

	result := domain.ExecutionResult{
		Success:  false,
		Error:    domain.ErrAllStagesExhausted.Error(),
		Stage:    domain.StageNone,
		Duration: time.Since(start),
		Metadata: map[string]any{
			"source":         "failure",
			"fallbackReason": "all stages exhausted",
		},
	}
	o.sink.RecordRequest(result)
	o.events.notifyFailed(executionID, result)
	return result
}

// cacheLookup returns the cached value for key. Store errors degrade to a
// miss; the cascade must never abort because the cache is down.
func (o *Orchestrator) cacheLookup(ctx context.Context, key string) (any, bool) {
	value, ok, err := o.store.Get(ctx, key)
	if err != nil {
		slog.Warn("Cache lookup failed, treating as miss", "key", key, "error", err)
		return nil, false
	}
	return value, ok
}

func (o *Orchestrator) cacheWrite(ctx context.Context, key string, value any) {
	if err := o.store.Set(ctx, key, value, o.cfg.CacheTTL); err != nil {
		slog.Warn("Cache write failed", "key", key, "error", err)
	}
}

func (o *Orchestrator) publishBreakerState(stageName string) {
	state := o.breakers[stageName].State()
	metrics.BreakerState.WithLabelValues(stageName).Set(float64(state))
}

// HealthStatus reports per-stage and overall cascade health. Pure read,
// safe to call concurrently with Execute.
func (o *Orchestrator) HealthStatus() domain.HealthStatus {
	stages := make([]domain.StageHealth, 0, len(o.stages))
	available := 0

	for _, stage := range o.stages {
		br := o.breakers[stage.Name]
		snap := br.Snapshot()
		isAvailable := br.State() != breaker.StateOpen
		if isAvailable {
			available++
		}

		health := domain.StageHealth{
			Name:      stage.Name,
			Available: isAvailable,
			Breaker:   snap,
		}
		if stats, ok := o.sink.StageStats(stage.Name); ok {
			health.AvgLatency = stats.AvgLatency
			if stats.Invocations > 0 {
				health.SuccessRate = float64(stats.Successes) / float64(stats.Invocations) * 100
			}
		}
		stages = append(stages, health)
	}

	total := len(o.stages)
	overall := domain.StatusDegraded
	switch {
	case available == total:
		overall = domain.StatusHealthy
	case available < int(math.Ceil(float64(total)/2)):
		overall = domain.StatusUnhealthy
	}

	return domain.HealthStatus{
		Overall:   overall,
		Stages:    stages,
		LastCheck: time.Now(),
	}
}

// ResetBreaker forces the named stage's breaker back to closed.
func (o *Orchestrator) ResetBreaker(stageName string) error {
	br, ok := o.breakers[stageName]
	if !ok {
		return fmt.Errorf("unknown stage %s", stageName)
	}
	br.Reset()
	o.publishBreakerState(stageName)
	slog.Info("Circuit breaker reset", "stage", stageName)
	return nil
}

// ClearCache drops every cached result.
func (o *Orchestrator) ClearCache(ctx context.Context) error {
	return o.store.Clear(ctx)
}

// Metrics returns an aggregate snapshot from the metrics sink.
func (o *Orchestrator) Metrics() metrics.Snapshot {
	return o.sink.Snapshot()
}

// Shutdown flushes metrics, releases the cache store, and detaches all
// observers. The orchestrator must not be used afterwards.
func (o *Orchestrator) Shutdown(ctx context.Context) error {
	o.events.detachAll()

	if err := o.sink.Flush(ctx); err != nil {
		slog.Warn("Metrics flush failed during shutdown", "error", err)
	}
	if err := o.store.Close(); err != nil {
		return fmt.Errorf("failed to close cache store: %w", err)
	}
	return nil
}
