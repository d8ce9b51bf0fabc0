package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestsTotal tracks cascade executions by terminal stage and outcome
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cascade_requests_total",
			Help: "Total number of cascade executions",
		},
		[]string{"stage", "outcome"},
	)

	// StageAttemptsTotal tracks per-stage attempt outcomes
	StageAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cascade_stage_attempts_total",
			Help: "Total number of stage attempts",
		},
		[]string{"stage", "outcome"},
	)

	// StageLatency tracks stage attempt latency
	StageLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cascade_stage_latency_seconds",
			Help:    "Stage attempt latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"stage"},
	)

	// CacheHitsTotal tracks cache-first shortcut hits and misses
	CacheHitsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cascade_cache_lookups_total",
			Help: "Total number of cache lookups",
		},
		[]string{"result"},
	)

	// BreakerState tracks the circuit breaker state per stage
	// (0=closed, 1=open, 2=half-open)
	BreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cascade_breaker_state",
			Help: "Circuit breaker state per stage (0=closed, 1=open, 2=half-open)",
		},
		[]string{"stage"},
	)
)
