package domain

import "time"

// SystemStatus represents the overall health state of the cascade.
type SystemStatus string

const (
	StatusHealthy   SystemStatus = "healthy"
	StatusDegraded  SystemStatus = "degraded"
	StatusUnhealthy SystemStatus = "unhealthy"
)

// BreakerState is a read-only snapshot of a circuit breaker.
type BreakerState struct {
	State        string    `json:"state"`
	FailureCount int       `json:"failure_count"`
	LastFailure  time.Time `json:"last_failure,omitempty"`
	Threshold    int       `json:"threshold"`
	ResetTimeout string    `json:"reset_timeout"`
}

// StageHealth contains health metrics for a single stage.
type StageHealth struct {
	Name        string        `json:"name"`
	Available   bool          `json:"available"`
	Breaker     BreakerState  `json:"circuit_breaker"`
	AvgLatency  time.Duration `json:"avg_latency"`
	SuccessRate float64       `json:"success_rate"`
}

// HealthStatus is the full cascade health report.
type HealthStatus struct {
	Overall   SystemStatus  `json:"overall"`
	Stages    []StageHealth `json:"stages"`
	LastCheck time.Time     `json:"last_check"`
}
