package config

import (
	"github.com/vietddude/cascade/internal/infra/cache"
	"github.com/vietddude/cascade/internal/infra/storage/postgres"
)

// AppConfig represents the top-level configuration.
type AppConfig struct {
	Server   ServerConfig      `yaml:"server"`
	Cascade  CascadeConfig     `yaml:"cascade"`
	Stages   []StageConfig     `yaml:"stages"`
	Redis    cache.RedisConfig `yaml:"redis"`
	Database postgres.Config   `yaml:"database"`
	Logging  LoggingConfig     `yaml:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

// CascadeConfig holds orchestrator-level settings.
type CascadeConfig struct {
	CacheTTLSeconds int           `yaml:"cache_ttl_seconds"`
	Breaker         BreakerConfig `yaml:"breaker"`
}

// BreakerConfig holds circuit breaker thresholds.
type BreakerConfig struct {
	Threshold      int `yaml:"threshold"`
	ResetTimeoutMs int `yaml:"reset_timeout_ms"`
}

// StageConfig holds settings for one fallback stage.
type StageConfig struct {
	Name     string `yaml:"name"`
	Priority int    `yaml:"priority"`
	Type     string `yaml:"type"` // "http" or "static"
	// URL is the backend endpoint for http stages.
	URL string `yaml:"url"`
	// Payload is the fixed response for static stages.
	Payload    map[string]string `yaml:"payload"`
	TimeoutMs  int               `yaml:"timeout_ms"`
	RetryCount int               `yaml:"retry_count"`
}
