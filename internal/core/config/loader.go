package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// Stage types accepted in config.
const (
	StageTypeHTTP   = "http"
	StageTypeStatic = "static"
)

// Load reads configuration from a YAML file.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg AppConfig
	// Expand environment variables in the YAML content
	expandedData := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyDefaults(cfg *AppConfig) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Cascade.CacheTTLSeconds == 0 {
		cfg.Cascade.CacheTTLSeconds = 300
	}
	if cfg.Cascade.Breaker.Threshold == 0 {
		cfg.Cascade.Breaker.Threshold = 5
	}
	if cfg.Cascade.Breaker.ResetTimeoutMs == 0 {
		cfg.Cascade.Breaker.ResetTimeoutMs = 60000
	}
	for i := range cfg.Stages {
		if cfg.Stages[i].TimeoutMs == 0 {
			cfg.Stages[i].TimeoutMs = 5000
		}
	}
}

func validate(cfg *AppConfig) error {
	names := make(map[string]struct{}, len(cfg.Stages))
	priorities := make(map[int]struct{}, len(cfg.Stages))

	for _, s := range cfg.Stages {
		if s.Name == "" {
			return fmt.Errorf("stage with priority %d has no name", s.Priority)
		}
		if _, dup := names[s.Name]; dup {
			return fmt.Errorf("duplicate stage name %s", s.Name)
		}
		if _, dup := priorities[s.Priority]; dup {
			return fmt.Errorf("duplicate stage priority %d", s.Priority)
		}
		names[s.Name] = struct{}{}
		priorities[s.Priority] = struct{}{}

		switch s.Type {
		case StageTypeHTTP:
			if s.URL == "" {
				return fmt.Errorf("http stage %s has no url", s.Name)
			}
		case StageTypeStatic:
		default:
			return fmt.Errorf("stage %s: unknown type %q", s.Name, s.Type)
		}
		if s.RetryCount < 0 {
			return fmt.Errorf("stage %s: retry count must not be negative", s.Name)
		}
	}
	return nil
}
