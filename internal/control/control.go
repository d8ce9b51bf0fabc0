// Package control wires configuration into a running cascade service:
// cache store, metrics, stages, orchestrator, audit trail, and the HTTP
// server.
package control

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/vietddude/cascade/internal/core/config"
	"github.com/vietddude/cascade/internal/core/domain"
	"github.com/vietddude/cascade/internal/fallback"
	"github.com/vietddude/cascade/internal/fallback/breaker"
	"github.com/vietddude/cascade/internal/health"
	"github.com/vietddude/cascade/internal/infra/cache"
	"github.com/vietddude/cascade/internal/infra/metrics"
	"github.com/vietddude/cascade/internal/infra/source"
	"github.com/vietddude/cascade/internal/infra/storage"
	"github.com/vietddude/cascade/internal/infra/storage/postgres"
)

// App is the running cascade service.
type App struct {
	orchestrator *fallback.Orchestrator
	server       *health.Server
	audit        storage.AuditStore
	log          *slog.Logger
}

// NewApp builds the service from configuration.
func NewApp(cfg *config.AppConfig) (*App, error) {
	// 1. Cache store: Redis when configured, in-memory otherwise.
	var store cache.Store
	if cfg.Redis.URL != "" {
		redisStore, err := cache.NewRedisStore(cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("failed to init redis cache: %w", err)
		}
		store = redisStore
		slog.Info("Using Redis cache", "namespace", cfg.Redis.Namespace)
	} else {
		store = cache.NewMemoryStore()
		slog.Info("Using in-memory cache")
	}

	// 2. Metrics sink.
	sink := metrics.NewCollector()

	// 3. Stages from config.
	stages, err := buildStages(cfg.Stages)
	if err != nil {
		return nil, err
	}

	// 4. Orchestrator.
	orchCfg := fallback.Config{
		CacheTTL: time.Duration(cfg.Cascade.CacheTTLSeconds) * time.Second,
		Breaker: breaker.Config{
			Threshold:    cfg.Cascade.Breaker.Threshold,
			ResetTimeout: time.Duration(cfg.Cascade.Breaker.ResetTimeoutMs) * time.Millisecond,
		},
	}
	orchestrator, err := fallback.New(orchCfg, stages, store, sink)
	if err != nil {
		return nil, fmt.Errorf("failed to init orchestrator: %w", err)
	}

	// 5. Audit trail: PostgreSQL when configured.
	var audit storage.AuditStore
	if cfg.Database.URL != "" {
		db, err := postgres.NewDB(context.Background(), cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to init db: %w", err)
		}
		audit = postgres.NewAuditRepo(db)
		slog.Info("Using PostgreSQL audit trail")
	}
	if audit != nil {
		orchestrator.Attach(&auditObserver{store: audit})
	}

	server := health.NewServer(orchestrator, audit, cfg.Server.Port)

	return &App{
		orchestrator: orchestrator,
		server:       server,
		audit:        audit,
		log:          slog.Default(),
	}, nil
}

// Orchestrator exposes the engine, mainly for embedding and tests.
func (a *App) Orchestrator() *fallback.Orchestrator {
	return a.orchestrator
}

// Start starts the HTTP server.
func (a *App) Start(ctx context.Context) error {
	go func() {
		if err := a.server.Start(); err != nil {
			a.log.Error("HTTP server failed", "error", err)
		}
	}()
	return nil
}

// Stop shuts the service down: HTTP server first so no new cascades start,
// then the orchestrator (flushes metrics, closes the cache), then the
// audit store.
func (a *App) Stop(ctx context.Context) error {
	a.log.Info("Stopping cascade service...")

	if err := a.server.Stop(ctx); err != nil {
		a.log.Warn("Failed to stop HTTP server", "error", err)
	}
	if err := a.orchestrator.Shutdown(ctx); err != nil {
		return fmt.Errorf("orchestrator shutdown: %w", err)
	}
	if a.audit != nil {
		if err := a.audit.Close(); err != nil {
			a.log.Warn("Failed to close audit store", "error", err)
		}
	}
	return nil
}

// buildStages turns stage configs into runnable stages.
func buildStages(configs []config.StageConfig) ([]domain.Stage, error) {
	stages := make([]domain.Stage, 0, len(configs))
	for _, sc := range configs {
		timeout := time.Duration(sc.TimeoutMs) * time.Millisecond

		var fn domain.StageFunc
		switch sc.Type {
		case config.StageTypeHTTP:
			fn = source.NewHTTPSource(sc.Name, sc.URL, timeout).Fetch
		case config.StageTypeStatic:
			payload := make(map[string]any, len(sc.Payload))
			for k, v := range sc.Payload {
				payload[k] = v
			}
			fn = source.NewStaticSource(payload).Fetch
		default:
			return nil, fmt.Errorf("stage %s: unknown type %q", sc.Name, sc.Type)
		}

		stages = append(stages, domain.Stage{
			Name:       sc.Name,
			Priority:   sc.Priority,
			Func:       fn,
			Timeout:    timeout,
			RetryCount: sc.RetryCount,
		})
	}
	return stages, nil
}
