// Package health exposes the cascade over HTTP: execution endpoint, health
// and metrics reporting, and admin operations.
package health

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/vietddude/cascade/internal/core/domain"
	"github.com/vietddude/cascade/internal/infra/metrics"
	"github.com/vietddude/cascade/internal/infra/storage"
)

// Engine is the subset of the orchestrator the server depends on.
type Engine interface {
	Execute(ctx context.Context, input map[string]any) domain.ExecutionResult
	HealthStatus() domain.HealthStatus
	ResetBreaker(stageName string) error
	ClearCache(ctx context.Context) error
	Metrics() metrics.Snapshot
}

// Server provides the HTTP surface of the cascade service.
type Server struct {
	engine Engine
	audit  storage.AuditStore
	server *http.Server
}

// NewServer creates a server on the given port. audit may be nil; the
// executions endpoint then reports 404.
func NewServer(engine Engine, audit storage.AuditStore, port int) *Server {
	mux := http.NewServeMux()
	s := &Server{
		engine: engine,
		audit:  audit,
		server: &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: mux,
		},
	}

	mux.HandleFunc("POST /execute", s.handleExecute)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /health/detailed", s.handleDetailed)
	mux.HandleFunc("GET /stats", s.handleStats)
	mux.HandleFunc("GET /executions", s.handleExecutions)
	mux.HandleFunc("POST /admin/breakers/{stage}/reset", s.handleBreakerReset)
	mux.HandleFunc("POST /admin/cache/clear", s.handleCacheClear)
	mux.Handle("GET /metrics", promhttp.Handler())

	return s
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	return s.server.ListenAndServe()
}

// Stop stops the HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) handleExecute(w http.ResponseWriter, r *http.Request) {
	var input map[string]any
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}

	result := s.engine.Execute(r.Context(), input)

	status := http.StatusOK
	if !result.Success {
		status = http.StatusBadGateway
	}
	writeJSON(w, status, result)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	health := s.engine.HealthStatus()

	status := http.StatusOK
	if health.Overall == domain.StatusUnhealthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, map[string]string{"status": string(health.Overall)})
}

func (s *Server) handleDetailed(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.HealthStatus())
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.Metrics())
}

func (s *Server) handleExecutions(w http.ResponseWriter, r *http.Request) {
	if s.audit == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "audit trail not configured"})
		return
	}

	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid limit"})
			return
		}
		limit = parsed
	}

	records, err := s.audit.RecentExecutions(r.Context(), limit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleBreakerReset(w http.ResponseWriter, r *http.Request) {
	stage := r.PathValue("stage")
	if err := s.engine.ResetBreaker(stage); err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset", "stage": stage})
}

func (s *Server) handleCacheClear(w http.ResponseWriter, r *http.Request) {
	if err := s.engine.ClearCache(r.Context()); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
