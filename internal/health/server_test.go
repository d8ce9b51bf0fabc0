package health

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/vietddude/cascade/internal/core/domain"
	"github.com/vietddude/cascade/internal/infra/metrics"
	"github.com/vietddude/cascade/internal/infra/storage"
)

type fakeEngine struct {
	health    domain.HealthStatus
	result    domain.ExecutionResult
	resetErr  error
	lastReset string
}

func (f *fakeEngine) Execute(ctx context.Context, input map[string]any) domain.ExecutionResult {
	return f.result
}

func (f *fakeEngine) HealthStatus() domain.HealthStatus { return f.health }

func (f *fakeEngine) ResetBreaker(stage string) error {
	f.lastReset = stage
	return f.resetErr
}

func (f *fakeEngine) ClearCache(ctx context.Context) error { return nil }

func (f *fakeEngine) Metrics() metrics.Snapshot { return metrics.Snapshot{Requests: 7} }

func newTestServer(engine Engine, audit storage.AuditStore) *httptest.Server {
	s := NewServer(engine, audit, 0)
	return httptest.NewServer(s.server.Handler)
}

func TestHealthEndpointStatusCodes(t *testing.T) {
	tests := []struct {
		overall  domain.SystemStatus
		wantCode int
	}{
		{domain.StatusHealthy, http.StatusOK},
		{domain.StatusDegraded, http.StatusOK},
		{domain.StatusUnhealthy, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		srv := newTestServer(&fakeEngine{health: domain.HealthStatus{Overall: tt.overall}}, nil)

		resp, err := http.Get(srv.URL + "/health")
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if resp.StatusCode != tt.wantCode {
			t.Errorf("%s: status = %d, want %d", tt.overall, resp.StatusCode, tt.wantCode)
		}
		resp.Body.Close()
		srv.Close()
	}
}

func TestExecuteEndpoint(t *testing.T) {
	engine := &fakeEngine{
		result: domain.ExecutionResult{Success: true, Stage: "primary", Data: "d"},
	}
	srv := newTestServer(engine, nil)
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/execute", "application/json", strings.NewReader(`{"q":1}`))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var result domain.ExecutionResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if result.Stage != "primary" {
		t.Errorf("stage = %s, want primary", result.Stage)
	}
}

func TestExecuteEndpointTotalFailureIs502(t *testing.T) {
	engine := &fakeEngine{
		result: domain.ExecutionResult{Success: false, Stage: domain.StageNone},
	}
	srv := newTestServer(engine, nil)
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/execute", "application/json", strings.NewReader(`{}`))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", resp.StatusCode)
	}
}

func TestExecuteEndpointRejectsBadJSON(t *testing.T) {
	srv := newTestServer(&fakeEngine{}, nil)
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/execute", "application/json", strings.NewReader("{not json"))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestBreakerResetEndpoint(t *testing.T) {
	engine := &fakeEngine{}
	srv := newTestServer(engine, nil)
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/admin/breakers/primary/reset", "application/json", nil)
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if engine.lastReset != "primary" {
		t.Errorf("reset stage = %q, want primary", engine.lastReset)
	}
}

func TestExecutionsEndpoint(t *testing.T) {
	audit := storage.NewMemoryAuditStore()
	_ = audit.SaveExecution(context.Background(), storage.ExecutionRecord{
		ExecutionID: "abc", Stage: "primary", Success: true,
	})

	srv := newTestServer(&fakeEngine{}, audit)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/executions?limit=10")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()

	var records []storage.ExecutionRecord
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(records) != 1 || records[0].ExecutionID != "abc" {
		t.Fatalf("records = %+v", records)
	}
}

func TestExecutionsEndpointWithoutAudit(t *testing.T) {
	srv := newTestServer(&fakeEngine{}, nil)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/executions")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}
