// Package source provides config-driven stage adapters: builders that turn
// configured backends (HTTP endpoints, static payloads) into fallback
// stages.
package source

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/vietddude/cascade/internal/core/domain"
)

// HTTPSource fetches data from a JSON-over-HTTP backend. The cascade input
// map is sent as the request body.
type HTTPSource struct {
	name       string
	endpoint   string
	httpClient *http.Client
}

// NewHTTPSource creates an HTTP source with a tuned transport.
func NewHTTPSource(name, endpoint string, timeout time.Duration) *HTTPSource {
	return &HTTPSource{
		name:     name,
		endpoint: endpoint,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// Fetch performs one request. It satisfies domain.StageFunc.
func (s *HTTPSource) Fetch(ctx context.Context, input map[string]any) (*domain.StageResult, error) {
	body, err := json.Marshal(input)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("source call: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("http %d: %s", resp.StatusCode, string(raw))
	}

	var data any
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	return &domain.StageResult{
		Success: true,
		Data:    data,
		Metadata: map[string]any{
			"endpoint": s.endpoint,
		},
	}, nil
}
