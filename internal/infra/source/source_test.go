package source

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestHTTPSourceFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var input map[string]any
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if input["symbol"] != "BTC" {
			t.Errorf("input symbol = %v, want BTC", input["symbol"])
		}
		json.NewEncoder(w).Encode(map[string]any{"price": 42000.5})
	}))
	defer srv.Close()

	s := NewHTTPSource("primary", srv.URL, 5*time.Second)
	result, err := s.Fetch(context.Background(), map[string]any{"symbol": "BTC"})
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if !result.Success {
		t.Fatal("expected success")
	}
	data, ok := result.Data.(map[string]any)
	if !ok || data["price"] != 42000.5 {
		t.Fatalf("data = %v", result.Data)
	}
}

func TestHTTPSourceNon200IsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream exploded", http.StatusBadGateway)
	}))
	defer srv.Close()

	s := NewHTTPSource("primary", srv.URL, 5*time.Second)
	if _, err := s.Fetch(context.Background(), nil); err == nil {
		t.Fatal("expected error for 502 response")
	}
}

func TestHTTPSourceHonorsContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Drain the body so the server detects the client disconnect and
		// cancels the request context; otherwise srv.Close deadlocks.
		io.Copy(io.Discard, r.Body)
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	s := NewHTTPSource("primary", srv.URL, time.Minute)
	if _, err := s.Fetch(ctx, nil); err == nil {
		t.Fatal("expected context deadline error")
	}
}

func TestStaticSource(t *testing.T) {
	s := NewStaticSource(map[string]any{"price": 0.0, "stale": true})

	result, err := s.Fetch(context.Background(), map[string]any{"anything": 1})
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if !result.Success {
		t.Fatal("static source must always succeed")
	}
	if result.Metadata["static"] != true {
		t.Errorf("metadata = %+v", result.Metadata)
	}
}
