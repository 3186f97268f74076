package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/cenkalti/backoff/v4"

	"github.com/meetwise-team/meeting-insights/pkg/config"
)

// newTestOllamaClient points the client at ts and strips the retry
// delays so failure paths run instantly.
func newTestOllamaClient(ts *httptest.Server) *OllamaClient {
	c := NewOllamaClient(&config.OllamaConfig{
		BaseURL:   ts.URL,
		ChatModel: "test-model",
	}, nil)
	c.newBackOff = func() backoff.BackOff {
		return backoff.WithMaxRetries(&backoff.ZeroBackOff{}, maxGenerateRetries)
	}
	return c
}

func TestGenerate_Success(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"role": "assistant", "content": "a short recap"}},
			},
		})
	}))
	defer ts.Close()

	c := newTestOllamaClient(ts)
	out, err := c.Generate(context.Background(), "summarize this", false, 0.2)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if out != "a short recap" {
		t.Fatalf("unexpected content %q", out)
	}
}

func TestGenerate_StopsAfterThreeAttempts(t *testing.T) {
	var calls int64
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	c := newTestOllamaClient(ts)
	if _, err := c.Generate(context.Background(), "summarize this", false, 0.2); err == nil {
		t.Fatal("expected error")
	}
	if got := atomic.LoadInt64(&calls); got != 3 {
		t.Fatalf("expected 3 attempts, got %d", got)
	}
}

func TestGenerate_RecoversOnRetry(t *testing.T) {
	var calls int64
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt64(&calls, 1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"role": "assistant", "content": "second time lucky"}},
			},
		})
	}))
	defer ts.Close()

	c := newTestOllamaClient(ts)
	out, err := c.Generate(context.Background(), "summarize this", false, 0.2)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if out != "second time lucky" {
		t.Fatalf("unexpected content %q", out)
	}
	if got := atomic.LoadInt64(&calls); got != 2 {
		t.Fatalf("expected 2 attempts, got %d", got)
	}
}
