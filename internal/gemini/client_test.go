package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func okBody(text string) map[string]any {
	return map[string]any{
		"candidates": []map[string]any{{
			"content":      map[string]any{"role": "model", "parts": []map[string]any{{"text": text}}},
			"finishReason": "STOP",
		}},
	}
}

func newTestClient(url string, retries int) *Client {
	return NewClient(Config{
		APIKey:         "test-key",
		Model:          "test-model",
		Endpoint:       url,
		Temperature:    0.5,
		MaxRetries:     retries,
		BaseRetryDelay: time.Millisecond,
		MaxRetryDelay:  2 * time.Millisecond,
	})
}

func TestGenerateJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if r.URL.Path != "/models/test-model:generateContent" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("x-goog-api-key") != "test-key" {
			t.Errorf("missing or wrong x-goog-api-key header")
		}

		var req generateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.GenerationConfig.ResponseMIMEType != "application/json" {
			t.Errorf("expected JSON response mime type")
		}
		if req.GenerationConfig.ResponseSchema == nil || req.GenerationConfig.ResponseSchema.Type != TypeObject {
			t.Errorf("schema not forwarded")
		}
		if req.GenerationConfig.Temperature == nil || *req.GenerationConfig.Temperature != 0.5 {
			t.Errorf("temperature not forwarded")
		}
		if got := req.Contents[0].Parts[0].Text; got != "make a level" {
			t.Errorf("unexpected prompt %q", got)
		}

		json.NewEncoder(w).Encode(okBody(`{"title":"ok"}`))
	}))
	defer server.Close()

	c := newTestClient(server.URL, 0)
	text, err := c.GenerateJSON(context.Background(), "make a level", &Schema{Type: TypeObject})
	if err != nil {
		t.Fatalf("GenerateJSON: %v", err)
	}
	if text != `{"title":"ok"}` {
		t.Errorf("unexpected text %q", text)
	}
}

func TestRetryOnRateLimit(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"error":{"code":429,"message":"quota","status":"RESOURCE_EXHAUSTED"}}`))
			return
		}
		json.NewEncoder(w).Encode(okBody("{}"))
	}))
	defer server.Close()

	c := newTestClient(server.URL, 2)
	if _, err := c.GenerateJSON(context.Background(), "p", nil); err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if calls.Load() != 3 {
		t.Errorf("expected 3 calls, got %d", calls.Load())
	}
}

func TestRetriesExhausted(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	c := newTestClient(server.URL, 1)
	_, err := c.GenerateJSON(context.Background(), "p", nil)

	var httpErr *HTTPError
	if !errors.As(err, &httpErr) || httpErr.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("expected wrapped 503, got %v", err)
	}
	if !strings.Contains(err.Error(), "max retries exceeded") {
		t.Errorf("unexpected error text %q", err)
	}
	if calls.Load() != 2 {
		t.Errorf("expected 2 calls, got %d", calls.Load())
	}
}

func TestNoRetryOnClientError(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"code":400,"message":"API key not valid. Please pass a valid API key.","status":"INVALID_ARGUMENT"}}`))
	}))
	defer server.Close()

	c := newTestClient(server.URL, 3)
	_, err := c.GenerateJSON(context.Background(), "p", nil)

	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("expected HTTPError, got %v", err)
	}
	if !httpErr.IsAuth() {
		t.Errorf("expected auth error, got %+v", httpErr)
	}
	if calls.Load() != 1 {
		t.Errorf("client errors must not be retried, got %d calls", calls.Load())
	}
}

func TestBlockedPrompt(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"promptFeedback":{"blockReason":"SAFETY"}}`))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL, 0).GenerateJSON(context.Background(), "p", nil)
	var blocked *BlockedError
	if !errors.As(err, &blocked) || blocked.Reason != "SAFETY" {
		t.Errorf("expected SAFETY block, got %v", err)
	}
}

func TestMissingAPIKey(t *testing.T) {
	c := NewClient(Config{})
	if _, err := c.GenerateJSON(context.Background(), "p", nil); !errors.Is(err, ErrNoAPIKey) {
		t.Errorf("expected ErrNoAPIKey, got %v", err)
	}
}

func TestContextCancelStopsRetry(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	c := NewClient(Config{
		APIKey:         "k",
		Endpoint:       server.URL,
		MaxRetries:     5,
		BaseRetryDelay: time.Hour,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := c.GenerateJSON(ctx, "p", nil)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", err)
	}
}

func TestRetryDelayCapped(t *testing.T) {
	c := NewClient(Config{BaseRetryDelay: time.Second, MaxRetryDelay: 3 * time.Second})
	want := []time.Duration{time.Second, 2 * time.Second, 3 * time.Second, 3 * time.Second}
	for i, w := range want {
		if got := c.retryDelay(i + 1); got != w {
			t.Errorf("attempt %d: expected %v, got %v", i+1, w, got)
		}
	}
}
