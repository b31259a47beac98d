package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/taskwise/taskwise/internal/metrics"
)

func completionBody(content, finishReason string) string {
	return fmt.Sprintf(`{
		"id": "chatcmpl-1",
		"object": "chat.completion",
		"created": 1700000000,
		"model": "gemini-1.5-flash",
		"choices": [{
			"index": 0,
			"finish_reason": %q,
			"message": {"role": "assistant", "content": %q}
		}]
	}`, finishReason, content)
}

func newTestClient(t *testing.T, handler http.HandlerFunc, cfg Config) (*Client, *metrics.InMemoryRecorder) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg.BaseURL = srv.URL + "/"
	if cfg.APIKey == "" {
		cfg.APIKey = "test-key"
	}
	if cfg.Model == "" {
		cfg.Model = "gemini-1.5-flash"
	}
	rec := metrics.NewInMemory()
	return NewClient(cfg, nil, rec), rec
}

func TestClient_Generate(t *testing.T) {
	t.Parallel()

	var gotReq map[string]any
	client, rec := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path = %s, want /chat/completions", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization = %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, completionBody(`{"title":"Buy milk"}`, "stop"))
	}, Config{MaxOutputTokens: 256})

	reply, err := client.Generate(context.Background(), "make a task")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if reply != `{"title":"Buy milk"}` {
		t.Errorf("reply = %q", reply)
	}

	if gotReq["model"] != "gemini-1.5-flash" {
		t.Errorf("model = %v", gotReq["model"])
	}
	if gotReq["max_tokens"] != float64(256) {
		t.Errorf("max_tokens = %v, want 256", gotReq["max_tokens"])
	}
	msgs, _ := gotReq["messages"].([]any)
	if len(msgs) != 1 {
		t.Fatalf("messages = %v, want one user message", gotReq["messages"])
	}
	msg, _ := msgs[0].(map[string]any)
	if msg["role"] != "user" || msg["content"] != "make a task" {
		t.Errorf("message = %v", msg)
	}

	if snap := rec.Snapshot(); snap.GenerationOutcomes[metrics.OutcomeSuccess] != 1 {
		t.Errorf("success outcomes = %v", snap.GenerationOutcomes)
	}
}

func TestClient_Generate_NoRetryOnServerError(t *testing.T) {
	t.Parallel()

	var calls int32
	client, rec := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		fmt.Fprint(w, `{"error":{"message":"overloaded","type":"server_error"}}`)
	}, Config{})

	_, err := client.Generate(context.Background(), "x")
	if !errors.Is(err, ErrGenerationFailed) {
		t.Fatalf("error = %v, want ErrGenerationFailed", err)
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Errorf("calls = %d, want exactly 1", n)
	}
	if snap := rec.Snapshot(); snap.GenerationOutcomes[metrics.OutcomeError] != 1 {
		t.Errorf("error outcomes = %v", snap.GenerationOutcomes)
	}
}

func TestClient_Generate_Unauthorized(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error":{"message":"bad key"}}`)
	}, Config{})

	if _, err := client.Generate(context.Background(), "x"); !errors.Is(err, ErrGenerationFailed) {
		t.Errorf("error = %v, want ErrGenerationFailed", err)
	}
}

func TestClient_Generate_UnusableReplies(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		body    string
		outcome string
	}{
		{"blocked", completionBody("", "content_filter"), metrics.OutcomeBlocked},
		{"empty text", completionBody("   ", "stop"), metrics.OutcomeEmpty},
		{"no choices", `{"id":"x","object":"chat.completion","created":1,"model":"m","choices":[]}`, metrics.OutcomeEmpty},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, rec := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				fmt.Fprint(w, tt.body)
			}, Config{})

			if _, err := client.Generate(context.Background(), "x"); !errors.Is(err, ErrGenerationFailed) {
				t.Fatalf("error = %v, want ErrGenerationFailed", err)
			}
			if snap := rec.Snapshot(); snap.GenerationOutcomes[tt.outcome] != 1 {
				t.Errorf("outcomes = %v, want one %s", snap.GenerationOutcomes, tt.outcome)
			}
		})
	}
}

func TestClient_Generate_Timeout(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}, Config{Timeout: 50 * time.Millisecond})
	// Registered after the server so it runs before srv.Close.
	t.Cleanup(func() { close(release) })

	start := time.Now()
	_, err := client.Generate(context.Background(), "x")
	if !errors.Is(err, ErrGenerationFailed) {
		t.Fatalf("error = %v, want ErrGenerationFailed", err)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("Generate took %s, timeout not applied", elapsed)
	}
}
