package main

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/taskwise/taskwise/internal/activity"
	"github.com/taskwise/taskwise/internal/config"
	"github.com/taskwise/taskwise/internal/handler"
	"github.com/taskwise/taskwise/internal/metrics"
	"github.com/taskwise/taskwise/internal/repository"
)

func TestRedactURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"postgres://user:secret@db:5432/taskwise", "postgres://user@db:5432/taskwise"},
		{"redis://:secret@cache:6379/0", "redis://redacted@cache:6379/0"},
		{"mongodb://localhost:27017", "mongodb://localhost:27017"},
	}

	for _, tt := range tests {
		if got := redactURL(tt.in); got != tt.want {
			t.Errorf("redactURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSanitizeError(t *testing.T) {
	t.Parallel()

	dsn := "postgres://user:secret@db:5432/taskwise"
	err := errors.New("dial " + dsn + " failed; password=hunter2")

	got := sanitizeError(err, dsn)
	if strings.Contains(got, "secret") || strings.Contains(got, "hunter2") {
		t.Errorf("sanitizeError leaked a secret: %s", got)
	}
	if sanitizeError(nil) != "" {
		t.Error("nil error should sanitize to empty string")
	}
}

func TestParseLogLevel(t *testing.T) {
	t.Parallel()

	if parseLogLevel("DEBUG") != slog.LevelDebug {
		t.Error("DEBUG should map to debug")
	}
	if parseLogLevel("bogus") != slog.LevelInfo {
		t.Error("unknown level should default to info")
	}
}

func TestNewActivityFeed(t *testing.T) {
	t.Parallel()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	memory := newActivityFeed(&config.Config{StoreDriver: config.StoreMemory}, nil, logger, metrics.NewNoop())
	if _, ok := memory.(*activity.MemoryFeed); !ok {
		t.Errorf("memory store feed = %T, want *activity.MemoryFeed", memory)
	}

	mongo := newActivityFeed(&config.Config{StoreDriver: config.StoreMongo}, nil, logger, metrics.NewNoop())
	if _, ok := mongo.(activity.NoopFeed); !ok {
		t.Errorf("feed without Redis = %T, want activity.NoopFeed", mongo)
	}
}

type rejectAll struct{}

func (rejectAll) VerifyToken(string) (string, error) { return "", errors.New("no") }

func TestSetupRouter(t *testing.T) {
	t.Parallel()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := &config.Config{AppEnv: "production", MaxRequestBodySize: 1 << 20}
	r := setupRouter(routeHandlers{
		health: handler.NewHealthHandler(repository.NewMemoryStore(), nil),
	}, rejectAll{}, metrics.NewNoop(), cfg, logger)

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodGet, "/healthz", http.StatusOK},
		{http.MethodGet, "/readyz", http.StatusOK},
		{http.MethodGet, "/api/tasks", http.StatusUnauthorized},
		{http.MethodGet, "/api/auth/me", http.StatusUnauthorized},
		{http.MethodGet, "/nope", http.StatusNotFound},
		{http.MethodGet, "/metrics", http.StatusNotFound},
	}

	for _, tt := range tests {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))
		if rec.Code != tt.want {
			t.Errorf("%s %s = %d, want %d", tt.method, tt.path, rec.Code, tt.want)
		}
		if rec.Header().Get("Strict-Transport-Security") == "" {
			t.Errorf("%s %s missing HSTS header", tt.method, tt.path)
		}
	}
}
