// Package testutil holds shared helpers for package tests.
package testutil

import (
	"context"
	"fmt"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/taskwise/taskwise/internal/model"
)

// RequireEnv returns an environment variable or skips the test if missing.
func RequireEnv(t testing.TB, key string) string {
	t.Helper()
	value := os.Getenv(key)
	if value == "" {
		t.Skipf("%s not set", key)
	}
	return value
}

const advisoryLockID int64 = 420420

// AcquireDBLock grabs a global advisory lock to serialize DB tests.
func AcquireDBLock(ctx context.Context, pool *pgxpool.Pool) (func() error, error) {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}

	if _, err := conn.Exec(ctx, "SELECT pg_advisory_lock($1)", advisoryLockID); err != nil {
		conn.Release()
		return nil, fmt.Errorf("acquire advisory lock: %w", err)
	}

	unlock := func() error {
		defer conn.Release()
		if _, err := conn.Exec(context.Background(), "SELECT pg_advisory_unlock($1)", advisoryLockID); err != nil {
			return fmt.Errorf("release advisory lock: %w", err)
		}
		return nil
	}

	return unlock, nil
}

// NewRedisClient connects to REDIS_URL or skips the test.
// The selected database is flushed before and after the test.
func NewRedisClient(t testing.TB) *redis.Client {
	t.Helper()

	redisURL := RequireEnv(t, "REDIS_URL")
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		t.Fatalf("parse REDIS_URL: %v", err)
	}

	client := redis.NewClient(opts)
	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Fatalf("ping redis: %v", err)
	}
	if err := FlushRedis(ctx, client); err != nil {
		t.Fatalf("flush redis: %v", err)
	}

	t.Cleanup(func() {
		_ = FlushRedis(context.Background(), client)
		_ = client.Close()
	})

	return client
}

// FlushRedis clears the current Redis database.
func FlushRedis(ctx context.Context, client *redis.Client) error {
	return client.FlushDB(ctx).Err()
}

// ============================================================================
// Test Data Factories
// ============================================================================

var seq atomic.Int64

// UniqueID generates a unique ID for tests.
func UniqueID(prefix string) string {
	return fmt.Sprintf("%s-%d-%d", prefix, time.Now().UnixNano(), seq.Add(1))
}

// NewTestUser creates an unsaved user with a unique email.
func NewTestUser(t testing.TB) *model.User {
	t.Helper()
	return &model.User{
		Name:         "Test User",
		Email:        UniqueID("user") + "@example.com",
		PasswordHash: "$2a$04$invalidinvalidinvalidinvalidinvalidinvalidinvalidinva",
	}
}

// NewTestTask creates an unsaved pending task owned by ownerID.
func NewTestTask(t testing.TB, ownerID string) *model.Task {
	t.Helper()
	due := model.NewDate(time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC))
	return model.TaskDraft{
		Title:       "Buy milk",
		Description: "Buy milk tomorrow",
		Priority:    model.PriorityHigh,
		DueDate:     &due,
	}.NewTask(ownerID)
}
