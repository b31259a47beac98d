//go:build integration

package repository

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taskwise/taskwise/internal/testutil"
)

func TestIntegrationMigration_Schema(t *testing.T) {
	ctx, pool, _ := newMigrationTestEnv(t)

	columns := map[string][]string{
		"users": {"id", "name", "email", "password_hash", "created_at"},
		"tasks": {"id", "user_id", "title", "description", "due_date", "priority", "status", "created_at", "updated_at"},
	}

	for table, cols := range columns {
		for _, col := range cols {
			t.Run(table+"."+col, func(t *testing.T) {
				exists, err := columnExists(ctx, pool, table, col)
				if err != nil {
					t.Fatalf("columnExists failed: %v", err)
				}
				if !exists {
					t.Errorf("column %q should exist in %s", col, table)
				}
			})
		}
	}
}

func TestIntegrationMigration_RollbackTasks(t *testing.T) {
	ctx, pool, databaseURL := newMigrationTestEnv(t)

	m, err := NewMigrator(databaseURL)
	if err != nil {
		t.Fatalf("NewMigrator failed: %v", err)
	}
	defer m.Close()

	if err := m.Steps(-1); err != nil {
		t.Fatalf("roll back one step: %v", err)
	}

	exists, err := tableExists(ctx, pool, "tasks")
	if err != nil {
		t.Fatalf("tableExists failed: %v", err)
	}
	if exists {
		t.Error("tasks table should not exist after rollback")
	}

	if exists, _ := tableExists(ctx, pool, "users"); !exists {
		t.Error("users table should survive rolling back tasks")
	}

	if err := RunMigrations(databaseURL); err != nil {
		t.Fatalf("reapply migrations: %v", err)
	}
	if exists, _ := tableExists(ctx, pool, "tasks"); !exists {
		t.Error("tasks table should exist after reapplying")
	}
}

func tableExists(ctx context.Context, pool *pgxpool.Pool, tableName string) (bool, error) {
	var exists bool
	err := pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT FROM information_schema.tables
			WHERE table_schema = 'public'
			AND table_name = $1
		)
	`, tableName).Scan(&exists)
	return exists, err
}

func columnExists(ctx context.Context, pool *pgxpool.Pool, tableName, columnName string) (bool, error) {
	var exists bool
	err := pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT FROM information_schema.columns
			WHERE table_schema = 'public'
			AND table_name = $1
			AND column_name = $2
		)
	`, tableName, columnName).Scan(&exists)
	return exists, err
}

func newMigrationTestEnv(t *testing.T) (context.Context, *pgxpool.Pool, string) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration tests in short mode")
	}

	ctx := context.Background()
	databaseURL := testutil.RequireEnv(t, "TEST_DATABASE_URL")

	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	t.Cleanup(pool.Close)

	unlock, err := testutil.AcquireDBLock(ctx, pool)
	if err != nil {
		t.Fatalf("acquire db lock: %v", err)
	}
	t.Cleanup(func() {
		_ = unlock()
	})

	if err := RunMigrations(databaseURL); err != nil {
		t.Fatalf("RunMigrations failed: %v", err)
	}

	return ctx, pool, databaseURL
}
