package service

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/taskwise/taskwise/internal/activity"
	"github.com/taskwise/taskwise/internal/extract"
	"github.com/taskwise/taskwise/internal/metrics"
	"github.com/taskwise/taskwise/internal/model"
	"github.com/taskwise/taskwise/internal/repository"
	"github.com/taskwise/taskwise/internal/testutil"
)

type testEnv struct {
	store    *repository.MemoryStore
	feed     *activity.MemoryFeed
	metrics  *metrics.InMemoryRecorder
	tasks    *TaskService
	gen      *testutil.FakeGenerator
	pipeline *Pipeline
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestEnv(t *testing.T, enforceOwnership bool, replies ...testutil.FakeReply) *testEnv {
	t.Helper()

	env := &testEnv{
		store:   repository.NewMemoryStore(),
		feed:    activity.NewMemoryFeed(),
		metrics: metrics.NewInMemory(),
		gen:     testutil.NewFakeGenerator(replies...),
	}
	logger := discardLogger()
	env.tasks = NewTaskService(env.store, env.feed, enforceOwnership, logger, env.metrics)
	env.pipeline = NewPipeline(env.tasks, env.gen, extract.Greedy{}, logger, env.metrics)
	return env
}

func (e *testEnv) seedTask(t *testing.T, owner, title string) *model.Task {
	t.Helper()
	task, err := e.tasks.CreateTask(context.Background(), owner, model.TaskDraft{
		Title:       title,
		Description: "seeded " + title,
		Priority:    model.PriorityLow,
	})
	if err != nil {
		t.Fatalf("seed CreateTask failed: %v", err)
	}
	return task
}
