package repository

import (
	"context"
	"sync"
	"testing"

	"github.com/taskwise/taskwise/internal/model"
)

func TestMemoryStore_Contract(t *testing.T) {
	runStoreContract(t, NewMemoryStore())
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewMemoryStore()

	task := model.TaskDraft{Title: "Original", Description: "d"}.NewTask("owner")
	if err := store.CreateTask(ctx, task); err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}

	task.Title = "Mutated by caller"
	got, _ := store.GetTask(ctx, task.ID, "")
	if got.Title != "Original" {
		t.Errorf("stored title = %s, want Original", got.Title)
	}

	got.Title = "Mutated again"
	again, _ := store.GetTask(ctx, task.ID, "")
	if again.Title != "Original" {
		t.Errorf("stored title = %s, want Original", again.Title)
	}
}

func TestMemoryStore_ConcurrentCreates(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewMemoryStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			task := model.TaskDraft{Title: "t"}.NewTask("owner")
			if err := store.CreateTask(ctx, task); err != nil {
				t.Errorf("CreateTask failed: %v", err)
			}
		}()
	}
	wg.Wait()

	if n := store.TaskCount(); n != 50 {
		t.Errorf("TaskCount = %d, want 50", n)
	}
	tasks, _ := store.ListTasksByOwner(ctx, "owner")
	if len(tasks) != 50 {
		t.Errorf("listed %d tasks, want 50", len(tasks))
	}
}
