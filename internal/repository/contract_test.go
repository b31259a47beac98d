package repository

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/taskwise/taskwise/internal/model"
)

// runStoreContract exercises behaviour every Store backend must share.
func runStoreContract(t *testing.T, store Store) {
	t.Helper()

	ctx := context.Background()
	run := time.Now().UnixNano()
	var seq atomic.Int64

	uniqueEmail := func(prefix string) string {
		return fmt.Sprintf("%s-%d-%d@example.com", prefix, run, seq.Add(1))
	}

	newUser := func(t *testing.T) string {
		t.Helper()
		u := &model.User{
			Name:         "Test User",
			Email:        uniqueEmail("user"),
			PasswordHash: "hash",
		}
		if err := store.CreateUser(ctx, u); err != nil {
			t.Fatalf("CreateUser failed: %v", err)
		}
		if u.ID == "" {
			t.Fatal("CreateUser should assign an ID")
		}
		return u.ID
	}

	newTask := func(t *testing.T, owner, title string) *model.Task {
		t.Helper()
		due := model.NewDate(time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC))
		task := model.TaskDraft{
			Title:       title,
			Description: "desc " + title,
			Priority:    model.PriorityHigh,
			DueDate:     &due,
		}.NewTask(owner)
		if err := store.CreateTask(ctx, task); err != nil {
			t.Fatalf("CreateTask failed: %v", err)
		}
		if task.ID == "" {
			t.Fatal("CreateTask should assign an ID")
		}
		return task
	}

	t.Run("create and get", func(t *testing.T) {
		owner := newUser(t)
		created := newTask(t, owner, "Buy milk")

		got, err := store.GetTask(ctx, created.ID, owner)
		if err != nil {
			t.Fatalf("GetTask failed: %v", err)
		}
		if got.Title != "Buy milk" || got.OwnerID != owner {
			t.Errorf("got %+v", got)
		}
		if got.Status != model.StatusPending || got.Priority != model.PriorityHigh {
			t.Errorf("enums = %s/%s", got.Status, got.Priority)
		}
		if got.DueDate == nil || got.DueDate.String() != "2024-01-02" {
			t.Errorf("DueDate = %v", got.DueDate)
		}
	})

	t.Run("list is owner scoped", func(t *testing.T) {
		alice := newUser(t)
		bob := newUser(t)
		newTask(t, alice, "a1")
		newTask(t, alice, "a2")
		newTask(t, bob, "b1")

		tasks, err := store.ListTasksByOwner(ctx, alice)
		if err != nil {
			t.Fatalf("ListTasksByOwner failed: %v", err)
		}
		if len(tasks) != 2 {
			t.Fatalf("len = %d, want 2", len(tasks))
		}
		for _, task := range tasks {
			if task.OwnerID != alice {
				t.Errorf("task %s owned by %s leaked into alice's list", task.ID, task.OwnerID)
			}
		}
		if tasks[0].Title != "a1" || tasks[1].Title != "a2" {
			t.Errorf("order = %s, %s; want creation order", tasks[0].Title, tasks[1].Title)
		}
	})

	t.Run("list for unknown owner is empty", func(t *testing.T) {
		tasks, err := store.ListTasksByOwner(ctx, newUser(t))
		if err != nil {
			t.Fatalf("ListTasksByOwner failed: %v", err)
		}
		if tasks == nil || len(tasks) != 0 {
			t.Errorf("tasks = %v, want empty non-nil slice", tasks)
		}
	})

	t.Run("update applies patch and keeps owner", func(t *testing.T) {
		owner := newUser(t)
		created := newTask(t, owner, "Old")

		title := "New"
		status := model.StatusCompleted
		updated, err := store.UpdateTask(ctx, created.ID, model.TaskPatch{Title: &title, Status: &status}, "")
		if err != nil {
			t.Fatalf("UpdateTask failed: %v", err)
		}
		if updated.Title != "New" || updated.Status != model.StatusCompleted {
			t.Errorf("updated = %+v", updated)
		}
		if updated.Description != "desc Old" || updated.Priority != model.PriorityHigh {
			t.Errorf("untouched fields changed: %+v", updated)
		}
		if updated.OwnerID != owner {
			t.Errorf("OwnerID = %s, want %s", updated.OwnerID, owner)
		}
		if updated.DueDate == nil {
			t.Error("DueDate should be unchanged")
		}
	})

	t.Run("update clears due date", func(t *testing.T) {
		owner := newUser(t)
		created := newTask(t, owner, "Dated")

		updated, err := store.UpdateTask(ctx, created.ID, model.TaskPatch{ClearDueDate: true}, owner)
		if err != nil {
			t.Fatalf("UpdateTask failed: %v", err)
		}
		if updated.DueDate != nil {
			t.Errorf("DueDate = %v, want nil", updated.DueDate)
		}
	})

	t.Run("empty patch returns current", func(t *testing.T) {
		owner := newUser(t)
		created := newTask(t, owner, "Same")

		got, err := store.UpdateTask(ctx, created.ID, model.TaskPatch{}, "")
		if err != nil {
			t.Fatalf("UpdateTask failed: %v", err)
		}
		if got.Title != "Same" {
			t.Errorf("Title = %s, want Same", got.Title)
		}
	})

	t.Run("scoped access hides other owners", func(t *testing.T) {
		owner := newUser(t)
		other := newUser(t)
		created := newTask(t, owner, "Private")

		if _, err := store.GetTask(ctx, created.ID, other); !errors.Is(err, ErrTaskNotFound) {
			t.Errorf("GetTask(other) = %v, want ErrTaskNotFound", err)
		}
		title := "Hijack"
		if _, err := store.UpdateTask(ctx, created.ID, model.TaskPatch{Title: &title}, other); !errors.Is(err, ErrTaskNotFound) {
			t.Errorf("UpdateTask(other) = %v, want ErrTaskNotFound", err)
		}
		if _, err := store.DeleteTask(ctx, created.ID, other); !errors.Is(err, ErrTaskNotFound) {
			t.Errorf("DeleteTask(other) = %v, want ErrTaskNotFound", err)
		}

		got, err := store.GetTask(ctx, created.ID, owner)
		if err != nil || got.Title != "Private" {
			t.Errorf("task changed after rejected access: %+v, %v", got, err)
		}
	})

	t.Run("unknown id", func(t *testing.T) {
		owner := newUser(t)
		created := newTask(t, owner, "Victim")
		if _, err := store.DeleteTask(ctx, created.ID, ""); err != nil {
			t.Fatalf("DeleteTask failed: %v", err)
		}

		// The id is well formed but no longer exists.
		title := "x"
		if _, err := store.UpdateTask(ctx, created.ID, model.TaskPatch{Title: &title}, ""); !errors.Is(err, ErrTaskNotFound) {
			t.Errorf("UpdateTask(missing) = %v, want ErrTaskNotFound", err)
		}
		if _, err := store.DeleteTask(ctx, created.ID, ""); !errors.Is(err, ErrTaskNotFound) {
			t.Errorf("DeleteTask(missing) = %v, want ErrTaskNotFound", err)
		}
		if _, err := store.GetTask(ctx, "not-an-id", ""); !errors.Is(err, ErrTaskNotFound) {
			t.Errorf("GetTask(malformed) = %v, want ErrTaskNotFound", err)
		}
	})

	t.Run("delete returns removed task", func(t *testing.T) {
		owner := newUser(t)
		created := newTask(t, owner, "Gone")

		deleted, err := store.DeleteTask(ctx, created.ID, owner)
		if err != nil {
			t.Fatalf("DeleteTask failed: %v", err)
		}
		if deleted.ID != created.ID || deleted.Title != "Gone" {
			t.Errorf("deleted = %+v", deleted)
		}
		if _, err := store.GetTask(ctx, created.ID, ""); !errors.Is(err, ErrTaskNotFound) {
			t.Errorf("GetTask after delete = %v, want ErrTaskNotFound", err)
		}
	})

	t.Run("users", func(t *testing.T) {
		email := uniqueEmail("dup")
		u := &model.User{Name: "A", Email: email, PasswordHash: "h"}
		if err := store.CreateUser(ctx, u); err != nil {
			t.Fatalf("CreateUser failed: %v", err)
		}

		dup := &model.User{Name: "B", Email: email, PasswordHash: "h2"}
		if err := store.CreateUser(ctx, dup); !errors.Is(err, ErrEmailExists) {
			t.Errorf("CreateUser(duplicate) = %v, want ErrEmailExists", err)
		}

		byEmail, err := store.GetUserByEmail(ctx, email)
		if err != nil {
			t.Fatalf("GetUserByEmail failed: %v", err)
		}
		if byEmail.ID != u.ID || byEmail.PasswordHash != "h" || byEmail.Name != "A" {
			t.Errorf("byEmail = %+v", byEmail)
		}

		byID, err := store.GetUserByID(ctx, u.ID)
		if err != nil {
			t.Fatalf("GetUserByID failed: %v", err)
		}
		if byID.Email != email {
			t.Errorf("byID.Email = %s", byID.Email)
		}

		if _, err := store.GetUserByEmail(ctx, "nobody@example.com"); !errors.Is(err, ErrUserNotFound) {
			t.Errorf("GetUserByEmail(missing) = %v, want ErrUserNotFound", err)
		}
		if _, err := store.GetUserByID(ctx, "nope"); !errors.Is(err, ErrUserNotFound) {
			t.Errorf("GetUserByID(malformed) = %v, want ErrUserNotFound", err)
		}
	})
}
