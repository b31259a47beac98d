// Package repository provides the persistence layer for tasks and users.
//
// Three backends implement Store: MongoDB (the default), PostgreSQL and an
// in-process memory store for development and tests. Every task operation
// that takes an ownerID treats "" as unscoped and any other value as a
// filter; a task owned by someone else then reads as not found.
package repository

import (
	"context"
	"errors"

	"github.com/taskwise/taskwise/internal/model"
)

// Common errors for repository operations.
var (
	ErrTaskNotFound = errors.New("task not found")
	ErrUserNotFound = errors.New("user not found")
	ErrEmailExists  = errors.New("email already exists")
)

// TaskRepository persists tasks.
type TaskRepository interface {
	// CreateTask stores task and assigns its ID.
	CreateTask(ctx context.Context, task *model.Task) error
	// ListTasksByOwner returns every task owned by ownerID in creation order.
	ListTasksByOwner(ctx context.Context, ownerID string) ([]*model.Task, error)
	GetTask(ctx context.Context, id, ownerID string) (*model.Task, error)
	// UpdateTask applies patch atomically and returns the stored result.
	// An empty patch returns the current task.
	UpdateTask(ctx context.Context, id string, patch model.TaskPatch, ownerID string) (*model.Task, error)
	// DeleteTask removes the task and returns what was deleted.
	DeleteTask(ctx context.Context, id, ownerID string) (*model.Task, error)
}

// UserRepository persists user accounts.
type UserRepository interface {
	// CreateUser stores user and assigns its ID. Returns ErrEmailExists on a duplicate email.
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByID(ctx context.Context, id string) (*model.User, error)
}

// Store is a complete persistence backend.
type Store interface {
	TaskRepository
	UserRepository

	// Ping checks backend connectivity.
	Ping(ctx context.Context) error
	// Close releases backend connections.
	Close(ctx context.Context) error
}
