package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/taskwise/taskwise/internal/activity"
	"github.com/taskwise/taskwise/internal/metrics"
	"github.com/taskwise/taskwise/internal/model"
	"github.com/taskwise/taskwise/internal/repository"
)

// TaskService handles task business logic.
type TaskService struct {
	repo             repository.TaskRepository
	feed             activity.Feed
	enforceOwnership bool
	logger           *slog.Logger
	metrics          metrics.Recorder
	now              func() time.Time
}

// NewTaskService creates a new TaskService.
//
// When enforceOwnership is false, update and delete address any task by id.
// Reads by id are always limited to the caller's own tasks.
func NewTaskService(repo repository.TaskRepository, feed activity.Feed, enforceOwnership bool, logger *slog.Logger, recorder metrics.Recorder) *TaskService {
	if feed == nil {
		feed = activity.NoopFeed{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &TaskService{
		repo:             repo,
		feed:             feed,
		enforceOwnership: enforceOwnership,
		logger:           logger.With("component", "service.task"),
		metrics:          recorder,
		now:              time.Now,
	}
}

// CreateTask stores a new pending task owned by ownerID.
func (s *TaskService) CreateTask(ctx context.Context, ownerID string, draft model.TaskDraft) (*model.Task, error) {
	task := draft.NewTask(ownerID)
	if err := task.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidTask, err)
	}

	if err := s.repo.CreateTask(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	s.metrics.IncTaskCreated()
	s.publish(activity.EventCreated, task)

	return task, nil
}

// ListTasks returns every task owned by ownerID.
func (s *TaskService) ListTasks(ctx context.Context, ownerID string) ([]*model.Task, error) {
	tasks, err := s.repo.ListTasksByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

// GetTask returns one of the caller's tasks.
func (s *TaskService) GetTask(ctx context.Context, callerID, id string) (*model.Task, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrTaskIDRequired
	}

	task, err := s.repo.GetTask(ctx, id, callerID)
	if err != nil {
		return nil, mapTaskErr(err)
	}
	return task, nil
}

// UpdateTask applies patch to the task identified by id.
// The owner never changes. An empty patch returns the task unchanged.
func (s *TaskService) UpdateTask(ctx context.Context, callerID, id string, patch model.TaskPatch) (*model.Task, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrTaskIDRequired
	}
	if err := patch.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidTask, err)
	}

	task, err := s.repo.UpdateTask(ctx, id, patch, s.scope(callerID))
	if err != nil {
		return nil, mapTaskErr(err)
	}

	if !patch.IsEmpty() {
		s.metrics.IncTaskUpdated()
		s.publish(activity.EventUpdated, task)
	}

	return task, nil
}

// DeleteTask removes the task identified by id.
func (s *TaskService) DeleteTask(ctx context.Context, callerID, id string) (*model.Task, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrTaskIDRequired
	}

	task, err := s.repo.DeleteTask(ctx, id, s.scope(callerID))
	if err != nil {
		return nil, mapTaskErr(err)
	}

	s.metrics.IncTaskDeleted()
	s.publish(activity.EventDeleted, task)

	return task, nil
}

// Activity returns the caller's most recent task events.
func (s *TaskService) Activity(ctx context.Context, ownerID string, limit int) ([]activity.Event, error) {
	events, err := s.feed.Recent(ctx, ownerID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to read activity: %w", err)
	}
	return events, nil
}

// lookup resolves a task the caller may modify. Used before spending a model call.
func (s *TaskService) lookup(ctx context.Context, callerID, id string) (*model.Task, error) {
	task, err := s.repo.GetTask(ctx, id, s.scope(callerID))
	if err != nil {
		return nil, mapTaskErr(err)
	}
	return task, nil
}

// scope returns the owner filter for update and delete.
func (s *TaskService) scope(callerID string) string {
	if s.enforceOwnership {
		return callerID
	}
	return ""
}

func (s *TaskService) publish(eventType activity.EventType, task *model.Task) {
	s.feed.PublishAsync(task.OwnerID, activity.Event{
		Type:   eventType,
		TaskID: task.ID,
		Title:  task.Title,
		At:     s.now().UTC(),
	})
}

func mapTaskErr(err error) error {
	if errors.Is(err, repository.ErrTaskNotFound) {
		return ErrTaskNotFound
	}
	return err
}
