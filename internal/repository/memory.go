package repository

import (
	"context"
	"sync"

	"github.com/oklog/ulid/v2"

	"github.com/taskwise/taskwise/internal/model"
)

// MemoryStore keeps tasks and users in process memory.
// Data is lost on restart.
type MemoryStore struct {
	mu      sync.RWMutex
	tasks   map[string]*model.Task
	order   []string
	users   map[string]*model.User
	byEmail map[string]string
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		tasks:   make(map[string]*model.Task),
		users:   make(map[string]*model.User),
		byEmail: make(map[string]string),
	}
}

// CreateTask implements TaskRepository.
func (s *MemoryStore) CreateTask(ctx context.Context, task *model.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	task.ID = ulid.Make().String()
	s.tasks[task.ID] = cloneTask(task)
	s.order = append(s.order, task.ID)
	return nil
}

// ListTasksByOwner implements TaskRepository.
func (s *MemoryStore) ListTasksByOwner(ctx context.Context, ownerID string) ([]*model.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tasks := make([]*model.Task, 0)
	for _, id := range s.order {
		t := s.tasks[id]
		if t.OwnerID == ownerID {
			tasks = append(tasks, cloneTask(t))
		}
	}
	return tasks, nil
}

// GetTask implements TaskRepository.
func (s *MemoryStore) GetTask(ctx context.Context, id, ownerID string) (*model.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, err := s.lookup(id, ownerID)
	if err != nil {
		return nil, err
	}
	return cloneTask(t), nil
}

// UpdateTask implements TaskRepository.
func (s *MemoryStore) UpdateTask(ctx context.Context, id string, patch model.TaskPatch, ownerID string) (*model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.lookup(id, ownerID)
	if err != nil {
		return nil, err
	}
	patch.Apply(t)
	return cloneTask(t), nil
}

// DeleteTask implements TaskRepository.
func (s *MemoryStore) DeleteTask(ctx context.Context, id, ownerID string) (*model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.lookup(id, ownerID)
	if err != nil {
		return nil, err
	}

	delete(s.tasks, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return t, nil
}

// CreateUser implements UserRepository.
func (s *MemoryStore) CreateUser(ctx context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byEmail[user.Email]; ok {
		return ErrEmailExists
	}

	user.ID = ulid.Make().String()
	stored := *user
	s.users[user.ID] = &stored
	s.byEmail[user.Email] = user.ID
	return nil
}

// GetUserByEmail implements UserRepository.
func (s *MemoryStore) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[email]
	if !ok {
		return nil, ErrUserNotFound
	}
	u := *s.users[id]
	return &u, nil
}

// GetUserByID implements UserRepository.
func (s *MemoryStore) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored, ok := s.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	u := *stored
	return &u, nil
}

// Ping always succeeds.
func (s *MemoryStore) Ping(ctx context.Context) error {
	return nil
}

// Close is a no-op.
func (s *MemoryStore) Close(ctx context.Context) error {
	return nil
}

// TaskCount returns the number of stored tasks.
func (s *MemoryStore) TaskCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tasks)
}

// lookup must be called with s.mu held.
func (s *MemoryStore) lookup(id, ownerID string) (*model.Task, error) {
	t, ok := s.tasks[id]
	if !ok || (ownerID != "" && t.OwnerID != ownerID) {
		return nil, ErrTaskNotFound
	}
	return t, nil
}

func cloneTask(t *model.Task) *model.Task {
	c := *t
	if t.DueDate != nil {
		d := *t.DueDate
		c.DueDate = &d
	}
	return &c
}
