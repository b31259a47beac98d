package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"

	"github.com/taskwise/taskwise/internal/model"
)

// PostgresStore implements Store on a pgx connection pool.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	// Connection pool settings
	config.MaxConns = 10
	config.MinConns = 2

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

// Ping checks database connectivity.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close closes the database connection pool.
func (s *PostgresStore) Close(ctx context.Context) error {
	s.pool.Close()
	return nil
}

// Pool returns the underlying connection pool.
// Use sparingly - prefer adding methods to PostgresStore.
func (s *PostgresStore) Pool() *pgxpool.Pool {
	return s.pool
}

const taskColumns = `id, user_id, title, description, due_date, priority, status`

// CreateTask implements TaskRepository.
func (s *PostgresStore) CreateTask(ctx context.Context, task *model.Task) error {
	query := `
		INSERT INTO tasks (id, user_id, title, description, due_date, priority, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	id := ulid.Make().String()
	_, err := s.pool.Exec(ctx, query,
		id,
		task.OwnerID,
		task.Title,
		task.Description,
		dateParam(task.DueDate),
		string(task.Priority),
		string(task.Status),
	)
	if err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}

	task.ID = id
	return nil
}

// ListTasksByOwner implements TaskRepository.
func (s *PostgresStore) ListTasksByOwner(ctx context.Context, ownerID string) ([]*model.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE user_id = $1 ORDER BY id`

	rows, err := s.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	tasks := make([]*model.Task, 0)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tasks: %w", err)
	}

	return tasks, nil
}

// GetTask implements TaskRepository.
func (s *PostgresStore) GetTask(ctx context.Context, id, ownerID string) (*model.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1 AND ($2 = '' OR user_id = $2)`

	task, err := scanTask(s.pool.QueryRow(ctx, query, id, ownerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return task, nil
}

// UpdateTask implements TaskRepository.
func (s *PostgresStore) UpdateTask(ctx context.Context, id string, patch model.TaskPatch, ownerID string) (*model.Task, error) {
	if patch.IsEmpty() {
		return s.GetTask(ctx, id, ownerID)
	}

	query := `
		UPDATE tasks SET
			title       = COALESCE($2::text, title),
			description = COALESCE($3::text, description),
			priority    = COALESCE($4::text, priority),
			status      = COALESCE($5::text, status),
			due_date    = CASE WHEN $6::boolean THEN NULL ELSE COALESCE($7::date, due_date) END,
			updated_at  = NOW()
		WHERE id = $1 AND ($8 = '' OR user_id = $8)
		RETURNING ` + taskColumns

	var priority, status *string
	if patch.Priority != nil {
		p := string(*patch.Priority)
		priority = &p
	}
	if patch.Status != nil {
		st := string(*patch.Status)
		status = &st
	}

	task, err := scanTask(s.pool.QueryRow(ctx, query,
		id,
		patch.Title,
		patch.Description,
		priority,
		status,
		patch.ClearDueDate,
		dateParam(patch.DueDate),
		ownerID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to update task: %w", err)
	}
	return task, nil
}

// DeleteTask implements TaskRepository.
func (s *PostgresStore) DeleteTask(ctx context.Context, id, ownerID string) (*model.Task, error) {
	query := `DELETE FROM tasks WHERE id = $1 AND ($2 = '' OR user_id = $2) RETURNING ` + taskColumns

	task, err := scanTask(s.pool.QueryRow(ctx, query, id, ownerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to delete task: %w", err)
	}
	return task, nil
}

// CreateUser implements UserRepository.
func (s *PostgresStore) CreateUser(ctx context.Context, user *model.User) error {
	query := `
		INSERT INTO users (id, name, email, password_hash)
		VALUES ($1, $2, $3, $4)
	`

	id := ulid.Make().String()
	_, err := s.pool.Exec(ctx, query, id, user.Name, user.Email, user.PasswordHash)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrEmailExists
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	user.ID = id
	return nil
}

// GetUserByID implements UserRepository.
func (s *PostgresStore) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	return s.getUser(ctx, `SELECT id, name, email, password_hash FROM users WHERE id = $1`, id)
}

// GetUserByEmail implements UserRepository.
func (s *PostgresStore) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return s.getUser(ctx, `SELECT id, name, email, password_hash FROM users WHERE email = $1`, email)
}

func (s *PostgresStore) getUser(ctx context.Context, query string, arg string) (*model.User, error) {
	var user model.User
	err := s.pool.QueryRow(ctx, query, arg).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

func scanTask(row pgx.Row) (*model.Task, error) {
	var (
		task     model.Task
		due      *time.Time
		priority string
		status   string
	)

	if err := row.Scan(
		&task.ID,
		&task.OwnerID,
		&task.Title,
		&task.Description,
		&due,
		&priority,
		&status,
	); err != nil {
		return nil, err
	}

	task.Priority = model.Priority(priority)
	task.Status = model.Status(status)
	if due != nil {
		d := model.NewDate(*due)
		task.DueDate = &d
	}
	return &task, nil
}

func dateParam(d *model.Date) *time.Time {
	if d == nil {
		return nil
	}
	t := d.Time
	return &t
}

// isUniqueViolation checks if the error is a PostgreSQL unique constraint violation.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
