// Package model defines domain entities for the application.
package model

import (
	"errors"
	"strings"
)

// Validation errors for task fields.
var (
	ErrTitleRequired   = errors.New("title is required")
	ErrInvalidPriority = errors.New("priority must be one of low, medium, high")
	ErrInvalidStatus   = errors.New("status must be one of pending, completed")
	ErrOwnerRequired   = errors.New("task owner is required")
)

// Priority represents how urgent a task is.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// IsValid checks if the priority is one of the allowed values.
func (p Priority) IsValid() bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}

// ParsePriority trims and lowercases raw. The result still needs IsValid.
func ParsePriority(raw string) Priority {
	return Priority(strings.ToLower(strings.TrimSpace(raw)))
}

// Status represents task completion state.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
)

// IsValid checks if the status is one of the allowed values.
func (s Status) IsValid() bool {
	return s == StatusPending || s == StatusCompleted
}

// ParseStatus trims and lowercases raw. The result still needs IsValid.
func ParseStatus(raw string) Status {
	return Status(strings.ToLower(strings.TrimSpace(raw)))
}

// Task represents a single to-do item owned by one user.
type Task struct {
	ID          string   `json:"id"`
	OwnerID     string   `json:"user"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	DueDate     *Date    `json:"dueDate"`
	Priority    Priority `json:"priority"`
	Status      Status   `json:"status"`
}

// Validate checks the invariants every persisted task must hold.
func (t *Task) Validate() error {
	if t.OwnerID == "" {
		return ErrOwnerRequired
	}
	if strings.TrimSpace(t.Title) == "" {
		return ErrTitleRequired
	}
	if !t.Priority.IsValid() {
		return ErrInvalidPriority
	}
	if !t.Status.IsValid() {
		return ErrInvalidStatus
	}
	return nil
}

// TaskDraft holds the fields needed to create a task.
// Ownership and status are assigned by the service, never by the caller.
type TaskDraft struct {
	Title       string
	Description string
	Priority    Priority
	DueDate     *Date
}

// NewTask builds a pending task owned by ownerID.
// An empty priority defaults to medium.
func (d TaskDraft) NewTask(ownerID string) *Task {
	priority := d.Priority
	if priority == "" {
		priority = PriorityMedium
	}
	return &Task{
		OwnerID:     ownerID,
		Title:       d.Title,
		Description: d.Description,
		DueDate:     d.DueDate,
		Priority:    priority,
		Status:      StatusPending,
	}
}

// TaskPatch is a partial update. Nil fields are left unchanged.
type TaskPatch struct {
	Title        *string
	Description  *string
	Priority     *Priority
	Status       *Status
	DueDate      *Date
	ClearDueDate bool // If true, set due date to nil
}

// IsEmpty reports whether the patch changes nothing.
func (p TaskPatch) IsEmpty() bool {
	return p.Title == nil &&
		p.Description == nil &&
		p.Priority == nil &&
		p.Status == nil &&
		p.DueDate == nil &&
		!p.ClearDueDate
}

// Validate checks the field domains of every set field.
func (p TaskPatch) Validate() error {
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return ErrTitleRequired
	}
	if p.Priority != nil && !p.Priority.IsValid() {
		return ErrInvalidPriority
	}
	if p.Status != nil && !p.Status.IsValid() {
		return ErrInvalidStatus
	}
	return nil
}

// Apply copies the set fields of the patch onto t.
// The owner is never touched.
func (p TaskPatch) Apply(t *Task) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.ClearDueDate {
		t.DueDate = nil
	} else if p.DueDate != nil {
		d := *p.DueDate
		t.DueDate = &d
	}
}
