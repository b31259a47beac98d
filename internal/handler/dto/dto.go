// Package dto provides Data Transfer Objects for API requests and responses.
package dto

import (
	"github.com/taskwise/taskwise/internal/model"
)

// ErrorResponse represents an API error.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// MessageRequest carries a natural-language message.
type MessageRequest struct {
	Message string `json:"message"`
}

// UpdateInstructionRequest is the body of an instruction-driven task update.
type UpdateInstructionRequest struct {
	UpdateInstruction string `json:"updateInstruction"`
}

// PatchTaskRequest is the body of a direct field update.
// Omitted fields are left unchanged.
type PatchTaskRequest struct {
	Title        *string `json:"title,omitempty"`
	Description  *string `json:"description,omitempty"`
	Priority     *string `json:"priority,omitempty"`
	Status       *string `json:"status,omitempty"`
	DueDate      *string `json:"dueDate,omitempty"`
	ClearDueDate bool    `json:"clearDueDate,omitempty"`
}

// ToPatch converts the request into a model.TaskPatch.
func (r PatchTaskRequest) ToPatch() (model.TaskPatch, error) {
	patch := model.TaskPatch{
		Title:        r.Title,
		Description:  r.Description,
		ClearDueDate: r.ClearDueDate,
	}
	if r.Priority != nil {
		p := model.ParsePriority(*r.Priority)
		patch.Priority = &p
	}
	if r.Status != nil {
		s := model.ParseStatus(*r.Status)
		patch.Status = &s
	}
	if r.DueDate != nil && !r.ClearDueDate {
		due, err := model.ParseDate(*r.DueDate)
		if err != nil {
			return model.TaskPatch{}, err
		}
		patch.DueDate = &due
	}
	return patch, nil
}

// TaskResultResponse wraps a task with a confirmation message.
type TaskResultResponse struct {
	Message string      `json:"message"`
	Task    *model.Task `json:"task"`
}

// MessageResponse is a bare confirmation.
type MessageResponse struct {
	Message string `json:"message"`
}

// DraftTask is a generated task that was not stored.
type DraftTask struct {
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Priority    model.Priority `json:"priority"`
	DueDate     *model.Date    `json:"dueDate"`
}

// DraftResponse wraps a draft task.
type DraftResponse struct {
	Task DraftTask `json:"task"`
}

// ToDraftResponse converts a model.TaskDraft to its response shape.
func ToDraftResponse(d *model.TaskDraft) DraftResponse {
	return DraftResponse{Task: DraftTask{
		Title:       d.Title,
		Description: d.Description,
		Priority:    d.Priority,
		DueDate:     d.DueDate,
	}}
}

// ChatResponse is the free-form chatbot reply.
type ChatResponse struct {
	Reply string `json:"reply"`
}

// RegisterRequest is the body of POST /api/auth/register.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenResponse carries a session token.
type TokenResponse struct {
	Token string `json:"token"`
}
