package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/taskwise/taskwise/internal/auth"
	"github.com/taskwise/taskwise/internal/handler/dto"
	"github.com/taskwise/taskwise/internal/model"
	"github.com/taskwise/taskwise/internal/service"
)

var (
	createMessages = routeMessages{invalidMessage: "Invalid input message. A string is required.", fallback: msgProcessFailed}
	updateMessages = routeMessages{fallback: "Failed to update task."}
	deleteMessages = routeMessages{fallback: "Failed to delete task."}
	listMessages   = routeMessages{fallback: "Failed to fetch tasks."}
)

// TaskHandler handles HTTP requests for task operations.
// Every route requires the auth middleware.
type TaskHandler struct {
	tasks    *service.TaskService
	pipeline *service.Pipeline
	logger   *slog.Logger
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(tasks *service.TaskService, pipeline *service.Pipeline, logger *slog.Logger) *TaskHandler {
	return &TaskHandler{
		tasks:    tasks,
		pipeline: pipeline,
		logger:   logger.With("component", "handler.task"),
	}
}

// Create handles POST /api/tasks.
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.MessageRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_MESSAGE", createMessages.invalidMessage)
		return
	}

	userID := auth.MustUserIDFromContext(r.Context())
	task, err := h.pipeline.CreateFromInstruction(r.Context(), userID, req.Message)
	if err != nil {
		handleServiceError(w, r, h.logger, err, createMessages)
		return
	}

	writeJSON(w, http.StatusCreated, dto.TaskResultResponse{
		Message: "Task created successfully",
		Task:    task,
	})
}

// List handles GET /api/tasks.
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := auth.MustUserIDFromContext(r.Context())

	tasks, err := h.tasks.ListTasks(r.Context(), userID)
	if err != nil {
		handleServiceError(w, r, h.logger, err, listMessages)
		return
	}
	if tasks == nil {
		tasks = []*model.Task{}
	}

	writeJSON(w, http.StatusOK, tasks)
}

// Get handles GET /api/tasks/{id}.
func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := auth.MustUserIDFromContext(r.Context())

	task, err := h.tasks.GetTask(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, r, h.logger, err, listMessages)
		return
	}

	writeJSON(w, http.StatusOK, task)
}

// Update handles PUT /api/tasks/{id}.
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "MISSING_ID", msgTaskIDRequired)
		return
	}

	var req dto.UpdateInstructionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_INSTRUCTION", "Update instruction is required as a string.")
		return
	}

	userID := auth.MustUserIDFromContext(r.Context())
	task, err := h.pipeline.UpdateFromInstruction(r.Context(), userID, id, req.UpdateInstruction)
	if err != nil {
		handleServiceError(w, r, h.logger, err, updateMessages)
		return
	}

	writeJSON(w, http.StatusOK, dto.TaskResultResponse{
		Message: "Task updated successfully",
		Task:    task,
	})
}

// Patch handles PATCH /api/tasks/{id}.
func (h *TaskHandler) Patch(w http.ResponseWriter, r *http.Request) {
	var req dto.PatchTaskRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	patch, err := req.ToPatch()
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_INPUT", err.Error())
		return
	}

	userID := auth.MustUserIDFromContext(r.Context())
	task, err := h.tasks.UpdateTask(r.Context(), userID, chi.URLParam(r, "id"), patch)
	if err != nil {
		handleServiceError(w, r, h.logger, err, updateMessages)
		return
	}

	writeJSON(w, http.StatusOK, dto.TaskResultResponse{
		Message: "Task updated successfully",
		Task:    task,
	})
}

// Delete handles DELETE /api/tasks/{id}.
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := auth.MustUserIDFromContext(r.Context())

	task, err := h.tasks.DeleteTask(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, r, h.logger, err, deleteMessages)
		return
	}

	h.logger.Info("task_deleted", "task_id", task.ID, "user_id", userID)

	writeJSON(w, http.StatusOK, dto.MessageResponse{Message: "Task deleted successfully"})
}

// Activity handles GET /api/tasks/activity.
func (h *TaskHandler) Activity(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if l := r.URL.Query().Get("limit"); l != "" {
		parsed, err := strconv.Atoi(l)
		if err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_LIMIT", "limit must be an integer.")
			return
		}
		limit = parsed
	}

	userID := auth.MustUserIDFromContext(r.Context())
	events, err := h.tasks.Activity(r.Context(), userID, limit)
	if err != nil {
		handleServiceError(w, r, h.logger, err, routeMessages{fallback: "Failed to fetch activity."})
		return
	}

	writeJSON(w, http.StatusOK, events)
}
