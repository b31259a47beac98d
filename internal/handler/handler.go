// Package handler provides HTTP request handlers.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/taskwise/taskwise/internal/extract"
	"github.com/taskwise/taskwise/internal/handler/dto"
	"github.com/taskwise/taskwise/internal/llm"
	"github.com/taskwise/taskwise/internal/middleware"
	"github.com/taskwise/taskwise/internal/service"
)

// Response messages shared by several routes.
const (
	msgProcessFailed  = "Failed to process the request."
	msgInvalidLLMJSON = "Invalid JSON format from LLM."
	msgTaskNotFound   = "Task not found."
	msgTaskIDRequired = "Task ID is required."
)

// NotFound handles 404 responses.
func NotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, "NOT_FOUND", "Resource not found")
}

// MethodNotAllowed handles 405 responses.
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed")
}

// routeMessages holds the messages that differ between routes.
type routeMessages struct {
	// invalidMessage answers a missing or non-string message field.
	invalidMessage string
	// fallback answers generation failures and unexpected errors.
	fallback string
}

// handleServiceError maps service errors to HTTP responses.
// Generated-data errors are checked before client validation errors
// because they wrap the same sentinel.
func handleServiceError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error, msgs routeMessages) {
	switch {
	case errors.Is(err, service.ErrTaskIDRequired):
		writeError(w, http.StatusBadRequest, "MISSING_ID", msgTaskIDRequired)
	case errors.Is(err, service.ErrInstructionRequired):
		writeError(w, http.StatusBadRequest, "INVALID_INSTRUCTION", "Update instruction is required as a string.")
	case errors.Is(err, service.ErrInvalidMessage):
		writeError(w, http.StatusBadRequest, "INVALID_MESSAGE", msgs.invalidMessage)
	case errors.Is(err, service.ErrMissingCredentials):
		writeError(w, http.StatusBadRequest, "INVALID_INPUT", "Name, email and password are required")
	case errors.Is(err, service.ErrInvalidGeneratedTask),
		errors.Is(err, extract.ErrNoJSONFound),
		errors.Is(err, extract.ErrMalformedJSON),
		errors.Is(err, extract.ErrMissingRequiredField),
		errors.Is(err, extract.ErrInvalidField):
		writeError(w, http.StatusInternalServerError, "INVALID_LLM_JSON", msgInvalidLLMJSON)
	case errors.Is(err, service.ErrInvalidTask), errors.Is(err, service.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "INVALID_INPUT", err.Error())
	case errors.Is(err, llm.ErrGenerationFailed):
		logger.Error("generation failed",
			"error", err,
			"request_id", middleware.GetRequestID(r.Context()),
		)
		writeError(w, http.StatusInternalServerError, "GENERATION_FAILED", msgs.fallback)
	case errors.Is(err, service.ErrTaskNotFound):
		writeError(w, http.StatusNotFound, "TASK_NOT_FOUND", msgTaskNotFound)
	case errors.Is(err, service.ErrUserExists):
		writeError(w, http.StatusBadRequest, "USER_EXISTS", "User already exists")
	case errors.Is(err, service.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid credentials")
	case errors.Is(err, service.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "USER_NOT_FOUND", "User not found")
	default:
		logger.Error("internal_error",
			"error", err,
			"request_id", middleware.GetRequestID(r.Context()),
		)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", msgs.fallback)
	}
}

// decodeJSON reads a JSON request body into v.
func decodeJSON(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, dto.ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
