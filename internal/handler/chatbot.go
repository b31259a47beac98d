package handler

import (
	"log/slog"
	"net/http"

	"github.com/taskwise/taskwise/internal/handler/dto"
	"github.com/taskwise/taskwise/internal/service"
)

var (
	chatMessages  = routeMessages{invalidMessage: "Invalid input message.", fallback: msgProcessFailed}
	draftMessages = routeMessages{invalidMessage: "Invalid input message. A string message is required.", fallback: msgProcessFailed}
)

// ChatbotHandler serves the unauthenticated chatbot routes.
type ChatbotHandler struct {
	pipeline *service.Pipeline
	logger   *slog.Logger
}

// NewChatbotHandler creates a new ChatbotHandler.
func NewChatbotHandler(pipeline *service.Pipeline, logger *slog.Logger) *ChatbotHandler {
	return &ChatbotHandler{
		pipeline: pipeline,
		logger:   logger.With("component", "handler.chatbot"),
	}
}

// Chat handles POST /api/chatbot.
func (h *ChatbotHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req dto.MessageRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_MESSAGE", chatMessages.invalidMessage)
		return
	}

	reply, err := h.pipeline.Chat(r.Context(), req.Message)
	if err != nil {
		handleServiceError(w, r, h.logger, err, chatMessages)
		return
	}

	writeJSON(w, http.StatusOK, dto.ChatResponse{Reply: reply})
}

// DraftTask handles POST /api/chatbot/task. The task is returned, not stored.
func (h *ChatbotHandler) DraftTask(w http.ResponseWriter, r *http.Request) {
	var req dto.MessageRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_MESSAGE", draftMessages.invalidMessage)
		return
	}

	draft, err := h.pipeline.DraftFromInstruction(r.Context(), req.Message)
	if err != nil {
		handleServiceError(w, r, h.logger, err, draftMessages)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToDraftResponse(draft))
}
