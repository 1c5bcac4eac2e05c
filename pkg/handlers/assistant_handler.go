package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/campuslife/campus-engine/pkg/models"
	"github.com/campuslife/campus-engine/pkg/services"
)

// AskRequest for POST /api/assistant/ask
type AskRequest struct {
	UserID  uuid.UUID `json:"user_id"`
	Message string    `json:"message"`
}

// HistoryResponse for GET /api/assistant/history/{uid}
type HistoryResponse struct {
	Messages []*models.ChatMessage `json:"messages"`
	Total    int                   `json:"total"`
}

// AssistantHandler handles assistant question/answer HTTP requests.
type AssistantHandler struct {
	assistant services.AssistantService
	logger    *zap.Logger
}

// NewAssistantHandler creates a new assistant handler.
func NewAssistantHandler(assistant services.AssistantService, logger *zap.Logger) *AssistantHandler {
	return &AssistantHandler{assistant: assistant, logger: logger}
}

// RegisterRoutes registers the assistant handler's routes on the given mux.
func (h *AssistantHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/assistant/ask", h.Ask)
	mux.HandleFunc("GET /api/assistant/history/{uid}", h.History)
}

// Ask handles POST /api/assistant/ask
func (h *AssistantHandler) Ask(w http.ResponseWriter, r *http.Request) {
	var req AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}
	if req.UserID == uuid.Nil || strings.TrimSpace(req.Message) == "" {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "user_id and message are required"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	result, err := h.assistant.Ask(r.Context(), req.UserID, req.Message)
	if err != nil {
		h.logger.Error("Failed to answer question",
			zap.String("user_id", req.UserID.String()),
			zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "ask_failed", err.Error()); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := WriteJSON(w, http.StatusOK, result); err != nil {
		h.logger.Error("Failed to write ask response", zap.Error(err))
	}
}

// History handles GET /api/assistant/history/{uid}
func (h *AssistantHandler) History(w http.ResponseWriter, r *http.Request) {
	userID, ok := ParseUserID(w, r, h.logger)
	if !ok {
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			limit = parsed
		}
	}

	messages, err := h.assistant.History(r.Context(), userID, limit)
	if err != nil {
		h.logger.Error("Failed to load chat history",
			zap.String("user_id", userID.String()),
			zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "history_failed", err.Error()); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}
	if messages == nil {
		messages = []*models.ChatMessage{}
	}

	if err := WriteJSON(w, http.StatusOK, HistoryResponse{Messages: messages, Total: len(messages)}); err != nil {
		h.logger.Error("Failed to write history response", zap.Error(err))
	}
}
