package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/campuslife/campus-engine/pkg/models"
	"github.com/campuslife/campus-engine/pkg/services"
)

// SearchResult is one scored entry in a knowledge search response.
type SearchResult struct {
	Entry *models.KnowledgeEntry `json:"entry"`
	Score float64                `json:"score"`
}

// SearchResponse for GET /api/knowledge/search
type SearchResponse struct {
	Results []SearchResult `json:"results"`
	Total   int            `json:"total"`
}

// UnansweredListResponse for GET /api/knowledge/unanswered
type UnansweredListResponse struct {
	Questions []*models.UnansweredQuestion `json:"questions"`
	Total     int                          `json:"total"`
}

// AnswerQuestionRequest for POST /api/knowledge/unanswered/{qid}/answer
type AnswerQuestionRequest struct {
	Answer string `json:"answer"`
}

// KnowledgeHandler handles knowledge base HTTP requests: ingest, search,
// and the unanswered-question queue.
type KnowledgeHandler struct {
	ingest    services.IngestService
	assistant services.AssistantService
	retriever services.ContextRetriever
	logger    *zap.Logger
}

// NewKnowledgeHandler creates a new knowledge handler.
func NewKnowledgeHandler(ingest services.IngestService, assistant services.AssistantService, retriever services.ContextRetriever, logger *zap.Logger) *KnowledgeHandler {
	return &KnowledgeHandler{
		ingest:    ingest,
		assistant: assistant,
		retriever: retriever,
		logger:    logger,
	}
}

// RegisterRoutes registers the knowledge handler's routes on the given mux.
func (h *KnowledgeHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/knowledge/crawl", h.Crawl)
	mux.HandleFunc("GET /api/knowledge/search", h.Search)
	mux.HandleFunc("GET /api/knowledge/unanswered", h.ListUnanswered)
	mux.HandleFunc("POST /api/knowledge/unanswered/{qid}/answer", h.AnswerQuestion)
}

// Crawl handles POST /api/knowledge/crawl. The crawl runs synchronously;
// the response carries the ingest report.
func (h *KnowledgeHandler) Crawl(w http.ResponseWriter, r *http.Request) {
	report, err := h.ingest.Run(r.Context())
	if err != nil {
		h.logger.Error("Knowledge ingest failed", zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "crawl_failed", err.Error()); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := WriteJSON(w, http.StatusOK, report); err != nil {
		h.logger.Error("Failed to write crawl response", zap.Error(err))
	}
}

// Search handles GET /api/knowledge/search?q=...
func (h *KnowledgeHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		if err := ErrorResponse(w, http.StatusBadRequest, "missing_query", "q query parameter is required"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			limit = parsed
		}
	}

	hits, err := h.retriever.Search(r.Context(), query, limit)
	if err != nil {
		h.logger.Error("Knowledge search failed", zap.String("query", query), zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "search_failed", err.Error()); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	results := make([]SearchResult, 0, len(hits))
	for _, hit := range hits {
		results = append(results, SearchResult{Entry: hit.Entry, Score: hit.Score})
	}
	if err := WriteJSON(w, http.StatusOK, SearchResponse{Results: results, Total: len(results)}); err != nil {
		h.logger.Error("Failed to write search response", zap.Error(err))
	}
}

// ListUnanswered handles GET /api/knowledge/unanswered
func (h *KnowledgeHandler) ListUnanswered(w http.ResponseWriter, r *http.Request) {
	questions, err := h.assistant.ListUnanswered(r.Context())
	if err != nil {
		h.logger.Error("Failed to list unanswered questions", zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "list_unanswered_failed", err.Error()); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}
	if questions == nil {
		questions = []*models.UnansweredQuestion{}
	}

	if err := WriteJSON(w, http.StatusOK, UnansweredListResponse{Questions: questions, Total: len(questions)}); err != nil {
		h.logger.Error("Failed to write unanswered response", zap.Error(err))
	}
}

// AnswerQuestion handles POST /api/knowledge/unanswered/{qid}/answer
func (h *KnowledgeHandler) AnswerQuestion(w http.ResponseWriter, r *http.Request) {
	questionID, ok := ParseQuestionID(w, r, h.logger)
	if !ok {
		return
	}

	var req AnswerQuestionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Answer) == "" {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "answer is required"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := h.assistant.AnswerQuestion(r.Context(), questionID, req.Answer); err != nil {
		h.logger.Error("Failed to answer question",
			zap.String("question_id", questionID.String()),
			zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "answer_failed", err.Error()); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := WriteJSON(w, http.StatusOK, map[string]string{"status": "answered"}); err != nil {
		h.logger.Error("Failed to write answer response", zap.Error(err))
	}
}
