package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/campuslife/campus-engine/pkg/apperrors"
	"github.com/campuslife/campus-engine/pkg/models"
	"github.com/campuslife/campus-engine/pkg/services"
)

// MatchListResponse for GET /api/study-buddies/{uid}
type MatchListResponse struct {
	Matches []*services.MatchCandidate `json:"matches"`
	Total   int                        `json:"total"`
}

// PreferencesResponse for GET /api/preferences/{uid}
type PreferencesResponse struct {
	HasPreferences bool                    `json:"has_preferences"`
	Preferences    *models.StudyPreference `json:"preferences,omitempty"`
}

// UpdatePreferencesRequest for PUT /api/preferences/{uid}
type UpdatePreferencesRequest struct {
	StudyEnvironment   string `json:"study_environment"`
	PreferredStudyTime string `json:"preferred_study_time"`
	LearningStyle      string `json:"learning_style"`
	SessionDuration    int    `json:"session_duration"`
	GroupSize          string `json:"group_size"`
	CommunicationStyle string `json:"communication_style"`
	PrimaryGoal        string `json:"primary_goal"`
}

// StudyBuddyHandler handles study-buddy matching and preference requests.
type StudyBuddyHandler struct {
	matcher services.MatchService
	logger  *zap.Logger
}

// NewStudyBuddyHandler creates a new study-buddy handler.
func NewStudyBuddyHandler(matcher services.MatchService, logger *zap.Logger) *StudyBuddyHandler {
	return &StudyBuddyHandler{matcher: matcher, logger: logger}
}

// RegisterRoutes registers the study-buddy handler's routes on the given mux.
func (h *StudyBuddyHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/study-buddies/{uid}", h.Match)
	mux.HandleFunc("GET /api/preferences/{uid}", h.GetPreferences)
	mux.HandleFunc("PUT /api/preferences/{uid}", h.UpdatePreferences)
}

// Match handles GET /api/study-buddies/{uid}?course_code=...
func (h *StudyBuddyHandler) Match(w http.ResponseWriter, r *http.Request) {
	userID, ok := ParseUserID(w, r, h.logger)
	if !ok {
		return
	}

	courseCode := r.URL.Query().Get("course_code")
	if courseCode == "" {
		if err := ErrorResponse(w, http.StatusBadRequest, "missing_course_code", "course_code query parameter is required"); err != nil {
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

	matches, err := h.matcher.Match(r.Context(), userID, courseCode, limit)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrPreferencesRequired):
			err = ErrorResponse(w, http.StatusConflict, "preferences_required", "Set study preferences before requesting matches")
		case errors.Is(err, apperrors.ErrCourseNotFound):
			err = ErrorResponse(w, http.StatusNotFound, "course_not_found", "Unknown course code")
		default:
			h.logger.Error("Failed to match study buddies",
				zap.String("user_id", userID.String()),
				zap.String("course_code", courseCode),
				zap.Error(err))
			err = ErrorResponse(w, http.StatusInternalServerError, "match_failed", err.Error())
		}
		if err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}
	if matches == nil {
		matches = []*services.MatchCandidate{}
	}

	if err := WriteJSON(w, http.StatusOK, MatchListResponse{Matches: matches, Total: len(matches)}); err != nil {
		h.logger.Error("Failed to write match response", zap.Error(err))
	}
}

// GetPreferences handles GET /api/preferences/{uid}
func (h *StudyBuddyHandler) GetPreferences(w http.ResponseWriter, r *http.Request) {
	userID, ok := ParseUserID(w, r, h.logger)
	if !ok {
		return
	}

	pref, err := h.matcher.GetPreference(r.Context(), userID)
	if err != nil {
		h.logger.Error("Failed to load preferences",
			zap.String("user_id", userID.String()),
			zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "get_preferences_failed", err.Error()); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	response := PreferencesResponse{HasPreferences: pref != nil, Preferences: pref}
	if err := WriteJSON(w, http.StatusOK, response); err != nil {
		h.logger.Error("Failed to write preferences response", zap.Error(err))
	}
}

// UpdatePreferences handles PUT /api/preferences/{uid}
func (h *StudyBuddyHandler) UpdatePreferences(w http.ResponseWriter, r *http.Request) {
	userID, ok := ParseUserID(w, r, h.logger)
	if !ok {
		return
	}

	var req UpdatePreferencesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	pref := &models.StudyPreference{
		UserID:             userID,
		StudyEnvironment:   req.StudyEnvironment,
		PreferredStudyTime: req.PreferredStudyTime,
		LearningStyle:      req.LearningStyle,
		SessionDuration:    req.SessionDuration,
		GroupSize:          req.GroupSize,
		CommunicationStyle: req.CommunicationStyle,
		PrimaryGoal:        req.PrimaryGoal,
	}

	if err := h.matcher.SavePreference(r.Context(), pref); err != nil {
		h.logger.Error("Failed to save preferences",
			zap.String("user_id", userID.String()),
			zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "save_preferences_failed", err.Error()); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := WriteJSON(w, http.StatusOK, PreferencesResponse{HasPreferences: true, Preferences: pref}); err != nil {
		h.logger.Error("Failed to write preferences response", zap.Error(err))
	}
}
