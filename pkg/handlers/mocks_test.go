package handlers

import (
	"context"

	"github.com/google/uuid"

	"github.com/campuslife/campus-engine/pkg/models"
	"github.com/campuslife/campus-engine/pkg/retrieval"
	"github.com/campuslife/campus-engine/pkg/services"
)

type mockAssistantService struct {
	AskFunc            func(ctx context.Context, userID uuid.UUID, message string) (*services.AskResult, error)
	HistoryFunc        func(ctx context.Context, userID uuid.UUID, limit int) ([]*models.ChatMessage, error)
	ListUnansweredFunc func(ctx context.Context) ([]*models.UnansweredQuestion, error)
	AnswerFunc         func(ctx context.Context, id uuid.UUID, answer string) error
}

func (m *mockAssistantService) Ask(ctx context.Context, userID uuid.UUID, message string) (*services.AskResult, error) {
	if m.AskFunc != nil {
		return m.AskFunc(ctx, userID, message)
	}
	return &services.AskResult{}, nil
}

func (m *mockAssistantService) History(ctx context.Context, userID uuid.UUID, limit int) ([]*models.ChatMessage, error) {
	if m.HistoryFunc != nil {
		return m.HistoryFunc(ctx, userID, limit)
	}
	return nil, nil
}

func (m *mockAssistantService) ListUnanswered(ctx context.Context) ([]*models.UnansweredQuestion, error) {
	if m.ListUnansweredFunc != nil {
		return m.ListUnansweredFunc(ctx)
	}
	return nil, nil
}

func (m *mockAssistantService) AnswerQuestion(ctx context.Context, id uuid.UUID, answer string) error {
	if m.AnswerFunc != nil {
		return m.AnswerFunc(ctx, id, answer)
	}
	return nil
}

type mockMatchService struct {
	MatchFunc          func(ctx context.Context, requesterID uuid.UUID, courseCode string, limit int) ([]*services.MatchCandidate, error)
	GetPreferenceFunc  func(ctx context.Context, userID uuid.UUID) (*models.StudyPreference, error)
	SavePreferenceFunc func(ctx context.Context, pref *models.StudyPreference) error
}

func (m *mockMatchService) Match(ctx context.Context, requesterID uuid.UUID, courseCode string, limit int) ([]*services.MatchCandidate, error) {
	if m.MatchFunc != nil {
		return m.MatchFunc(ctx, requesterID, courseCode, limit)
	}
	return nil, nil
}

func (m *mockMatchService) GetPreference(ctx context.Context, userID uuid.UUID) (*models.StudyPreference, error) {
	if m.GetPreferenceFunc != nil {
		return m.GetPreferenceFunc(ctx, userID)
	}
	return nil, nil
}

func (m *mockMatchService) SavePreference(ctx context.Context, pref *models.StudyPreference) error {
	if m.SavePreferenceFunc != nil {
		return m.SavePreferenceFunc(ctx, pref)
	}
	return nil
}

type mockIngestService struct {
	RunFunc func(ctx context.Context) (*services.IngestReport, error)
}

func (m *mockIngestService) Run(ctx context.Context) (*services.IngestReport, error) {
	if m.RunFunc != nil {
		return m.RunFunc(ctx)
	}
	return &services.IngestReport{}, nil
}

type mockRetriever struct {
	SearchFunc func(ctx context.Context, query string, limit int) ([]retrieval.Hit, error)
}

func (m *mockRetriever) Search(ctx context.Context, query string, limit int) ([]retrieval.Hit, error) {
	if m.SearchFunc != nil {
		return m.SearchFunc(ctx, query, limit)
	}
	return nil, nil
}
