package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/campuslife/campus-engine/pkg/models"
	"github.com/campuslife/campus-engine/pkg/retrieval"
	"github.com/campuslife/campus-engine/pkg/services"
)

type knowledgeMuxDeps struct {
	ingest    *mockIngestService
	assistant *mockAssistantService
	retriever *mockRetriever
}

func newKnowledgeMux() (*http.ServeMux, *knowledgeMuxDeps) {
	deps := &knowledgeMuxDeps{
		ingest:    &mockIngestService{},
		assistant: &mockAssistantService{},
		retriever: &mockRetriever{},
	}
	mux := http.NewServeMux()
	NewKnowledgeHandler(deps.ingest, deps.assistant, deps.retriever, zap.NewNop()).RegisterRoutes(mux)
	return mux, deps
}

func TestCrawl_ReturnsReport(t *testing.T) {
	mux, deps := newKnowledgeMux()
	deps.ingest.RunFunc = func(ctx context.Context) (*services.IngestReport, error) {
		return &services.IngestReport{PagesCrawled: 12, EntriesWritten: 40}, nil
	}

	req := httptest.NewRequest(http.MethodPost, "/api/knowledge/crawl", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var report services.IngestReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, 12, report.PagesCrawled)
	assert.Equal(t, 40, report.EntriesWritten)
}

func TestSearch_ReturnsScoredEntries(t *testing.T) {
	mux, deps := newKnowledgeMux()
	deps.retriever.SearchFunc = func(ctx context.Context, query string, limit int) ([]retrieval.Hit, error) {
		assert.Equal(t, "mess timings", query)
		assert.Equal(t, 5, limit)
		return []retrieval.Hit{
			{Entry: &models.KnowledgeEntry{Title: "Mess Timings"}, Score: 0.71},
		}, nil
	}

	req := httptest.NewRequest(http.MethodGet, "/api/knowledge/search?q=mess+timings&limit=5", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var response SearchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	require.Equal(t, 1, response.Total)
	assert.Equal(t, "Mess Timings", response.Results[0].Entry.Title)
	assert.InDelta(t, 0.71, response.Results[0].Score, 1e-9)
}

func TestSearch_RequiresQuery(t *testing.T) {
	mux, _ := newKnowledgeMux()

	req := httptest.NewRequest(http.MethodGet, "/api/knowledge/search", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListUnanswered(t *testing.T) {
	mux, deps := newKnowledgeMux()
	deps.assistant.ListUnansweredFunc = func(ctx context.Context) ([]*models.UnansweredQuestion, error) {
		return []*models.UnansweredQuestion{
			{ID: uuid.New(), QuestionText: "Where is the lost and found?", AskCount: 3},
		}, nil
	}

	req := httptest.NewRequest(http.MethodGet, "/api/knowledge/unanswered", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var response UnansweredListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	require.Equal(t, 1, response.Total)
	assert.Equal(t, 3, response.Questions[0].AskCount)
}

func TestAnswerQuestion(t *testing.T) {
	mux, deps := newKnowledgeMux()
	questionID := uuid.New()

	var answeredID uuid.UUID
	var answerText string
	deps.assistant.AnswerFunc = func(ctx context.Context, id uuid.UUID, answer string) error {
		answeredID = id
		answerText = answer
		return nil
	}

	body := `{"answer":"Near the security office."}`
	req := httptest.NewRequest(http.MethodPost, "/api/knowledge/unanswered/"+questionID.String()+"/answer", strings.NewReader(body))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, questionID, answeredID)
	assert.Equal(t, "Near the security office.", answerText)
}

func TestAnswerQuestion_RequiresAnswer(t *testing.T) {
	mux, _ := newKnowledgeMux()

	req := httptest.NewRequest(http.MethodPost, "/api/knowledge/unanswered/"+uuid.New().String()+"/answer", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
