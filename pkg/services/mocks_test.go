package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/campuslife/campus-engine/pkg/crawl"
	"github.com/campuslife/campus-engine/pkg/models"
	"github.com/campuslife/campus-engine/pkg/retrieval"
)

// Function-field mocks for the repository and collaborator interfaces.
// Unset fields return zero values.

type mockChatRepository struct {
	CreateFunc       func(ctx context.Context, message *models.ChatMessage) error
	RecentByUserFunc func(ctx context.Context, userID uuid.UUID, limit int) ([]*models.ChatMessage, error)

	Created []*models.ChatMessage
}

func (m *mockChatRepository) Create(ctx context.Context, message *models.ChatMessage) error {
	if message.ID == uuid.Nil {
		message.ID = uuid.New()
	}
	m.Created = append(m.Created, message)
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, message)
	}
	return nil
}

func (m *mockChatRepository) RecentByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*models.ChatMessage, error) {
	if m.RecentByUserFunc != nil {
		return m.RecentByUserFunc(ctx, userID, limit)
	}
	return nil, nil
}

type mockUnansweredRepository struct {
	CreateFunc            func(ctx context.Context, question *models.UnansweredQuestion) error
	GetByIDFunc           func(ctx context.Context, id uuid.UUID) (*models.UnansweredQuestion, error)
	FindContainingFunc    func(ctx context.Context, fragment string) (*models.UnansweredQuestion, error)
	IncrementAskCountFunc func(ctx context.Context, id uuid.UUID) error
	ListOpenFunc          func(ctx context.Context) ([]*models.UnansweredQuestion, error)
	AnswerFunc            func(ctx context.Context, id uuid.UUID, answer string) error

	Created     []*models.UnansweredQuestion
	Incremented []uuid.UUID
}

func (m *mockUnansweredRepository) Create(ctx context.Context, question *models.UnansweredQuestion) error {
	m.Created = append(m.Created, question)
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, question)
	}
	return nil
}

func (m *mockUnansweredRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.UnansweredQuestion, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockUnansweredRepository) FindContaining(ctx context.Context, fragment string) (*models.UnansweredQuestion, error) {
	if m.FindContainingFunc != nil {
		return m.FindContainingFunc(ctx, fragment)
	}
	return nil, nil
}

func (m *mockUnansweredRepository) IncrementAskCount(ctx context.Context, id uuid.UUID) error {
	m.Incremented = append(m.Incremented, id)
	if m.IncrementAskCountFunc != nil {
		return m.IncrementAskCountFunc(ctx, id)
	}
	return nil
}

func (m *mockUnansweredRepository) ListOpen(ctx context.Context) ([]*models.UnansweredQuestion, error) {
	if m.ListOpenFunc != nil {
		return m.ListOpenFunc(ctx)
	}
	return nil, nil
}

func (m *mockUnansweredRepository) Answer(ctx context.Context, id uuid.UUID, answer string) error {
	if m.AnswerFunc != nil {
		return m.AnswerFunc(ctx, id, answer)
	}
	return nil
}

type mockKnowledgeRepository struct {
	CreateFunc      func(ctx context.Context, entry *models.KnowledgeEntry) error
	CreateBatchFunc func(ctx context.Context, entries []*models.KnowledgeEntry) error
	ReplaceAllFunc  func(ctx context.Context, entries []*models.KnowledgeEntry) (int, int, error)
	ListEntriesFunc func(ctx context.Context) ([]*models.KnowledgeEntry, error)
	CategoriesFunc  func(ctx context.Context) ([]string, error)
	CountFunc       func(ctx context.Context) (int, error)
	DeleteAllFunc   func(ctx context.Context) error

	Batched    []*models.KnowledgeEntry
	Replaced   []*models.KnowledgeEntry
	Replaces   int
	DeleteAlls int
}

func (m *mockKnowledgeRepository) Create(ctx context.Context, entry *models.KnowledgeEntry) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, entry)
	}
	return nil
}

func (m *mockKnowledgeRepository) CreateBatch(ctx context.Context, entries []*models.KnowledgeEntry) error {
	m.Batched = append(m.Batched, entries...)
	if m.CreateBatchFunc != nil {
		return m.CreateBatchFunc(ctx, entries)
	}
	return nil
}

func (m *mockKnowledgeRepository) ReplaceAll(ctx context.Context, entries []*models.KnowledgeEntry) (int, int, error) {
	m.Replaces++
	m.Replaced = append(m.Replaced, entries...)
	if m.ReplaceAllFunc != nil {
		return m.ReplaceAllFunc(ctx, entries)
	}
	return len(entries), 0, nil
}

func (m *mockKnowledgeRepository) ListEntries(ctx context.Context) ([]*models.KnowledgeEntry, error) {
	if m.ListEntriesFunc != nil {
		return m.ListEntriesFunc(ctx)
	}
	return nil, nil
}

func (m *mockKnowledgeRepository) Categories(ctx context.Context) ([]string, error) {
	if m.CategoriesFunc != nil {
		return m.CategoriesFunc(ctx)
	}
	return nil, nil
}

func (m *mockKnowledgeRepository) Count(ctx context.Context) (int, error) {
	if m.CountFunc != nil {
		return m.CountFunc(ctx)
	}
	return 0, nil
}

func (m *mockKnowledgeRepository) DeleteAll(ctx context.Context) error {
	m.DeleteAlls++
	if m.DeleteAllFunc != nil {
		return m.DeleteAllFunc(ctx)
	}
	return nil
}

type mockUserRepository struct {
	GetByIDFunc  func(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByIDsFunc func(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*models.User, error)
}

func (m *mockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockUserRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*models.User, error) {
	if m.GetByIDsFunc != nil {
		return m.GetByIDsFunc(ctx, ids)
	}
	return map[uuid.UUID]*models.User{}, nil
}

type mockStudyRepository struct {
	GetCourseByCodeFunc   func(ctx context.Context, code string) (*models.Course, error)
	ActiveEnrollmentsFunc func(ctx context.Context, userID uuid.UUID) ([]*models.CourseEnrollment, error)
	UsersEnrolledInFunc   func(ctx context.Context, courseID uuid.UUID) ([]uuid.UUID, error)
	TimetableByUserFunc   func(ctx context.Context, userID uuid.UUID) ([]*models.TimetableEntry, error)
	GetPreferenceFunc     func(ctx context.Context, userID uuid.UUID) (*models.StudyPreference, error)
	UpsertPreferenceFunc  func(ctx context.Context, pref *models.StudyPreference) error
}

func (m *mockStudyRepository) GetCourseByCode(ctx context.Context, code string) (*models.Course, error) {
	if m.GetCourseByCodeFunc != nil {
		return m.GetCourseByCodeFunc(ctx, code)
	}
	return nil, nil
}

func (m *mockStudyRepository) ActiveEnrollments(ctx context.Context, userID uuid.UUID) ([]*models.CourseEnrollment, error) {
	if m.ActiveEnrollmentsFunc != nil {
		return m.ActiveEnrollmentsFunc(ctx, userID)
	}
	return nil, nil
}

func (m *mockStudyRepository) UsersEnrolledIn(ctx context.Context, courseID uuid.UUID) ([]uuid.UUID, error) {
	if m.UsersEnrolledInFunc != nil {
		return m.UsersEnrolledInFunc(ctx, courseID)
	}
	return nil, nil
}

func (m *mockStudyRepository) TimetableByUser(ctx context.Context, userID uuid.UUID) ([]*models.TimetableEntry, error) {
	if m.TimetableByUserFunc != nil {
		return m.TimetableByUserFunc(ctx, userID)
	}
	return nil, nil
}

func (m *mockStudyRepository) GetPreference(ctx context.Context, userID uuid.UUID) (*models.StudyPreference, error) {
	if m.GetPreferenceFunc != nil {
		return m.GetPreferenceFunc(ctx, userID)
	}
	return nil, nil
}

func (m *mockStudyRepository) UpsertPreference(ctx context.Context, pref *models.StudyPreference) error {
	if m.UpsertPreferenceFunc != nil {
		return m.UpsertPreferenceFunc(ctx, pref)
	}
	return nil
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

type mockCrawler struct {
	RunFunc func(ctx context.Context, seed string) (*crawl.Result, error)
}

func (m *mockCrawler) Run(ctx context.Context, seed string) (*crawl.Result, error) {
	if m.RunFunc != nil {
		return m.RunFunc(ctx, seed)
	}
	return &crawl.Result{}, nil
}
