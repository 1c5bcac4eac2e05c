package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/campuslife/campus-engine/pkg/database"
	"github.com/campuslife/campus-engine/pkg/models"
)

// UnansweredRepository provides data access for questions the assistant
// could not answer.
type UnansweredRepository interface {
	// Create inserts a new question row.
	Create(ctx context.Context, question *models.UnansweredQuestion) error

	// GetByID retrieves a question by ID. Returns nil when absent.
	GetByID(ctx context.Context, id uuid.UUID) (*models.UnansweredQuestion, error)

	// FindContaining returns the oldest question whose text
	// case-insensitively contains fragment, or nil when none does.
	FindContaining(ctx context.Context, fragment string) (*models.UnansweredQuestion, error)

	// IncrementAskCount bumps ask_count and refreshes last_asked.
	IncrementAskCount(ctx context.Context, id uuid.UUID) error

	// ListOpen returns unresolved questions, most asked first.
	ListOpen(ctx context.Context) ([]*models.UnansweredQuestion, error)

	// Answer records an admin answer and resolves the question.
	Answer(ctx context.Context, id uuid.UUID, answer string) error
}

type unansweredRepository struct {
	db *database.DB
}

// NewUnansweredRepository creates a new UnansweredRepository.
func NewUnansweredRepository(db *database.DB) UnansweredRepository {
	return &unansweredRepository{db: db}
}

var _ UnansweredRepository = (*unansweredRepository)(nil)

const selectUnansweredColumns = `
	SELECT id, user_id, question_text, category, ask_count, status,
	       confidence_score, admin_answer, last_asked, created_at, resolved_at
	FROM campus_unanswered_questions`

func (r *unansweredRepository) Create(ctx context.Context, question *models.UnansweredQuestion) error {
	now := time.Now()
	if question.ID == uuid.Nil {
		question.ID = uuid.New()
	}
	if question.CreatedAt.IsZero() {
		question.CreatedAt = now
	}
	if question.LastAsked.IsZero() {
		question.LastAsked = now
	}
	if question.AskCount == 0 {
		question.AskCount = 1
	}
	if question.Status == "" {
		question.Status = models.StatusUnanswered
	}

	query := `
		INSERT INTO campus_unanswered_questions (
			id, user_id, question_text, category, ask_count, status,
			confidence_score, admin_answer, last_asked, created_at, resolved_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := r.db.Exec(ctx, query,
		question.ID, question.UserID, question.QuestionText, question.Category,
		question.AskCount, string(question.Status), question.ConfidenceScore,
		question.AdminAnswer, question.LastAsked, question.CreatedAt, question.ResolvedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert unanswered question: %w", err)
	}
	return nil
}

func (r *unansweredRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.UnansweredQuestion, error) {
	row := r.db.QueryRow(ctx, selectUnansweredColumns+` WHERE id = $1`, id)
	question, err := scanUnansweredQuestion(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get unanswered question: %w", err)
	}
	return question, nil
}

// likeEscaper neutralises LIKE metacharacters so a fragment only
// matches itself.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (r *unansweredRepository) FindContaining(ctx context.Context, fragment string) (*models.UnansweredQuestion, error) {
	query := selectUnansweredColumns + `
		WHERE question_text ILIKE '%' || $1 || '%'
		ORDER BY created_at
		LIMIT 1`

	row := r.db.QueryRow(ctx, query, likeEscaper.Replace(fragment))
	question, err := scanUnansweredQuestion(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find unanswered question: %w", err)
	}
	return question, nil
}

func (r *unansweredRepository) IncrementAskCount(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE campus_unanswered_questions
		SET ask_count = ask_count + 1, last_asked = now()
		WHERE id = $1`

	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to increment ask count: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("unanswered question %s not found", id)
	}
	return nil
}

func (r *unansweredRepository) ListOpen(ctx context.Context) ([]*models.UnansweredQuestion, error) {
	query := selectUnansweredColumns + `
		WHERE status IN ('unanswered', 'researching')
		ORDER BY ask_count DESC, last_asked DESC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list unanswered questions: %w", err)
	}
	defer rows.Close()

	var questions []*models.UnansweredQuestion
	for rows.Next() {
		question, err := scanUnansweredQuestion(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan unanswered question: %w", err)
		}
		questions = append(questions, question)
	}
	return questions, rows.Err()
}

func (r *unansweredRepository) Answer(ctx context.Context, id uuid.UUID, answer string) error {
	query := `
		UPDATE campus_unanswered_questions
		SET status = 'answered', admin_answer = $2, resolved_at = now()
		WHERE id = $1`

	tag, err := r.db.Exec(ctx, query, id, answer)
	if err != nil {
		return fmt.Errorf("failed to answer question: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("unanswered question %s not found", id)
	}
	return nil
}

func scanUnansweredQuestion(row pgx.Row) (*models.UnansweredQuestion, error) {
	var q models.UnansweredQuestion
	var status string
	err := row.Scan(
		&q.ID, &q.UserID, &q.QuestionText, &q.Category, &q.AskCount, &status,
		&q.ConfidenceScore, &q.AdminAnswer, &q.LastAsked, &q.CreatedAt, &q.ResolvedAt,
	)
	if err != nil {
		return nil, err
	}
	q.Status = models.QuestionStatus(status)
	return &q, nil
}
