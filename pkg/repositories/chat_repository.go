package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/campuslife/campus-engine/pkg/database"
	"github.com/campuslife/campus-engine/pkg/models"
)

// ChatRepository provides data access for chat turns.
type ChatRepository interface {
	// Create appends a chat turn and fills in its ID and timestamp.
	Create(ctx context.Context, message *models.ChatMessage) error

	// RecentByUser returns up to limit of the user's most recent turns,
	// oldest first.
	RecentByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*models.ChatMessage, error)
}

type chatRepository struct {
	db *database.DB
}

// NewChatRepository creates a new ChatRepository.
func NewChatRepository(db *database.DB) ChatRepository {
	return &chatRepository{db: db}
}

var _ ChatRepository = (*chatRepository)(nil)

func (r *chatRepository) Create(ctx context.Context, message *models.ChatMessage) error {
	if message.ID == uuid.Nil {
		message.ID = uuid.New()
	}
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO campus_chat_messages (id, user_id, message, is_user, confidence_score, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.db.Exec(ctx, query,
		message.ID, message.UserID, message.Message,
		message.IsUser, message.ConfidenceScore, message.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert chat message: %w", err)
	}
	return nil
}

func (r *chatRepository) RecentByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*models.ChatMessage, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, user_id, message, is_user, confidence_score, created_at
		FROM (
			SELECT id, user_id, message, is_user, confidence_score, created_at
			FROM campus_chat_messages
			WHERE user_id = $1
			ORDER BY created_at DESC, id DESC
			LIMIT $2
		) latest
		ORDER BY created_at, id`

	rows, err := r.db.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list chat messages: %w", err)
	}
	defer rows.Close()

	var messages []*models.ChatMessage
	for rows.Next() {
		var m models.ChatMessage
		if err := rows.Scan(&m.ID, &m.UserID, &m.Message, &m.IsUser, &m.ConfidenceScore, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan chat message: %w", err)
		}
		messages = append(messages, &m)
	}
	return messages, rows.Err()
}
