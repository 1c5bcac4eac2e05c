package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/campuslife/campus-engine/pkg/database"
	"github.com/campuslife/campus-engine/pkg/models"
)

// KnowledgeRepository provides data access for knowledge base entries.
type KnowledgeRepository interface {
	// Create inserts a single entry.
	Create(ctx context.Context, entry *models.KnowledgeEntry) error

	// CreateBatch inserts multiple entries in one round trip.
	CreateBatch(ctx context.Context, entries []*models.KnowledgeEntry) error

	// ReplaceAll swaps the knowledge base for a new set of entries in one
	// transaction. Entries the database rejects are skipped individually;
	// it returns how many were written and how many were skipped.
	ReplaceAll(ctx context.Context, entries []*models.KnowledgeEntry) (written, skipped int, err error)

	// ListEntries returns all entries in insertion order.
	ListEntries(ctx context.Context) ([]*models.KnowledgeEntry, error)

	// Categories returns the distinct category names in the knowledge base.
	Categories(ctx context.Context) ([]string, error)

	// Count returns the number of entries.
	Count(ctx context.Context) (int, error)

	// DeleteAll removes every entry ahead of a fresh ingest.
	DeleteAll(ctx context.Context) error
}

type knowledgeRepository struct {
	db *database.DB
}

// NewKnowledgeRepository creates a new KnowledgeRepository.
func NewKnowledgeRepository(db *database.DB) KnowledgeRepository {
	return &knowledgeRepository{db: db}
}

var _ KnowledgeRepository = (*knowledgeRepository)(nil)

const insertKnowledgeQuery = `
	INSERT INTO campus_knowledge_entries (id, category, title, content, source_url, keywords, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

func (r *knowledgeRepository) Create(ctx context.Context, entry *models.KnowledgeEntry) error {
	prepareKnowledgeEntry(entry)

	_, err := r.db.Exec(ctx, insertKnowledgeQuery,
		entry.ID, entry.Category, entry.Title, entry.Content,
		entry.SourceURL, entry.Keywords, entry.CreatedAt, entry.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert knowledge entry: %w", err)
	}
	return nil
}

func (r *knowledgeRepository) CreateBatch(ctx context.Context, entries []*models.KnowledgeEntry) error {
	if len(entries) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, entry := range entries {
		prepareKnowledgeEntry(entry)
		batch.Queue(insertKnowledgeQuery,
			entry.ID, entry.Category, entry.Title, entry.Content,
			entry.SourceURL, entry.Keywords, entry.CreatedAt, entry.UpdatedAt,
		)
	}

	br := r.db.SendBatch(ctx, batch)
	defer br.Close()

	for range entries {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("failed to batch insert knowledge entries: %w", err)
		}
	}
	return nil
}

func (r *knowledgeRepository) ReplaceAll(ctx context.Context, entries []*models.KnowledgeEntry) (int, int, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback on defer is best-effort

	if _, err := tx.Exec(ctx, `DELETE FROM campus_knowledge_entries`); err != nil {
		return 0, 0, fmt.Errorf("failed to clear knowledge entries: %w", err)
	}

	var written, skipped int
	for _, entry := range entries {
		prepareKnowledgeEntry(entry)

		// Savepoint per entry so one rejected row does not poison the
		// surrounding transaction.
		sp, err := tx.Begin(ctx)
		if err != nil {
			return 0, 0, fmt.Errorf("failed to create savepoint: %w", err)
		}
		if _, err := sp.Exec(ctx, insertKnowledgeQuery,
			entry.ID, entry.Category, entry.Title, entry.Content,
			entry.SourceURL, entry.Keywords, entry.CreatedAt, entry.UpdatedAt,
		); err != nil {
			_ = sp.Rollback(ctx)
			skipped++
			continue
		}
		if err := sp.Commit(ctx); err != nil {
			return 0, 0, fmt.Errorf("failed to release savepoint: %w", err)
		}
		written++
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, 0, fmt.Errorf("failed to commit knowledge replacement: %w", err)
	}
	return written, skipped, nil
}

func (r *knowledgeRepository) ListEntries(ctx context.Context) ([]*models.KnowledgeEntry, error) {
	query := `
		SELECT id, category, title, content, source_url, keywords, created_at, updated_at
		FROM campus_knowledge_entries
		ORDER BY seq`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list knowledge entries: %w", err)
	}
	defer rows.Close()

	var entries []*models.KnowledgeEntry
	for rows.Next() {
		entry, err := scanKnowledgeEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan knowledge entry: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func (r *knowledgeRepository) Categories(ctx context.Context) ([]string, error) {
	rows, err := r.db.Query(ctx, `SELECT DISTINCT category FROM campus_knowledge_entries ORDER BY category`)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	var categories []string
	for rows.Next() {
		var category string
		if err := rows.Scan(&category); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, category)
	}
	return categories, rows.Err()
}

func (r *knowledgeRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM campus_knowledge_entries`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count knowledge entries: %w", err)
	}
	return count, nil
}

func (r *knowledgeRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM campus_knowledge_entries`); err != nil {
		return fmt.Errorf("failed to delete knowledge entries: %w", err)
	}
	return nil
}

func prepareKnowledgeEntry(entry *models.KnowledgeEntry) {
	now := time.Now()
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = now
	}
	entry.UpdatedAt = now
}

func scanKnowledgeEntry(row pgx.Row) (*models.KnowledgeEntry, error) {
	var entry models.KnowledgeEntry
	err := row.Scan(
		&entry.ID, &entry.Category, &entry.Title, &entry.Content,
		&entry.SourceURL, &entry.Keywords, &entry.CreatedAt, &entry.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &entry, nil
}
