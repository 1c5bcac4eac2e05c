package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// KnowledgeEntry is one retrievable unit of the campus knowledge base.
// Stored in campus_knowledge_entries table.
// Entries are immutable after ingest; a fresh crawl replaces them wholesale.
type KnowledgeEntry struct {
	ID        uuid.UUID `json:"id"`
	Category  string    `json:"category"`   // Short lowercase tag derived from title/body
	Title     string    `json:"title"`      // Carries "(Part k)" suffix for chunked pages
	Content   string    `json:"content"`    // Non-empty, at most one chunk (~2000 chars)
	SourceURL string    `json:"source_url"` // URL the content was derived from
	Keywords  string    `json:"keywords"`   // Comma-joined keyword bag
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// KeywordList splits the comma-joined keyword bag into individual keywords.
func (e *KnowledgeEntry) KeywordList() []string {
	if e.Keywords == "" {
		return nil
	}
	var out []string
	for _, kw := range strings.Split(e.Keywords, ",") {
		if kw = strings.TrimSpace(kw); kw != "" {
			out = append(out, kw)
		}
	}
	return out
}
