package models

import (
	"time"

	"github.com/google/uuid"
)

// QuestionStatus is the lifecycle state of an unanswered question.
type QuestionStatus string

const (
	StatusUnanswered  QuestionStatus = "unanswered"
	StatusResearching QuestionStatus = "researching"
	StatusAnswered    QuestionStatus = "answered"
	StatusDuplicate   QuestionStatus = "duplicate"
)

// IsValid reports whether s is a known question status.
func (s QuestionStatus) IsValid() bool {
	switch s {
	case StatusUnanswered, StatusResearching, StatusAnswered, StatusDuplicate:
		return true
	}
	return false
}

// UnansweredQuestion is a question the assistant could not answer with
// confidence. Stored in campus_unanswered_questions table.
// Near-duplicate questions (shared 50-char prefix, case-insensitive)
// increment AskCount on the existing row instead of inserting a new one.
type UnansweredQuestion struct {
	ID              uuid.UUID      `json:"id"`
	UserID          uuid.UUID      `json:"user_id"`
	QuestionText    string         `json:"question_text"`
	Category        string         `json:"category"`
	AskCount        int            `json:"ask_count"`
	Status          QuestionStatus `json:"status"`
	ConfidenceScore float64        `json:"confidence_score"`
	AdminAnswer     *string        `json:"admin_answer,omitempty"`
	LastAsked       time.Time      `json:"last_asked"`
	CreatedAt       time.Time      `json:"created_at"`
	ResolvedAt      *time.Time     `json:"resolved_at,omitempty"`
}
