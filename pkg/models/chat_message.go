package models

import (
	"time"

	"github.com/google/uuid"
)

// ChatMessage is one turn of the assistant conversation.
// Stored in campus_chat_messages table.
// User turns have IsUser=true and no confidence; assistant turns carry
// the confidence score computed for the reply.
type ChatMessage struct {
	ID              uuid.UUID `json:"id"`
	UserID          uuid.UUID `json:"user_id"`
	Message         string    `json:"message"`
	IsUser          bool      `json:"is_user"`
	ConfidenceScore *float64  `json:"confidence_score,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// Confidence labels attached to assistant replies.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
	ConfidenceError  Confidence = "error"
)

// Score maps a confidence label to the score stored with the assistant turn.
func (c Confidence) Score() float64 {
	switch c {
	case ConfidenceHigh:
		return 0.85
	case ConfidenceMedium:
		return 0.65
	default:
		return 0.3
	}
}
