package models

import (
	"time"

	"github.com/google/uuid"
)

// User is a campus account. Stored in campus_users table.
// Identity and session management live outside this service; the engine
// only reads user rows for attribution and match results.
type User struct {
	ID         uuid.UUID `json:"id"`
	Email      string    `json:"email"`
	FullName   string    `json:"full_name"`
	Department string    `json:"department"`
	Year       int       `json:"year"`
	CreatedAt  time.Time `json:"created_at"`
}
