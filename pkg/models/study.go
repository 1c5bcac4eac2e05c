package models

import (
	"time"

	"github.com/google/uuid"
)

// Course is a taught course identified by its short code (e.g. "CS301").
// Stored in campus_courses table.
type Course struct {
	ID   uuid.UUID `json:"id"`
	Code string    `json:"code"`
	Name string    `json:"name"`
}

// CourseEnrollment links a user to a course for a given academic term.
// Stored in campus_course_enrollments table.
type CourseEnrollment struct {
	UserID   uuid.UUID `json:"user_id"`
	CourseID uuid.UUID `json:"course_id"`
	Year     int       `json:"year"`
	Semester int       `json:"semester"`
	IsActive bool      `json:"is_active"`
}

// TimetableEntry is one weekly class slot on a user's timetable.
// Stored in campus_timetable_entries table. Times are "HH:MM" strings
// which compare correctly when zero-padded; StartTime < EndTime is
// enforced by the schema.
type TimetableEntry struct {
	ID         uuid.UUID `json:"id"`
	UserID     uuid.UUID `json:"user_id"`
	CourseID   uuid.UUID `json:"course_id"`
	DayOfWeek  string    `json:"day_of_week"`
	StartTime  string    `json:"start_time"`
	EndTime    string    `json:"end_time"`
	CourseName string    `json:"course_name"`
	Teacher    string    `json:"teacher"`
	Room       string    `json:"room"`
}

// Overlaps reports whether two slots share a weekday and a non-empty
// time interval.
func (t *TimetableEntry) Overlaps(other *TimetableEntry) bool {
	if t.DayOfWeek != other.DayOfWeek {
		return false
	}
	return t.StartTime < other.EndTime && other.StartTime < t.EndTime
}

// StudyPreference holds a user's study-buddy matching preferences.
// Stored in campus_study_preferences table, one row per user.
type StudyPreference struct {
	UserID             uuid.UUID `json:"user_id"`
	StudyEnvironment   string    `json:"study_environment"`    // quiet, social, library, cafe
	PreferredStudyTime string    `json:"preferred_study_time"` // morning, afternoon, evening, night
	LearningStyle      string    `json:"learning_style"`       // visual, auditory, kinesthetic, reading
	SessionDuration    int       `json:"session_duration"`     // minutes
	GroupSize          string    `json:"group_size"`           // small, medium, large
	CommunicationStyle string    `json:"communication_style"`  // silent, minimal, balanced, collaborative
	PrimaryGoal        string    `json:"primary_goal"`
	UpdatedAt          time.Time `json:"updated_at"`
}
