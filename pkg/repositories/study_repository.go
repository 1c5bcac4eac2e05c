package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/campuslife/campus-engine/pkg/database"
	"github.com/campuslife/campus-engine/pkg/models"
)

// StudyRepository provides data access for courses, enrollments,
// timetables, and study preferences.
type StudyRepository interface {
	// GetCourseByCode retrieves a course by its short code. Returns nil
	// when absent.
	GetCourseByCode(ctx context.Context, code string) (*models.Course, error)

	// ActiveEnrollments returns a user's active enrollments.
	ActiveEnrollments(ctx context.Context, userID uuid.UUID) ([]*models.CourseEnrollment, error)

	// UsersEnrolledIn returns the IDs of users actively enrolled in a course.
	UsersEnrolledIn(ctx context.Context, courseID uuid.UUID) ([]uuid.UUID, error)

	// TimetableByUser returns a user's weekly class slots.
	TimetableByUser(ctx context.Context, userID uuid.UUID) ([]*models.TimetableEntry, error)

	// GetPreference retrieves a user's study preference row. Returns nil
	// when the user has not set one.
	GetPreference(ctx context.Context, userID uuid.UUID) (*models.StudyPreference, error)

	// UpsertPreference creates or replaces a user's study preference row.
	UpsertPreference(ctx context.Context, pref *models.StudyPreference) error
}

type studyRepository struct {
	db *database.DB
}

// NewStudyRepository creates a new StudyRepository.
func NewStudyRepository(db *database.DB) StudyRepository {
	return &studyRepository{db: db}
}

var _ StudyRepository = (*studyRepository)(nil)

func (r *studyRepository) GetCourseByCode(ctx context.Context, code string) (*models.Course, error) {
	var c models.Course
	err := r.db.QueryRow(ctx,
		`SELECT id, code, name FROM campus_courses WHERE code = $1`, code,
	).Scan(&c.ID, &c.Code, &c.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get course: %w", err)
	}
	return &c, nil
}

func (r *studyRepository) ActiveEnrollments(ctx context.Context, userID uuid.UUID) ([]*models.CourseEnrollment, error) {
	query := `
		SELECT user_id, course_id, year, semester, is_active
		FROM campus_course_enrollments
		WHERE user_id = $1 AND is_active`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list enrollments: %w", err)
	}
	defer rows.Close()

	var enrollments []*models.CourseEnrollment
	for rows.Next() {
		var e models.CourseEnrollment
		if err := rows.Scan(&e.UserID, &e.CourseID, &e.Year, &e.Semester, &e.IsActive); err != nil {
			return nil, fmt.Errorf("failed to scan enrollment: %w", err)
		}
		enrollments = append(enrollments, &e)
	}
	return enrollments, rows.Err()
}

func (r *studyRepository) UsersEnrolledIn(ctx context.Context, courseID uuid.UUID) ([]uuid.UUID, error) {
	query := `
		SELECT user_id
		FROM campus_course_enrollments
		WHERE course_id = $1 AND is_active
		ORDER BY user_id`

	rows, err := r.db.Query(ctx, query, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list enrolled users: %w", err)
	}
	defer rows.Close()

	var userIDs []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan user id: %w", err)
		}
		userIDs = append(userIDs, id)
	}
	return userIDs, rows.Err()
}

func (r *studyRepository) TimetableByUser(ctx context.Context, userID uuid.UUID) ([]*models.TimetableEntry, error) {
	query := `
		SELECT id, user_id, COALESCE(course_id, '00000000-0000-0000-0000-000000000000'),
		       day_of_week, start_time, end_time, course_name, teacher, room
		FROM campus_timetable_entries
		WHERE user_id = $1
		ORDER BY day_of_week, start_time`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list timetable entries: %w", err)
	}
	defer rows.Close()

	var entries []*models.TimetableEntry
	for rows.Next() {
		var e models.TimetableEntry
		err := rows.Scan(&e.ID, &e.UserID, &e.CourseID, &e.DayOfWeek,
			&e.StartTime, &e.EndTime, &e.CourseName, &e.Teacher, &e.Room)
		if err != nil {
			return nil, fmt.Errorf("failed to scan timetable entry: %w", err)
		}
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}

func (r *studyRepository) GetPreference(ctx context.Context, userID uuid.UUID) (*models.StudyPreference, error) {
	query := `
		SELECT user_id, study_environment, preferred_study_time, learning_style,
		       session_duration, group_size, communication_style, primary_goal, updated_at
		FROM campus_study_preferences
		WHERE user_id = $1`

	var p models.StudyPreference
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&p.UserID, &p.StudyEnvironment, &p.PreferredStudyTime, &p.LearningStyle,
		&p.SessionDuration, &p.GroupSize, &p.CommunicationStyle, &p.PrimaryGoal, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get study preference: %w", err)
	}
	return &p, nil
}

func (r *studyRepository) UpsertPreference(ctx context.Context, pref *models.StudyPreference) error {
	pref.UpdatedAt = time.Now()

	query := `
		INSERT INTO campus_study_preferences (
			user_id, study_environment, preferred_study_time, learning_style,
			session_duration, group_size, communication_style, primary_goal, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (user_id) DO UPDATE SET
			study_environment = EXCLUDED.study_environment,
			preferred_study_time = EXCLUDED.preferred_study_time,
			learning_style = EXCLUDED.learning_style,
			session_duration = EXCLUDED.session_duration,
			group_size = EXCLUDED.group_size,
			communication_style = EXCLUDED.communication_style,
			primary_goal = EXCLUDED.primary_goal,
			updated_at = EXCLUDED.updated_at`

	_, err := r.db.Exec(ctx, query,
		pref.UserID, pref.StudyEnvironment, pref.PreferredStudyTime, pref.LearningStyle,
		pref.SessionDuration, pref.GroupSize, pref.CommunicationStyle, pref.PrimaryGoal, pref.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert study preference: %w", err)
	}
	return nil
}
