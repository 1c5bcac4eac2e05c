package services

import (
	"context"
	"math"
	"sort"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/campuslife/campus-engine/pkg/apperrors"
	"github.com/campuslife/campus-engine/pkg/models"
	"github.com/campuslife/campus-engine/pkg/repositories"
)

const (
	courseWeight     = 0.4
	scheduleWeight   = 0.3
	preferenceWeight = 0.3

	// durationScale is the session-duration gap, in minutes, at which the
	// duration similarity term bottoms out.
	durationScale = 180.0

	// DefaultMatchLimit caps the candidates returned when no limit is given.
	DefaultMatchLimit = 10
)

// MatchBreakdown exposes the sub-scores behind a match.
type MatchBreakdown struct {
	CourseOverlap        float64 `json:"course_overlap"`
	ScheduleOverlap      float64 `json:"schedule_overlap"`
	PreferenceSimilarity float64 `json:"preference_similarity"`
}

// MatchCandidate is one ranked study-buddy suggestion.
type MatchCandidate struct {
	UserID     uuid.UUID      `json:"user_id"`
	FullName   string         `json:"full_name"`
	Department string         `json:"department"`
	Year       int            `json:"year"`
	MatchScore float64        `json:"match_score"`
	Breakdown  MatchBreakdown `json:"breakdown"`
}

// MatchService ranks study partners for a student in a course.
type MatchService interface {
	// Match returns candidates enrolled in the course, best match first.
	// Returns apperrors.ErrPreferencesRequired when the requester has no
	// study preference row, apperrors.ErrCourseNotFound for an unknown
	// course code.
	Match(ctx context.Context, requesterID uuid.UUID, courseCode string, limit int) ([]*MatchCandidate, error)

	// GetPreference returns a user's study preference, nil when unset.
	GetPreference(ctx context.Context, userID uuid.UUID) (*models.StudyPreference, error)

	// SavePreference creates or replaces a user's study preference.
	SavePreference(ctx context.Context, pref *models.StudyPreference) error
}

type matchService struct {
	study  repositories.StudyRepository
	users  repositories.UserRepository
	logger *zap.Logger
}

// NewMatchService creates a new MatchService.
func NewMatchService(study repositories.StudyRepository, users repositories.UserRepository, logger *zap.Logger) MatchService {
	return &matchService{
		study:  study,
		users:  users,
		logger: logger.Named("matcher"),
	}
}

var _ MatchService = (*matchService)(nil)

func (s *matchService) Match(ctx context.Context, requesterID uuid.UUID, courseCode string, limit int) ([]*MatchCandidate, error) {
	if limit <= 0 {
		limit = DefaultMatchLimit
	}

	requesterPref, err := s.study.GetPreference(ctx, requesterID)
	if err != nil {
		return nil, err
	}
	if requesterPref == nil {
		return nil, apperrors.ErrPreferencesRequired
	}

	course, err := s.study.GetCourseByCode(ctx, courseCode)
	if err != nil {
		return nil, err
	}
	if course == nil {
		return nil, apperrors.ErrCourseNotFound
	}

	candidateIDs, err := s.study.UsersEnrolledIn(ctx, course.ID)
	if err != nil {
		return nil, err
	}

	requesterCourses, err := s.enrolledCourseSet(ctx, requesterID)
	if err != nil {
		return nil, err
	}
	requesterSlots, err := s.study.TimetableByUser(ctx, requesterID)
	if err != nil {
		return nil, err
	}

	var candidates []*MatchCandidate
	for _, candidateID := range candidateIDs {
		if candidateID == requesterID {
			continue
		}

		breakdown, err := s.scoreCandidate(ctx, candidateID, requesterCourses, requesterSlots, requesterPref)
		if err != nil {
			return nil, err
		}

		score := 100 * (courseWeight*breakdown.CourseOverlap +
			scheduleWeight*breakdown.ScheduleOverlap +
			preferenceWeight*breakdown.PreferenceSimilarity)

		candidates = append(candidates, &MatchCandidate{
			UserID:     candidateID,
			MatchScore: score,
			Breakdown:  *breakdown,
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].MatchScore != candidates[j].MatchScore {
			return candidates[i].MatchScore > candidates[j].MatchScore
		}
		return strings.Compare(candidates[i].UserID.String(), candidates[j].UserID.String()) < 0
	})
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}

	if err := s.hydrateUsers(ctx, candidates); err != nil {
		return nil, err
	}
	return candidates, nil
}

func (s *matchService) GetPreference(ctx context.Context, userID uuid.UUID) (*models.StudyPreference, error) {
	return s.study.GetPreference(ctx, userID)
}

func (s *matchService) SavePreference(ctx context.Context, pref *models.StudyPreference) error {
	return s.study.UpsertPreference(ctx, pref)
}

func (s *matchService) scoreCandidate(
	ctx context.Context,
	candidateID uuid.UUID,
	requesterCourses map[uuid.UUID]struct{},
	requesterSlots []*models.TimetableEntry,
	requesterPref *models.StudyPreference,
) (*MatchBreakdown, error) {
	candidateCourses, err := s.enrolledCourseSet(ctx, candidateID)
	if err != nil {
		return nil, err
	}
	candidateSlots, err := s.study.TimetableByUser(ctx, candidateID)
	if err != nil {
		return nil, err
	}
	candidatePref, err := s.study.GetPreference(ctx, candidateID)
	if err != nil {
		return nil, err
	}

	return &MatchBreakdown{
		CourseOverlap:        courseOverlap(requesterCourses, candidateCourses),
		ScheduleOverlap:      scheduleOverlap(requesterSlots, candidateSlots),
		PreferenceSimilarity: preferenceSimilarity(requesterPref, candidatePref),
	}, nil
}

func (s *matchService) enrolledCourseSet(ctx context.Context, userID uuid.UUID) (map[uuid.UUID]struct{}, error) {
	enrollments, err := s.study.ActiveEnrollments(ctx, userID)
	if err != nil {
		return nil, err
	}
	set := make(map[uuid.UUID]struct{}, len(enrollments))
	for _, e := range enrollments {
		set[e.CourseID] = struct{}{}
	}
	return set, nil
}

func (s *matchService) hydrateUsers(ctx context.Context, candidates []*MatchCandidate) error {
	ids := make([]uuid.UUID, 0, len(candidates))
	for _, c := range candidates {
		ids = append(ids, c.UserID)
	}

	users, err := s.users.GetByIDs(ctx, ids)
	if err != nil {
		return err
	}
	for _, c := range candidates {
		if u, ok := users[c.UserID]; ok {
			c.FullName = u.FullName
			c.Department = u.Department
			c.Year = u.Year
		}
	}
	return nil
}

// courseOverlap is the fraction of the requester's active courses the
// candidate shares.
func courseOverlap(requester, candidate map[uuid.UUID]struct{}) float64 {
	if len(requester) == 0 {
		return 0
	}
	shared := 0
	for courseID := range requester {
		if _, ok := candidate[courseID]; ok {
			shared++
		}
	}
	return float64(shared) / float64(len(requester))
}

// scheduleOverlap is the fraction of the requester's class slots that
// collide with at least one of the candidate's slots.
func scheduleOverlap(requester, candidate []*models.TimetableEntry) float64 {
	if len(requester) == 0 || len(candidate) == 0 {
		return 0
	}
	overlapping := 0
	for _, slot := range requester {
		for _, other := range candidate {
			if slot.Overlaps(other) {
				overlapping++
				break
			}
		}
	}
	return float64(overlapping) / float64(len(requester))
}

// preferenceSimilarity averages agreement over the six categorical
// preference fields plus a session-duration closeness term.
func preferenceSimilarity(a, b *models.StudyPreference) float64 {
	if a == nil || b == nil {
		return 0
	}

	pairs := [][2]string{
		{a.StudyEnvironment, b.StudyEnvironment},
		{a.PreferredStudyTime, b.PreferredStudyTime},
		{a.LearningStyle, b.LearningStyle},
		{a.GroupSize, b.GroupSize},
		{a.CommunicationStyle, b.CommunicationStyle},
		{a.PrimaryGoal, b.PrimaryGoal},
	}

	total := 0.0
	for _, pair := range pairs {
		if pair[0] == pair[1] {
			total += 1.0
		}
	}

	gap := math.Abs(float64(a.SessionDuration - b.SessionDuration))
	total += 1.0 - math.Min(1.0, gap/durationScale)

	return total / float64(len(pairs)+1)
}
