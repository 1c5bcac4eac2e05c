package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/campuslife/campus-engine/pkg/crawl"
	"github.com/campuslife/campus-engine/pkg/llm"
	"github.com/campuslife/campus-engine/pkg/logging"
	"github.com/campuslife/campus-engine/pkg/models"
	"github.com/campuslife/campus-engine/pkg/prompts"
	"github.com/campuslife/campus-engine/pkg/repositories"
	"github.com/campuslife/campus-engine/pkg/retrieval"
	"github.com/campuslife/campus-engine/pkg/textutil"
)

const (
	// groundedScoreFloor is the minimum top-hit score at which the agent
	// is given retrieved context instead of answering from general
	// knowledge.
	groundedScoreFloor = 0.4

	// highConfidenceFloor is the top-hit score above which a grounded
	// answer is labelled high confidence.
	highConfidenceFloor = 0.65

	// shortReplyLimit marks replies below this length as uncertain.
	shortReplyLimit = 50

	// dedupePrefixLength is how much of a question is matched against
	// existing unanswered questions before inserting a new row.
	dedupePrefixLength = 50

	maxResponseContacts = 3
	maxResponseSources  = 2

	generalSource = "AI Generated - General Knowledge"

	fallbackReply = "I'm having trouble answering right now. Please try again in a moment, or reach out to the administration office at IIT Palakkad."
)

// uncertaintyPhrases mark a reply as not actually answering the question.
var uncertaintyPhrases = []string{
	"i don't have",
	"i'm not sure",
	"i don't know",
	"i cannot find",
	"no information available",
	"unable to answer",
	"i apologize",
	"i'm not certain",
	"i cannot confirm",
	"please contact",
	"i recommend contacting",
}

// departmentHints maps an email substring to the campus office it most
// likely belongs to.
var departmentHints = []struct {
	Substring  string
	Department string
}{
	{"academic", "Academic Office"},
	{"exam", "Examination"},
	{"hostel", "Hostel"},
	{"placement", "Training & Placement"},
	{"admission", "Admissions"},
	{"medical", "Medical Center"},
	{"sports", "Sports"},
	{"library", "Library"},
	{"office", "General Admin"},
}

// suggestedContacts are offered when an uncertain reply carries no
// contact of its own and the question names a known campus concern.
var suggestedContacts = []struct {
	Keyword    string
	Email      string
	Department string
}{
	{"academic", "academics@iitpkd.ac.in", "Academic Office"},
	{"exam", "exams@iitpkd.ac.in", "Examination"},
	{"hostel", "hostel@iitpkd.ac.in", "Hostel"},
	{"placement", "placement@iitpkd.ac.in", "Training & Placement"},
	{"admission", "admissions@iitpkd.ac.in", "Admissions"},
	{"medical", "medical@iitpkd.ac.in", "Medical Center"},
	{"sports", "sports@iitpkd.ac.in", "Sports"},
	{"library", "library@iitpkd.ac.in", "Library"},
	{"mess", "office@iitpkd.ac.in", "General Admin"},
}

// ContextRetriever finds knowledge entries relevant to a query.
type ContextRetriever interface {
	Search(ctx context.Context, query string, limit int) ([]retrieval.Hit, error)
}

// AskResult is the outcome of one assistant turn.
type AskResult struct {
	ChatID     uuid.UUID         `json:"chat_id"`
	Response   string            `json:"response"`
	Confidence models.Confidence `json:"confidence"`
	Sources    []string          `json:"sources"`
	Contacts   []models.Contact  `json:"contacts"`
	Unanswered bool              `json:"unanswered,omitempty"`
}

// AssistantService answers campus questions, keeps per-user chat
// history, and records the questions it could not answer.
type AssistantService interface {
	// Ask runs one question-and-answer turn for a user.
	Ask(ctx context.Context, userID uuid.UUID, message string) (*AskResult, error)

	// History returns the user's recent chat turns, oldest first.
	History(ctx context.Context, userID uuid.UUID, limit int) ([]*models.ChatMessage, error)

	// ListUnanswered returns the open unanswered questions, most asked first.
	ListUnanswered(ctx context.Context) ([]*models.UnansweredQuestion, error)

	// AnswerQuestion resolves an unanswered question with an admin answer.
	AnswerQuestion(ctx context.Context, id uuid.UUID, answer string) error
}

type assistantService struct {
	chat       repositories.ChatRepository
	unanswered repositories.UnansweredRepository
	knowledge  repositories.KnowledgeRepository
	retriever  ContextRetriever
	agent      llm.AgentClient
	logger     *zap.Logger
}

// NewAssistantService creates a new AssistantService.
func NewAssistantService(
	chat repositories.ChatRepository,
	unanswered repositories.UnansweredRepository,
	knowledge repositories.KnowledgeRepository,
	retriever ContextRetriever,
	agent llm.AgentClient,
	logger *zap.Logger,
) AssistantService {
	return &assistantService{
		chat:       chat,
		unanswered: unanswered,
		knowledge:  knowledge,
		retriever:  retriever,
		agent:      agent,
		logger:     logger.Named("assistant"),
	}
}

var _ AssistantService = (*assistantService)(nil)

func (s *assistantService) Ask(ctx context.Context, userID uuid.UUID, message string) (*AskResult, error) {
	message = strings.TrimSpace(message)

	userTurn := &models.ChatMessage{UserID: userID, Message: message, IsUser: true}
	if err := s.chat.Create(ctx, userTurn); err != nil {
		return nil, err
	}

	hits, err := s.retriever.Search(ctx, message, 0)
	if err != nil {
		// Retrieval losing the DB is unusual; fall through to a general
		// answer rather than failing the turn.
		s.logger.Warn("Retrieval failed, answering ungrounded", zap.Error(err))
		hits = nil
	}

	grounded := len(hits) > 0 && hits[0].Score > groundedScoreFloor

	var prompt string
	confidence := models.ConfidenceMedium
	if grounded {
		prompt = prompts.BuildGroundedPrompt(userID.String(), message, hits)
		if hits[0].Score > highConfidenceFloor {
			confidence = models.ConfidenceHigh
		}
	} else {
		prompt = prompts.BuildGeneralPrompt(userID.String(), message)
	}

	reply, agentErr := s.agent.Complete(ctx, prompts.AssistantSystemMessage, prompt)

	result := &AskResult{}
	if agentErr != nil {
		s.logger.Error("Agent call failed",
			zap.String("error", logging.SanitizeError(agentErr)))
		reply = fallbackReply
		confidence = models.ConfidenceError
	}

	contacts := s.collectContacts(reply, hits)

	unansweredTurn := false
	switch {
	case agentErr != nil:
		unansweredTurn = true
	case isUncertain(reply):
		confidence = models.ConfidenceLow
		unansweredTurn = true
		if len(contacts) == 0 {
			contacts = contactSuggestions(message)
		}
	}
	if unansweredTurn {
		if err := s.recordUnanswered(ctx, userID, message, confidence.Score()); err != nil {
			s.logger.Warn("Failed to record unanswered question", zap.Error(err))
		}
	}

	score := confidence.Score()
	assistantTurn := &models.ChatMessage{
		UserID:          userID,
		Message:         reply,
		IsUser:          false,
		ConfidenceScore: &score,
	}
	if err := s.chat.Create(ctx, assistantTurn); err != nil {
		return nil, err
	}

	if len(contacts) > maxResponseContacts {
		contacts = contacts[:maxResponseContacts]
	}

	result.ChatID = assistantTurn.ID
	result.Response = reply
	result.Confidence = confidence
	result.Contacts = contacts
	result.Sources = sourcesFor(grounded, hits)
	result.Unanswered = unansweredTurn
	return result, nil
}

func (s *assistantService) History(ctx context.Context, userID uuid.UUID, limit int) ([]*models.ChatMessage, error) {
	return s.chat.RecentByUser(ctx, userID, limit)
}

func (s *assistantService) ListUnanswered(ctx context.Context) ([]*models.UnansweredQuestion, error) {
	return s.unanswered.ListOpen(ctx)
}

func (s *assistantService) AnswerQuestion(ctx context.Context, id uuid.UUID, answer string) error {
	return s.unanswered.Answer(ctx, id, answer)
}

// collectContacts merges contacts found in the reply with those in the
// retrieved context, de-duplicated on the identifier and tagged with a
// guessed department.
func (s *assistantService) collectContacts(reply string, hits []retrieval.Hit) []models.Contact {
	contacts := crawl.ExtractContacts(reply)
	for _, hit := range hits {
		contacts = append(contacts, crawl.ExtractContacts(hit.Entry.Content)...)
	}
	contacts = crawl.DedupeContacts(contacts)

	for i := range contacts {
		if contacts[i].Type == models.ContactEmail {
			contacts[i].Department = guessDepartment(contacts[i].Value)
		}
	}
	return contacts
}

func (s *assistantService) recordUnanswered(ctx context.Context, userID uuid.UUID, question string, score float64) error {
	prefix := textutil.Truncate(question, dedupePrefixLength)
	existing, err := s.unanswered.FindContaining(ctx, prefix)
	if err != nil {
		return err
	}
	if existing != nil {
		return s.unanswered.IncrementAskCount(ctx, existing.ID)
	}

	categories, err := s.knowledge.Categories(ctx)
	if err != nil {
		s.logger.Warn("Failed to load categories for question tagging", zap.Error(err))
		categories = nil
	}

	return s.unanswered.Create(ctx, &models.UnansweredQuestion{
		UserID:          userID,
		QuestionText:    question,
		Category:        GuessQuestionCategory(question, categories),
		ConfidenceScore: score,
	})
}

func isUncertain(reply string) bool {
	if len(reply) < shortReplyLimit {
		return true
	}
	lower := strings.ToLower(reply)
	for _, phrase := range uncertaintyPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

func guessDepartment(email string) string {
	lower := strings.ToLower(email)
	for _, hint := range departmentHints {
		if strings.Contains(lower, hint.Substring) {
			return hint.Department
		}
	}
	return "IIT Palakkad"
}

func contactSuggestions(question string) []models.Contact {
	lower := strings.ToLower(question)
	var contacts []models.Contact
	for _, suggestion := range suggestedContacts {
		if strings.Contains(lower, suggestion.Keyword) {
			contacts = append(contacts, models.Contact{
				Type:       models.ContactEmail,
				Value:      suggestion.Email,
				Department: suggestion.Department,
			})
		}
	}
	return contacts
}

func sourcesFor(grounded bool, hits []retrieval.Hit) []string {
	if !grounded {
		return []string{generalSource}
	}

	var sources []string
	seen := make(map[string]struct{})
	for _, hit := range hits {
		url := hit.Entry.SourceURL
		if url == "" {
			continue
		}
		if _, dup := seen[url]; dup {
			continue
		}
		seen[url] = struct{}{}
		sources = append(sources, url)
		if len(sources) == maxResponseSources {
			break
		}
	}
	return sources
}
