package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/campuslife/campus-engine/pkg/llm"
	"github.com/campuslife/campus-engine/pkg/models"
	"github.com/campuslife/campus-engine/pkg/retrieval"
)

type assistantFixture struct {
	chat       *mockChatRepository
	unanswered *mockUnansweredRepository
	knowledge  *mockKnowledgeRepository
	retriever  *mockRetriever
	agent      *llm.MockAgentClient
	service    AssistantService
}

func newAssistantFixture() *assistantFixture {
	f := &assistantFixture{
		chat:       &mockChatRepository{},
		unanswered: &mockUnansweredRepository{},
		knowledge:  &mockKnowledgeRepository{},
		retriever:  &mockRetriever{},
		agent:      llm.NewMockAgentClient(),
	}
	f.service = NewAssistantService(f.chat, f.unanswered, f.knowledge, f.retriever, f.agent, zap.NewNop())
	return f
}

func hitWith(title, url, content string, score float64) retrieval.Hit {
	return retrieval.Hit{
		Entry: &models.KnowledgeEntry{
			Title:     title,
			Category:  "hostel",
			SourceURL: url,
			Content:   content,
		},
		Score: score,
	}
}

const confidentReply = "The hostel office is open from 9 AM to 5 PM on weekdays. You can walk in with your ID card."

func TestAsk_GroundedHighConfidence(t *testing.T) {
	f := newAssistantFixture()
	userID := uuid.New()

	f.retriever.SearchFunc = func(ctx context.Context, query string, limit int) ([]retrieval.Hit, error) {
		return []retrieval.Hit{
			hitWith("Hostel Office", "https://iitpkd.ac.in/hostel", "Reach the warden at hostel@iitpkd.ac.in for room issues.", 0.72),
		}, nil
	}
	f.agent.CompleteFunc = func(ctx context.Context, systemMessage, prompt string) (string, error) {
		return confidentReply, nil
	}

	result, err := f.service.Ask(context.Background(), userID, "When is the hostel office open?")
	require.NoError(t, err)

	assert.Equal(t, models.ConfidenceHigh, result.Confidence)
	assert.Equal(t, confidentReply, result.Response)
	assert.Equal(t, []string{"https://iitpkd.ac.in/hostel"}, result.Sources)
	assert.False(t, result.Unanswered)

	// The agent saw the retrieved context.
	require.Len(t, f.agent.CompleteCalls, 1)
	assert.Contains(t, f.agent.CompleteCalls[0].Prompt, "Hostel Office")

	// Contacts from the hit content, tagged by email substring.
	require.Len(t, result.Contacts, 1)
	assert.Equal(t, "hostel@iitpkd.ac.in", result.Contacts[0].Value)
	assert.Equal(t, "Hostel", result.Contacts[0].Department)

	// Two chat turns: the question, then the scored reply.
	require.Len(t, f.chat.Created, 2)
	assert.True(t, f.chat.Created[0].IsUser)
	assert.Nil(t, f.chat.Created[0].ConfidenceScore)
	assert.False(t, f.chat.Created[1].IsUser)
	require.NotNil(t, f.chat.Created[1].ConfidenceScore)
	assert.InDelta(t, 0.85, *f.chat.Created[1].ConfidenceScore, 1e-9)
	assert.Equal(t, f.chat.Created[1].ID, result.ChatID)
}

func TestAsk_GroundedMediumConfidence(t *testing.T) {
	f := newAssistantFixture()
	f.retriever.SearchFunc = func(ctx context.Context, query string, limit int) ([]retrieval.Hit, error) {
		return []retrieval.Hit{hitWith("Mess Menu", "https://iitpkd.ac.in/mess", "Lunch at noon.", 0.5)}, nil
	}
	f.agent.CompleteFunc = func(ctx context.Context, systemMessage, prompt string) (string, error) {
		return confidentReply, nil
	}

	result, err := f.service.Ask(context.Background(), uuid.New(), "lunch timing?")
	require.NoError(t, err)
	assert.Equal(t, models.ConfidenceMedium, result.Confidence)
}

func TestAsk_UngroundedUsesGeneralPrompt(t *testing.T) {
	f := newAssistantFixture()
	f.agent.CompleteFunc = func(ctx context.Context, systemMessage, prompt string) (string, error) {
		return confidentReply, nil
	}

	result, err := f.service.Ask(context.Background(), uuid.New(), "Tell me about the campus")
	require.NoError(t, err)

	assert.Equal(t, models.ConfidenceMedium, result.Confidence)
	assert.Equal(t, []string{generalSource}, result.Sources)
	require.Len(t, f.agent.CompleteCalls, 1)
	assert.Contains(t, f.agent.CompleteCalls[0].Prompt, "No campus knowledge matched")
}

func TestAsk_WeakHitsAnswerUngrounded(t *testing.T) {
	f := newAssistantFixture()
	f.retriever.SearchFunc = func(ctx context.Context, query string, limit int) ([]retrieval.Hit, error) {
		return []retrieval.Hit{hitWith("Something", "https://iitpkd.ac.in/x", "vaguely related", 0.3)}, nil
	}
	f.agent.CompleteFunc = func(ctx context.Context, systemMessage, prompt string) (string, error) {
		return confidentReply, nil
	}

	result, err := f.service.Ask(context.Background(), uuid.New(), "q")
	require.NoError(t, err)
	assert.Equal(t, []string{generalSource}, result.Sources)
}

func TestAsk_UncertainReplyRecordsQuestion(t *testing.T) {
	f := newAssistantFixture()
	userID := uuid.New()

	f.knowledge.CategoriesFunc = func(ctx context.Context) ([]string, error) {
		return []string{"academics", "hostel", "mess"}, nil
	}
	f.agent.CompleteFunc = func(ctx context.Context, systemMessage, prompt string) (string, error) {
		return "I don't have information about hostel laundry schedules in my current knowledge.", nil
	}

	result, err := f.service.Ask(context.Background(), userID, "What is the hostel laundry schedule?")
	require.NoError(t, err)

	assert.Equal(t, models.ConfidenceLow, result.Confidence)
	assert.True(t, result.Unanswered)

	require.Len(t, f.unanswered.Created, 1)
	question := f.unanswered.Created[0]
	assert.Equal(t, userID, question.UserID)
	assert.Equal(t, "What is the hostel laundry schedule?", question.QuestionText)
	assert.Equal(t, "hostel", question.Category)
	assert.InDelta(t, 0.3, question.ConfidenceScore, 1e-9)

	// No contact in the reply, so the hostel office is suggested.
	require.NotEmpty(t, result.Contacts)
	assert.Equal(t, "hostel@iitpkd.ac.in", result.Contacts[0].Value)
}

func TestAsk_ShortReplyIsUncertain(t *testing.T) {
	f := newAssistantFixture()
	f.agent.CompleteFunc = func(ctx context.Context, systemMessage, prompt string) (string, error) {
		return "Yes.", nil
	}

	result, err := f.service.Ask(context.Background(), uuid.New(), "Is there a gym?")
	require.NoError(t, err)
	assert.Equal(t, models.ConfidenceLow, result.Confidence)
	assert.True(t, result.Unanswered)
}

func TestAsk_RepeatQuestionIncrementsAskCount(t *testing.T) {
	f := newAssistantFixture()
	existingID := uuid.New()

	f.unanswered.FindContainingFunc = func(ctx context.Context, fragment string) (*models.UnansweredQuestion, error) {
		assert.Equal(t, "What is the hostel laundry schedule?", fragment)
		return &models.UnansweredQuestion{ID: existingID, AskCount: 1}, nil
	}
	f.agent.CompleteFunc = func(ctx context.Context, systemMessage, prompt string) (string, error) {
		return "I'm not sure about the laundry schedule, it is not in my current campus knowledge.", nil
	}

	_, err := f.service.Ask(context.Background(), uuid.New(), "What is the hostel laundry schedule?")
	require.NoError(t, err)

	assert.Empty(t, f.unanswered.Created)
	assert.Equal(t, []uuid.UUID{existingID}, f.unanswered.Incremented)
}

func TestAsk_DedupeMatchesOnPrefix(t *testing.T) {
	f := newAssistantFixture()
	long := strings.Repeat("x", 80)

	var fragment string
	f.unanswered.FindContainingFunc = func(ctx context.Context, frag string) (*models.UnansweredQuestion, error) {
		fragment = frag
		return nil, nil
	}
	f.agent.CompleteFunc = func(ctx context.Context, systemMessage, prompt string) (string, error) {
		return "I don't know anything matching that question in my campus knowledge base, sorry.", nil
	}

	_, err := f.service.Ask(context.Background(), uuid.New(), long)
	require.NoError(t, err)
	assert.Len(t, fragment, dedupePrefixLength)
}

func TestAsk_AgentFailureFallsBack(t *testing.T) {
	f := newAssistantFixture()
	f.agent.CompleteFunc = func(ctx context.Context, systemMessage, prompt string) (string, error) {
		return "", errors.New("upstream 500")
	}

	result, err := f.service.Ask(context.Background(), uuid.New(), "anything")
	require.NoError(t, err)

	assert.Equal(t, models.ConfidenceError, result.Confidence)
	assert.Equal(t, fallbackReply, result.Response)
	assert.True(t, result.Unanswered)

	require.Len(t, f.unanswered.Created, 1)
	assert.Equal(t, "anything", f.unanswered.Created[0].QuestionText)
	assert.InDelta(t, 0.3, f.unanswered.Created[0].ConfidenceScore, 1e-9)

	require.Len(t, f.chat.Created, 2)
	require.NotNil(t, f.chat.Created[1].ConfidenceScore)
	assert.InDelta(t, 0.3, *f.chat.Created[1].ConfidenceScore, 1e-9)
}

func TestAsk_ContactsCappedAtThree(t *testing.T) {
	f := newAssistantFixture()
	f.agent.CompleteFunc = func(ctx context.Context, systemMessage, prompt string) (string, error) {
		return "Reach academics@iitpkd.ac.in, exams@iitpkd.ac.in, library@iitpkd.ac.in or sports@iitpkd.ac.in for help with anything on campus.", nil
	}

	result, err := f.service.Ask(context.Background(), uuid.New(), "who do i contact")
	require.NoError(t, err)
	assert.Len(t, result.Contacts, 3)
}

func TestGuessDepartment(t *testing.T) {
	assert.Equal(t, "Academic Office", guessDepartment("academics@iitpkd.ac.in"))
	assert.Equal(t, "Examination", guessDepartment("exam-cell@iitpkd.ac.in"))
	assert.Equal(t, "IIT Palakkad", guessDepartment("random@iitpkd.ac.in"))
}

func TestIsUncertain(t *testing.T) {
	assert.True(t, isUncertain("Short."))
	assert.True(t, isUncertain("Unfortunately I cannot confirm whether the pool is open on public holidays this year."))
	assert.False(t, isUncertain(confidentReply))
}
