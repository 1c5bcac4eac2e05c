package retrieval

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/campuslife/campus-engine/pkg/models"
	"github.com/campuslife/campus-engine/pkg/textutil"
)

// stubSource serves a fixed snapshot of entries.
type stubSource struct {
	entries []*models.KnowledgeEntry
	err     error
}

func (s *stubSource) ListEntries(ctx context.Context) ([]*models.KnowledgeEntry, error) {
	return s.entries, s.err
}

func entry(title, content, keywords string) *models.KnowledgeEntry {
	return &models.KnowledgeEntry{
		Title:    title,
		Content:  content,
		Keywords: keywords,
	}
}

func newTestRetriever(entries ...*models.KnowledgeEntry) *Retriever {
	return NewRetriever(&stubSource{entries: entries}, 10, 0.25, zap.NewNop())
}

func TestSearch_VerbatimTitleMatchRanksFirst(t *testing.T) {
	target := entry(
		"Hostel Mess Timings",
		"Hostel mess timings: breakfast 7:30 to 9:30, lunch 12:00 to 14:00, dinner 19:30 to 21:30.",
		"hostel,mess,timings",
	)
	r := newTestRetriever(
		entry("Library Hours", "The central library is open from 9:00 to 23:00 on weekdays.", "library,hours"),
		target,
		entry("Sports Facilities", "The campus has courts for badminton, tennis and basketball.", "sports,courts"),
	)

	hits, err := r.Search(context.Background(), "hostel mess timings", 0)
	require.NoError(t, err)
	require.NotEmpty(t, hits)

	assert.Same(t, target, hits[0].Entry)
	assert.Greater(t, hits[0].Score, 0.65)
}

func TestSearch_ThresholdHolds(t *testing.T) {
	var entries []*models.KnowledgeEntry
	for i := 0; i < 20; i++ {
		entries = append(entries, entry(
			fmt.Sprintf("Notice %d", i),
			fmt.Sprintf("Completely unrelated notice number %d about administrative matters.", i),
			"",
		))
	}
	entries = append(entries, entry("Hostel Mess", "Hostel mess serves food.", "hostel,mess"))

	r := newTestRetriever(entries...)
	hits, err := r.Search(context.Background(), "hostel mess", 0)
	require.NoError(t, err)

	for _, h := range hits {
		assert.Greater(t, h.Score, 0.25, "entry below threshold returned: %s", h.Entry.Title)
	}
}

func TestSearch_TopKCap(t *testing.T) {
	var entries []*models.KnowledgeEntry
	for i := 0; i < 30; i++ {
		entries = append(entries, entry(
			"Hostel Mess Info",
			"Hostel mess information repeated across many entries for ranking.",
			"hostel,mess",
		))
	}

	r := NewRetriever(&stubSource{entries: entries}, 5, 0.25, zap.NewNop())
	hits, err := r.Search(context.Background(), "hostel mess", 0)
	require.NoError(t, err)
	assert.Len(t, hits, 5)
}

func TestSearch_TiesKeepInsertionOrder(t *testing.T) {
	first := entry("Hostel Mess", "Hostel mess content identical.", "hostel,mess")
	second := entry("Hostel Mess", "Hostel mess content identical.", "hostel,mess")

	r := newTestRetriever(first, second)
	hits, err := r.Search(context.Background(), "hostel mess", 0)
	require.NoError(t, err)
	require.Len(t, hits, 2)

	assert.Same(t, first, hits[0].Entry)
	assert.Same(t, second, hits[1].Entry)
}

func TestSearch_EmptyQueryAndSourceError(t *testing.T) {
	r := newTestRetriever()
	hits, err := r.Search(context.Background(), "   ", 0)
	require.NoError(t, err)
	assert.Empty(t, hits)

	bad := NewRetriever(&stubSource{err: fmt.Errorf("connection reset")}, 10, 0.25, zap.NewNop())
	_, err = bad.Search(context.Background(), "hostel", 0)
	assert.Error(t, err)
}

func TestScore_TitleMatchLowerBound(t *testing.T) {
	// When the query appears verbatim in the title, the score is at least
	// the full title weight plus the weighted content and sequence terms.
	e := entry("Hostel Mess Timings", "Some unrelated body text about something else entirely.", "")

	queryTokens := textutil.QueryTokens("hostel mess timings")
	queryLower := "hostel mess timings"

	contentSim := textutil.OverlapRatio(queryTokens,
		textutil.TokenSet(strings.ToLower(e.Content)))
	seqSim := textutil.SequenceRatio(queryLower, strings.ToLower(e.Content))

	got := Score(queryTokens, queryLower, e)
	lower := 0.4*1.0 + 0.35*contentSim + 0.25*seqSim
	assert.GreaterOrEqual(t, got+1e-9, lower)
}

func TestScore_KeywordBlend(t *testing.T) {
	withKeywords := entry("Mess Menu", "The mess menu changes weekly.", "mess,menu,weekly")
	withoutKeywords := entry("Mess Menu", "The mess menu changes weekly.", "")

	queryTokens := textutil.QueryTokens("mess menu")
	base := Score(queryTokens, "mess menu", withoutKeywords)
	blended := Score(queryTokens, "mess menu", withKeywords)

	// Full keyword overlap lifts a partial base score.
	assert.InDelta(t, 0.6*base+0.4*1.0, blended, 1e-9)
}
