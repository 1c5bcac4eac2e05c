// Package retrieval ranks knowledge entries against free-text queries.
package retrieval

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/campuslife/campus-engine/pkg/models"
	"github.com/campuslife/campus-engine/pkg/textutil"
)

// Scoring weights. These are contractual: reordering results depends on
// them bit-for-bit.
const (
	titleWeight   = 0.40
	contentWeight = 0.35
	seqWeight     = 0.25

	baseBlend    = 0.60
	keywordBlend = 0.40

	// Only this much of an entry participates in token matching.
	contentWindow = 1000
	// Sequence similarity compares short prefixes only.
	seqWindow = 200
)

// DefaultTopK is the result cap when the caller does not give one.
const DefaultTopK = 10

// DefaultThreshold is the minimum score for an entry to be returned.
const DefaultThreshold = 0.25

// Hit is a scored knowledge entry.
type Hit struct {
	Entry *models.KnowledgeEntry `json:"entry"`
	Score float64                `json:"score"`
}

// EntrySource supplies the knowledge entries to rank. The repository
// implements it.
type EntrySource interface {
	ListEntries(ctx context.Context) ([]*models.KnowledgeEntry, error)
}

// Retriever scores knowledge entries against queries with a weighted blend
// of title overlap, content overlap, sequence similarity and keyword
// overlap. Given a stable snapshot it is deterministic; ties keep
// insertion order.
type Retriever struct {
	source    EntrySource
	topK      int
	threshold float64
	logger    *zap.Logger
}

// NewRetriever creates a Retriever. Non-positive topK and threshold fall
// back to the defaults.
func NewRetriever(source EntrySource, topK int, threshold float64, logger *zap.Logger) *Retriever {
	if topK <= 0 {
		topK = DefaultTopK
	}
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Retriever{
		source:    source,
		topK:      topK,
		threshold: threshold,
		logger:    logger.Named("retrieval"),
	}
}

// Search returns the top entries scoring above the threshold against
// query, best first. limit <= 0 means the configured top-K.
func (r *Retriever) Search(ctx context.Context, query string, limit int) ([]Hit, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = r.topK
	}

	entries, err := r.source.ListEntries(ctx)
	if err != nil {
		return nil, fmt.Errorf("list knowledge entries: %w", err)
	}

	queryTokens := textutil.QueryTokens(query)
	queryLower := strings.ToLower(query)

	var hits []Hit
	for _, entry := range entries {
		score := Score(queryTokens, queryLower, entry)
		if score > r.threshold {
			hits = append(hits, Hit{Entry: entry, Score: score})
		}
	}

	// Stable: equal scores keep the snapshot's insertion order.
	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})

	if len(hits) > limit {
		hits = hits[:limit]
	}

	r.logger.Debug("Search completed",
		zap.String("query", query),
		zap.Int("candidates", len(entries)),
		zap.Int("hits", len(hits)))

	return hits, nil
}

// Score computes the relevance of one entry to the query. queryTokens are
// the stop-word-filtered tokens of the query; queryLower is the query
// lowercased.
func Score(queryTokens []string, queryLower string, entry *models.KnowledgeEntry) float64 {
	titleLower := strings.ToLower(entry.Title)
	contentLower := strings.ToLower(entry.Content)

	contentSim := textutil.OverlapRatio(queryTokens,
		textutil.TokenSet(textutil.Truncate(contentLower, contentWindow)))
	titleSim := textutil.OverlapRatio(queryTokens, textutil.TokenSet(titleLower))
	seqSim := textutil.SequenceRatio(
		textutil.Truncate(queryLower, seqWindow),
		textutil.Truncate(contentLower, seqWindow))

	base := titleWeight*titleSim + contentWeight*contentSim + seqWeight*seqSim

	keywords := entry.KeywordList()
	if len(keywords) == 0 {
		return base
	}

	keywordSet := make(map[string]struct{}, len(keywords))
	for _, kw := range keywords {
		keywordSet[strings.ToLower(kw)] = struct{}{}
	}
	overlap := textutil.OverlapRatio(queryTokens, keywordSet)

	return baseBlend*base + keywordBlend*overlap
}
