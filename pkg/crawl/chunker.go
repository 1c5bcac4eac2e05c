package crawl

import (
	"fmt"
	"sort"
	"strings"

	"github.com/campuslife/campus-engine/pkg/textutil"
)

// DefaultChunkSize caps the length of one knowledge entry's content.
const DefaultChunkSize = 2000

// maxKeywords caps the keyword bag per chunk.
const maxKeywords = 20

// minKeywordLen filters short tokens out of the keyword bag.
const minKeywordLen = 3

// SplitChunks splits content at sentence boundaries into chunks of at most
// chunkSize characters: sentences fill a buffer greedily, and the buffer is
// emitted whenever adding the next sentence would overflow it. A single
// sentence longer than chunkSize is hard-split so no chunk ever exceeds the
// limit. The final non-empty buffer is always emitted.
func SplitChunks(content string, chunkSize int) []string {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if len(content) <= chunkSize {
		if strings.TrimSpace(content) == "" {
			return nil
		}
		return []string{content}
	}

	sentences := strings.Split(content, ". ")
	var chunks []string
	var buf strings.Builder

	flush := func() {
		if s := strings.TrimSpace(buf.String()); s != "" {
			chunks = append(chunks, s)
		}
		buf.Reset()
	}

	for i, sentence := range sentences {
		// Restore the separator consumed by the split.
		if i < len(sentences)-1 {
			sentence += ". "
		}
		if buf.Len() > 0 && buf.Len()+len(sentence) > chunkSize {
			flush()
		}
		for len(sentence) > chunkSize {
			flush()
			chunks = append(chunks, strings.TrimSpace(sentence[:chunkSize]))
			sentence = sentence[chunkSize:]
		}
		buf.WriteString(sentence)
	}
	flush()

	return chunks
}

// ChunkTitle returns the entry title for chunk index k (0-based) of total
// chunks: the page title, suffixed with "(Part k)" when the page split
// into more than one chunk.
func ChunkTitle(title string, k, total int) string {
	if total <= 1 {
		return title
	}
	return fmt.Sprintf("%s (Part %d)", title, k+1)
}

// ExtractKeywords computes the keyword bag of a chunk: lowercase word
// tokens, stop-words and short tokens dropped, the 20 most frequent kept.
// Ties are broken by first appearance so the result is deterministic.
func ExtractKeywords(content string) []string {
	counts := make(map[string]int)
	firstSeen := make(map[string]int)

	for i, tok := range textutil.Tokenize(content) {
		if len(tok) <= minKeywordLen || textutil.IsStopWord(tok) {
			continue
		}
		if _, ok := counts[tok]; !ok {
			firstSeen[tok] = i
		}
		counts[tok]++
	}

	keywords := make([]string, 0, len(counts))
	for tok := range counts {
		keywords = append(keywords, tok)
	}
	sort.Slice(keywords, func(i, j int) bool {
		if counts[keywords[i]] != counts[keywords[j]] {
			return counts[keywords[i]] > counts[keywords[j]]
		}
		return firstSeen[keywords[i]] < firstSeen[keywords[j]]
	})

	if len(keywords) > maxKeywords {
		keywords = keywords[:maxKeywords]
	}
	return keywords
}
