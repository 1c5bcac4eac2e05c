// Package textutil provides the tokenising and similarity primitives shared
// by the crawler's keyword extraction and the knowledge retriever.
package textutil

import (
	"regexp"
	"strings"
)

var wordPattern = regexp.MustCompile(`\w+`)

// stopWords is the fixed English stop-word set used for keyword extraction,
// retrieval scoring and category derivation.
var stopWords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {}, "be": {},
	"been": {}, "but": {}, "by": {}, "can": {}, "could": {}, "did": {},
	"do": {}, "does": {}, "for": {}, "from": {}, "had": {}, "has": {},
	"have": {}, "he": {}, "her": {}, "his": {}, "how": {}, "i": {},
	"if": {}, "in": {}, "into": {}, "is": {}, "it": {}, "its": {},
	"may": {}, "more": {}, "most": {}, "no": {}, "not": {}, "of": {},
	"on": {}, "or": {}, "our": {}, "she": {}, "should": {}, "so": {},
	"some": {}, "such": {}, "than": {}, "that": {}, "the": {}, "their": {},
	"them": {}, "then": {}, "there": {}, "these": {}, "they": {},
	"this": {}, "to": {}, "was": {}, "we": {}, "were": {}, "what": {},
	"when": {}, "where": {}, "which": {}, "who": {}, "will": {},
	"with": {}, "would": {}, "you": {}, "your": {},
}

// Tokenize lowercases s and returns its word tokens.
func Tokenize(s string) []string {
	return wordPattern.FindAllString(strings.ToLower(s), -1)
}

// IsStopWord reports whether the lowercase word w is in the stop-word set.
func IsStopWord(w string) bool {
	_, ok := stopWords[w]
	return ok
}

// QueryTokens returns the lowercase tokens of s with stop-words removed.
func QueryTokens(s string) []string {
	var out []string
	for _, tok := range Tokenize(s) {
		if !IsStopWord(tok) {
			out = append(out, tok)
		}
	}
	return out
}

// TokenSet returns the tokens of s as a membership set.
func TokenSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, tok := range Tokenize(s) {
		set[tok] = struct{}{}
	}
	return set
}

// OverlapRatio returns |tokens ∩ set| / |tokens|, or 0 for an empty token list.
func OverlapRatio(tokens []string, set map[string]struct{}) float64 {
	if len(tokens) == 0 {
		return 0
	}
	matched := 0
	for _, tok := range tokens {
		if _, ok := set[tok]; ok {
			matched++
		}
	}
	return float64(matched) / float64(len(tokens))
}
