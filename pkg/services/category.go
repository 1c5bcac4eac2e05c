package services

import (
	"strings"

	"github.com/campuslife/campus-engine/pkg/textutil"
)

const fallbackCategory = "information"

// DeriveCategory picks a short lowercase category tag for a knowledge
// entry from its title, falling back to the first sentence of the body.
func DeriveCategory(title, content string) string {
	title = strings.TrimSpace(title)

	// "Hostel Rules - IIT Palakkad" style titles carry the topic up front.
	if idx := strings.Index(title, " - "); idx >= 0 {
		head := strings.ToLower(strings.TrimSpace(title[:idx]))
		if len(head) >= 4 && len(head) < 30 {
			return head
		}
	}

	lower := strings.ToLower(title)
	if strings.Contains(lower, "iit palakkad") {
		stripped := strings.ReplaceAll(lower, "iit palakkad", " ")
		if word := firstContentWord(stripped); word != "" {
			return word
		}
	}

	if word := firstContentWord(lower); word != "" {
		return word
	}

	sentence, _, _ := strings.Cut(content, ". ")
	if word := firstContentWord(strings.ToLower(sentence)); word != "" {
		return word
	}

	return fallbackCategory
}

// firstContentWord returns the first token longer than 3 characters that
// is not a stop word.
func firstContentWord(text string) string {
	for _, token := range textutil.Tokenize(text) {
		if len(token) > 3 && !textutil.IsStopWord(token) {
			return token
		}
	}
	return ""
}

// GuessQuestionCategory assigns a category to an unanswered question.
// A category name appearing verbatim in the question wins; otherwise the
// category sharing the most words with the question; otherwise "general".
func GuessQuestionCategory(question string, categories []string) string {
	lower := strings.ToLower(question)
	for _, category := range categories {
		if category != "" && strings.Contains(lower, strings.ToLower(category)) {
			return category
		}
	}

	questionTokens := textutil.TokenSet(lower)
	best := ""
	bestOverlap := 0
	for _, category := range categories {
		overlap := 0
		for _, token := range textutil.Tokenize(strings.ToLower(category)) {
			if _, ok := questionTokens[token]; ok {
				overlap++
			}
		}
		if overlap > bestOverlap {
			best = category
			bestOverlap = overlap
		}
	}
	if best != "" {
		return best
	}
	return "general"
}
