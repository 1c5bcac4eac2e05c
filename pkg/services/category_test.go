package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeriveCategory(t *testing.T) {
	tests := []struct {
		name    string
		title   string
		content string
		want    string
	}{
		{
			name:  "dash separated title",
			title: "Hostel Life - IIT Palakkad",
			want:  "hostel life",
		},
		{
			name:  "dash head too short falls through",
			title: "FAQ - IIT Palakkad",
			want:  "palakkad",
		},
		{
			name:  "institute name stripped",
			title: "IIT Palakkad Placements",
			want:  "placements",
		},
		{
			name:  "first content word of title",
			title: "The Sports Complex",
			want:  "sports",
		},
		{
			name:    "falls back to content",
			title:   "",
			content: "Mess timings are posted weekly. Check the notice board.",
			want:    "mess",
		},
		{
			name:    "nothing usable",
			title:   "a an the",
			content: "it is",
			want:    "information",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveCategory(tt.title, tt.content))
		})
	}
}

func TestGuessQuestionCategory(t *testing.T) {
	categories := []string{"academics", "hostel life", "placements"}

	// Verbatim category name in the question wins.
	assert.Equal(t, "placements", GuessQuestionCategory("How do placements work here?", categories))

	// Otherwise the category sharing the most words.
	assert.Equal(t, "hostel life", GuessQuestionCategory("Is life in the hostel strict?", categories))

	// Nothing matches.
	assert.Equal(t, "general", GuessQuestionCategory("Where can I park my cycle?", categories))
	assert.Equal(t, "general", GuessQuestionCategory("anything", nil))
}
