// Package prompts builds the system and user prompts sent to the
// assistant agent.
package prompts

import (
	"fmt"
	"strings"

	"github.com/campuslife/campus-engine/pkg/retrieval"
	"github.com/campuslife/campus-engine/pkg/textutil"
)

const (
	maxPromptHits    = 5
	maxSnippetLength = 800
)

// AssistantSystemMessage is the persona for every assistant turn.
const AssistantSystemMessage = `You are the campus assistant for IIT Palakkad. You help students with
questions about academics, hostels, mess, placements, sports, medical
services, and campus life in general.

Be concise and factual. When context documents are provided, ground
your answer in them and include any relevant contact emails or phone
numbers. When you need a student's timetable, enrollments, or other
personal data, use the available tools. If you genuinely cannot answer,
say so plainly and suggest whom to contact.`

// BuildGroundedPrompt builds the user prompt for a question that has
// strong knowledge-base matches. Up to five hits are inlined with their
// relevance so the agent can weigh them.
func BuildGroundedPrompt(userID, question string, hits []retrieval.Hit) string {
	var prompt strings.Builder

	fmt.Fprintf(&prompt, "The student asking has user_id %q; pass it to any tool that needs one.\n\n", userID)
	prompt.WriteString("Answer the question using the campus knowledge below. Ground every claim in it and cite contact details that appear in the context.\n\n")
	prompt.WriteString("## Campus Knowledge\n\n")

	n := len(hits)
	if n > maxPromptHits {
		n = maxPromptHits
	}
	for i := 0; i < n; i++ {
		hit := hits[i]
		fmt.Fprintf(&prompt, "### %s\n", hit.Entry.Title)
		fmt.Fprintf(&prompt, "Category: %s | Relevance: %.0f%%\n", hit.Entry.Category, hit.Score*100)
		if hit.Entry.SourceURL != "" {
			fmt.Fprintf(&prompt, "Source: %s\n", hit.Entry.SourceURL)
		}
		snippet := textutil.Truncate(hit.Entry.Content, maxSnippetLength)
		if snippet != hit.Entry.Content {
			snippet += " [truncated]"
		}
		prompt.WriteString(snippet)
		prompt.WriteString("\n\n")
	}

	fmt.Fprintf(&prompt, "## Question\n\n%s\n", question)
	return prompt.String()
}

// BuildGeneralPrompt builds the user prompt for a question with no usable
// knowledge-base match. The agent answers from general knowledge and its
// tools.
func BuildGeneralPrompt(userID, question string) string {
	var prompt strings.Builder

	fmt.Fprintf(&prompt, "The student asking has user_id %q; pass it to any tool that needs one.\n\n", userID)
	prompt.WriteString("No campus knowledge matched this question. Answer from your general knowledge of IIT Palakkad and Indian institutes, and use your tools for any student-specific data. If you are not confident, say so and name whom to contact.\n\n")
	fmt.Fprintf(&prompt, "## Question\n\n%s\n", question)
	return prompt.String()
}
