// Package llm provides the OpenAI-compatible agent client used by the
// campus assistant.
package llm

import "context"

// AgentClient is the interface the assistant uses to talk to the LLM
// agent. Use it for dependency injection to enable mocking in tests.
type AgentClient interface {
	// Complete generates a reply for the prompt, executing tool calls
	// through the configured tool provider until the agent produces a
	// final answer.
	Complete(ctx context.Context, systemMessage, prompt string) (string, error)

	// GetModel returns the configured model name.
	GetModel() string
}

// ToolDefinition describes one tool offered to the agent, with JSON
// Schema parameters.
type ToolDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// ToolProvider supplies the tool definitions offered to the agent and
// executes the calls the agent makes. The MCP client implements it.
type ToolProvider interface {
	// Tools lists the tools available to the agent.
	Tools(ctx context.Context) ([]ToolDefinition, error)

	// CallTool executes a named tool with JSON-encoded arguments and
	// returns its textual result.
	CallTool(ctx context.Context, name, arguments string) (string, error)
}

// Ensure Client implements AgentClient at compile time.
var _ AgentClient = (*Client)(nil)
