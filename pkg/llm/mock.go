package llm

import "context"

// MockAgentClient is a configurable mock for testing agent functionality.
// Set the function fields to control behavior in tests.
type MockAgentClient struct {
	// CompleteFunc is called when Complete is invoked.
	// If nil, returns empty string and nil error.
	CompleteFunc func(ctx context.Context, systemMessage, prompt string) (string, error)

	// Model is returned by GetModel. Defaults to "mock-model".
	Model string

	// Call tracking for verification
	CompleteCalls []MockCompleteCall
}

// MockCompleteCall records a call to Complete.
type MockCompleteCall struct {
	SystemMessage string
	Prompt        string
}

// NewMockAgentClient creates a new mock with sensible defaults.
func NewMockAgentClient() *MockAgentClient {
	return &MockAgentClient{
		Model: "mock-model",
	}
}

// Complete implements AgentClient.
func (m *MockAgentClient) Complete(ctx context.Context, systemMessage, prompt string) (string, error) {
	m.CompleteCalls = append(m.CompleteCalls, MockCompleteCall{SystemMessage: systemMessage, Prompt: prompt})
	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, systemMessage, prompt)
	}
	return "", nil
}

// GetModel implements AgentClient.
func (m *MockAgentClient) GetModel() string {
	if m.Model == "" {
		return "mock-model"
	}
	return m.Model
}

// Reset clears call tracking.
func (m *MockAgentClient) Reset() {
	m.CompleteCalls = nil
}

// Ensure MockAgentClient implements AgentClient at compile time.
var _ AgentClient = (*MockAgentClient)(nil)

// MockToolProvider is a configurable mock for testing tool dispatch.
type MockToolProvider struct {
	// ToolsFunc is called when Tools is invoked.
	// If nil, returns nil slice and nil error.
	ToolsFunc func(ctx context.Context) ([]ToolDefinition, error)

	// CallToolFunc is called when CallTool is invoked.
	// If nil, returns empty string and nil error.
	CallToolFunc func(ctx context.Context, name, arguments string) (string, error)

	// Call tracking
	CallToolCalls []MockToolCall
}

// MockToolCall records a call to CallTool.
type MockToolCall struct {
	Name      string
	Arguments string
}

// Tools implements ToolProvider.
func (m *MockToolProvider) Tools(ctx context.Context) ([]ToolDefinition, error) {
	if m.ToolsFunc != nil {
		return m.ToolsFunc(ctx)
	}
	return nil, nil
}

// CallTool implements ToolProvider.
func (m *MockToolProvider) CallTool(ctx context.Context, name, arguments string) (string, error) {
	m.CallToolCalls = append(m.CallToolCalls, MockToolCall{Name: name, Arguments: arguments})
	if m.CallToolFunc != nil {
		return m.CallToolFunc(ctx, name, arguments)
	}
	return "", nil
}

// Ensure MockToolProvider implements ToolProvider at compile time.
var _ ToolProvider = (*MockToolProvider)(nil)
