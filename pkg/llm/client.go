package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/campuslife/campus-engine/pkg/logging"
)

// maxToolRounds bounds the tool-call loop so a confused agent cannot spin
// forever.
const maxToolRounds = 5

// Client provides access to OpenAI-compatible LLM endpoints, optionally
// with tools served by an MCP tool server.
type Client struct {
	client *openai.Client
	model  string
	tools  ToolProvider // nil when no tool server is configured
	logger *zap.Logger
}

// Config holds configuration for creating an LLM client.
type Config struct {
	Endpoint string // Base URL, e.g., "https://api.openai.com/v1"
	Model    string // Model name, e.g., "gpt-4o"
	APIKey   string
}

// NewClient creates a new OpenAI-compatible LLM client. tools may be nil
// when no MCP tool server is configured.
func NewClient(cfg *Config, tools ToolProvider, logger *zap.Logger) (*Client, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("endpoint is required")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("model is required")
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	clientConfig.BaseURL = strings.TrimSuffix(cfg.Endpoint, "/")

	return &Client{
		client: openai.NewClientWithConfig(clientConfig),
		model:  cfg.Model,
		tools:  tools,
		logger: logger.Named("llm"),
	}, nil
}

// Complete generates a chat completion, dispatching any tool calls the
// agent makes through the tool provider until a final answer arrives.
func (c *Client) Complete(ctx context.Context, systemMessage, prompt string) (string, error) {
	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: systemMessage},
		{Role: openai.ChatMessageRoleUser, Content: prompt},
	}

	tools, err := c.openAITools(ctx)
	if err != nil {
		// A broken tool server should not take the assistant down with it.
		c.logger.Warn("Tool listing failed, continuing without tools", zap.Error(err))
		tools = nil
	}

	c.logger.Debug("Agent request",
		zap.String("model", c.model),
		zap.Int("prompt_len", len(prompt)),
		zap.Int("tools", len(tools)))

	start := time.Now()

	for round := 0; round <= maxToolRounds; round++ {
		resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model:    c.model,
			Messages: messages,
			Tools:    tools,
		})
		if err != nil {
			c.logger.Error("Agent request failed",
				zap.Duration("elapsed", time.Since(start)),
				zap.Error(err))
			return "", fmt.Errorf("chat completion: %w", err)
		}
		if len(resp.Choices) == 0 {
			return "", fmt.Errorf("no choices in response")
		}

		msg := resp.Choices[0].Message
		if len(msg.ToolCalls) == 0 {
			c.logger.Info("Agent request completed",
				zap.Int("prompt_tokens", resp.Usage.PromptTokens),
				zap.Int("completion_tokens", resp.Usage.CompletionTokens),
				zap.Duration("elapsed", time.Since(start)))
			return msg.Content, nil
		}

		messages = append(messages, msg)
		for _, call := range msg.ToolCalls {
			result := c.executeToolCall(ctx, call)
			messages = append(messages, openai.ChatCompletionMessage{
				Role:       openai.ChatMessageRoleTool,
				ToolCallID: call.ID,
				Content:    result,
			})
		}
	}

	return "", fmt.Errorf("agent did not finish within %d tool rounds", maxToolRounds)
}

func (c *Client) executeToolCall(ctx context.Context, call openai.ToolCall) string {
	c.logger.Debug("Executing tool call",
		zap.String("tool", call.Function.Name),
		zap.String("arguments", logging.TruncateString(call.Function.Arguments, 200)))

	if c.tools == nil {
		return "tool execution is not available"
	}

	result, err := c.tools.CallTool(ctx, call.Function.Name, call.Function.Arguments)
	if err != nil {
		c.logger.Warn("Tool call failed",
			zap.String("tool", call.Function.Name),
			zap.Error(err))
		return fmt.Sprintf("tool %s failed: %v", call.Function.Name, err)
	}
	return result
}

// openAITools converts the provider's tool definitions into the OpenAI
// function-tool format.
func (c *Client) openAITools(ctx context.Context) ([]openai.Tool, error) {
	if c.tools == nil {
		return nil, nil
	}

	defs, err := c.tools.Tools(ctx)
	if err != nil {
		return nil, err
	}

	tools := make([]openai.Tool, 0, len(defs))
	for _, def := range defs {
		params, err := json.Marshal(def.Parameters)
		if err != nil {
			return nil, fmt.Errorf("marshal parameters for %s: %w", def.Name, err)
		}
		tools = append(tools, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        def.Name,
				Description: def.Description,
				Parameters:  json.RawMessage(params),
			},
		})
	}
	return tools, nil
}

// GetModel returns the configured model name.
func (c *Client) GetModel() string {
	return c.model
}
