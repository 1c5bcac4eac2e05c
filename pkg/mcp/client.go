// Package mcp connects the assistant to an external MCP tool server.
// Tools exposed by the server become callable functions for the agent.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	mcpclient "github.com/mark3labs/mcp-go/client"
	mcpgo "github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"

	"github.com/campuslife/campus-engine/pkg/llm"
)

// ToolClient exposes the tools of a remote MCP server as an
// llm.ToolProvider.
type ToolClient struct {
	client *mcpclient.Client
	logger *zap.Logger
}

// NewToolClient connects to the MCP server at serverURL over streamable
// HTTP and performs the initialize handshake.
func NewToolClient(ctx context.Context, serverURL, version string, logger *zap.Logger) (*ToolClient, error) {
	c, err := mcpclient.NewStreamableHttpClient(serverURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create MCP client: %w", err)
	}

	if err := c.Start(ctx); err != nil {
		return nil, fmt.Errorf("failed to start MCP client: %w", err)
	}

	initReq := mcpgo.InitializeRequest{}
	initReq.Params.ProtocolVersion = mcpgo.LATEST_PROTOCOL_VERSION
	initReq.Params.ClientInfo = mcpgo.Implementation{
		Name:    "campus-engine",
		Version: version,
	}

	initResult, err := c.Initialize(ctx, initReq)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to initialize MCP session: %w", err)
	}

	logger.Info("Connected to MCP tool server",
		zap.String("url", serverURL),
		zap.String("server_name", initResult.ServerInfo.Name),
		zap.String("server_version", initResult.ServerInfo.Version))

	return &ToolClient{
		client: c,
		logger: logger.Named("mcp"),
	}, nil
}

// Tools implements llm.ToolProvider.
func (t *ToolClient) Tools(ctx context.Context) ([]llm.ToolDefinition, error) {
	result, err := t.client.ListTools(ctx, mcpgo.ListToolsRequest{})
	if err != nil {
		return nil, fmt.Errorf("failed to list MCP tools: %w", err)
	}

	defs := make([]llm.ToolDefinition, 0, len(result.Tools))
	for _, tool := range result.Tools {
		params, err := schemaToMap(tool.InputSchema)
		if err != nil {
			t.logger.Warn("Skipping tool with unusable schema",
				zap.String("tool", tool.Name),
				zap.Error(err))
			continue
		}
		defs = append(defs, llm.ToolDefinition{
			Name:        tool.Name,
			Description: tool.Description,
			Parameters:  params,
		})
	}
	return defs, nil
}

// CallTool implements llm.ToolProvider. arguments is a JSON object string
// as produced by the agent.
func (t *ToolClient) CallTool(ctx context.Context, name, arguments string) (string, error) {
	var args map[string]any
	if arguments != "" {
		if err := json.Unmarshal([]byte(arguments), &args); err != nil {
			return "", fmt.Errorf("invalid tool arguments for %s: %w", name, err)
		}
	}

	req := mcpgo.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args

	result, err := t.client.CallTool(ctx, req)
	if err != nil {
		return "", fmt.Errorf("failed to call tool %s: %w", name, err)
	}

	text := joinTextContent(result.Content)
	if result.IsError {
		return "", fmt.Errorf("tool %s reported an error: %s", name, text)
	}
	return text, nil
}

// Close terminates the MCP session.
func (t *ToolClient) Close() error {
	return t.client.Close()
}

func schemaToMap(schema mcpgo.ToolInputSchema) (map[string]any, error) {
	raw, err := json.Marshal(schema)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	return m, nil
}

func joinTextContent(contents []mcpgo.Content) string {
	var parts []string
	for _, content := range contents {
		if tc, ok := mcpgo.AsTextContent(content); ok {
			parts = append(parts, tc.Text)
		}
	}
	return strings.Join(parts, "\n")
}

// Ensure ToolClient implements llm.ToolProvider at compile time.
var _ llm.ToolProvider = (*ToolClient)(nil)
