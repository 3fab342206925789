package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// CallTool invokes a tool handler in-process, bypassing the stdio transport. It returns
// the text content and whether the result was flagged as an error.
func (s *Server) CallTool(toolName string, params map[string]interface{}) (string, bool, error) {
	ctx := context.Background()

	paramsJSON, err := json.Marshal(params)
	if err != nil {
		return "", false, fmt.Errorf("failed to marshal params: %w", err)
	}

	req := &mcp.CallToolRequest{
		Params: &mcp.CallToolParamsRaw{
			Name:      toolName,
			Arguments: paramsJSON,
		},
	}

	var result *mcp.CallToolResult
	switch toolName {
	case "module_at_cursor":
		result, err = s.handleModuleAtCursor(ctx, req)
	case "quick_open":
		result, err = s.handleQuickOpen(ctx, req)
	case "info":
		result, err = s.handleInfo(ctx, req)
	default:
		return "", false, fmt.Errorf("unknown tool: %s", toolName)
	}
	if err != nil {
		return "", false, err
	}
	if result == nil || len(result.Content) == 0 {
		return "", false, fmt.Errorf("tool %s returned no content", toolName)
	}

	text, ok := result.Content[0].(*mcp.TextContent)
	if !ok {
		return "", false, fmt.Errorf("tool %s returned non-text content", toolName)
	}
	return text.Text, result.IsError, nil
}
