package mcp

// In-process tool calls for tests: CallTool invokes handlers directly,
// bypassing the stdio transport.
//
//	server, _ := mcp.NewServer(cfg)
//	resultJSON, err := server.CallTool("extract_declaration", map[string]interface{}{
//	    "file": "src/Worker.java", "target": "stop",
//	})

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// CallTool is a test helper method to simulate MCP tool calls. Error results
// come back as Go errors.
func (s *Server) CallTool(toolName string, params map[string]interface{}) (string, error) {
	ctx := context.Background()

	paramsJSON, err := json.Marshal(params)
	if err != nil {
		return "", fmt.Errorf("failed to marshal params: %w", err)
	}

	req := &mcp.CallToolRequest{
		Params: &mcp.CallToolParamsRaw{
			Name:      toolName,
			Arguments: paramsJSON,
		},
	}

	var result *mcp.CallToolResult

	switch toolName {
	case "extract_declaration":
		result, err = s.handleExtract(ctx, req)
	case "info":
		result, err = s.handleInfo(ctx, req)
	case "version":
		req.Params.Arguments = []byte(`{"tool": "version"}`)
		result, err = s.handleInfo(ctx, req)
	default:
		return "", fmt.Errorf("unknown tool: %s", toolName)
	}

	if err != nil {
		return "", err
	}
	if result == nil || len(result.Content) == 0 {
		return "", nil
	}

	textContent, ok := result.Content[0].(*mcp.TextContent)
	if !ok {
		return "", nil
	}
	if result.IsError {
		var response map[string]interface{}
		if json.Unmarshal([]byte(textContent.Text), &response) == nil {
			if errorMsg, ok := response["error"].(string); ok {
				return textContent.Text, fmt.Errorf("MCP error: %s", errorMsg)
			}
		}
		return textContent.Text, fmt.Errorf("MCP error: %s", textContent.Text)
	}
	return textContent.Text, nil
}
