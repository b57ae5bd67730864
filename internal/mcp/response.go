package mcp

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	snerrors "github.com/standardbeagle/snip/internal/errors"
	"github.com/standardbeagle/snip/internal/parser"
)

// createJSONResponse creates a standardized JSON response for MCP tools
func createJSONResponse(data interface{}) (*mcp.CallToolResult, error) {
	content, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal response data: %v", err)
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(content)},
		},
	}, nil
}

// createErrorResponse creates a standardized error response for MCP tools
func createErrorResponse(operation string, err error) (*mcp.CallToolResult, error) {
	return createSmartErrorResponse(operation, err, nil)
}

// createSmartErrorResponse creates an error response with suggestions based
// on the error type. Tool errors go in the result with IsError set, not as
// protocol errors, so the client model can see and correct them.
func createSmartErrorResponse(operation string, err error, context map[string]interface{}) (*mcp.CallToolResult, error) {
	errorData := map[string]interface{}{
		"success":   false,
		"error":     err.Error(),
		"operation": operation,
	}

	if suggestions := generateErrorSuggestions(operation, err); len(suggestions) > 0 {
		errorData["suggestions"] = suggestions
	}
	if help := getOperationHelp(operation); help != "" {
		errorData["help"] = help
	}
	if len(context) > 0 {
		errorData["context"] = context
	}

	response, marshalErr := createJSONResponse(errorData)
	if marshalErr != nil {
		return nil, marshalErr
	}
	response.IsError = true
	return response, nil
}

// generateErrorSuggestions generates suggestions for common errors
func generateErrorSuggestions(operation string, err error) []string {
	var suggestions []string

	var langErr *snerrors.UnsupportedLanguageError
	var fileErr *snerrors.FileError
	var parseErr *snerrors.ParseError
	var encErr *snerrors.EncodingError
	var travErr *snerrors.TraversalError

	switch {
	case errors.As(err, &langErr):
		names := make([]string, 0)
		for _, g := range parser.Grammars() {
			names = append(names, string(g.Language))
		}
		suggestions = append(suggestions, "Pass \"language\" explicitly, one of: "+strings.Join(names, ", "))
		suggestions = append(suggestions, "Use {\"tool\": \"languages\"} with the info tool to list extensions")
	case errors.As(err, &fileErr):
		switch fileErr.Type {
		case snerrors.ErrorTypeFileTooBig:
			suggestions = append(suggestions, "Raise extract.max_file_size in .snip.kdl")
		case snerrors.ErrorTypePermission:
			suggestions = append(suggestions, "Check read permissions on the file")
		default:
			suggestions = append(suggestions, "Check that the path exists; relative paths resolve against the server's working directory")
		}
	case errors.As(err, &parseErr):
		suggestions = append(suggestions, "The grammar could not be loaded; check the language name")
	case errors.As(err, &encErr):
		suggestions = append(suggestions, "The file contains invalid UTF-8 in an identifier; check its encoding")
	case errors.As(err, &travErr):
		suggestions = append(suggestions, "The syntax tree could not be walked; this is a parser fault, not a missing method")
	}

	if snerrors.IsUpstream(err) {
		suggestions = append(suggestions, "No lookup was attempted; the method may still exist once the input is fixed")
	}

	switch {
	case operation == "extract_declaration" && err.Error() == "file is required":
		suggestions = append(suggestions, "Provide a source path: {\"file\": \"src/Worker.java\", \"target\": \"stop\"}")
	case operation == "extract_declaration" && err.Error() == "target is required":
		suggestions = append(suggestions, "Provide the exact method name, e.g. {\"target\": \"stop\"}")
	}

	return suggestions
}

// getOperationHelp provides helpful information about each operation
func getOperationHelp(operation string) string {
	helpMap := map[string]string{
		"extract_declaration": "Extract the source text of the first method declaration with an exact name from one file.",
		"info":                "Describe tools, supported languages, and server version.",
	}
	return helpMap[operation]
}
