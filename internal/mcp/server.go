package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime/debug"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/standardbeagle/snip/internal/config"
	sndebug "github.com/standardbeagle/snip/internal/debug"
	"github.com/standardbeagle/snip/internal/extractor"
	"github.com/standardbeagle/snip/internal/version"
)

// ServerName is reported in the MCP implementation info
const ServerName = "snip-mcp-server"

// Server exposes declaration extraction as MCP tools
type Server struct {
	cfg    *config.Config
	svc    *extractor.Service
	server *mcp.Server
}

// ExtractParams are the arguments of the extract_declaration tool
type ExtractParams struct {
	File     string `json:"file"`
	Target   string `json:"target"`
	Language string `json:"language,omitempty"`
}

type InfoParams struct {
	Tool string `json:"tool,omitempty"`
}

// UnmarshalJSON accepts file_path/filepath and name as aliases so callers
// using the CLI flag names still work.
func (p *ExtractParams) UnmarshalJSON(data []byte) error {
	type Alias ExtractParams
	var aux struct {
		Alias
		FilePath  string `json:"file_path"`
		FilePath2 string `json:"filepath"`
		Name      string `json:"name"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*p = ExtractParams(aux.Alias)
	if p.File == "" {
		p.File = firstNonEmpty(aux.FilePath, aux.FilePath2)
	}
	if p.Target == "" {
		p.Target = aux.Name
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// NewServer creates an MCP server backed by an extraction service for cfg.
func NewServer(cfg *config.Config) (*Server, error) {
	if cfg == nil {
		cfg = config.Default()
		if err := config.ValidateConfig(cfg); err != nil {
			return nil, err
		}
	}
	svc, err := extractor.New(cfg)
	if err != nil {
		return nil, err
	}

	s := &Server{
		cfg: cfg,
		svc: svc,
		server: mcp.NewServer(&mcp.Implementation{
			Name:    ServerName,
			Version: version.Version,
		}, nil),
	}
	s.registerTools()
	sndebug.LogMCP("server initialized (%s)\n", version.Get())
	return s, nil
}

func (s *Server) registerTools() {
	s.server.AddTool(&mcp.Tool{
		Name:        "info",
		Description: "Get help for snip tools. Use {} for an overview, {\"tool\": \"extract_declaration\"} for parameters, {\"tool\": \"languages\"} for supported grammars, {\"tool\": \"version\"} for build info.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"tool": {
					Type:        "string",
					Description: "Tool or topic name (extract_declaration, languages, version)",
				},
			},
		},
	}, s.handleInfo)

	s.server.AddTool(&mcp.Tool{
		Name:        "extract_declaration",
		Description: "Return the exact source text of the first method declaration named `target` in `file`. Reports found=false when no method has that name.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"file": {
					Type:        "string",
					Description: "Path of the source file",
				},
				"target": {
					Type:        "string",
					Description: "Method name, matched exactly and case-sensitively",
				},
				"language": {
					Type:        "string",
					Description: "Grammar to use instead of picking one from the file extension (e.g. java, csharp, cs, go, python, ts)",
				},
			},
			Required: []string{"file", "target"},
		},
	}, s.handleExtract)
}

// recoverFromPanic turns a handler panic into an error result so one bad
// file cannot take the stdio session down.
func (s *Server) recoverFromPanic(operation string, handler func() (*mcp.CallToolResult, error)) (result *mcp.CallToolResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			sndebug.LogMCP("PANIC RECOVERED in %s: %v\n%s\n", operation, r, debug.Stack())
			result, err = createErrorResponse(operation, fmt.Errorf("internal error: %v", r))
		}
	}()
	return handler()
}

// Start serves the tools over stdio until ctx is done or the client hangs up.
func (s *Server) Start(ctx context.Context) error {
	sndebug.LogMCP("starting MCP server with stdio transport\n")
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// GetHandlerForTesting returns a handler function for testing purposes
func (s *Server) GetHandlerForTesting(toolName string) func(context.Context, *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	switch toolName {
	case "extract_declaration":
		return s.handleExtract
	case "info":
		return s.handleInfo
	default:
		return func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return createErrorResponse("GetHandlerForTesting", fmt.Errorf("unknown tool: %s", toolName))
		}
	}
}
