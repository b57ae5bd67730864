package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/standardbeagle/snip/internal/debug"
	"github.com/standardbeagle/snip/internal/display"
	"github.com/standardbeagle/snip/internal/extractor"
	"github.com/standardbeagle/snip/internal/version"
)

func (s *Server) handleExtract(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params ExtractParams
	if len(req.Params.Arguments) > 0 {
		if err := json.Unmarshal(req.Params.Arguments, &params); err != nil {
			return createSmartErrorResponse("extract_declaration", fmt.Errorf("invalid parameters: %w", err), nil)
		}
	}

	return s.recoverFromPanic("extract_declaration", func() (*mcp.CallToolResult, error) {
		if strings.TrimSpace(params.File) == "" {
			return createSmartErrorResponse("extract_declaration", errors.New("file is required"), nil)
		}
		if params.Target == "" {
			return createSmartErrorResponse("extract_declaration", errors.New("target is required"), nil)
		}

		decl, err := s.svc.Extract(ctx, extractor.Request{
			Path:     params.File,
			Target:   params.Target,
			Language: params.Language,
		})
		if err != nil {
			return createSmartErrorResponse("extract_declaration", err, map[string]interface{}{
				"file":     params.File,
				"target":   params.Target,
				"language": params.Language,
			})
		}

		debug.LogMCP("extract_declaration %s %q: %s\n", params.File, params.Target, decl.Result)
		return createJSONResponse(display.ToJSON(decl))
	})
}

func (s *Server) handleInfo(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params InfoParams
	if len(req.Params.Arguments) > 0 {
		if err := json.Unmarshal(req.Params.Arguments, &params); err != nil {
			return createSmartErrorResponse("info", fmt.Errorf("invalid parameters: %w", err), map[string]interface{}{
				"help": "Use: {} or {\"tool\": \"extract_declaration\"}",
			})
		}
	}

	switch strings.ToLower(strings.TrimSpace(params.Tool)) {
	case "":
		return createJSONResponse(map[string]interface{}{
			"server_name":    ServerName,
			"server_version": version.Version,
			"tools": map[string]string{
				"extract_declaration": getOperationHelp("extract_declaration"),
				"info":                getOperationHelp("info"),
			},
		})

	case "extract_declaration", "extract":
		return createJSONResponse(map[string]interface{}{
			"name":        "extract_declaration",
			"description": getOperationHelp("extract_declaration"),
			"parameters": map[string]string{
				"file":     "required: path of the source file",
				"target":   "required: exact method name",
				"language": "optional: grammar name or alias, overrides extension lookup",
			},
			"result": map[string]string{
				"found":       "true when a method declaration with that name exists",
				"start, end":  "byte offsets of the declaration, end exclusive",
				"text":        "declaration source, verbatim",
				"suggestions": "similar method names when not found and suggestions are enabled",
			},
			"example": map[string]string{"file": "src/Worker.java", "target": "stop"},
		})

	case "languages":
		var langs []map[string]interface{}
		for _, g := range s.svc.Registry().Grammars() {
			langs = append(langs, map[string]interface{}{
				"language":         g.Language,
				"extensions":       g.Extensions,
				"name_kind":        g.NameKind,
				"declaration_kind": g.DeclarationKind,
				"patterns":         s.svc.Registry().Patterns(g.Language),
			})
		}
		return createJSONResponse(map[string]interface{}{"languages": langs})

	case "version":
		return createJSONResponse(map[string]interface{}{
			"server_name":  ServerName,
			"build":        version.Get(),
			"capabilities": []string{"stdio_transport", "tree_sitter_parsing", "declaration_extraction"},
		})

	default:
		return createSmartErrorResponse("info", fmt.Errorf("unknown tool: %s", params.Tool), nil)
	}
}
