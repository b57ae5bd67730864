package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	kdl "github.com/sblinch/kdl-go"
	"github.com/sblinch/kdl-go/document"

	"github.com/standardbeagle/snip/internal/debug"
	snerrors "github.com/standardbeagle/snip/internal/errors"
)

// LoadKDLInto reads a .snip.kdl file and applies it onto cfg.
func LoadKDLInto(cfg *Config, path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return snerrors.NewConfigError("file", path, err)
	}
	if err := applyKDL(cfg, string(content)); err != nil {
		return snerrors.NewConfigError("file", path, err)
	}
	debug.LogConfig("applied %s\n", path)
	return nil
}

// parseKDL parses content on top of the defaults.
func parseKDL(content string) (*Config, error) {
	cfg := Default()
	if err := applyKDL(cfg, content); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyKDL(cfg *Config, content string) error {
	doc, err := kdl.Parse(strings.NewReader(content))
	if err != nil {
		return fmt.Errorf("failed to parse KDL config: %w", err)
	}

	for _, n := range doc.Nodes {
		switch nodeName(n) {
		case "version":
			if v, ok := firstIntArg(n); ok {
				cfg.Version = v
			}
		case "extract":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "max_file_size":
					if v, ok := firstIntArg(cn); ok {
						cfg.Extract.MaxFileSize = int64(v)
					}
					if s, ok := firstStringArg(cn); ok {
						sz, err := parseSize(s)
						if err != nil {
							return fmt.Errorf("extract.max_file_size: %w", err)
						}
						cfg.Extract.MaxFileSize = sz
					}
				case "format":
					assignSimpleString(cn, "format", func(v string) { cfg.Extract.Format = strings.ToLower(v) })
				}
			}
		case "suggest":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "enabled":
					if b, ok := firstBoolArg(cn); ok {
						cfg.Suggest.Enabled = b
					}
				case "threshold":
					if v, ok := firstFloatArg(cn); ok {
						cfg.Suggest.Threshold = v
					}
				case "max":
					if v, ok := firstIntArg(cn); ok {
						cfg.Suggest.Max = v
					}
				case "algorithm":
					assignSimpleString(cn, "algorithm", func(v string) { cfg.Suggest.Algorithm = v })
				}
			}
		case "performance":
			for _, cn := range n.Children {
				if nodeName(cn) == "max_workers" {
					if v, ok := firstIntArg(cn); ok {
						cfg.Performance.MaxWorkers = v
					}
				}
			}
		case "watch":
			for _, cn := range n.Children {
				if nodeName(cn) == "debounce_ms" {
					if v, ok := firstIntArg(cn); ok {
						cfg.Watch.DebounceMs = v
					}
				}
			}
		case "language":
			name, ok := firstStringArg(n)
			if !ok || name == "" {
				return fmt.Errorf("language block needs a name argument")
			}
			lang := Language{Name: strings.ToLower(name)}
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "pattern", "patterns":
					lang.Patterns = append(lang.Patterns, collectStringArgs(cn)...)
				case "name_kind":
					assignSimpleString(cn, "name_kind", func(v string) { lang.NameKind = v })
				case "declaration_kind":
					assignSimpleString(cn, "declaration_kind", func(v string) { lang.DeclarationKind = v })
				}
			}
			cfg.setLanguage(lang)
		default:
			debug.LogConfig("ignoring unknown KDL node %q\n", nodeName(n))
		}
	}

	return nil
}

// Helper functions over the kdl-go document model
func nodeName(n *document.Node) string {
	if n == nil || n.Name == nil {
		return ""
	}
	return n.Name.NodeNameString()
}
func firstIntArg(n *document.Node) (int, bool) {
	if len(n.Arguments) == 0 {
		return 0, false
	}
	switch v := n.Arguments[0].Value.(type) {
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}
func firstStringArg(n *document.Node) (string, bool) {
	if len(n.Arguments) == 0 {
		return "", false
	}
	if s, ok := n.Arguments[0].Value.(string); ok {
		return s, true
	}
	return "", false
}
func firstBoolArg(n *document.Node) (bool, bool) {
	if len(n.Arguments) == 0 {
		return false, false
	}
	if b, ok := n.Arguments[0].Value.(bool); ok {
		return b, true
	}
	return false, false
}
func firstFloatArg(n *document.Node) (float64, bool) {
	if len(n.Arguments) == 0 {
		return 0, false
	}
	switch v := n.Arguments[0].Value.(type) {
	case float64:
		return v, true
	case int64:
		return float64(v), true
	default:
		debug.LogConfig("WARNING: invalid float value for '%s', expected number but got %T\n", nodeName(n), n.Arguments[0].Value)
		return 0, false
	}
}
func collectStringArgs(n *document.Node) []string {
	if n == nil {
		return nil
	}
	// Inline form: pattern "a" "b"
	out := make([]string, 0, len(n.Arguments))
	for _, a := range n.Arguments {
		if s, ok := a.Value.(string); ok {
			out = append(out, s)
		}
	}

	// Block form: patterns { "a"; "b" } where each child's name is the value
	if len(out) == 0 && len(n.Children) > 0 {
		out = make([]string, 0, len(n.Children))
		for _, child := range n.Children {
			if s, ok := firstStringArg(child); ok {
				out = append(out, s)
			} else if child.Name != nil {
				if s, ok := child.Name.Value.(string); ok {
					out = append(out, s)
				}
			}
		}
	}

	return out
}
func assignSimpleString(n *document.Node, target string, set func(string)) {
	if nodeName(n) == target {
		if s, ok := firstStringArg(n); ok {
			set(s)
		}
	}
}

// parseSize handles size strings like "10MB", "500KB", "1GB"
func parseSize(s string) (int64, error) {
	s = strings.ToUpper(strings.TrimSpace(s))

	var multiplier int64 = 1
	var numStr string

	switch {
	case strings.HasSuffix(s, "GB"):
		multiplier = 1024 * 1024 * 1024
		numStr = strings.TrimSuffix(s, "GB")
	case strings.HasSuffix(s, "MB"):
		multiplier = 1024 * 1024
		numStr = strings.TrimSuffix(s, "MB")
	case strings.HasSuffix(s, "KB"):
		multiplier = 1024
		numStr = strings.TrimSuffix(s, "KB")
	case strings.HasSuffix(s, "B"):
		numStr = strings.TrimSuffix(s, "B")
	default:
		numStr = s
	}

	num, err := strconv.ParseInt(strings.TrimSpace(numStr), 10, 64)
	if err != nil {
		return 0, err
	}

	return num * multiplier, nil
}
