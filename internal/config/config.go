package config

import (
	"os"
	"path/filepath"
	"strings"

	snerrors "github.com/standardbeagle/snip/internal/errors"
	"github.com/standardbeagle/snip/internal/locate"
	"github.com/standardbeagle/snip/internal/parser"
	"github.com/standardbeagle/snip/internal/types"
)

const (
	// ProjectFileKDL is looked up in the working directory, and in $HOME as
	// the global base config.
	ProjectFileKDL = ".snip.kdl"
	// ProjectFileTOML is tried when no KDL file is present.
	ProjectFileTOML = ".snip.toml"

	FormatText  = "text"
	FormatRange = "range"
	FormatJSON  = "json"
)

type Config struct {
	Version     int
	Extract     Extract
	Suggest     Suggest
	Performance Performance
	Watch       Watch
	Languages   []Language
	Source      string // file the project config came from, empty for defaults
}

type Extract struct {
	MaxFileSize int64
	Format      string // "text", "range" or "json"
}

// Suggest controls the near-miss names reported when a target is not found.
type Suggest struct {
	Enabled   bool
	Threshold float64 // 0..1 similarity cutoff
	Max       int
	Algorithm string // go-edlib algorithm name, e.g. "jaro-winkler"
}

type Performance struct {
	MaxWorkers int // concurrent files in batch extraction; 0 = auto
}

type Watch struct {
	DebounceMs int
}

// Language overrides grammar selection and kinds for one built-in grammar.
type Language struct {
	Name            string
	Patterns        []string
	NameKind        string
	DeclarationKind string
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Version: 1,
		Extract: Extract{
			MaxFileSize: types.DefaultMaxFileSize,
			Format:      FormatText,
		},
		Suggest: Suggest{
			Enabled:   false,
			Threshold: locate.DefaultSuggestOptions.Threshold,
			Max:       locate.DefaultSuggestOptions.Max,
			Algorithm: locate.DefaultSuggestOptions.Algorithm,
		},
		Performance: Performance{MaxWorkers: 0},
		Watch:       Watch{DebounceMs: 200},
	}
}

func Load(path string) (*Config, error) {
	return LoadWithRoot(path, "")
}

// LoadRequired is Load for a path the user named explicitly. A missing file
// is a ConfigError rather than a fallback to discovery.
func LoadRequired(path string) (*Config, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, snerrors.NewConfigError("config", path, err)
	}
	return Load(path)
}

// LoadWithRoot builds the effective config:
//  1. built-in defaults
//  2. global ~/.snip.kdl, if present
//  3. path if it names an existing file, else .snip.kdl or .snip.toml in rootDir
//
// Later layers override earlier ones key by key; language blocks replace
// same-named blocks from earlier layers.
func LoadWithRoot(path string, rootDir string) (*Config, error) {
	searchDir := "."
	if rootDir != "" {
		searchDir = rootDir
	}

	cfg := Default()

	// Step 1: global base config
	if homeDir, err := os.UserHomeDir(); err == nil {
		global := filepath.Join(homeDir, ProjectFileKDL)
		if !samePath(global, filepath.Join(searchDir, ProjectFileKDL)) {
			if _, err := loadFileInto(cfg, global); err != nil {
				return nil, err
			}
		}
	}

	// Step 2: project config
	if path != "" {
		if !filepath.IsAbs(path) && rootDir != "" {
			path = filepath.Join(rootDir, path)
		}
		loaded, err := loadFileInto(cfg, path)
		if err != nil {
			return nil, err
		}
		if loaded {
			cfg.Source = path
			return cfg, ValidateConfig(cfg)
		}
	}

	for _, name := range []string{ProjectFileKDL, ProjectFileTOML} {
		candidate := filepath.Join(searchDir, name)
		loaded, err := loadFileInto(cfg, candidate)
		if err != nil {
			return nil, err
		}
		if loaded {
			cfg.Source = candidate
			break
		}
	}

	return cfg, ValidateConfig(cfg)
}

// loadFileInto applies the file at path onto cfg. A missing file is not an
// error and reports false.
func loadFileInto(cfg *Config, path string) (bool, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return false, nil
	}
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return true, LoadTOMLInto(cfg, path)
	}
	return true, LoadKDLInto(cfg, path)
}

func samePath(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	return errA == nil && errB == nil && absA == absB
}

// setLanguage adds l, replacing an existing block with the same name.
func (c *Config) setLanguage(l Language) {
	if canonical, err := parser.ParseLanguage(l.Name); err == nil {
		l.Name = string(canonical)
	}
	for i := range c.Languages {
		if c.Languages[i].Name == l.Name {
			c.Languages[i] = l
			return
		}
	}
	c.Languages = append(c.Languages, l)
}

// Overrides converts language blocks for parser.NewRegistry.
func (c *Config) Overrides() []parser.Override {
	out := make([]parser.Override, 0, len(c.Languages))
	for _, l := range c.Languages {
		out = append(out, parser.Override{
			Language:        l.Name,
			Patterns:        append([]string(nil), l.Patterns...),
			NameKind:        l.NameKind,
			DeclarationKind: l.DeclarationKind,
		})
	}
	return out
}

// SuggestEnabled reports whether NotFound results should carry suggestions.
func (c *Config) SuggestEnabled() bool {
	return c.Suggest.Enabled && c.Suggest.Max > 0
}
