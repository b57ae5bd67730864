package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/standardbeagle/snip/internal/debug"
	snerrors "github.com/standardbeagle/snip/internal/errors"
)

// tomlFile mirrors the KDL layout. Pointer fields distinguish "absent" from
// zero so a file only overrides the keys it sets.
type tomlFile struct {
	Version *int `toml:"version"`
	Extract struct {
		MaxFileSize any     `toml:"max_file_size"`
		Format      *string `toml:"format"`
	} `toml:"extract"`
	Suggest struct {
		Enabled   *bool    `toml:"enabled"`
		Threshold *float64 `toml:"threshold"`
		Max       *int     `toml:"max"`
		Algorithm *string  `toml:"algorithm"`
	} `toml:"suggest"`
	Performance struct {
		MaxWorkers *int `toml:"max_workers"`
	} `toml:"performance"`
	Watch struct {
		DebounceMs *int `toml:"debounce_ms"`
	} `toml:"watch"`
	Language []struct {
		Name            string   `toml:"name"`
		Patterns        []string `toml:"patterns"`
		NameKind        string   `toml:"name_kind"`
		DeclarationKind string   `toml:"declaration_kind"`
	} `toml:"language"`
}

// LoadTOMLInto reads a .snip.toml file and applies it onto cfg.
func LoadTOMLInto(cfg *Config, path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return snerrors.NewConfigError("file", path, err)
	}
	if err := applyTOML(cfg, content); err != nil {
		return snerrors.NewConfigError("file", path, err)
	}
	debug.LogConfig("applied %s\n", path)
	return nil
}

func applyTOML(cfg *Config, content []byte) error {
	var f tomlFile
	if err := toml.Unmarshal(content, &f); err != nil {
		return fmt.Errorf("failed to parse TOML config: %w", err)
	}

	if f.Version != nil {
		cfg.Version = *f.Version
	}

	switch v := f.Extract.MaxFileSize.(type) {
	case nil:
	case int64:
		cfg.Extract.MaxFileSize = v
	case string:
		sz, err := parseSize(v)
		if err != nil {
			return fmt.Errorf("extract.max_file_size: %w", err)
		}
		cfg.Extract.MaxFileSize = sz
	default:
		return fmt.Errorf("extract.max_file_size: unsupported value %v", v)
	}
	if f.Extract.Format != nil {
		cfg.Extract.Format = strings.ToLower(*f.Extract.Format)
	}

	if f.Suggest.Enabled != nil {
		cfg.Suggest.Enabled = *f.Suggest.Enabled
	}
	if f.Suggest.Threshold != nil {
		cfg.Suggest.Threshold = *f.Suggest.Threshold
	}
	if f.Suggest.Max != nil {
		cfg.Suggest.Max = *f.Suggest.Max
	}
	if f.Suggest.Algorithm != nil {
		cfg.Suggest.Algorithm = *f.Suggest.Algorithm
	}

	if f.Performance.MaxWorkers != nil {
		cfg.Performance.MaxWorkers = *f.Performance.MaxWorkers
	}
	if f.Watch.DebounceMs != nil {
		cfg.Watch.DebounceMs = *f.Watch.DebounceMs
	}

	for _, l := range f.Language {
		if l.Name == "" {
			return fmt.Errorf("[[language]] entry needs a name")
		}
		cfg.setLanguage(Language{
			Name:            strings.ToLower(l.Name),
			Patterns:        l.Patterns,
			NameKind:        l.NameKind,
			DeclarationKind: l.DeclarationKind,
		})
	}
	return nil
}
