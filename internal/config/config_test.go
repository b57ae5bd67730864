package config

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	snerrors "github.com/standardbeagle/snip/internal/errors"
	"github.com/standardbeagle/snip/internal/locate"
)

// isolateHome points $HOME at an empty temp dir so a developer's global
// config cannot leak into tests.
func isolateHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	return home
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadWithRoot_NoFiles(t *testing.T) {
	isolateHome(t)
	root := t.TempDir()

	cfg, err := LoadWithRoot("", root)
	require.NoError(t, err)

	assert.Empty(t, cfg.Source)
	assert.Equal(t, FormatText, cfg.Extract.Format)
	assert.Equal(t, max(1, runtime.NumCPU()-1), cfg.Performance.MaxWorkers)
}

func TestLoadWithRoot_ProjectKDL(t *testing.T) {
	isolateHome(t)
	root := t.TempDir()
	path := writeFile(t, root, ProjectFileKDL, "extract {\n    format \"range\"\n}\n")

	cfg, err := LoadWithRoot("", root)
	require.NoError(t, err)
	assert.Equal(t, path, cfg.Source)
	assert.Equal(t, FormatRange, cfg.Extract.Format)
}

func TestLoadWithRoot_ProjectTOML(t *testing.T) {
	isolateHome(t)
	root := t.TempDir()
	writeFile(t, root, ProjectFileTOML, `
[extract]
max_file_size = "1MB"
format = "json"

[suggest]
enabled = true
max = 2

[[language]]
name = "php"
patterns = ["**/*.inc"]
`)

	cfg, err := LoadWithRoot("", root)
	require.NoError(t, err)
	assert.Equal(t, int64(1024*1024), cfg.Extract.MaxFileSize)
	assert.Equal(t, FormatJSON, cfg.Extract.Format)
	assert.True(t, cfg.SuggestEnabled())
	assert.Equal(t, 2, cfg.Suggest.Max)
	assert.Equal(t, 0.7, cfg.Suggest.Threshold, "unset keys keep defaults")

	require.Len(t, cfg.Languages, 1)
	assert.Equal(t, "php", cfg.Languages[0].Name)
	assert.Equal(t, []string{"**/*.inc"}, cfg.Languages[0].Patterns)
}

func TestLoadWithRoot_KDLPreferredOverTOML(t *testing.T) {
	isolateHome(t)
	root := t.TempDir()
	writeFile(t, root, ProjectFileKDL, "extract {\n    format \"range\"\n}\n")
	writeFile(t, root, ProjectFileTOML, "[extract]\nformat = \"json\"\n")

	cfg, err := LoadWithRoot("", root)
	require.NoError(t, err)
	assert.Equal(t, FormatRange, cfg.Extract.Format)
}

func TestLoadWithRoot_GlobalMergedUnderProject(t *testing.T) {
	home := isolateHome(t)
	writeFile(t, home, ProjectFileKDL, `
suggest {
    enabled true
    max 9
}
language "java" {
    pattern "**/*.jav"
}
language "rust" {
    pattern "**/*.rs.in"
}
`)
	root := t.TempDir()
	writeFile(t, root, ProjectFileKDL, `
suggest {
    max 4
}
language "java" {
    pattern "**/*.jv"
}
`)

	cfg, err := LoadWithRoot("", root)
	require.NoError(t, err)

	assert.True(t, cfg.Suggest.Enabled, "global value survives")
	assert.Equal(t, 4, cfg.Suggest.Max, "project value wins")

	require.Len(t, cfg.Languages, 2)
	byName := map[string]Language{}
	for _, l := range cfg.Languages {
		byName[l.Name] = l
	}
	assert.Equal(t, []string{"**/*.jv"}, byName["java"].Patterns)
	assert.Equal(t, []string{"**/*.rs.in"}, byName["rust"].Patterns)
}

func TestLoadWithRoot_ExplicitPath(t *testing.T) {
	isolateHome(t)
	root := t.TempDir()
	writeFile(t, root, ProjectFileKDL, "extract {\n    format \"range\"\n}\n")
	custom := writeFile(t, root, "custom.toml", "[extract]\nformat = \"json\"\n")

	cfg, err := LoadWithRoot(custom, root)
	require.NoError(t, err)
	assert.Equal(t, custom, cfg.Source)
	assert.Equal(t, FormatJSON, cfg.Extract.Format)

	// A missing explicit path falls back to discovery
	cfg, err = LoadWithRoot("missing.kdl", root)
	require.NoError(t, err)
	assert.Equal(t, FormatRange, cfg.Extract.Format)
}

func TestLoadRequired(t *testing.T) {
	isolateHome(t)
	root := t.TempDir()
	custom := writeFile(t, root, "custom.kdl", "extract {\n    format \"json\"\n}\n")

	cfg, err := LoadRequired(custom)
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, cfg.Extract.Format)

	missing := filepath.Join(root, "missing.kdl")
	_, err = LoadRequired(missing)
	require.Error(t, err)

	var cfgErr *snerrors.ConfigError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "config", cfgErr.Field)
	assert.Equal(t, missing, cfgErr.Value)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestDefault_SuggestMatchesLocateDefaults(t *testing.T) {
	s := Default().Suggest
	assert.False(t, s.Enabled)
	assert.Equal(t, locate.DefaultSuggestOptions, locate.SuggestOptions{
		Algorithm: s.Algorithm,
		Threshold: s.Threshold,
		Max:       s.Max,
	})
}

func TestLoadWithRoot_InvalidFile(t *testing.T) {
	isolateHome(t)
	root := t.TempDir()
	writeFile(t, root, ProjectFileKDL, "extract {\n    format \"yaml\"\n}\n")

	_, err := LoadWithRoot("", root)
	require.Error(t, err)

	var cfgErr *snerrors.ConfigError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "extract.format", cfgErr.Field)
}

func TestOverrides(t *testing.T) {
	cfg := Default()
	cfg.setLanguage(Language{Name: "ts", Patterns: []string{"**/*.mts"}, DeclarationKind: "method_signature"})

	overrides := cfg.Overrides()
	require.Len(t, overrides, 1)
	assert.Equal(t, "typescript", overrides[0].Language)
	assert.Equal(t, []string{"**/*.mts"}, overrides[0].Patterns)
	assert.Equal(t, "method_signature", overrides[0].DeclarationKind)
}
