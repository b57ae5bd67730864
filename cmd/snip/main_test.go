package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	snerrors "github.com/standardbeagle/snip/internal/errors"
	"github.com/standardbeagle/snip/internal/version"
)

const workerJava = `class Worker {
    void run() {}

    void stop() { x(); }
}
`

const stopText = "void stop() { x(); }"

// runCLICommand runs the app in-process with HOME pointed at an empty dir so
// a developer's ~/.snip.kdl cannot leak into the results.
func runCLICommand(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)

	var stdout, stderr bytes.Buffer
	app := newApp(&stdout, &stderr)
	err := app.Run(append([]string{"snip"}, args...))
	return stdout.String(), stderr.String(), err
}

func setupTestProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"Worker.java": workerJava,
		"Idle.java":   "class Idle { void idle() {} }\n",
		"worker.txt":  workerJava,
		"Runner.cs":   "class Runner { public async Task Stop() { await Task.Yield(); } }\n",
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	return dir
}

func TestCLIExtract(t *testing.T) {
	dir := setupTestProject(t)
	worker := filepath.Join(dir, "Worker.java")
	start := strings.Index(workerJava, stopText)

	tests := []struct {
		name     string
		args     []string
		validate func(t *testing.T, stdout, stderr string, err error)
	}{
		{
			name: "root flags behave like extract",
			args: []string{"-f", worker, "-t", "stop"},
			validate: func(t *testing.T, stdout, stderr string, err error) {
				require.NoError(t, err)
				assert.Equal(t, stopText+"\n", stdout)
			},
		},
		{
			name: "extract command",
			args: []string{"extract", "--filepath", worker, "--target", "run"},
			validate: func(t *testing.T, stdout, stderr string, err error) {
				require.NoError(t, err)
				assert.Equal(t, "void run() {}\n", stdout)
			},
		},
		{
			name: "not found exits cleanly",
			args: []string{"extract", "-f", worker, "-t", "Stop"},
			validate: func(t *testing.T, stdout, stderr string, err error) {
				require.NoError(t, err)
				assert.Equal(t, "target not found\n", stdout)
			},
		},
		{
			name: "range format",
			args: []string{"extract", "--format", "range", "-f", worker, "-t", "stop"},
			validate: func(t *testing.T, stdout, stderr string, err error) {
				require.NoError(t, err)
				assert.Equal(t, fmt.Sprintf("%d %d\n", start, start+len(stopText)), stdout)
			},
		},
		{
			name: "json format",
			args: []string{"extract", "--format", "json", "-f", worker, "-t", "stop"},
			validate: func(t *testing.T, stdout, stderr string, err error) {
				require.NoError(t, err)
				var out map[string]interface{}
				require.NoError(t, json.Unmarshal([]byte(stdout), &out))
				assert.Equal(t, true, out["found"])
				assert.Equal(t, stopText, out["text"])
				assert.Equal(t, float64(start), out["start"])
			},
		},
		{
			name: "suggestions",
			args: []string{"extract", "--suggest", "-f", worker, "-t", "stpo"},
			validate: func(t *testing.T, stdout, stderr string, err error) {
				require.NoError(t, err)
				assert.Contains(t, stdout, "target not found\n")
				assert.Contains(t, stdout, "did you mean: stop")
			},
		},
		{
			name: "explicit language",
			args: []string{"extract", "-l", "java", "-f", filepath.Join(dir, "worker.txt"), "-t", "stop"},
			validate: func(t *testing.T, stdout, stderr string, err error) {
				require.NoError(t, err)
				assert.Equal(t, stopText+"\n", stdout)
			},
		},
		{
			name: "csharp",
			args: []string{"-f", filepath.Join(dir, "Runner.cs"), "-t", "Stop"},
			validate: func(t *testing.T, stdout, stderr string, err error) {
				require.NoError(t, err)
				assert.Equal(t, "public async Task Stop() { await Task.Yield(); }\n", stdout)
			},
		},
		{
			name: "missing target",
			args: []string{"extract", "-f", worker},
			validate: func(t *testing.T, stdout, stderr string, err error) {
				assert.ErrorIs(t, err, errMissingTarget)
			},
		},
		{
			name: "missing file",
			args: []string{"extract", "-t", "stop"},
			validate: func(t *testing.T, stdout, stderr string, err error) {
				assert.ErrorIs(t, err, errMissingFile)
			},
		},
		{
			name: "bad format flag",
			args: []string{"extract", "--format", "yaml", "-f", worker, "-t", "stop"},
			validate: func(t *testing.T, stdout, stderr string, err error) {
				var cfgErr *snerrors.ConfigError
				require.ErrorAs(t, err, &cfgErr)
				assert.Equal(t, "extract.format", cfgErr.Field)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdout, stderr, err := runCLICommand(t, tt.args...)
			tt.validate(t, stdout, stderr, err)
		})
	}
}

func TestCLIExtract_MultipleFiles(t *testing.T) {
	dir := setupTestProject(t)
	worker := filepath.Join(dir, "Worker.java")
	idle := filepath.Join(dir, "Idle.java")

	stdout, _, err := runCLICommand(t, "extract", "-t", "stop", "-f", worker, idle)
	require.NoError(t, err)

	expected := "// " + worker + ":4-4\n" + stopText + "\n" +
		"\n" +
		"// " + idle + "\n" + "target not found\n"
	assert.Equal(t, expected, stdout)
}

func TestCLIExtract_PartialFailure(t *testing.T) {
	dir := setupTestProject(t)
	worker := filepath.Join(dir, "Worker.java")

	stdout, _, err := runCLICommand(t, "extract", "-t", "stop", "-f", worker, filepath.Join(dir, "notes.md"))
	require.Error(t, err)

	var langErr *snerrors.UnsupportedLanguageError
	assert.ErrorAs(t, err, &langErr)
	assert.Contains(t, stdout, stopText)
}

func TestCLIConfigFile(t *testing.T) {
	dir := setupTestProject(t)
	worker := filepath.Join(dir, "Worker.java")
	cfgPath := filepath.Join(dir, "custom.kdl")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`extract { format "range" }`), 0o644))

	start := strings.Index(workerJava, stopText)

	stdout, _, err := runCLICommand(t, "-c", cfgPath, "extract", "-f", worker, "-t", "stop")
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("%d %d\n", start, start+len(stopText)), stdout)

	// Flags win over the file
	stdout, _, err = runCLICommand(t, "-c", cfgPath, "extract", "--format", "text", "-f", worker, "-t", "stop")
	require.NoError(t, err)
	assert.Equal(t, stopText+"\n", stdout)
}

func TestCLIConfigFile_MissingExplicitPath(t *testing.T) {
	dir := setupTestProject(t)
	missing := filepath.Join(dir, "missing.kdl")

	_, _, err := runCLICommand(t, "-c", missing, "extract", "-f", filepath.Join(dir, "Worker.java"), "-t", "stop")

	var cfgErr *snerrors.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "config", cfgErr.Field)
	assert.Equal(t, missing, cfgErr.Value)
}

func TestCLILanguages(t *testing.T) {
	stdout, _, err := runCLICommand(t, "languages")
	require.NoError(t, err)

	assert.Contains(t, stdout, "LANGUAGE")
	for _, want := range []string{"java", "csharp", ".cs", "method_declaration", "function_definition"} {
		assert.Contains(t, stdout, want)
	}
}

func TestCLIVersion(t *testing.T) {
	stdout, _, err := runCLICommand(t, "version")
	require.NoError(t, err)
	info := version.Get()
	assert.Equal(t, "snip "+info.String()+"\n"+info.GoVersion+" "+info.Platform+"\n", stdout)
	assert.NotContains(t, stdout, "snip snip")
}

func TestCLIWatch_RejectsExtraFiles(t *testing.T) {
	dir := setupTestProject(t)
	_, _, err := runCLICommand(t, "watch", "-t", "stop", "-f", filepath.Join(dir, "Worker.java"), filepath.Join(dir, "Idle.java"))
	assert.Error(t, err)
}

func TestCLIWatch_UnsupportedFile(t *testing.T) {
	dir := setupTestProject(t)
	_, _, err := runCLICommand(t, "watch", "-t", "stop", "-f", filepath.Join(dir, "notes.md"))

	var langErr *snerrors.UnsupportedLanguageError
	assert.ErrorAs(t, err, &langErr)
}
