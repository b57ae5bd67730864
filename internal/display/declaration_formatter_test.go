package display

import (
	"encoding/base64"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/snip/internal/types"
)

func foundDecl() *types.Declaration {
	return &types.Declaration{
		Path:      "src/Worker.java",
		Language:  "java",
		Target:    "stop",
		Result:    types.Found(120, 175),
		Text:      "public void stop() {\n    running = false;\n}",
		StartLine: 10,
		EndLine:   12,
	}
}

func missingDecl() *types.Declaration {
	return &types.Declaration{
		Path:        "src/Worker.java",
		Language:    "java",
		Target:      "strat",
		Result:      types.NotFound,
		Suggestions: []string{"start", "stop"},
	}
}

func TestNewDeclarationFormatter(t *testing.T) {
	f := NewDeclarationFormatter(FormatterOptions{})
	assert.Equal(t, "text", f.options.Format)

	opts := FormatterOptions{Format: "json", ShowPath: true, ShowLines: true}
	assert.Equal(t, opts, NewDeclarationFormatter(opts).options)
}

func TestFormat_Text(t *testing.T) {
	f := NewDeclarationFormatter(FormatterOptions{})

	assert.Equal(t, foundDecl().Text+"\n", f.Format(foundDecl()))

	notFound := &types.Declaration{Path: "A.java", Target: "x"}
	assert.Equal(t, "target not found\n", f.Format(notFound))

	assert.Equal(t, "target not found\ndid you mean: start, stop\n", f.Format(missingDecl()))
}

func TestFormat_TextWithPath(t *testing.T) {
	f := NewDeclarationFormatter(FormatterOptions{ShowPath: true, ShowLines: true})

	var sb strings.Builder
	require.NoError(t, f.Write(&sb, []*types.Declaration{foundDecl(), missingDecl()}))

	want := "// src/Worker.java:10-12\n" + foundDecl().Text + "\n" +
		"\n" +
		"// src/Worker.java\ntarget not found\ndid you mean: start, stop\n"
	assert.Equal(t, want, sb.String())
}

func TestFormat_Range(t *testing.T) {
	f := NewDeclarationFormatter(FormatterOptions{Format: "range"})
	assert.Equal(t, "120 175\n", f.Format(foundDecl()))
	assert.Equal(t, "target not found\n", f.Format(missingDecl()))

	f = NewDeclarationFormatter(FormatterOptions{Format: "range", ShowPath: true})
	assert.Equal(t, "src/Worker.java: 120 175\n", f.Format(foundDecl()))
}

func TestFormat_JSONSingle(t *testing.T) {
	f := NewDeclarationFormatter(FormatterOptions{Format: "json"})

	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(f.Format(foundDecl())), &got))

	assert.Equal(t, true, got["found"])
	assert.Equal(t, "src/Worker.java", got["file"])
	assert.Equal(t, "stop", got["target"])
	assert.Equal(t, float64(120), got["start"])
	assert.Equal(t, float64(175), got["end"])
	assert.Equal(t, foundDecl().Text, got["text"])
	assert.NotContains(t, got, "suggestions")
}

func TestFormat_JSONNotFoundOmitsRange(t *testing.T) {
	f := NewDeclarationFormatter(FormatterOptions{Format: "json"})

	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(f.Format(missingDecl())), &got))

	assert.Equal(t, false, got["found"])
	assert.NotContains(t, got, "start")
	assert.NotContains(t, got, "text")
	assert.Equal(t, []any{"start", "stop"}, got["suggestions"])
}

func TestFormat_JSONMany(t *testing.T) {
	f := NewDeclarationFormatter(FormatterOptions{Format: "json"})

	var sb strings.Builder
	require.NoError(t, f.Write(&sb, []*types.Declaration{foundDecl(), missingDecl()}))

	var got []JSONDeclaration
	require.NoError(t, json.Unmarshal([]byte(sb.String()), &got))
	require.Len(t, got, 2)
	assert.True(t, got[0].Found)
	require.NotNil(t, got[0].Start)
	assert.Equal(t, uint(120), *got[0].Start)
	assert.False(t, got[1].Found)
	assert.Nil(t, got[1].Start)
}

func TestFormat_JSONInvalidUTF8KeepsBytes(t *testing.T) {
	d := foundDecl()
	d.Text = "void stop() { s = \"\xff\xfe\"; }"

	f := NewDeclarationFormatter(FormatterOptions{Format: "json"})
	var got map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(f.Format(d)), &got))

	raw, err := base64.StdEncoding.DecodeString(got["text_base64"].(string))
	require.NoError(t, err)
	assert.Equal(t, []byte(d.Text), raw)
	assert.Contains(t, got["text"], "\uFFFD")

	// Valid text has no second copy
	var valid map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(f.Format(foundDecl())), &valid))
	assert.NotContains(t, valid, "text_base64")
}

// TestToJSON_ZeroStart keeps a declaration at offset 0 distinguishable from
// a missing one.
func TestToJSON_ZeroStart(t *testing.T) {
	d := foundDecl()
	d.Result = types.Found(0, 10)

	out := ToJSON(d)
	require.NotNil(t, out.Start)
	assert.Equal(t, uint(0), *out.Start)
}

func TestFormat_RelativeToRoot(t *testing.T) {
	root := t.TempDir()
	d := foundDecl()
	d.Path = filepath.Join(root, "src", "Worker.java")

	f := NewDeclarationFormatter(FormatterOptions{Format: "range", ShowPath: true, Root: root})
	assert.Equal(t, filepath.Join("src", "Worker.java")+": 120 175\n", f.Format(d))

	// JSON keeps the path as given
	f = NewDeclarationFormatter(FormatterOptions{Format: "json", Root: root})
	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(f.Format(d)), &got))
	assert.Equal(t, d.Path, got["file"])
}
