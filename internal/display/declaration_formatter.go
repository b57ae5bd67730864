package display

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/standardbeagle/snip/internal/types"
	"github.com/standardbeagle/snip/pkg/pathutil"
)

// NotFoundMessage is printed when a file has no matching declaration.
const NotFoundMessage = "target not found"

// DeclarationFormatter renders lookup results
type DeclarationFormatter struct {
	options FormatterOptions
}

// FormatterOptions controls declaration formatting
type FormatterOptions struct {
	Format    string // "text", "range" or "json"
	ShowPath  bool   // Prefix each result with its file (multi-file runs)
	ShowLines bool   // Add a line span to text headers
	Root      string // Paths under Root are shown relative to it
}

// NewDeclarationFormatter creates a new formatter
func NewDeclarationFormatter(options FormatterOptions) *DeclarationFormatter {
	if options.Format == "" {
		options.Format = "text"
	}
	return &DeclarationFormatter{options: options}
}

// JSONDeclaration is the wire shape of a result, shared with the MCP tool.
type JSONDeclaration struct {
	Found       bool     `json:"found"`
	File        string   `json:"file"`
	Language    string   `json:"language"`
	Target      string   `json:"target"`
	Start       *uint    `json:"start,omitempty"`
	End         *uint    `json:"end,omitempty"`
	StartLine   int      `json:"start_line,omitempty"`
	EndLine     int      `json:"end_line,omitempty"`
	Text        string   `json:"text,omitempty"`
	// TextBase64 holds the exact bytes when Text is not valid UTF-8; Text
	// then carries U+FFFD in their place.
	TextBase64  string   `json:"text_base64,omitempty"`
	Suggestions []string `json:"suggestions,omitempty"`
}

// ToJSON converts a declaration to its wire shape.
func ToJSON(d *types.Declaration) JSONDeclaration {
	out := JSONDeclaration{
		Found:       d.Result.Found,
		File:        d.Path,
		Language:    d.Language,
		Target:      d.Target,
		Suggestions: d.Suggestions,
	}
	if d.Result.Found {
		start, end := d.Result.Range.Start, d.Result.Range.End
		out.Start = &start
		out.End = &end
		out.StartLine = d.StartLine
		out.EndLine = d.EndLine
		out.Text = d.Text
		if !utf8.ValidString(d.Text) {
			out.TextBase64 = base64.StdEncoding.EncodeToString([]byte(d.Text))
		}
	}
	return out
}

// Write renders decls to w. A JSON run with one declaration writes an
// object, otherwise an array.
func (f *DeclarationFormatter) Write(w io.Writer, decls []*types.Declaration) error {
	switch f.options.Format {
	case "json":
		return f.writeJSON(w, decls)
	case "range":
		for _, d := range decls {
			if _, err := io.WriteString(w, f.formatRange(d)+"\n"); err != nil {
				return err
			}
		}
		return nil
	default:
		for i, d := range decls {
			if i > 0 && f.options.ShowPath {
				if _, err := io.WriteString(w, "\n"); err != nil {
					return err
				}
			}
			if _, err := io.WriteString(w, f.formatText(d)); err != nil {
				return err
			}
		}
		return nil
	}
}

// Format renders a single declaration as a string.
func (f *DeclarationFormatter) Format(d *types.Declaration) string {
	var sb strings.Builder
	_ = f.Write(&sb, []*types.Declaration{d})
	return sb.String()
}

// formatText prints the declaration text verbatim
func (f *DeclarationFormatter) formatText(d *types.Declaration) string {
	var sb strings.Builder

	if f.options.ShowPath {
		sb.WriteString("// ")
		sb.WriteString(f.displayPath(d))
		if f.options.ShowLines && d.Result.Found {
			sb.WriteString(fmt.Sprintf(":%d-%d", d.StartLine, d.EndLine))
		}
		sb.WriteString("\n")
	}

	if !d.Result.Found {
		sb.WriteString(NotFoundMessage)
		sb.WriteString("\n")
		if len(d.Suggestions) > 0 {
			sb.WriteString("did you mean: ")
			sb.WriteString(strings.Join(d.Suggestions, ", "))
			sb.WriteString("\n")
		}
		return sb.String()
	}

	sb.WriteString(d.Text)
	sb.WriteString("\n")
	return sb.String()
}

// formatRange prints "start end" byte offsets, one result per line
func (f *DeclarationFormatter) formatRange(d *types.Declaration) string {
	var body string
	if d.Result.Found {
		body = fmt.Sprintf("%d %d", d.Result.Range.Start, d.Result.Range.End)
	} else {
		body = NotFoundMessage
	}
	if f.options.ShowPath {
		return f.displayPath(d) + ": " + body
	}
	return body
}

func (f *DeclarationFormatter) displayPath(d *types.Declaration) string {
	return pathutil.ToRelative(d.Path, f.options.Root)
}

func (f *DeclarationFormatter) writeJSON(w io.Writer, decls []*types.Declaration) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)

	if len(decls) == 1 {
		return enc.Encode(ToJSON(decls[0]))
	}
	out := make([]JSONDeclaration, 0, len(decls))
	for _, d := range decls {
		out = append(out, ToJSON(d))
	}
	return enc.Encode(out)
}
