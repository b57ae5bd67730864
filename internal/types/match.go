package types

import "fmt"

// Common system-wide constants
const (
	// DefaultMaxFileSize bounds how much source is read for one extraction.
	// Generated files above this are almost never the target of a lookup.
	DefaultMaxFileSize = 10 * 1024 * 1024

	// DefaultDeclarationKind is the node kind tag of a method declaration in
	// the Java, C#, Go and PHP grammars.
	DefaultDeclarationKind = "method_declaration"

	// DefaultNameKind is the node kind tag of a plain identifier.
	DefaultNameKind = "identifier"
)

// ByteRange is a [Start, End) pair of byte offsets into a source buffer.
type ByteRange struct {
	Start uint `json:"start"`
	End   uint `json:"end"`
}

// Len returns the number of bytes covered by the range
func (r ByteRange) Len() uint {
	if r.End < r.Start {
		return 0
	}
	return r.End - r.Start
}

// Valid reports whether the range fits inside a buffer of size n
func (r ByteRange) Valid(n int) bool {
	return r.Start <= r.End && r.End <= uint(n)
}

func (r ByteRange) String() string {
	return fmt.Sprintf("%d:%d", r.Start, r.End)
}

// MatchResult is the outcome of one lookup: either a found declaration range
// or NotFound (the zero value).
type MatchResult struct {
	Found bool      `json:"found"`
	Range ByteRange `json:"range"`
}

// NotFound is returned when traversal completes without a match.
var NotFound = MatchResult{}

// Found builds a result for a matched declaration span.
func Found(start, end uint) MatchResult {
	return MatchResult{Found: true, Range: ByteRange{Start: start, End: end}}
}

func (m MatchResult) String() string {
	if !m.Found {
		return "not found"
	}
	return "found " + m.Range.String()
}

// Declaration is a resolved lookup for one file, ready for display.
type Declaration struct {
	Path        string      `json:"file"`
	Language    string      `json:"language"`
	Target      string      `json:"target"`
	Result      MatchResult `json:"result"`
	Text        string      `json:"text,omitempty"`
	StartLine   int         `json:"start_line,omitempty"` // 1-based
	EndLine     int         `json:"end_line,omitempty"`   // 1-based, inclusive
	Suggestions []string    `json:"suggestions,omitempty"`
}
