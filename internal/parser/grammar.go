package parser

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	snerrors "github.com/standardbeagle/snip/internal/errors"
)

// Language represents the programming language for parser selection
type Language string

const (
	LanguageJava       Language = "java"
	LanguageCSharp     Language = "csharp"
	LanguageGo         Language = "go"
	LanguagePHP        Language = "php"
	LanguagePython     Language = "python"
	LanguageRust       Language = "rust"
	LanguageJavaScript Language = "javascript"
	LanguageTypeScript Language = "typescript"
	LanguageTSX        Language = "tsx"
	LanguageZig        Language = "zig"
)

var languageAliases = map[string]Language{
	"cs":     LanguageCSharp,
	"c#":     LanguageCSharp,
	"js":     LanguageJavaScript,
	"ts":     LanguageTypeScript,
	"py":     LanguagePython,
	"rs":     LanguageRust,
	"golang": LanguageGo,
}

// Grammar describes one supported language: which files select it and which
// node kinds carry a method name and its declaration.
type Grammar struct {
	Language        Language
	Extensions      []string
	NameKind        string
	DeclarationKind string

	load languageLoader
}

// TSLanguage returns the tree-sitter language handle for g.
func (g Grammar) TSLanguage() *tree_sitter.Language {
	return tree_sitter.NewLanguage(g.load())
}

// WithKinds returns a copy of g using the given kinds; empty values keep the
// grammar defaults.
func (g Grammar) WithKinds(nameKind, declarationKind string) Grammar {
	if nameKind != "" {
		g.NameKind = nameKind
	}
	if declarationKind != "" {
		g.DeclarationKind = declarationKind
	}
	return g
}

func (g Grammar) String() string {
	return fmt.Sprintf("%s (%s -> %s)", g.Language, g.NameKind, g.DeclarationKind)
}

// GrammarForExtension maps a file extension (including the leading dot) to
// its grammar. Matching is exact and case-sensitive.
func GrammarForExtension(ext string) (Grammar, error) {
	if ext == "" || ext == "." {
		return Grammar{}, snerrors.NewUnsupportedLanguageError("", "")
	}
	i, ok := extensionIndex[ext]
	if !ok {
		return Grammar{}, snerrors.NewUnsupportedLanguageError("", ext)
	}
	return builtinGrammars[i], nil
}

// GrammarForPath selects a grammar from the extension of path.
func GrammarForPath(path string) (Grammar, error) {
	ext := filepath.Ext(path)
	g, err := GrammarForExtension(ext)
	if err != nil {
		return Grammar{}, snerrors.NewUnsupportedLanguageError(path, ext)
	}
	return g, nil
}

// GrammarForLanguage looks a grammar up by name or common alias.
func GrammarForLanguage(name string) (Grammar, error) {
	lang, err := ParseLanguage(name)
	if err != nil {
		return Grammar{}, err
	}
	for _, g := range builtinGrammars {
		if g.Language == lang {
			return g, nil
		}
	}
	return Grammar{}, fmt.Errorf("no grammar registered for %s", lang)
}

// ParseLanguage normalizes a user supplied language name.
func ParseLanguage(name string) (Language, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	if alias, ok := languageAliases[n]; ok {
		return alias, nil
	}
	for _, g := range builtinGrammars {
		if string(g.Language) == n {
			return g.Language, nil
		}
	}
	return "", fmt.Errorf("unknown language %q", name)
}

// Grammars returns every built-in grammar, sorted by language name.
func Grammars() []Grammar {
	out := make([]Grammar, len(builtinGrammars))
	copy(out, builtinGrammars)
	sort.Slice(out, func(i, j int) bool { return out[i].Language < out[j].Language })
	return out
}
