package parser

import (
	"fmt"
	"path"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/standardbeagle/snip/internal/debug"
	snerrors "github.com/standardbeagle/snip/internal/errors"
)

// Override customizes grammar selection for one language: extra glob
// patterns that select it and optional replacement node kinds.
type Override struct {
	Language        string
	Patterns        []string
	NameKind        string
	DeclarationKind string
}

type patternRule struct {
	pattern string
	lang    Language
}

// Registry resolves a file path to a grammar. Configured glob patterns are
// tried in order before the built-in extension table.
type Registry struct {
	rules []patternRule
	kinds map[Language]Override
}

// NewRegistry validates overrides and builds a registry.
func NewRegistry(overrides []Override) (*Registry, error) {
	r := &Registry{kinds: make(map[Language]Override)}
	for _, o := range overrides {
		lang, err := ParseLanguage(o.Language)
		if err != nil {
			return nil, snerrors.NewConfigError("language", o.Language, err)
		}
		for _, p := range o.Patterns {
			if !doublestar.ValidatePattern(p) {
				return nil, snerrors.NewConfigError("language."+string(lang)+".pattern", p,
					fmt.Errorf("invalid glob pattern"))
			}
			r.rules = append(r.rules, patternRule{pattern: p, lang: lang})
		}
		if o.NameKind != "" || o.DeclarationKind != "" {
			r.kinds[lang] = o
		}
	}
	return r, nil
}

// Resolve picks the grammar for filePath.
func (r *Registry) Resolve(filePath string) (Grammar, error) {
	slashed := filepath.ToSlash(filePath)
	base := path.Base(slashed)

	for _, rule := range r.rules {
		if matchGlob(rule.pattern, slashed) || matchGlob(rule.pattern, base) {
			debug.LogParse("%s matched pattern %q -> %s\n", filePath, rule.pattern, rule.lang)
			g, err := GrammarForLanguage(string(rule.lang))
			if err != nil {
				return Grammar{}, err
			}
			return r.applyKinds(g), nil
		}
	}

	g, err := GrammarForPath(filePath)
	if err != nil {
		return Grammar{}, err
	}
	return r.applyKinds(g), nil
}

// ForLanguage returns the grammar for an explicitly named language.
func (r *Registry) ForLanguage(name string) (Grammar, error) {
	g, err := GrammarForLanguage(name)
	if err != nil {
		return Grammar{}, err
	}
	return r.applyKinds(g), nil
}

// Grammars lists every grammar with overrides applied.
func (r *Registry) Grammars() []Grammar {
	out := Grammars()
	for i := range out {
		out[i] = r.applyKinds(out[i])
	}
	return out
}

// Patterns returns the configured glob patterns for lang.
func (r *Registry) Patterns(lang Language) []string {
	var out []string
	for _, rule := range r.rules {
		if rule.lang == lang {
			out = append(out, rule.pattern)
		}
	}
	return out
}

func (r *Registry) applyKinds(g Grammar) Grammar {
	if o, ok := r.kinds[g.Language]; ok {
		return g.WithKinds(o.NameKind, o.DeclarationKind)
	}
	return g
}

func matchGlob(pattern, name string) bool {
	ok, err := doublestar.Match(pattern, name)
	if err != nil {
		// Bad pattern shouldn't break selection; patterns are validated up front
		return false
	}
	return ok
}
