package locate

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/hbollon/go-edlib"
	"github.com/surgebase/porter2"

	"github.com/standardbeagle/snip/internal/core"
)

// DeclaredName is one name node that sits directly under a declaration.
type DeclaredName struct {
	Name  string
	Start uint
}

// DeclaredNames lists, in pre-order, the name of every declaration of kind
// m.DeclarationKind. m.Target is ignored.
func DeclaredNames(c Cursor, src *core.SourceBuffer, m Matcher) ([]DeclaredName, error) {
	var names []DeclaredName
	err := Walk(c, func(c Cursor) error {
		n := c.Current()
		if n.Kind != m.NameKind {
			return nil
		}
		parent, ok := c.Parent()
		if !ok || parent.Kind != m.DeclarationKind || c.FieldName() != NameField {
			return nil
		}
		text, err := src.Text(n.StartByte, n.EndByte)
		if err != nil {
			return err
		}
		names = append(names, DeclaredName{Name: text, Start: n.StartByte})
		return nil
	})
	return names, err
}

// SuggestOptions tunes Suggest.
type SuggestOptions struct {
	Algorithm string
	Threshold float64
	Max       int
}

// DefaultSuggestOptions matches the suggest block defaults in config.
var DefaultSuggestOptions = SuggestOptions{Algorithm: "jaro-winkler", Threshold: 0.7, Max: 3}

var algorithms = map[string]edlib.Algorithm{
	"jaro-winkler":        edlib.JaroWinkler,
	"jaro":                edlib.Jaro,
	"levenshtein":         edlib.Levenshtein,
	"damerau-levenshtein": edlib.DamerauLevenshtein,
	"lcs":                 edlib.Lcs,
	"cosine":              edlib.Cosine,
	"sorensen-dice":       edlib.SorensenDice,
}

// ParseAlgorithm maps a config name to an edlib algorithm.
func ParseAlgorithm(name string) (edlib.Algorithm, error) {
	algo, ok := algorithms[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return 0, fmt.Errorf("unknown similarity algorithm %q", name)
	}
	return algo, nil
}

// Algorithms returns the accepted algorithm names, sorted.
func Algorithms() []string {
	names := make([]string, 0, len(algorithms))
	for name := range algorithms {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

type scored struct {
	name  string
	score float32
	order int
}

// Suggest ranks candidate names by similarity to target and returns at most
// opts.Max distinct names scoring at or above opts.Threshold, best first.
// Ties keep candidate order. An exact match is never suggested.
func Suggest(target string, candidates []DeclaredName, opts SuggestOptions) ([]string, error) {
	if opts.Max <= 0 || target == "" {
		return nil, nil
	}
	algo, err := ParseAlgorithm(opts.Algorithm)
	if err != nil {
		return nil, err
	}

	targetKey := stemKey(target)
	seen := make(map[string]bool, len(candidates))
	var ranked []scored
	for i, c := range candidates {
		if c.Name == target || seen[c.Name] {
			continue
		}
		seen[c.Name] = true

		score, err := edlib.StringsSimilarity(target, c.Name, algo)
		if err != nil {
			return nil, err
		}
		// Inflections of the same words (runs/run, startServers/startServer)
		if targetKey != "" && stemKey(c.Name) == targetKey {
			score = 1
		}
		if float64(score) >= opts.Threshold {
			ranked = append(ranked, scored{name: c.Name, score: score, order: i})
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].order < ranked[j].order
	})

	if len(ranked) > opts.Max {
		ranked = ranked[:opts.Max]
	}
	out := make([]string, len(ranked))
	for i, r := range ranked {
		out[i] = r.name
	}
	return out, nil
}

// stemKey splits an identifier into its camelCase and snake_case words and
// joins their lowercased porter2 stems. Words shorter than three letters are
// kept as is.
func stemKey(name string) string {
	words := splitIdentifier(name)
	for i, w := range words {
		w = strings.ToLower(w)
		if len(w) >= 3 {
			w = porter2.Stem(w)
		}
		words[i] = w
	}
	return strings.Join(words, " ")
}

// splitIdentifier breaks name at separators, lower-to-upper transitions,
// letter/digit changes and the end of an acronym (HTTPServer -> HTTP Server).
func splitIdentifier(name string) []string {
	runes := []rune(name)
	var words []string
	start := -1
	flush := func(end int) {
		if start >= 0 && end > start {
			words = append(words, string(runes[start:end]))
		}
		start = -1
	}

	for i, r := range runes {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			flush(i)
			continue
		}
		if start < 0 {
			start = i
			continue
		}
		prev := runes[i-1]
		switch {
		case unicode.IsDigit(r) != unicode.IsDigit(prev):
			flush(i)
		case unicode.IsUpper(r) && unicode.IsLower(prev):
			flush(i)
		case unicode.IsUpper(r) && unicode.IsUpper(prev) && i+1 < len(runes) && unicode.IsLower(runes[i+1]):
			flush(i)
		}
		if start < 0 {
			start = i
		}
	}
	flush(len(runes))
	return words
}
