package parser

import (
	"errors"
	"sync"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/standardbeagle/snip/internal/core"
	"github.com/standardbeagle/snip/internal/debug"
	snerrors "github.com/standardbeagle/snip/internal/errors"
)

// parserPoolData encapsulates the pool and initialization for a language
type parserPoolData struct {
	pool    sync.Pool
	once    sync.Once
	lang    *tree_sitter.Language
	initErr error
}

// Language-specific parser pools. Each language has its own pool so
// concurrent extractions over mixed-language inputs don't contend.
var (
	parserPools   = make(map[Language]*parserPoolData)
	parserPoolsMu sync.Mutex
)

func poolFor(g Grammar) *parserPoolData {
	parserPoolsMu.Lock()
	defer parserPoolsMu.Unlock()

	data, ok := parserPools[g.Language]
	if !ok {
		data = &parserPoolData{}
		parserPools[g.Language] = data
	}
	return data
}

// getParser returns a parser configured for g from the language pool.
// Call releaseParser when done.
func getParser(g Grammar) (*tree_sitter.Parser, error) {
	if g.load == nil {
		return nil, snerrors.NewParseError("", string(g.Language), errors.New("grammar has no language binding"))
	}
	data := poolFor(g)

	// Initialize pool once per language
	data.once.Do(func() {
		data.lang = g.TSLanguage()
		probe := tree_sitter.NewParser()
		if err := probe.SetLanguage(data.lang); err != nil {
			data.initErr = err
			probe.Close()
			return
		}
		data.pool.New = func() any {
			p := tree_sitter.NewParser()
			// Language was validated by the probe above
			_ = p.SetLanguage(data.lang)
			return p
		}
		data.pool.Put(probe)
	})
	if data.initErr != nil {
		return nil, snerrors.NewParseError("", string(g.Language), data.initErr)
	}

	return data.pool.Get().(*tree_sitter.Parser), nil
}

// releaseParser returns a parser to its language pool for reuse
func releaseParser(g Grammar, p *tree_sitter.Parser) {
	if p == nil {
		return
	}
	p.Reset()
	poolFor(g).pool.Put(p)
}

// Parse builds a concrete syntax tree for src using grammar g. The caller
// owns the returned tree and must Close it.
func Parse(g Grammar, src *core.SourceBuffer) (*tree_sitter.Tree, error) {
	p, err := getParser(g)
	if err != nil {
		if pe, ok := err.(*snerrors.ParseError); ok {
			pe.Path = src.Path
		}
		return nil, err
	}
	defer releaseParser(g, p)

	tree := p.Parse(src.Content, nil)
	if tree == nil {
		return nil, snerrors.NewParseError(src.Path, string(g.Language), errors.New("parser returned no tree"))
	}

	root := tree.RootNode()
	debug.LogParse("parsed %s as %s: %d bytes, root=%s, errors=%v\n",
		src.Path, g.Language, src.Len(), root.Kind(), root.HasError())
	return tree, nil
}
