package locate

import (
	"fmt"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/standardbeagle/snip/internal/core"
	"github.com/standardbeagle/snip/internal/debug"
	"github.com/standardbeagle/snip/internal/types"
)

// Find walks the tree under c and returns the range of the first declaration
// accepted by m, or types.NotFound once every node has been visited.
// The range is the declaration node's own span, unmodified.
func Find(c Cursor, src *core.SourceBuffer, m Matcher) (types.MatchResult, error) {
	result := types.NotFound
	visited := 0

	err := Walk(c, func(c Cursor) error {
		visited++
		decl, ok, err := m.Match(c, src)
		if err != nil {
			return err
		}
		if ok {
			result = types.Found(decl.StartByte, decl.EndByte)
			return StopWalk
		}
		return nil
	})
	if err != nil {
		return types.NotFound, err
	}

	if result.Found && !result.Range.Valid(src.Len()) {
		return types.NotFound, fmt.Errorf("declaration range %s outside %d byte buffer", result.Range, src.Len())
	}

	debug.LogLocate("target %q in %s: %s after %d nodes\n", m.Target, src.Path, result, visited)
	return result, nil
}

// FindInTree runs Find from the root of tree.
func FindInTree(tree *tree_sitter.Tree, src *core.SourceBuffer, m Matcher) (types.MatchResult, error) {
	cursor := NewTreeCursor(tree.RootNode())
	defer cursor.Close()
	return Find(cursor, src, m)
}
