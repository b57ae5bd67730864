package locate

import (
	"errors"

	snerrors "github.com/standardbeagle/snip/internal/errors"
)

// StopWalk is returned by a VisitFunc to end the walk early. Walk itself
// then returns nil.
var StopWalk = errors.New("stop walk")

// VisitFunc is called once per node with the cursor positioned on it. It
// must not move the cursor.
type VisitFunc func(c Cursor) error

// Walk visits every node under the cursor's starting node exactly once in
// pre-order: a node before its children, children left to right.
//
// The loop keeps an explicit depth counter instead of recursing. Climbing
// back to depth 0 is the only way the walk completes; if the cursor refuses
// to ascend before that, the tree or cursor is broken and a TraversalError
// is returned.
func Walk(c Cursor, visit VisitFunc) error {
	depth := 0
	for {
		if err := visit(c); err != nil {
			if errors.Is(err, StopWalk) {
				return nil
			}
			return err
		}

		if c.GotoFirstChild() {
			depth++
			continue
		}

		// Leaf: advance to the next sibling, climbing as long as the
		// current subtree is exhausted.
		for {
			if depth == 0 {
				return nil
			}
			if c.GotoNextSibling() {
				break
			}
			if !c.GotoParent() {
				n := c.Current()
				return snerrors.NewTraversalError(depth, n.Kind, n.StartByte)
			}
			depth--
		}
	}
}
