// Package locate finds a named method declaration in a concrete syntax tree
// and reports the byte range of the declaration.
//
// The search is a single pre-order pass over the tree driven by a cursor
// (first child / next sibling / parent transitions), so traversal cost does
// not depend on Go stack depth. The first declaration whose name node equals
// the target wins.
package locate

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// Node is a read-only snapshot of the syntax node under a cursor.
type Node struct {
	Kind      string
	StartByte uint
	EndByte   uint
}

// Cursor navigates a syntax tree. Goto* methods report whether the move
// happened; a failed move leaves the cursor where it was.
type Cursor interface {
	Current() Node
	// Parent returns the immediate parent of the current node, if any.
	Parent() (Node, bool)
	// FieldName is the field the current node fills in its parent, or "".
	FieldName() string
	GotoFirstChild() bool
	GotoNextSibling() bool
	GotoParent() bool
}

// TreeCursor adapts a tree-sitter cursor to Cursor.
type TreeCursor struct {
	c *tree_sitter.TreeCursor
}

// NewTreeCursor starts a cursor at node. The cursor cannot leave node's
// subtree. Call Close when done.
func NewTreeCursor(node *tree_sitter.Node) *TreeCursor {
	return &TreeCursor{c: node.Walk()}
}

func snapshot(n *tree_sitter.Node) Node {
	return Node{Kind: n.Kind(), StartByte: n.StartByte(), EndByte: n.EndByte()}
}

func (t *TreeCursor) Current() Node {
	return snapshot(t.c.Node())
}

func (t *TreeCursor) Parent() (Node, bool) {
	p := t.c.Node().Parent()
	if p == nil {
		return Node{}, false
	}
	return snapshot(p), true
}

func (t *TreeCursor) FieldName() string { return t.c.FieldName() }

func (t *TreeCursor) GotoFirstChild() bool  { return t.c.GotoFirstChild() }
func (t *TreeCursor) GotoNextSibling() bool { return t.c.GotoNextSibling() }
func (t *TreeCursor) GotoParent() bool      { return t.c.GotoParent() }

// Close releases the underlying tree-sitter cursor
func (t *TreeCursor) Close() {
	if t.c != nil {
		t.c.Close()
		t.c = nil
	}
}
