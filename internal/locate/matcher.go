package locate

import (
	"github.com/standardbeagle/snip/internal/core"
	"github.com/standardbeagle/snip/internal/debug"
)

// NameField is the field every supported grammar uses for a declaration's
// own name. Return types, receivers and parameters fill other fields.
const NameField = "name"

// Matcher decides whether a visited node is the name of the target
// declaration.
type Matcher struct {
	Target          string
	NameKind        string
	DeclarationKind string
}

// NewMatcher builds a matcher for target using the grammar's kind tags.
func NewMatcher(target, nameKind, declarationKind string) Matcher {
	return Matcher{Target: target, NameKind: nameKind, DeclarationKind: declarationKind}
}

// Match reports the owning declaration when the node under c is a name node
// whose text equals Target byte for byte and which fills the name field of
// its immediate parent declaration. Parameters, locals and call sites have a
// different parent kind; return types under the declaration sit in another
// field. Neither matches.
func (m Matcher) Match(c Cursor, src *core.SourceBuffer) (Node, bool, error) {
	n := c.Current()
	if n.Kind != m.NameKind {
		return Node{}, false, nil
	}

	text, err := src.Text(n.StartByte, n.EndByte)
	if err != nil {
		return Node{}, false, err
	}
	if text != m.Target {
		return Node{}, false, nil
	}

	parent, ok := c.Parent()
	if !ok {
		return Node{}, false, nil
	}
	debug.LogLocate("%q at byte %d: parent is %s\n", text, n.StartByte, parent.Kind)

	if parent.Kind != m.DeclarationKind || c.FieldName() != NameField {
		return Node{}, false, nil
	}
	return parent, true, nil
}
