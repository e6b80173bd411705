// Package formatter renders an edit script produced by internal/differ
// (or parsed back by ParseCompact) in one of three textual shapes: a
// bracketed compact script, a legacy-compatible script, or an
// XML-annotated tree.
package formatter

import (
	"github.com/rgehrsitz/xmldiff/internal/action"
	"github.com/rgehrsitz/xmldiff/internal/xmltree"
)

// Formatter is the contract every rendering shares. Prepare runs before
// diffing (the XML formatter uses it to strip comments and install text
// placeholders; the others no-op). Format consumes the action stream
// computed against the (possibly Prepare-mutated) trees and renders it,
// given the left tree as it stands after Prepare, the tree the actions
// were computed from.
type Formatter interface {
	Prepare(left, right *xmltree.Node)
	Format(actions []action.Action, origLeft *xmltree.Node) (string, error)
}
