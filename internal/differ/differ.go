package differ

import (
	"github.com/rgehrsitz/xmldiff/internal/action"
	"github.com/rgehrsitz/xmldiff/internal/xmltree"
)

// Diff computes the match set between left and right, then emits the
// edit script that turns a working copy of left into right. left and
// right are never mutated; the returned actions' xpaths are resolvable,
// in order, against a working copy seeded from left.
func (d *Differ) Diff(left, right *xmltree.Node) ([]action.Action, error) {
	d.fpCache = map[*xmltree.Node]string{}

	ms := d.match(left, right)

	working := left.Copy()
	ms = remapLeft(left, working, ms)

	var actions []action.Action

	nsActions, err := diffNamespaces(left, right)
	if err != nil {
		return nil, err
	}
	actions = append(actions, nsActions...)

	e := &editScripter{ms: ms, working: working, inOrder: map[*xmltree.Node]bool{}}
	mainActions, err := e.run()
	if err != nil {
		return nil, err
	}
	actions = append(actions, mainActions...)

	return actions, nil
}

// remapLeft rebuilds ms with its left-side nodes replaced by their
// counterparts in working, a fresh deep copy of origLeft. Copy()
// preserves structure and breadth-first visitation order exactly, so
// the i-th node of a breadth-first walk over origLeft corresponds to
// the i-th node of the same walk over working.
func remapLeft(origLeft, working *xmltree.Node, ms *MatchSet) *MatchSet {
	origSeq := xmltree.BreadthFirst(origLeft)
	workSeq := xmltree.BreadthFirst(working)

	remap := make(map[*xmltree.Node]*xmltree.Node, len(origSeq))
	for i, n := range origSeq {
		remap[n] = workSeq[i]
	}

	out := newMatchSet()
	for l, r := range ms.L2R {
		out.Add(remap[l], r, ms.Score[l])
	}
	return out
}
