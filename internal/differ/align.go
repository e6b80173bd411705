package differ

import (
	"github.com/rgehrsitz/xmldiff/internal/action"
	"github.com/rgehrsitz/xmldiff/internal/lcs"
	"github.com/rgehrsitz/xmldiff/internal/xmltree"
)

// alignChildren takes the subsequence of l's children whose partners
// are children of r, and the subsequence of r's children whose partners
// are children of l, computes their LCS under partner-identity, marks
// every LCS pair in-order, and moves every remaining out-of-order
// l-child to its Find-Pos position under l.
func (e *editScripter) alignChildren(l, r *xmltree.Node) {
	var lSeq []*xmltree.Node
	for _, c := range l.Children() {
		if partner, ok := e.ms.RightOf(c); ok && partner.Parent() == r {
			lSeq = append(lSeq, c)
		}
	}
	var rSeq []*xmltree.Node
	for _, c := range r.Children() {
		if partner, ok := e.ms.LeftOf(c); ok && partner.Parent() == l {
			rSeq = append(rSeq, c)
		}
	}

	pairs := lcs.Find(lSeq, rSeq, func(lc, rc *xmltree.Node) bool {
		partner, ok := e.ms.RightOf(lc)
		return ok && partner == rc
	})

	inLCS := make(map[*xmltree.Node]bool, len(pairs))
	for _, p := range pairs {
		inLCS[lSeq[p.I]] = true
		e.inOrder[lSeq[p.I]] = true
		e.inOrder[rSeq[p.J]] = true
	}

	for _, lc := range lSeq {
		if inLCS[lc] {
			continue
		}
		rc, _ := e.ms.RightOf(lc)
		pos := e.findPos(rc, l)

		e.actions = append(e.actions, action.MoveNode{
			Node:      xmltree.PathOf(lc),
			NewParent: xmltree.PathOf(l),
			Position:  pos,
		})
		lc.Parent().RemoveChild(lc)
		l.InsertChildAt(lc, pos)
		e.inOrder[lc] = true
		e.inOrder[rc] = true
	}
}
