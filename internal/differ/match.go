package differ

import (
	"github.com/rgehrsitz/xmldiff/internal/lcs"
	"github.com/rgehrsitz/xmldiff/internal/xmltree"
)

// Match is one accepted pairing between a left and a right node.
type Match struct {
	L, R  *xmltree.Node
	Score float64
}

// MatchSet is the differ's node correspondence, keyed by pointer
// identity in both directions, plus the score each left node's pairing
// was accepted at.
type MatchSet struct {
	L2R   map[*xmltree.Node]*xmltree.Node
	R2L   map[*xmltree.Node]*xmltree.Node
	Score map[*xmltree.Node]float64
}

func newMatchSet() *MatchSet {
	return &MatchSet{
		L2R:   map[*xmltree.Node]*xmltree.Node{},
		R2L:   map[*xmltree.Node]*xmltree.Node{},
		Score: map[*xmltree.Node]float64{},
	}
}

// Add records (l, r) as paired at the given score.
func (m *MatchSet) Add(l, r *xmltree.Node, score float64) {
	m.L2R[l] = r
	m.R2L[r] = l
	m.Score[l] = score
}

// RightOf returns l's partner on the right, if any.
func (m *MatchSet) RightOf(l *xmltree.Node) (*xmltree.Node, bool) {
	r, ok := m.L2R[l]
	return r, ok
}

// LeftOf returns r's partner on the left, if any.
func (m *MatchSet) LeftOf(r *xmltree.Node) (*xmltree.Node, bool) {
	l, ok := m.R2L[r]
	return l, ok
}

// Matches returns every accepted pairing.
func (m *MatchSet) Matches() []Match {
	out := make([]Match, 0, len(m.L2R))
	for l, r := range m.L2R {
		out = append(out, Match{L: l, R: r, Score: m.Score[l]})
	}
	return out
}

// match computes the match set between leftRoot and rightRoot.
//
// Both trees are enumerated once each, in post-order (children before
// parent), exactly as the reference implementation's
// post_order_traverse does: root is excluded from each pool, the
// configured fast/best/generic strategy runs once over the two full
// pools, and finally the two roots are paired unconditionally. Running
// fast/best/generic matching over the whole-tree sequence in one pass
// (rather than per-depth-level) also keeps fastMatchLevel's LCS index
// pairs monotonic across the entire tree, not just within one level.
func (d *Differ) match(leftRoot, rightRoot *xmltree.Node) *MatchSet {
	ms := newMatchSet()

	lpool := withoutRoot(xmltree.PostOrder(leftRoot), leftRoot)
	rpool := withoutRoot(xmltree.PostOrder(rightRoot), rightRoot)

	switch {
	case d.cfg.FastMatch:
		d.fastMatchLevel(ms, lpool, rpool)
	case d.cfg.BestMatch:
		d.bestMatchLevel(ms, lpool, rpool)
	default:
		d.genericMatchLevel(ms, lpool, rpool)
	}

	ms.Add(leftRoot, rightRoot, 1.0)
	return ms
}

// withoutRoot drops root (PostOrder's final element) from a post-order
// sequence, returning just the proper descendants.
func withoutRoot(postOrder []*xmltree.Node, root *xmltree.Node) []*xmltree.Node {
	if n := len(postOrder); n > 0 && postOrder[n-1] == root {
		return postOrder[:n-1]
	}
	return postOrder
}

// fastMatchLevel accepts every pair in the LCS of lpool/rpool under the
// predicate node_ratio >= F.
func (d *Differ) fastMatchLevel(ms *MatchSet, lpool, rpool []*xmltree.Node) {
	pairs := lcs.Find(lpool, rpool, func(l, r *xmltree.Node) bool {
		return d.nodeRatio(l, r, ms) >= d.cfg.F
	})
	for _, p := range pairs {
		l, r := lpool[p.I], rpool[p.J]
		ms.Add(l, r, d.nodeRatio(l, r, ms))
	}
}

// bestMatchLevel first pairs every left node with any right node
// scoring a perfect 1.0 (short-circuiting further search for that
// left), then greedily matches whatever remains.
func (d *Differ) bestMatchLevel(ms *MatchSet, lpool, rpool []*xmltree.Node) {
	rRemaining := append([]*xmltree.Node(nil), rpool...)
	var lRemaining []*xmltree.Node

	for _, l := range lpool {
		idx := -1
		for i, r := range rRemaining {
			if d.nodeRatio(l, r, ms) >= 1.0 {
				idx = i
				break
			}
		}
		if idx >= 0 {
			ms.Add(l, rRemaining[idx], 1.0)
			rRemaining = append(rRemaining[:idx], rRemaining[idx+1:]...)
			continue
		}
		lRemaining = append(lRemaining, l)
	}

	d.genericMatchLevel(ms, lRemaining, rRemaining)
}

// genericMatchLevel greedily pairs each left node, in order, with the
// highest-scoring remaining right node at or above F, shortcutting the
// scan on a perfect 1.0. Ties are broken by the first candidate
// encountered.
func (d *Differ) genericMatchLevel(ms *MatchSet, lpool, rpool []*xmltree.Node) {
	rRemaining := append([]*xmltree.Node(nil), rpool...)

	for _, l := range lpool {
		bestIdx := -1
		bestScore := d.cfg.F
		for i, r := range rRemaining {
			score := d.nodeRatio(l, r, ms)
			if score >= 1.0 {
				bestIdx, bestScore = i, score
				break
			}
			if score >= bestScore && (bestIdx == -1 || score > bestScore) {
				bestIdx, bestScore = i, score
			}
		}
		if bestIdx >= 0 {
			ms.Add(l, rRemaining[bestIdx], bestScore)
			rRemaining = append(rRemaining[:bestIdx], rRemaining[bestIdx+1:]...)
		}
	}
}
