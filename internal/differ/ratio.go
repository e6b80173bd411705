package differ

import (
	"math"

	"github.com/rgehrsitz/xmldiff/internal/lcs"
	"github.com/rgehrsitz/xmldiff/internal/xmltree"
)

// fingerprint returns n's cached fingerprint string, computing and
// caching it on first use. The cache is reset at the start of every
// Diff call.
func (d *Differ) fingerprint(n *xmltree.Node) string {
	if fp, ok := d.fpCache[n]; ok {
		return fp
	}
	fp := n.Fingerprint(d.ignoredAttrs)
	d.fpCache[n] = fp
	return fp
}

// sequenceRatio dispatches to the configured ratio mode.
func (d *Differ) sequenceRatio(a, b string) float64 {
	switch d.cfg.RatioMode {
	case RatioAccurate:
		return sequenceRatioAccurate(a, b)
	case RatioFaster:
		return sequenceRatioFaster(a, b)
	default:
		return sequenceRatioFast(a, b)
	}
}

// sequenceRatioAccurate approximates Ratcliff/Obershelp similarity as
// 2*|LCS(a,b)| / (|a|+|b|), reusing internal/lcs rather than the
// reference implementation's recursive longest-matching-block
// subdivision. The two agree closely in practice and exactly whenever
// the longest common subsequence is contiguous in both inputs; see
// DESIGN.md for the full rationale.
func sequenceRatioAccurate(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 && len(rb) == 0 {
		return 1.0
	}
	pairs := lcs.Find(ra, rb, func(x, y rune) bool { return x == y })
	return 2 * float64(len(pairs)) / float64(len(ra)+len(rb))
}

// sequenceRatioFast is Python difflib's "quick ratio": twice the size of
// the character-multiset intersection, divided by the combined length.
// Cheaper than the accurate mode because it ignores ordering.
func sequenceRatioFast(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 && len(rb) == 0 {
		return 1.0
	}
	counts := make(map[rune]int, len(ra))
	for _, c := range ra {
		counts[c]++
	}
	matched := 0
	for _, c := range rb {
		if counts[c] > 0 {
			counts[c]--
			matched++
		}
	}
	return 2 * float64(matched) / float64(len(ra)+len(rb))
}

// sequenceRatioFaster is the cheapest bound: twice the shorter length
// divided by the combined length, an upper bound no actual match can
// exceed.
func sequenceRatioFaster(a, b string) float64 {
	la, lb := len([]rune(a)), len([]rune(b))
	if la == 0 && lb == 0 {
		return 1.0
	}
	m := la
	if lb < m {
		m = lb
	}
	return 2 * float64(m) / float64(la+lb)
}

// uniqueAttrRatio reports whether a unique_attrs rule applies to the
// pair (l, r) and, if so, the ratio it forces: 1.0 for equal values,
// 0 otherwise.
func (d *Differ) uniqueAttrRatio(l, r *xmltree.Node) (float64, bool) {
	for _, rule := range d.cfg.UniqueAttrs {
		if rule.Tag != "" && (l.Tag() != rule.Tag || r.Tag() != rule.Tag) {
			continue
		}
		lv, lok := l.GetAttr(rule.Name)
		rv, rok := r.GetAttr(rule.Name)
		if !lok && !rok {
			continue
		}
		if lok && rok && lv == rv {
			return 1.0, true
		}
		return 0.0, true
	}
	return 0, false
}

// leafRatio is the configured sequence ratio over two nodes'
// fingerprints, or their comment text for two comments, or 0 for a
// comment paired against an element. A matching unique_attrs rule
// bypasses the fingerprint entirely.
func (d *Differ) leafRatio(l, r *xmltree.Node) float64 {
	if l.IsComment() || r.IsComment() {
		if l.IsComment() != r.IsComment() {
			return 0
		}
		return d.sequenceRatio(xmltree.CleanupWhitespace(l.Text()), xmltree.CleanupWhitespace(r.Text()))
	}
	if ratio, ok := d.uniqueAttrRatio(l, r); ok {
		return ratio
	}
	return d.sequenceRatio(d.fingerprint(l), d.fingerprint(r))
}

// childRatioOf is the fraction of l's children already matched to one
// of r's children, divided by the larger child count. It is undefined
// (ok=false) when both nodes are leaves.
func childRatioOf(l, r *xmltree.Node, ms *MatchSet) (ratio float64, ok bool) {
	lc, rc := l.Children(), r.Children()
	if len(lc) == 0 && len(rc) == 0 {
		return 0, false
	}
	matched := 0
	for _, c := range lc {
		if partner, found := ms.RightOf(c); found && partner.Parent() == r {
			matched++
		}
	}
	maxLen := len(lc)
	if len(rc) > maxLen {
		maxLen = len(rc)
	}
	return float64(matched) / float64(maxLen), true
}

// nodeRatio combines leaf and child ratios per spec: sqrt((leaf²+child²)/2)
// when both are defined, else the leaf ratio alone. Comment/element
// pairs always score 0, short-circuiting the child-ratio lookup.
func (d *Differ) nodeRatio(l, r *xmltree.Node, ms *MatchSet) float64 {
	if l.IsComment() != r.IsComment() {
		return 0
	}
	leaf := d.leafRatio(l, r)
	child, ok := childRatioOf(l, r, ms)
	if !ok {
		return leaf
	}
	return math.Sqrt((leaf*leaf + child*child) / 2)
}
