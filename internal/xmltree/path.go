package xmltree

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/rgehrsitz/xmldiff/internal/errors"
)

// step returns the xpath step name for n: a qualified "prefix:local" for
// namespaced elements, the bare local name otherwise, or "comment()" for
// comment nodes.
func step(n *Node) string {
	if n.IsComment() {
		return "comment()"
	}
	if n.Prefix == "" {
		return n.Local
	}
	return n.Prefix + ":" + n.Local
}

// sameStepIndex returns n's 1-based position among its parent's children
// that share the same step() (i.e. the XPath predicate index for
// child::step[k]), or 1 if n has no parent.
func sameStepIndex(n *Node) int {
	if n.parent == nil {
		return 1
	}
	idx := 0
	s := step(n)
	for _, ch := range n.parent.children {
		if step(ch) == s {
			idx++
		}
		if ch == n {
			break
		}
	}
	return idx
}

// PathOf returns the canonical positional xpath of n: the unambiguous
// path from the document root with an explicit 1-based index on every
// step, per spec.md §3/§4.A ("using 1-based indices for every step").
func PathOf(n *Node) string {
	var segs []string
	for cur := n; cur != nil; cur = cur.parent {
		segs = append(segs, fmt.Sprintf("%s[%d]", step(cur), sameStepIndex(cur)))
	}
	for i, j := 0, len(segs)-1; i < j; i, j = i+1, j-1 {
		segs[i], segs[j] = segs[j], segs[i]
	}
	return "/" + strings.Join(segs, "/")
}

var pathStepRE = regexp.MustCompile(`^([A-Za-z_][\w.\-]*(?::[A-Za-z_][\w.\-]*)?|comment\(\))\[(\d+)\]$`)

// Resolve walks root to find the node named by path, as produced by
// PathOf. Returns ErrXPathNotFound if no node matches and
// ErrXPathAmbiguous if, implausibly, more than one sibling shares a step
// and index (which a correctly-built tree never produces, but a
// hand-authored or corrupted diff script might claim).
func Resolve(root *Node, path string) (*Node, error) {
	path = strings.TrimPrefix(path, "/")
	if path == "" {
		return nil, errors.New(errors.ErrXPathResolution, "empty xpath")
	}
	segs := strings.Split(path, "/")

	rootSeg := segs[0]
	m := pathStepRE.FindStringSubmatch(rootSeg)
	if m == nil {
		return nil, errors.Wrap(errors.ErrXPathResolution, "malformed xpath step", rootSeg)
	}
	if step(root) != m[1] {
		return nil, errors.Wrap(errors.ErrXPathNotFound, "xpath does not match document root", path)
	}

	cur := root
	for _, seg := range segs[1:] {
		m := pathStepRE.FindStringSubmatch(seg)
		if m == nil {
			return nil, errors.Wrap(errors.ErrXPathResolution, "malformed xpath step", seg)
		}
		wantStep := m[1]
		wantIdx, _ := strconv.Atoi(m[2])

		var matches []*Node
		idx := 0
		for _, ch := range cur.children {
			if step(ch) == wantStep {
				idx++
				if idx == wantIdx {
					matches = append(matches, ch)
				}
			}
		}
		switch len(matches) {
		case 0:
			return nil, errors.Wrap(errors.ErrXPathNotFound, "xpath step not found", path)
		case 1:
			cur = matches[0]
		default:
			return nil, errors.Wrap(errors.ErrXPathAmbiguous, "xpath step ambiguous", path)
		}
	}
	return cur, nil
}
