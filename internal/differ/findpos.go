package differ

import "github.com/rgehrsitz/xmldiff/internal/xmltree"

// findPos computes the target child index for placing r's partner (or
// r itself, if about to be inserted) under lTarget:
//
//  1. Among r's preceding siblings, find those already marked in-order.
//  2. If none, position 0.
//  3. Otherwise take the last such sibling S, find its working-tree
//     partner S', and return one past the index of S' among lTarget's
//     children that are either in-order or unmatched (destined for
//     deletion) — matched-but-out-of-order children are skipped.
func (e *editScripter) findPos(r, lTarget *xmltree.Node) int {
	rParent := r.Parent()
	var lastInOrderSibling *xmltree.Node
	for _, sib := range rParent.Children() {
		if sib == r {
			break
		}
		if e.inOrder[sib] {
			lastInOrderSibling = sib
		}
	}
	if lastInOrderSibling == nil {
		return 0
	}

	sPrime, ok := e.ms.LeftOf(lastInOrderSibling)
	if !ok {
		return 0
	}

	count := 0
	for _, c := range lTarget.Children() {
		eligible := e.inOrder[c]
		if !eligible {
			if _, matched := e.ms.RightOf(c); !matched {
				eligible = true
			}
		}
		if !eligible {
			continue
		}
		count++
		if c == sPrime {
			return count
		}
	}
	return count
}
