package xmltree

// PostOrder returns all descendants of root, then root itself, in
// post-order: every node's children are visited (recursively) before the
// node. Used by the Differ's generic matcher and fast-match LCS phase.
//
// Materialized as a slice rather than the lazy generator the reference
// implementation uses, since Go has no equivalent idiom the rest of the
// corpus reaches for; the teacher's own recursive walkers build slices
// the same way.
func PostOrder(root *Node) []*Node {
	var out []*Node
	var walk func(n *Node)
	walk = func(n *Node) {
		for _, c := range n.children {
			walk(c)
		}
		out = append(out, n)
	}
	walk(root)
	return out
}

// ReversePostOrder returns all descendants of root, then root itself,
// visiting each node's children in reverse order before the node. Used
// by the Differ's delete pass so that deletions are emitted leaf-first.
func ReversePostOrder(root *Node) []*Node {
	var out []*Node
	var walk func(n *Node)
	walk = func(n *Node) {
		for i := len(n.children) - 1; i >= 0; i-- {
			walk(n.children[i])
		}
		out = append(out, n)
	}
	walk(root)
	return out
}

// BreadthFirst returns root, then its children level by level. Used by
// the Differ's main edit-script pass.
func BreadthFirst(root *Node) []*Node {
	out := []*Node{root}
	queue := []*Node{root}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		for _, c := range n.children {
			out = append(out, c)
			queue = append(queue, c)
		}
	}
	return out
}
