// Package xmltree is xmldiff's own tree representation: a thin,
// mutation-friendly layer with Go-pointer identity, built once from a
// document parsed by the external XML library (internal/xmlio, wrapping
// beevik/etree) and flattened back to it only at output time. Using our
// own node type rather than mutating etree.Element trees directly keeps
// the Differ and Patcher's "deep copy, then mutate freely" model simple:
// structural edits never have to keep two tree representations in sync
// mid-diff.
package xmltree

import (
	"sort"
	"strings"
)

// CommentTag is the sentinel tag reported by Tag() for comment nodes.
const CommentTag = "#comment"

// Attr is one ordered attribute name/value pair. Name is qualified in
// Clark notation ({uri}local) when the attribute belongs to a namespace.
type Attr struct {
	Name  string
	Value string
}

// Node is one element or comment in a working tree. Identity is the
// pointer itself, never structural value — match sets and in-order sets
// key on *Node directly, following the reference implementation's
// identity-hash requirement (spec.md §3, §9).
type Node struct {
	// Prefix is the namespace prefix as originally written ("" for an
	// unprefixed name, including names in a default namespace).
	Prefix string
	// Local is the unqualified local name, or CommentTag for comments.
	Local string

	text string
	tail string

	attrs []Attr

	// nsDecls holds this node's own xmlns declarations (prefix -> uri;
	// the default namespace is keyed by the empty string), separate from
	// attrs since namespace bindings have their own action vocabulary
	// (InsertNamespace/DeleteNamespace), not InsertAttrib/DeleteAttrib.
	nsDecls map[string]string

	parent   *Node
	children []*Node
}

// NewElement creates a detached element node.
func NewElement(prefix, local string) *Node {
	return &Node{Prefix: prefix, Local: local}
}

// NewComment creates a detached comment node holding the given text.
func NewComment(text string) *Node {
	return &Node{Local: CommentTag, text: text}
}

// IsComment reports whether n represents a comment rather than an element.
func (n *Node) IsComment() bool { return n.Local == CommentTag }

// Parent returns n's parent, or nil for a root or detached node.
func (n *Node) Parent() *Node { return n.parent }

// Children returns n's children in document order. The returned slice is
// owned by n; callers must not retain it across a mutation.
func (n *Node) Children() []*Node { return n.children }

// Text returns the character data immediately inside n, before its first
// child (or, for a comment, the comment's own text).
func (n *Node) Text() string { return n.text }

// SetText replaces n's text.
func (n *Node) SetText(s string) { n.text = s }

// Tail returns the character data immediately following n, within n's
// parent, before the next sibling.
func (n *Node) Tail() string { return n.tail }

// SetTail replaces n's tail.
func (n *Node) SetTail(s string) { n.tail = s }

// Attrs returns n's attributes in order. The returned slice must not be
// mutated directly; use SetAttr/RemoveAttr/RenameAttr.
func (n *Node) Attrs() []Attr { return n.attrs }

// GetAttr returns the value of the named attribute and whether it exists.
func (n *Node) GetAttr(name string) (string, bool) {
	for _, a := range n.attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// SetAttr sets name to value, appending a new attribute if name was not
// already present (preserving the position of an existing attribute on
// update, per the ordered-attribute-list data model).
func (n *Node) SetAttr(name, value string) {
	for i, a := range n.attrs {
		if a.Name == name {
			n.attrs[i].Value = value
			return
		}
	}
	n.attrs = append(n.attrs, Attr{Name: name, Value: value})
}

// RemoveAttr deletes the named attribute, reporting whether it was present.
func (n *Node) RemoveAttr(name string) bool {
	for i, a := range n.attrs {
		if a.Name == name {
			n.attrs = append(n.attrs[:i], n.attrs[i+1:]...)
			return true
		}
	}
	return false
}

// RenameAttr renames oldName to newName, preserving its value and its
// position in the attribute list. Reports whether oldName was present.
func (n *Node) RenameAttr(oldName, newName string) bool {
	for i, a := range n.attrs {
		if a.Name == oldName {
			n.attrs[i].Name = newName
			return true
		}
	}
	return false
}

// SetNSDecl declares prefix -> uri as one of n's own namespace bindings.
// An empty prefix declares the default namespace.
func (n *Node) SetNSDecl(prefix, uri string) {
	if n.nsDecls == nil {
		n.nsDecls = make(map[string]string)
	}
	n.nsDecls[prefix] = uri
}

// DeleteNSDecl removes one of n's own namespace bindings.
func (n *Node) DeleteNSDecl(prefix string) {
	delete(n.nsDecls, prefix)
}

// OwnNSDecls returns n's own namespace declarations, not inherited ones.
// The returned map must not be mutated; use SetNSDecl/DeleteNSDecl.
func (n *Node) OwnNSDecls() map[string]string { return n.nsDecls }

// NSMap returns the namespace map (prefix -> uri) in scope at n: n's own
// declarations overriding those inherited from ancestors, mirroring XML's
// own xmlns scoping rule.
func (n *Node) NSMap() map[string]string {
	var chain []*Node
	for cur := n; cur != nil; cur = cur.parent {
		chain = append(chain, cur)
	}
	out := make(map[string]string)
	for i := len(chain) - 1; i >= 0; i-- {
		for prefix, uri := range chain[i].nsDecls {
			out[prefix] = uri
		}
	}
	return out
}

// Tag returns the Clark-notation qualified tag ({uri}local), the bare
// local name when no namespace is bound for n's prefix, or CommentTag.
func (n *Node) Tag() string {
	if n.IsComment() {
		return CommentTag
	}
	uri := n.NSMap()[n.Prefix]
	if uri == "" {
		return n.Local
	}
	return "{" + uri + "}" + n.Local
}

// AppendChild adds c as n's last child.
func (n *Node) AppendChild(c *Node) {
	c.detach()
	c.parent = n
	n.children = append(n.children, c)
}

// InsertChildAt inserts c as n's child at position pos (0-based),
// shifting later children right.
func (n *Node) InsertChildAt(c *Node, pos int) {
	c.detach()
	if pos < 0 {
		pos = 0
	}
	if pos > len(n.children) {
		pos = len(n.children)
	}
	c.parent = n
	n.children = append(n.children, nil)
	copy(n.children[pos+1:], n.children[pos:])
	n.children[pos] = c
}

// RemoveChild detaches c from n's children. No-op if c is not a child of n.
func (n *Node) RemoveChild(c *Node) {
	for i, ch := range n.children {
		if ch == c {
			n.children = append(n.children[:i], n.children[i+1:]...)
			c.parent = nil
			return
		}
	}
}

// detach removes n from its current parent, if any.
func (n *Node) detach() {
	if n.parent != nil {
		n.parent.RemoveChild(n)
	}
}

// IndexInParent returns n's 0-based position among its parent's children,
// or -1 if n has no parent.
func (n *Node) IndexInParent() int {
	if n.parent == nil {
		return -1
	}
	for i, ch := range n.parent.children {
		if ch == n {
			return i
		}
	}
	return -1
}

// Copy returns a deep copy of the subtree rooted at n, detached from any
// parent. Used to build the working tree the Differ mutates and the tree
// the Patcher applies actions to, so the caller's original is untouched.
func (n *Node) Copy() *Node {
	cp := &Node{
		Prefix: n.Prefix,
		Local:  n.Local,
		text:   n.text,
		tail:   n.tail,
	}
	if len(n.attrs) > 0 {
		cp.attrs = append([]Attr(nil), n.attrs...)
	}
	if n.nsDecls != nil {
		cp.nsDecls = make(map[string]string, len(n.nsDecls))
		for k, v := range n.nsDecls {
			cp.nsDecls[k] = v
		}
	}
	for _, ch := range n.children {
		cp.AppendChild(ch.Copy())
	}
	return cp
}

// Fingerprint is the whitespace-cleaned string used as the basis of
// similarity scoring: the tag, the node's own text, then each
// name:value attribute pair in sorted order. Comments fingerprint as
// just their (cleaned) text. ignoredAttrs are excluded. Namespace
// attribute names have their URI stripped to the bare local attribute
// name, per spec.md §4.C.
func (n *Node) Fingerprint(ignoredAttrs map[string]bool) string {
	if n.IsComment() {
		return CleanupWhitespace(n.text)
	}

	parts := []string{n.Tag()}
	if n.text != "" {
		parts = append(parts, n.text)
	}

	names := make([]string, 0, len(n.attrs))
	values := make(map[string]string, len(n.attrs))
	for _, a := range n.attrs {
		if ignoredAttrs[a.Name] {
			continue
		}
		local := localName(a.Name)
		names = append(names, local)
		values[local] = a.Value
	}
	sort.Strings(names)
	for _, name := range names {
		parts = append(parts, name+":"+values[name])
	}

	return CleanupWhitespace(strings.Join(parts, " "))
}

func localName(clark string) string {
	if i := strings.LastIndex(clark, "}"); i >= 0 {
		return clark[i+1:]
	}
	return clark
}
