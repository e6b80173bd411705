// Package placeholder implements the codec that substitutes configured
// sub-elements of a text-bearing element with private-use Unicode
// characters, so the enclosing text can be diffed as a plain string and
// the substituted elements re-materialized afterward.
package placeholder

import (
	"strings"

	"github.com/rgehrsitz/xmldiff/internal/textdiff"
	"github.com/rgehrsitz/xmldiff/internal/xmltree"
)

// startCodePoint is the first private-use code point the codec assigns.
// Characters are handed out in first-seen order and never reused within
// one Codec, so the same serialized child maps to the same character
// across both trees being compared.
const startCodePoint rune = 0xE000

type role int

const (
	roleSingle role = iota
	roleOpen
	roleClose
)

type key struct {
	serialized   string
	role         role
	closePartner string
}

// Codec replaces configured children of a text-bearing element with
// placeholder characters and reverses the process. TextTags are
// elements whose intra-element structure is diffed as text; within a
// text tag, FormattingTags are recursed into (as an open/close marker
// pair) rather than collapsed to a single marker.
type Codec struct {
	TextTags       map[string]bool
	FormattingTags map[string]bool

	next        rune
	toChar      map[key]rune
	toKey       map[rune]key
	element     map[rune]*xmltree.Node
	openToClose map[rune]rune
}

// NewCodec constructs a Codec with its character-allocation state
// initialized. TextTags/FormattingTags may be nil (treated as empty).
func NewCodec(textTags, formattingTags map[string]bool) *Codec {
	return &Codec{
		TextTags:       textTags,
		FormattingTags: formattingTags,
		next:           startCodePoint,
		toChar:         map[key]rune{},
		toKey:          map[rune]key{},
		element:        map[rune]*xmltree.Node{},
		openToClose:    map[rune]rune{},
	}
}

// IsPlaceholder reports whether r is one of this codec's allocated
// placeholder characters (of any role, including a single marker, which
// Role alone cannot distinguish from an ordinary rune).
func (c *Codec) IsPlaceholder(r rune) bool {
	_, ok := c.toKey[r]
	return ok
}

// ElementFor returns the element a placeholder rune stands for, letting
// a caller (the XML formatter) stamp a marker directly onto the real
// element before Undo re-materializes it in place.
func (c *Codec) ElementFor(r rune) (*xmltree.Node, bool) {
	n, ok := c.element[r]
	return n, ok
}

// Role implements textdiff.Realigner, so a text-diff stream containing
// this codec's placeholders can be realigned before Undo runs.
func (c *Codec) Role(r rune) textdiff.Role {
	k, ok := c.toKey[r]
	if !ok {
		return textdiff.RoleNone
	}
	switch k.role {
	case roleOpen:
		return textdiff.RoleOpen
	case roleClose:
		return textdiff.RoleClose
	default:
		return textdiff.RoleNone
	}
}

// Apply walks root breadth-first and, for every text-tag element it
// finds, collapses that element's children into its own text stream.
// Formatting tags nested inside a text tag are themselves collapsed
// first (so their markers' content already holds any further nested
// markers), then spliced in as an open-marker/text/close-marker run;
// every other child becomes a single marker. Tail text follows each
// marker/pair, and the original child is detached from the tree.
func (c *Codec) Apply(root *xmltree.Node) {
	for _, n := range xmltree.BreadthFirst(root) {
		if c.TextTags[n.Local] {
			c.collapse(n)
		}
	}
}

// collapse rewrites n's text stream to fold in every current child,
// recursing into formatting-tag children first.
func (c *Codec) collapse(n *xmltree.Node) {
	children := append([]*xmltree.Node(nil), n.Children()...)
	if len(children) == 0 {
		return
	}

	var b strings.Builder
	b.WriteString(n.Text())

	for _, child := range children {
		serialized := serialize(child)
		if c.FormattingTags[child.Local] {
			c.collapse(child)
			open := c.allocate(key{serialized: serialized, role: roleOpen, closePartner: serialized})
			closeCh := c.allocate(key{serialized: serialized, role: roleClose, closePartner: serialized})
			c.openToClose[open] = closeCh
			c.element[open] = child
			c.element[closeCh] = child
			b.WriteRune(open)
			b.WriteString(child.Text())
			b.WriteRune(closeCh)
		} else {
			single := c.allocate(key{serialized: serialized, role: roleSingle})
			c.element[single] = child
			b.WriteRune(single)
		}
		b.WriteString(child.Tail())
		n.RemoveChild(child)
	}

	n.SetText(b.String())
}

func (c *Codec) allocate(k key) rune {
	if ch, ok := c.toChar[k]; ok {
		return ch
	}
	ch := c.next
	c.next++
	c.toChar[k] = ch
	c.toKey[ch] = k
	return ch
}

// serialize renders a child's own tag, attributes, and current content
// (not its tail) as a stable string — the basis for the codec's
// same-child-same-character guarantee across the trees being compared.
func serialize(n *xmltree.Node) string {
	if n.IsComment() {
		return "<!--" + n.Text() + "-->"
	}
	var b strings.Builder
	b.WriteString("<")
	b.WriteString(n.Tag())
	for _, a := range n.Attrs() {
		b.WriteString(" ")
		b.WriteString(a.Name)
		b.WriteString("=\"")
		b.WriteString(a.Value)
		b.WriteString("\"")
	}
	b.WriteString(">")
	b.WriteString(n.Text())
	for _, child := range n.Children() {
		b.WriteString(serialize(child))
	}
	b.WriteString("</")
	b.WriteString(n.Tag())
	b.WriteString(">")
	return b.String()
}

// Undo walks root, re-materializing any placeholder character found in
// a node's text, or in the tail of one of its children, back into a
// child element (or open/close pair) at that place among the node's
// children, then recurses into every child — including ones it just
// restored, so nested formatting markers embedded in a restored
// element's own text are unpacked in turn.
func (c *Codec) Undo(root *xmltree.Node) {
	c.undoNode(root)
	for i := 0; i < len(root.Children()); i++ {
		child := root.Children()[i]
		if c.containsPlaceholder(child.Tail()) {
			segments, restored := c.splitText(child.Tail())
			child.SetTail(segments[0])
			for j, r := range restored {
				r.SetTail(segments[j+1])
				root.InsertChildAt(r, i+1+j)
			}
		}
	}
	for _, child := range root.Children() {
		c.Undo(child)
	}
}

func (c *Codec) undoNode(n *xmltree.Node) {
	if !c.containsPlaceholder(n.Text()) {
		return
	}
	segments, children := c.splitText(n.Text())
	n.SetText(segments[0])
	for i, child := range children {
		child.SetTail(segments[i+1])
		n.InsertChildAt(child, i)
	}
}

func (c *Codec) containsPlaceholder(s string) bool {
	for _, r := range s {
		if _, ok := c.toKey[r]; ok {
			return true
		}
	}
	return false
}

// splitText decodes s into the text segments surrounding each restored
// child: segments[0] is the text before the first child, and
// segments[i+1] is the text following children[i] (its tail), up to
// the next marker or the end of the string.
func (c *Codec) splitText(s string) ([]string, []*xmltree.Node) {
	runes := []rune(s)
	var segments []string
	var children []*xmltree.Node
	var cur strings.Builder

	i := 0
	for i < len(runes) {
		r := runes[i]
		k, ok := c.toKey[r]
		if !ok {
			cur.WriteRune(r)
			i++
			continue
		}

		segments = append(segments, cur.String())
		cur.Reset()
		elem := c.element[r]

		switch k.role {
		case roleSingle:
			children = append(children, elem.Copy())
			i++

		case roleOpen:
			closeRune := c.openToClose[r]
			j := i + 1
			var inner strings.Builder
			for j < len(runes) && runes[j] != closeRune {
				inner.WriteRune(runes[j])
				j++
			}
			restored := elem.Copy()
			restored.SetText(inner.String())
			children = append(children, restored)
			i = j + 1

		case roleClose:
			// An unmatched close with no corresponding open at this
			// scan level is tolerated as a no-op: it contributes no
			// child and its surrounding text simply rejoins cur.
			i++
		}
	}
	segments = append(segments, cur.String())
	return segments, children
}
