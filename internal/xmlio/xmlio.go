// Package xmlio bridges the external XML library, beevik/etree, and
// xmldiff's own working representation, internal/xmltree. It is the only
// package that imports etree: every other package operates purely on
// *xmltree.Node, so the Differ, Patcher, and formatters never need to
// know how a document was actually parsed or serialized.
package xmlio

import (
	"strings"

	"github.com/beevik/etree"

	"github.com/rgehrsitz/xmldiff/internal/errors"
	"github.com/rgehrsitz/xmldiff/internal/xmltree"
)

// WhitespaceMode controls how much whitespace Load strips or normalizes
// at parse time, mirroring the reference implementation's WS_* constants.
type WhitespaceMode int

const (
	// WSNone preserves every byte of whitespace exactly as parsed.
	WSNone WhitespaceMode = iota
	// WSTags removes text nodes that consist solely of whitespace between
	// two tags (the common "pretty-printed" indentation noise), leaving
	// whitespace that sits alongside real text untouched.
	WSTags
	// WSText collapses runs of whitespace to a single space inside the
	// text content of the configured text tags.
	WSText
	// WSBoth applies both WSTags and WSText.
	WSBoth
)

// Load parses data as XML and returns its root as a *xmltree.Node tree.
// textTags names the elements WSText should normalize; it is ignored for
// WSNone and WSTags.
func Load(data []byte, mode WhitespaceMode, textTags map[string]bool) (*xmltree.Node, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, errors.WrapError(errors.ErrParseFailure, "failed to parse XML document", err)
	}
	root := doc.Root()
	if root == nil {
		return nil, errors.New(errors.ErrParseFailure, "document has no root element")
	}

	n := convertElement(root)

	if mode == WSTags || mode == WSBoth {
		stripInterTagWhitespace(n)
	}
	if mode == WSText || mode == WSBoth {
		normalizeTextWhitespace(n, textTags)
	}
	return n, nil
}

// Save serializes root as an XML document. When pretty is true the
// output is indented two spaces per level (matching the reference
// implementation's pretty_print option); otherwise the document is
// written exactly as the tree holds it, preserving any whitespace Load
// left alone.
func Save(root *xmltree.Node, pretty bool) ([]byte, error) {
	doc := etree.NewDocument()
	doc.SetRoot(convertNode(root, nil))
	if pretty {
		doc.Indent(2)
	}
	out, err := doc.WriteToBytes()
	if err != nil {
		return nil, errors.WrapError(errors.ErrUnknown, "failed to serialize XML document", err)
	}
	return out, nil
}

// convertElement walks an etree.Element tree (and its *etree.Comment /
// *etree.CharData siblings) into a detached xmltree.Node tree, resolving
// every namespace-prefixed name to Clark notation as it goes.
func convertElement(e *etree.Element) *xmltree.Node {
	n := xmltree.NewElement(e.Space, e.Tag)

	// Namespace declarations first, so attribute-name resolution below
	// (and any descendant's NSMap lookups) see them regardless of where
	// in the attribute list they were written.
	for _, a := range e.Attr {
		switch {
		case a.Space == "" && a.Key == "xmlns":
			n.SetNSDecl("", a.Value)
		case a.Space == "xmlns":
			n.SetNSDecl(a.Key, a.Value)
		}
	}
	for _, a := range e.Attr {
		if a.Space == "xmlns" || (a.Space == "" && a.Key == "xmlns") {
			continue
		}
		name := a.Key
		if a.Space != "" {
			if uri, ok := n.NSMap()[a.Space]; ok {
				name = "{" + uri + "}" + a.Key
			}
		}
		n.SetAttr(name, a.Value)
	}

	var cur *xmltree.Node
	for _, tok := range e.Child {
		switch t := tok.(type) {
		case *etree.CharData:
			if cur == nil {
				n.SetText(n.Text() + t.Data)
			} else {
				cur.SetTail(cur.Tail() + t.Data)
			}
		case *etree.Comment:
			c := xmltree.NewComment(t.Data)
			n.AppendChild(c)
			cur = c
		case *etree.Element:
			child := convertElement(t)
			n.AppendChild(child)
			cur = child
		default:
			// *etree.ProcInst and *etree.Directive carry no semantic
			// content this project's tree model represents; skip them.
		}
	}
	return n
}

// convertNode is convertElement's inverse, building an *etree.Element
// (with its namespace declarations re-expressed as xmlns attributes) for
// one xmltree.Node, recursively including its children.
func convertNode(n *xmltree.Node, parentNSMap map[string]string) *etree.Element {
	e := etree.NewElement(n.Local)
	e.Space = n.Prefix

	decls := n.OwnNSDecls()
	prefixes := make([]string, 0, len(decls))
	for p := range decls {
		prefixes = append(prefixes, p)
	}
	// Stable order keeps Save's output deterministic across runs.
	for i := 0; i < len(prefixes); i++ {
		for j := i + 1; j < len(prefixes); j++ {
			if prefixes[j] < prefixes[i] {
				prefixes[i], prefixes[j] = prefixes[j], prefixes[i]
			}
		}
	}
	var attrs []etree.Attr
	for _, p := range prefixes {
		if p == "" {
			attrs = append(attrs, etree.Attr{Key: "xmlns", Value: decls[p]})
		} else {
			attrs = append(attrs, etree.Attr{Space: "xmlns", Key: p, Value: decls[p]})
		}
	}

	nsMap := n.NSMap()
	for _, a := range n.Attrs() {
		space, local := splitClark(a.Name, nsMap)
		attrs = append(attrs, etree.Attr{Space: space, Key: local, Value: a.Value})
	}
	e.Attr = attrs

	e.SetText(n.Text())
	for _, c := range n.Children() {
		if c.IsComment() {
			e.Child = append(e.Child, &etree.Comment{Data: c.Text()})
			continue
		}
		child := convertNode(c, nsMap)
		e.AddChild(child)
		if tail := c.Tail(); tail != "" {
			e.Child = append(e.Child, &etree.CharData{Data: tail})
		}
	}
	return e
}

// splitClark resolves a Clark-notation ({uri}local) or bare attribute
// name against nsMap, preferring whichever prefix is bound to that URI.
func splitClark(name string, nsMap map[string]string) (space, local string) {
	if len(name) == 0 || name[0] != '{' {
		return "", name
	}
	end := strings.IndexByte(name, '}')
	if end < 0 {
		return "", name
	}
	uri := name[1:end]
	local = name[end+1:]
	for p, u := range nsMap {
		if u == uri && p != "" {
			return p, local
		}
	}
	return "", local
}

// stripInterTagWhitespace removes text nodes consisting solely of
// whitespace that sit between two element tags (common pretty-printer
// indentation), leaving text mixed with real content untouched.
func stripInterTagWhitespace(n *xmltree.Node) {
	children := n.Children()
	if len(children) > 0 && isAllWhitespace(n.Text()) {
		n.SetText("")
	}
	for _, c := range children {
		if isAllWhitespace(c.Tail()) {
			c.SetTail("")
		}
		stripInterTagWhitespace(c)
	}
}

// normalizeTextWhitespace collapses runs of whitespace to a single space
// inside the text of n's configured text tags (and, while descending,
// their descendants), matching the reference implementation's
// cleanup_whitespace behavior.
func normalizeTextWhitespace(n *xmltree.Node, textTags map[string]bool) {
	if !n.IsComment() && textTags[n.Tag()] {
		n.SetText(collapseWhitespace(n.Text()))
	}
	for _, c := range n.Children() {
		if textTags[n.Tag()] {
			c.SetTail(collapseWhitespace(c.Tail()))
		}
		normalizeTextWhitespace(c, textTags)
	}
}

func isAllWhitespace(s string) bool {
	if s == "" {
		return false
	}
	return strings.TrimSpace(s) == ""
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
