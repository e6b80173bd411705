package formatter

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rgehrsitz/xmldiff/internal/action"
	"github.com/rgehrsitz/xmldiff/internal/errors"
	"github.com/rgehrsitz/xmldiff/internal/placeholder"
	"github.com/rgehrsitz/xmldiff/internal/textdiff"
	"github.com/rgehrsitz/xmldiff/internal/xmltree"
)

const (
	diffNSURI  = "http://namespaces.shoobx.com/diff"
	diffPrefix = "diff"
)

// XMLFormatter renders an edit script as the left tree re-serialized with
// change markers: a dedicated attribute in the diff namespace on every
// touched node (diff:insert, diff:delete, diff:rename, diff:add-attr,
// diff:delete-attr, diff:update-attr, diff:rename-attr), and
// diff:insert/diff:delete/diff:replace child elements wrapping the
// inserted/deleted spans of an inline text diff.
//
// Prepare mutates left and right in place — removing every comment (this
// formatter has no way to mark a comment as inserted, so it never lets
// the Differ see one) and, if TextTags is configured, substituting
// formatting sub-elements with placeholder characters so that an
// element's content diffs as plain text. Format's origLeft is expected to
// be that same post-Prepare tree, exactly as the Differ was given it —
// the pristine tree before the Differ's own internal working copy was
// mutated, not before Prepare ran.
type XMLFormatter struct {
	TextTags       map[string]bool
	FormattingTags map[string]bool
	UseReplace     bool
	Pretty         bool

	codec *placeholder.Codec
}

func (f *XMLFormatter) Prepare(left, right *xmltree.Node) {
	removeAllComments(left)
	removeAllComments(right)
	f.codec = placeholder.NewCodec(f.TextTags, f.FormattingTags)
	if len(f.TextTags) > 0 {
		f.codec.Apply(left)
		f.codec.Apply(right)
	}
}

func removeAllComments(n *xmltree.Node) {
	for _, c := range append([]*xmltree.Node(nil), n.Children()...) {
		if c.IsComment() {
			n.RemoveChild(c)
			continue
		}
		removeAllComments(c)
	}
}

func (f *XMLFormatter) Format(actions []action.Action, origLeft *xmltree.Node) (string, error) {
	result := origLeft.Copy()
	result.SetNSDecl(diffPrefix, diffNSURI)

	codec := f.codec
	if codec == nil {
		codec = placeholder.NewCodec(f.TextTags, f.FormattingTags)
	}

	for _, a := range actions {
		if err := f.applyMarked(a, result, codec); err != nil {
			return "", err
		}
	}

	codec.Undo(result)

	return renderXML(result, f.Pretty), nil
}

func diffAttr(name string) string {
	return "{" + diffNSURI + "}" + name
}

func isDeleted(n *xmltree.Node) bool {
	_, ok := n.GetAttr(diffAttr("delete"))
	return ok
}

// extendDiffAttr sets verb's diff attribute to value, or appends it with
// a ";" separator if the node already carries one from an earlier action
// (e.g. two attribute insertions on the same element).
func extendDiffAttr(n *xmltree.Node, verb, value string) {
	key := diffAttr(verb)
	if old, ok := n.GetAttr(key); ok && old != "" {
		value = old + ";" + value
	}
	n.SetAttr(key, value)
}

// realInsertPosition adjusts position, computed by the Differ against a
// tree shape with no deletion markers, to an index into result's actual
// children, which may include earlier-deleted-but-still-present siblings.
func realInsertPosition(target *xmltree.Node, position int) int {
	offset, nonDeletedSeen := 0, 0
	for _, child := range target.Children() {
		if nonDeletedSeen >= position {
			break
		}
		if isDeleted(child) {
			offset++
		} else {
			nonDeletedSeen++
		}
	}
	return position + offset
}

func (f *XMLFormatter) applyMarked(a action.Action, result *xmltree.Node, codec *placeholder.Codec) error {
	switch act := a.(type) {
	case action.DeleteAttrib:
		n, err := xmltree.Resolve(result, act.Node)
		if err != nil {
			return err
		}
		n.RemoveAttr(act.Name)
		extendDiffAttr(n, "delete-attr", act.Name)

	case action.DeleteNode:
		n, err := xmltree.Resolve(result, act.Node)
		if err != nil {
			return err
		}
		n.SetAttr(diffAttr("delete"), "")

	case action.InsertAttrib:
		n, err := xmltree.Resolve(result, act.Node)
		if err != nil {
			return err
		}
		n.SetAttr(act.Name, act.Value)
		extendDiffAttr(n, "add-attr", act.Name)

	case action.InsertNode:
		target, err := xmltree.Resolve(result, act.Parent)
		if err != nil {
			return err
		}
		prefix, local := splitClarkTag(act.Tag, target.NSMap())
		n := xmltree.NewElement(prefix, local)
		n.SetAttr(diffAttr("insert"), "")
		target.InsertChildAt(n, realInsertPosition(target, act.Position))

	case action.RenameAttrib:
		n, err := xmltree.Resolve(result, act.Node)
		if err != nil {
			return err
		}
		n.RenameAttr(act.OldName, act.NewName)
		extendDiffAttr(n, "rename-attr", act.OldName+":"+act.NewName)

	case action.MoveNode:
		n, err := xmltree.Resolve(result, act.Node)
		if err != nil {
			return err
		}
		target, err := xmltree.Resolve(result, act.NewParent)
		if err != nil {
			return err
		}
		moved := n.Copy()
		n.SetAttr(diffAttr("delete"), "")
		moved.SetAttr(diffAttr("insert"), "")
		target.InsertChildAt(moved, realInsertPosition(target, act.Position))

	case action.RenameNode:
		n, err := xmltree.Resolve(result, act.Node)
		if err != nil {
			return err
		}
		extendDiffAttr(n, "rename", n.Tag())
		n.Prefix, n.Local = splitClarkTag(act.NewTag, n.NSMap())

	case action.UpdateAttrib:
		n, err := xmltree.Resolve(result, act.Node)
		if err != nil {
			return err
		}
		old, _ := n.GetAttr(act.Name)
		n.SetAttr(act.Name, act.Value)
		extendDiffAttr(n, "update-attr", act.Name+":"+old)

	case action.UpdateTextIn:
		n, err := xmltree.Resolve(result, act.Node)
		if err != nil {
			return err
		}
		if _, inserted := n.GetAttr(diffAttr("insert")); inserted {
			n.SetText(act.NewText)
			return nil
		}
		old := n.Text()
		n.SetText("")
		f.makeDiffTags(old, act.NewText, n, nil, codec)

	case action.UpdateTextAfter:
		n, err := xmltree.Resolve(result, act.Node)
		if err != nil {
			return err
		}
		old := n.Tail()
		n.SetTail("")
		f.makeDiffTags(old, act.NewText, n.Parent(), n, codec)

	case action.InsertNamespace:
		result.SetNSDecl(act.Prefix, act.URI)

	case action.DeleteNamespace:
		result.DeleteNSDecl(act.Prefix)

	case action.InsertComment:
		// No handler: Prepare already stripped every comment from both
		// trees, so the Differ never emits InsertComment for this formatter.

	default:
		return errors.New(errors.ErrUnknown, fmt.Sprintf("unrecognized action type %T", a))
	}
	return nil
}

// makeDiffTags diffs oldText against newText and splices the result into
// parent: either parent's own leading text (afterChild == nil) or the
// tail following afterChild, inside parent's child list. Equal spans are
// appended as plain text; insert/delete/replace spans become diff:insert
// / diff:delete / diff:replace child elements (with an old-text attribute
// for replace), except a span that is a single placeholder character,
// which marks the real element it stands for directly (with a
// "-formatting" suffixed verb) and is re-emitted as the bare placeholder
// rune so Undo restores it in place.
func (f *XMLFormatter) makeDiffTags(oldText, newText string, parent, afterChild *xmltree.Node, codec *placeholder.Codec) {
	segs := textdiff.Diff(oldText, newText)
	segs = textdiff.Realign(segs, codec)
	if f.UseReplace {
		segs = textdiff.JoinDeleteInsert(segs)
	}

	cur := afterChild
	appendText := func(s string) {
		if cur == nil {
			parent.SetText(parent.Text() + s)
		} else {
			cur.SetTail(cur.Tail() + s)
		}
	}
	appendChild := func(c *xmltree.Node) {
		if cur == nil {
			parent.InsertChildAt(c, 0)
		} else {
			parent.InsertChildAt(c, cur.IndexInParent()+1)
		}
		cur = c
	}

	for _, seg := range segs {
		switch seg.Kind {
		case textdiff.Equal:
			appendText(seg.Text)
		case textdiff.Insert:
			f.appendMarkedSpan(seg.Text, "insert", "", appendText, appendChild, codec)
		case textdiff.Delete:
			f.appendMarkedSpan(seg.Text, "delete", "", appendText, appendChild, codec)
		case textdiff.Replace:
			f.appendMarkedSpan(seg.Text, "replace", seg.OldText, appendText, appendChild, codec)
		}
	}
}

func (f *XMLFormatter) appendMarkedSpan(text, verb, oldText string, appendText func(string), appendChild func(*xmltree.Node), codec *placeholder.Codec) {
	if rs := []rune(text); len(rs) == 1 && codec.IsPlaceholder(rs[0]) {
		if elem, ok := codec.ElementFor(rs[0]); ok {
			elem.SetAttr(diffAttr(verb+"-formatting"), "")
		}
		appendText(text)
		return
	}
	wrapper := xmltree.NewElement(diffPrefix, verb)
	wrapper.SetText(text)
	if verb == "replace" {
		wrapper.SetAttr("old-text", oldText)
	}
	appendChild(wrapper)
}

// renderXML serializes root (and its in-scope namespace declarations) to
// an XML string.
func renderXML(root *xmltree.Node, pretty bool) string {
	var b strings.Builder
	writeNode(&b, root, pretty, 0)
	return b.String()
}

func qualifiedName(n *xmltree.Node) string {
	if n.Prefix == "" {
		return n.Local
	}
	return n.Prefix + ":" + n.Local
}

func attrQualifiedName(n *xmltree.Node, name string) string {
	if len(name) == 0 || name[0] != '{' {
		return name
	}
	end := strings.IndexByte(name, '}')
	if end < 0 {
		return name
	}
	uri := name[1:end]
	local := name[end+1:]
	for p, u := range n.NSMap() {
		if u == uri && p != "" {
			return p + ":" + local
		}
	}
	return local
}

var textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
var attrEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", "\"", "&quot;")

func writeNode(b *strings.Builder, n *xmltree.Node, pretty bool, depth int) {
	indent := ""
	if pretty {
		indent = strings.Repeat("  ", depth)
	}
	if n.IsComment() {
		b.WriteString(indent)
		b.WriteString("<!--")
		b.WriteString(n.Text())
		b.WriteString("-->")
		return
	}

	b.WriteString(indent)
	b.WriteString("<")
	b.WriteString(qualifiedName(n))

	decls := n.OwnNSDecls()
	prefixes := make([]string, 0, len(decls))
	for p := range decls {
		prefixes = append(prefixes, p)
	}
	sort.Strings(prefixes)
	for _, p := range prefixes {
		name := "xmlns"
		if p != "" {
			name = "xmlns:" + p
		}
		fmt.Fprintf(b, " %s=\"%s\"", name, attrEscaper.Replace(decls[p]))
	}

	for _, a := range n.Attrs() {
		fmt.Fprintf(b, " %s=\"%s\"", attrQualifiedName(n, a.Name), attrEscaper.Replace(a.Value))
	}

	children := n.Children()
	if len(children) == 0 && n.Text() == "" {
		b.WriteString("/>")
		return
	}

	b.WriteString(">")
	b.WriteString(textEscaper.Replace(n.Text()))
	for _, c := range children {
		writeNode(b, c, pretty, depth+1)
		b.WriteString(textEscaper.Replace(c.Tail()))
	}
	b.WriteString("</")
	b.WriteString(qualifiedName(n))
	b.WriteString(">")
}
