package formatter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rgehrsitz/xmldiff/internal/action"
	"github.com/rgehrsitz/xmldiff/internal/errors"
	"github.com/rgehrsitz/xmldiff/internal/xmltree"
)

// LegacyFormatter renders the same bracketed grammar as CompactFormatter
// but with the verb set of an earlier implementation, for interoperability:
// remove, insert-first, insert-after, move-first, move-after, rename,
// update, insert-comment, insert-namespace, delete-namespace. Attribute
// changes are expressed as insert/remove of a synthetic "\n<@name>\nvalue
// \n</@name>" text node rather than a dedicated attribute verb.
//
// InsertNode/MoveNode reference their position by the xpath of the
// preceding sibling rather than a numeric index, so LegacyFormatter keeps
// its own progressively-mutated copy of the left tree (the same idiom
// internal/patcher uses) to resolve that sibling at the moment each
// action is rendered, rather than indexing into the untouched original
// tree the way the reference implementation does — a lookup that breaks
// once a referenced parent or sibling was itself created earlier in the
// same script.
type LegacyFormatter struct{}

func (f *LegacyFormatter) Prepare(left, right *xmltree.Node) {}

func (f *LegacyFormatter) Format(actions []action.Action, origLeft *xmltree.Node) (string, error) {
	working := origLeft.Copy()
	nsMap := make(map[string]string)
	for k, v := range working.NSMap() {
		nsMap[k] = v
	}

	lines := make([]string, 0, len(actions))
	for _, a := range actions {
		line, err := legacyLine(a, working, nsMap)
		if err != nil {
			return "", err
		}
		lines = append(lines, line...)
	}
	return strings.Join(lines, "\n"), nil
}

func legacyLine(a action.Action, working *xmltree.Node, nsMap map[string]string) ([]string, error) {
	switch act := a.(type) {
	case action.DeleteAttrib:
		n, err := xmltree.Resolve(working, act.Node)
		if err != nil {
			return nil, err
		}
		n.RemoveAttr(act.Name)
		return []string{encodeLine("remove", quote(act.Node+"/@"+act.Name))}, nil

	case action.DeleteNode:
		n, err := xmltree.Resolve(working, act.Node)
		if err != nil {
			return nil, err
		}
		if n.Parent() != nil {
			n.Parent().RemoveChild(n)
		}
		return []string{encodeLine("remove", quote(act.Node))}, nil

	case action.InsertAttrib:
		n, err := xmltree.Resolve(working, act.Node)
		if err != nil {
			return nil, err
		}
		n.SetAttr(act.Name, act.Value)
		return []string{encodeLine("insert", quote(act.Node), quote(attribNodeText(act.Name, act.Value)))}, nil

	case action.InsertNode:
		parent, err := xmltree.Resolve(working, act.Parent)
		if err != nil {
			return nil, err
		}
		prefix, local := splitClarkTag(act.Tag, nsMap)
		newNode := xmltree.NewElement(prefix, local)
		var line string
		if act.Position == 0 {
			line = encodeLine("insert-first", quote(act.Parent), quote(tagNodeText(act.Tag)))
		} else {
			if act.Position-1 >= len(parent.Children()) {
				return nil, errors.New(errors.ErrXPathResolution,
					fmt.Sprintf("InsertNode: position %d has no preceding sibling under %s", act.Position, act.Parent))
			}
			sibling := parent.Children()[act.Position-1]
			line = encodeLine("insert-after", quote(xmltree.PathOf(sibling)), quote(tagNodeText(act.Tag)))
		}
		parent.InsertChildAt(newNode, act.Position)
		return []string{line}, nil

	case action.RenameAttrib:
		n, err := xmltree.Resolve(working, act.Node)
		if err != nil {
			return nil, err
		}
		val, _ := n.GetAttr(act.OldName)
		n.RenameAttr(act.OldName, act.NewName)
		return []string{
			encodeLine("remove", quote(act.Node+"/@"+act.OldName)),
			encodeLine("insert", quote(act.Node), quote(attribNodeText(act.NewName, val))),
		}, nil

	case action.MoveNode:
		n, err := xmltree.Resolve(working, act.Node)
		if err != nil {
			return nil, err
		}
		target, err := xmltree.Resolve(working, act.NewParent)
		if err != nil {
			return nil, err
		}
		n.Parent().RemoveChild(n)
		target.InsertChildAt(n, act.Position)
		var line string
		if act.Position == 0 {
			line = encodeLine("move-first", quote(act.Node), quote(act.NewParent))
		} else {
			sibling := target.Children()[act.Position-1]
			line = encodeLine("move-after", quote(act.Node), quote(xmltree.PathOf(sibling)))
		}
		return []string{line}, nil

	case action.RenameNode:
		n, err := xmltree.Resolve(working, act.Node)
		if err != nil {
			return nil, err
		}
		n.Prefix, n.Local = splitClarkTag(act.NewTag, nsMap)
		return []string{encodeLine("rename", quote(act.Node), quote(act.NewTag))}, nil

	case action.UpdateAttrib:
		n, err := xmltree.Resolve(working, act.Node)
		if err != nil {
			return nil, err
		}
		n.SetAttr(act.Name, act.Value)
		return []string{encodeLine("update", quote(act.Node+"/@"+act.Name), quote(act.Value))}, nil

	case action.UpdateTextIn:
		n, err := xmltree.Resolve(working, act.Node)
		if err != nil {
			return nil, err
		}
		n.SetText(act.NewText)
		return []string{encodeLine("update", quote(act.Node+"/text()[1]"), quote(act.NewText))}, nil

	case action.UpdateTextAfter:
		n, err := xmltree.Resolve(working, act.Node)
		if err != nil {
			return nil, err
		}
		n.SetTail(act.NewText)
		return []string{encodeLine("update", quote(act.Node+"/text()[2]"), quote(act.NewText))}, nil

	case action.InsertComment:
		parent, err := xmltree.Resolve(working, act.Parent)
		if err != nil {
			return nil, err
		}
		parent.InsertChildAt(xmltree.NewComment(act.Text), act.Position)
		return []string{encodeLine("insert-comment", quote(act.Parent), strconv.Itoa(act.Position), quote(act.Text))}, nil

	case action.InsertNamespace:
		nsMap[act.Prefix] = act.URI
		working.SetNSDecl(act.Prefix, act.URI)
		return []string{encodeLine("insert-namespace", quote(act.Prefix), quote(act.URI))}, nil

	case action.DeleteNamespace:
		delete(nsMap, act.Prefix)
		working.DeleteNSDecl(act.Prefix)
		return []string{encodeLine("delete-namespace", quote(act.Prefix))}, nil

	default:
		return nil, errors.New(errors.ErrUnknown, fmt.Sprintf("unrecognized action type %T", a))
	}
}

func attribNodeText(name, value string) string {
	return "\n<@" + name + ">\n" + value + "\n</@" + name + ">"
}

func tagNodeText(tag string) string {
	return "\n<" + tag + "/>"
}

// splitClarkTag turns a Clark-notation tag ({uri}local) or bare local
// name into (prefix, local) against nsMap, preferring the default/empty
// prefix when more than one is bound to the same URI.
func splitClarkTag(tag string, nsMap map[string]string) (prefix, local string) {
	if len(tag) == 0 || tag[0] != '{' {
		return "", tag
	}
	end := strings.IndexByte(tag, '}')
	if end < 0 {
		return "", tag
	}
	uri := tag[1:end]
	local = tag[end+1:]

	if u, ok := nsMap[""]; ok && u == uri {
		return "", local
	}
	for p, u := range nsMap {
		if u == uri {
			prefix = p
		}
	}
	return prefix, local
}
