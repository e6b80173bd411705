// Package patcher replays an edit script produced by internal/differ (or
// parsed by internal/formatter's diff parser) against a copy of a tree,
// producing a tree equal to the differ's original right tree.
package patcher

import (
	"fmt"
	"sort"

	"github.com/rgehrsitz/xmldiff/internal/action"
	"github.com/rgehrsitz/xmldiff/internal/errors"
	"github.com/rgehrsitz/xmldiff/internal/xmltree"
)

// Patch deep-copies left, applies every action in order against the
// copy, and returns it. Applying is literal and order-preserving: actions
// must be in the same breadth-first-inserts/moves/attrs-then-
// reverse-post-order-deletes order the Differ emits them in.
func Patch(actions []action.Action, left *xmltree.Node) (*xmltree.Node, error) {
	working := left.Copy()
	nsMap := rootNSMap(working)

	for i, a := range actions {
		if err := apply(a, working, nsMap); err != nil {
			return nil, errors.Wrap(errors.ErrAttribPrecondition,
				fmt.Sprintf("applying action %d", i), err.Error())
		}
	}
	return working, nil
}

// rootNSMap seeds a mutable namespace map (prefix -> uri) from the
// working tree's root, consulted and updated by Insert/DeleteNamespace
// so later xpath resolution and element creation see the current
// bindings.
func rootNSMap(root *xmltree.Node) map[string]string {
	out := make(map[string]string)
	for k, v := range root.NSMap() {
		out[k] = v
	}
	return out
}

func apply(a action.Action, working *xmltree.Node, nsMap map[string]string) error {
	switch act := a.(type) {
	case action.InsertNamespace:
		nsMap[act.Prefix] = act.URI
		working.SetNSDecl(act.Prefix, act.URI)
		return nil

	case action.DeleteNamespace:
		delete(nsMap, act.Prefix)
		working.DeleteNSDecl(act.Prefix)
		return nil

	case action.InsertNode:
		parent, err := xmltree.Resolve(working, act.Parent)
		if err != nil {
			return err
		}
		prefix, local := splitClark(act.Tag, nsMap)
		n := xmltree.NewElement(prefix, local)
		parent.InsertChildAt(n, act.Position)
		return nil

	case action.InsertComment:
		parent, err := xmltree.Resolve(working, act.Parent)
		if err != nil {
			return err
		}
		parent.InsertChildAt(xmltree.NewComment(act.Text), act.Position)
		return nil

	case action.DeleteNode:
		n, err := xmltree.Resolve(working, act.Node)
		if err != nil {
			return err
		}
		if n.Parent() == nil {
			return errors.New(errors.ErrAttribPrecondition, "cannot delete the document root")
		}
		n.Parent().RemoveChild(n)
		return nil

	case action.RenameNode:
		n, err := xmltree.Resolve(working, act.Node)
		if err != nil {
			return err
		}
		n.Prefix, n.Local = splitClark(act.NewTag, nsMap)
		return nil

	case action.MoveNode:
		n, err := xmltree.Resolve(working, act.Node)
		if err != nil {
			return err
		}
		newParent, err := xmltree.Resolve(working, act.NewParent)
		if err != nil {
			return err
		}
		n.Parent().RemoveChild(n)
		newParent.InsertChildAt(n, act.Position)
		return nil

	case action.UpdateTextIn:
		n, err := xmltree.Resolve(working, act.Node)
		if err != nil {
			return err
		}
		n.SetText(act.NewText)
		return nil

	case action.UpdateTextAfter:
		n, err := xmltree.Resolve(working, act.Node)
		if err != nil {
			return err
		}
		n.SetTail(act.NewText)
		return nil

	case action.InsertAttrib:
		n, err := xmltree.Resolve(working, act.Node)
		if err != nil {
			return err
		}
		if _, present := n.GetAttr(act.Name); present {
			return errors.New(errors.ErrAttribPrecondition,
				fmt.Sprintf("InsertAttrib: %q already present on %s", act.Name, act.Node))
		}
		n.SetAttr(act.Name, act.Value)
		return nil

	case action.DeleteAttrib:
		n, err := xmltree.Resolve(working, act.Node)
		if err != nil {
			return err
		}
		if !n.RemoveAttr(act.Name) {
			return errors.New(errors.ErrAttribPrecondition,
				fmt.Sprintf("DeleteAttrib: %q not present on %s", act.Name, act.Node))
		}
		return nil

	case action.UpdateAttrib:
		n, err := xmltree.Resolve(working, act.Node)
		if err != nil {
			return err
		}
		if _, present := n.GetAttr(act.Name); !present {
			return errors.New(errors.ErrAttribPrecondition,
				fmt.Sprintf("UpdateAttrib: %q not present on %s", act.Name, act.Node))
		}
		n.SetAttr(act.Name, act.Value)
		return nil

	case action.RenameAttrib:
		n, err := xmltree.Resolve(working, act.Node)
		if err != nil {
			return err
		}
		if _, present := n.GetAttr(act.OldName); !present {
			return errors.New(errors.ErrAttribPrecondition,
				fmt.Sprintf("RenameAttrib: %q not present on %s", act.OldName, act.Node))
		}
		if _, present := n.GetAttr(act.NewName); present {
			return errors.New(errors.ErrAttribPrecondition,
				fmt.Sprintf("RenameAttrib: %q already present on %s", act.NewName, act.Node))
		}
		n.RenameAttr(act.OldName, act.NewName)
		return nil

	default:
		return errors.New(errors.ErrUnknown, fmt.Sprintf("unrecognized action type %T", a))
	}
}

// splitClark turns a Clark-notation tag ({uri}local) or bare local name
// into (prefix, local), choosing whichever prefix nsMap currently binds
// to that URI (preferring the empty/default prefix when more than one
// qualifies, for stability) and falling back to the bare local name when
// the tag carries no namespace.
func splitClark(tag string, nsMap map[string]string) (prefix, local string) {
	if len(tag) == 0 || tag[0] != '{' {
		return "", tag
	}
	end := -1
	for i, r := range tag {
		if r == '}' {
			end = i
			break
		}
	}
	if end < 0 {
		return "", tag
	}
	uri := tag[1:end]
	local = tag[end+1:]

	var candidates []string
	for p, u := range nsMap {
		if u == uri {
			candidates = append(candidates, p)
		}
	}
	sort.Strings(candidates)
	for _, p := range candidates {
		if p == "" {
			return "", local
		}
	}
	if len(candidates) > 0 {
		return candidates[0], local
	}
	return "", local
}
