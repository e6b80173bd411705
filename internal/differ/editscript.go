package differ

import (
	"sort"

	"github.com/rgehrsitz/xmldiff/internal/action"
	"github.com/rgehrsitz/xmldiff/internal/errors"
	"github.com/rgehrsitz/xmldiff/internal/xmltree"
)

// editScripter carries the mutable state of one edit-script generation
// pass: the match set (grown as insertions create new working-tree
// nodes), the working tree root, the in-order set, and the actions
// emitted so far.
type editScripter struct {
	ms      *MatchSet
	working *xmltree.Node
	inOrder map[*xmltree.Node]bool
	actions []action.Action
}

// run walks the right tree breadth-first, emitting insert/move/rename/
// attribute/align-children actions as it goes, then performs the
// reverse-post-order delete pass over whatever remains unmatched in the
// working tree.
func (e *editScripter) run() ([]action.Action, error) {
	right := e.rightRootOf()

	queue := []*xmltree.Node{right}
	for len(queue) > 0 {
		r := queue[0]
		queue = queue[1:]
		queue = append(queue, r.Children()...)

		if err := e.visit(r); err != nil {
			return nil, err
		}
	}

	e.deletePass()

	return e.actions, nil
}

// rightRootOf recovers the right root from the match set: it's whatever
// R is paired with the working tree's root.
func (e *editScripter) rightRootOf() *xmltree.Node {
	r, _ := e.ms.RightOf(e.working)
	return r
}

func (e *editScripter) visit(r *xmltree.Node) error {
	rParent := r.Parent()

	var lTarget *xmltree.Node
	if rParent != nil {
		lt, ok := e.ms.LeftOf(rParent)
		if !ok {
			return errors.New(errors.ErrUnknown, "internal: right parent visited after its child in breadth-first order")
		}
		lTarget = lt
	}

	if l, matched := e.ms.LeftOf(r); matched {
		return e.matchCase(l, r, lTarget)
	}
	return e.insertCase(r, lTarget)
}

func (e *editScripter) insertCase(r, lTarget *xmltree.Node) error {
	pos := e.findPos(r, lTarget)

	if r.IsComment() {
		e.actions = append(e.actions, action.InsertComment{
			Parent:   xmltree.PathOf(lTarget),
			Position: pos,
			Text:     r.Text(),
		})
		l := xmltree.NewComment(r.Text())
		lTarget.InsertChildAt(l, pos)
		e.ms.Add(l, r, 1.0)
		e.inOrder[l] = true
		e.inOrder[r] = true
		return nil
	}

	e.actions = append(e.actions, action.InsertNode{
		Parent:   xmltree.PathOf(lTarget),
		Tag:      r.Tag(),
		Position: pos,
	})
	l := xmltree.NewElement(r.Prefix, r.Local)
	lTarget.InsertChildAt(l, pos)
	e.ms.Add(l, r, 1.0)
	e.inOrder[l] = true
	e.inOrder[r] = true

	for _, a := range r.Attrs() {
		l.SetAttr(a.Name, a.Value)
		e.actions = append(e.actions, action.InsertAttrib{
			Node:  xmltree.PathOf(l),
			Name:  a.Name,
			Value: a.Value,
		})
	}

	if r.Text() != "" {
		e.actions = append(e.actions, action.UpdateTextIn{
			Node: xmltree.PathOf(l), NewText: r.Text(), OldText: "",
		})
		l.SetText(r.Text())
	}
	if r.Tail() != "" {
		e.actions = append(e.actions, action.UpdateTextAfter{
			Node: xmltree.PathOf(l), NewText: r.Tail(), OldText: "",
		})
		l.SetTail(r.Tail())
	}
	return nil
}

func (e *editScripter) matchCase(l, r, lTarget *xmltree.Node) error {
	if lTarget != nil && l.Parent() != lTarget {
		pos := e.findPos(r, lTarget)
		e.actions = append(e.actions, action.MoveNode{
			Node:      xmltree.PathOf(l),
			NewParent: xmltree.PathOf(lTarget),
			Position:  pos,
		})
		l.Parent().RemoveChild(l)
		lTarget.InsertChildAt(l, pos)
		e.inOrder[l] = true
		e.inOrder[r] = true
	}

	if !l.IsComment() {
		if l.Tag() != r.Tag() {
			e.actions = append(e.actions, action.RenameNode{
				Node:   xmltree.PathOf(l),
				NewTag: r.Tag(),
			})
			l.Local = r.Local
			l.Prefix = r.Prefix
		}

		e.diffAttribs(l, r)
		e.alignChildren(l, r)
	}

	// Comments have no separate update-text action in the closed
	// vocabulary; a matched comment pair whose text differs (possible
	// when F < 1.0) gets an UpdateTextIn like an element's text, and a
	// differing tail an UpdateTextAfter.
	if l.Text() != r.Text() {
		old := l.Text()
		e.actions = append(e.actions, action.UpdateTextIn{
			Node: xmltree.PathOf(l), NewText: r.Text(), OldText: old,
		})
		l.SetText(r.Text())
	}
	if l.Tail() != r.Tail() {
		old := l.Tail()
		e.actions = append(e.actions, action.UpdateTextAfter{
			Node: xmltree.PathOf(l), NewText: r.Tail(), OldText: old,
		})
		l.SetTail(r.Tail())
	}
	return nil
}

// diffAttribs emits UpdateAttrib for common names with differing
// values, RenameAttrib for a removed/added pair sharing a value,
// InsertAttrib for every remaining added name, and DeleteAttrib for
// every remaining removed name — each group in ascending name order.
func (e *editScripter) diffAttribs(l, r *xmltree.Node) {
	lAttrs := map[string]string{}
	for _, a := range l.Attrs() {
		lAttrs[a.Name] = a.Value
	}
	rAttrs := map[string]string{}
	for _, a := range r.Attrs() {
		rAttrs[a.Name] = a.Value
	}

	var commonNames []string
	for name := range lAttrs {
		if _, ok := rAttrs[name]; ok {
			commonNames = append(commonNames, name)
		}
	}
	sort.Strings(commonNames)
	for _, name := range commonNames {
		if lAttrs[name] != rAttrs[name] {
			e.actions = append(e.actions, action.UpdateAttrib{
				Node: xmltree.PathOf(l), Name: name, Value: rAttrs[name],
			})
			l.SetAttr(name, rAttrs[name])
		}
	}

	removed := map[string]string{}
	for name, val := range lAttrs {
		if _, ok := rAttrs[name]; !ok {
			removed[name] = val
		}
	}
	added := map[string]string{}
	for name, val := range rAttrs {
		if _, ok := lAttrs[name]; !ok {
			added[name] = val
		}
	}

	var removedNames, addedNames []string
	for n := range removed {
		removedNames = append(removedNames, n)
	}
	for n := range added {
		addedNames = append(addedNames, n)
	}
	sort.Strings(removedNames)
	sort.Strings(addedNames)

	consumedRemoved := map[string]bool{}
	consumedAdded := map[string]bool{}
	for _, oldName := range removedNames {
		for _, newName := range addedNames {
			if consumedAdded[newName] {
				continue
			}
			if removed[oldName] == added[newName] {
				e.actions = append(e.actions, action.RenameAttrib{
					Node: xmltree.PathOf(l), OldName: oldName, NewName: newName,
				})
				l.RenameAttr(oldName, newName)
				consumedRemoved[oldName] = true
				consumedAdded[newName] = true
				break
			}
		}
	}

	for _, name := range addedNames {
		if consumedAdded[name] {
			continue
		}
		e.actions = append(e.actions, action.InsertAttrib{
			Node: xmltree.PathOf(l), Name: name, Value: added[name],
		})
		l.SetAttr(name, added[name])
	}
	for _, name := range removedNames {
		if consumedRemoved[name] {
			continue
		}
		e.actions = append(e.actions, action.DeleteAttrib{Node: xmltree.PathOf(l), Name: name})
		l.RemoveAttr(name)
	}
}

// deletePass walks the working tree in reverse-post-order; any node
// still unmatched is removed, leaves first, so a consumer can collapse
// a wholly-deleted subtree from its constituent DeleteNode actions.
func (e *editScripter) deletePass() {
	for _, l := range xmltree.ReversePostOrder(e.working) {
		if _, matched := e.ms.RightOf(l); matched {
			continue
		}
		if l.Parent() == nil {
			continue
		}
		e.actions = append(e.actions, action.DeleteNode{Node: xmltree.PathOf(l)})
		l.Parent().RemoveChild(l)
	}
}
