package patcher

import (
	"testing"

	"github.com/rgehrsitz/xmldiff/internal/action"
	"github.com/rgehrsitz/xmldiff/internal/differ"
	"github.com/rgehrsitz/xmldiff/internal/errors"
	"github.com/rgehrsitz/xmldiff/internal/xmltree"
)

// structurallyEqual compares two trees ignoring pointer identity: tag,
// text, tail, attributes (order-sensitive, matching the ordered-attribute
// data model) and children, recursively.
func structurallyEqual(a, b *xmltree.Node) bool {
	if a.IsComment() != b.IsComment() {
		return false
	}
	if a.Tag() != b.Tag() || a.Text() != b.Text() || a.Tail() != b.Tail() {
		return false
	}
	aa, ba := a.Attrs(), b.Attrs()
	if len(aa) != len(ba) {
		return false
	}
	for i := range aa {
		if aa[i] != ba[i] {
			return false
		}
	}
	ac, bc := a.Children(), b.Children()
	if len(ac) != len(bc) {
		return false
	}
	for i := range ac {
		if !structurallyEqual(ac[i], bc[i]) {
			return false
		}
	}
	return true
}

func diffThenPatch(t *testing.T, left, right *xmltree.Node) *xmltree.Node {
	t.Helper()
	d, err := differ.New(differ.DefaultConfig())
	if err != nil {
		t.Fatalf("differ.New error: %v", err)
	}
	actions, err := d.Diff(left, right)
	if err != nil {
		t.Fatalf("Diff error: %v", err)
	}
	patched, err := Patch(actions, left)
	if err != nil {
		t.Fatalf("Patch error: %v", err)
	}
	return patched
}

func TestPatchEmptyActionsReturnsEquivalentTree(t *testing.T) {
	left := xmltree.NewElement("", "root")
	left.AppendChild(xmltree.NewElement("", "child"))

	patched, err := Patch(nil, left)
	if err != nil {
		t.Fatalf("Patch error: %v", err)
	}
	if !structurallyEqual(left, patched) {
		t.Errorf("Patch(nil, T) should equal T")
	}
}

func TestRoundTripAttributeAndTextChanges(t *testing.T) {
	left := xmltree.NewElement("", "root")
	node := xmltree.NewElement("", "node")
	node.SetAttr("attr1", "ohyeah")
	node.SetAttr("attr2", "ohno")
	node.SetAttr("attr3", "maybe")
	node.SetAttr("attr0", "del")
	node.SetText("The contained text")
	node.SetTail("And a tail!")
	left.AppendChild(node)

	right := xmltree.NewElement("", "root")
	rnode := xmltree.NewElement("", "node")
	rnode.SetAttr("attr4", "ohyeah")
	rnode.SetAttr("attr2", "uhhuh")
	rnode.SetAttr("attr3", "maybe")
	rnode.SetAttr("attr5", "new")
	rnode.SetText("The new text")
	rnode.SetTail("Also a tail!")
	right.AppendChild(rnode)

	patched := diffThenPatch(t, left, right)
	if !structurallyEqual(patched, right) {
		t.Errorf("round trip mismatch:\n got  %+v\n want %+v", dump(patched), dump(right))
	}
}

func TestRoundTripStructuralSplit(t *testing.T) {
	left := xmltree.NewElement("", "document")
	story := xmltree.NewElement("", "story")
	left.AppendChild(story)
	section := xmltree.NewElement("", "section")
	section.SetAttr("ref", "3")
	story.AppendChild(section)
	for _, txt := range []string{"First", "Second", "Third"} {
		p := xmltree.NewElement("", "para")
		p.SetText(txt)
		section.AppendChild(p)
	}
	deleteme := xmltree.NewElement("", "deleteme")
	dp := xmltree.NewElement("", "para")
	dp.SetText("Delete it")
	deleteme.AppendChild(dp)
	story.AppendChild(deleteme)

	right := xmltree.NewElement("", "document")
	rstory := xmltree.NewElement("", "story")
	right.AppendChild(rstory)
	rsection1 := xmltree.NewElement("", "section")
	rsection1.SetAttr("ref", "3")
	rstory.AppendChild(rsection1)
	for _, txt := range []string{"First", "Second"} {
		p := xmltree.NewElement("", "para")
		p.SetText(txt)
		rsection1.AppendChild(p)
	}
	rsection2 := xmltree.NewElement("", "section")
	rsection2.SetAttr("ref", "4")
	rstory.AppendChild(rsection2)
	for _, txt := range []string{"Third", "Fourth"} {
		p := xmltree.NewElement("", "para")
		p.SetText(txt)
		rsection2.AppendChild(p)
	}

	patched := diffThenPatch(t, left, right)
	if !structurallyEqual(patched, right) {
		t.Errorf("round trip mismatch:\n got  %+v\n want %+v", dump(patched), dump(right))
	}
}

func TestRoundTripCommentInsertion(t *testing.T) {
	left := xmltree.NewElement("", "doc")
	left.AppendChild(withText(xmltree.NewElement("", "body"), "Something"))

	right := xmltree.NewElement("", "doc")
	right.AppendChild(xmltree.NewComment(" New comment! "))
	right.AppendChild(withText(xmltree.NewElement("", "body"), "Something"))

	patched := diffThenPatch(t, left, right)
	if !structurallyEqual(patched, right) {
		t.Errorf("round trip mismatch:\n got  %+v\n want %+v", dump(patched), dump(right))
	}
}

func withText(n *xmltree.Node, text string) *xmltree.Node {
	n.SetText(text)
	return n
}

func dump(n *xmltree.Node) string {
	s := n.Tag() + "(" + n.Text() + ")"
	for _, c := range n.Children() {
		s += "[" + dump(c) + "]"
	}
	return s
}

func TestApplyInsertAttribRejectsExisting(t *testing.T) {
	left := xmltree.NewElement("", "root")
	left.SetAttr("x", "1")

	_, err := Patch([]action.Action{
		action.InsertAttrib{Node: "/root[1]", Name: "x", Value: "2"},
	}, left)
	if !errors.IsErrorCode(err, errors.ErrAttribPrecondition) {
		t.Errorf("expected ErrAttribPrecondition, got %v", err)
	}
}

func TestApplyDeleteAttribRequiresExisting(t *testing.T) {
	left := xmltree.NewElement("", "root")

	_, err := Patch([]action.Action{
		action.DeleteAttrib{Node: "/root[1]", Name: "missing"},
	}, left)
	if !errors.IsErrorCode(err, errors.ErrAttribPrecondition) {
		t.Errorf("expected ErrAttribPrecondition, got %v", err)
	}
}

func TestApplyRenameAttribRequiresOldPresentNewAbsent(t *testing.T) {
	left := xmltree.NewElement("", "root")
	left.SetAttr("old", "v")
	left.SetAttr("new", "w")

	_, err := Patch([]action.Action{
		action.RenameAttrib{Node: "/root[1]", OldName: "old", NewName: "new"},
	}, left)
	if !errors.IsErrorCode(err, errors.ErrAttribPrecondition) {
		t.Errorf("expected ErrAttribPrecondition, got %v", err)
	}
}
