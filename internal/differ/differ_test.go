package differ

import (
	"testing"

	"github.com/rgehrsitz/xmldiff/internal/action"
	"github.com/rgehrsitz/xmldiff/internal/errors"
	"github.com/rgehrsitz/xmldiff/internal/xmltree"
)

func mustNew(t *testing.T, cfg Config) *Differ {
	t.Helper()
	d, err := New(cfg)
	if err != nil {
		t.Fatalf("New(%+v) error: %v", cfg, err)
	}
	return d
}

func TestNewRejectsBadConfig(t *testing.T) {
	cases := []struct {
		name string
		cfg  Config
		code string
	}{
		{"F too low", Config{F: 0, RatioMode: RatioFast}, errors.ErrConfigInvalid},
		{"F too high", Config{F: 1.5, RatioMode: RatioFast}, errors.ErrConfigInvalid},
		{"conflicting modes", Config{F: 0.5, FastMatch: true, BestMatch: true}, errors.ErrMatchModeConflict},
		{"empty unique attr name", Config{F: 0.5, UniqueAttrs: []UniqueAttr{{Name: ""}}}, errors.ErrUniqueAttrsInvalid},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(tc.cfg)
			if !errors.IsErrorCode(err, tc.code) {
				t.Errorf("New(%+v) error = %v, want code %s", tc.cfg, err, tc.code)
			}
		})
	}
}

func TestParseRatioModeUnknown(t *testing.T) {
	if _, err := ParseRatioMode("bogus"); !errors.IsErrorCode(err, errors.ErrRatioModeUnknown) {
		t.Errorf("expected ErrRatioModeUnknown, got %v", err)
	}
}

func buildRoot(tag string) *xmltree.Node { return xmltree.NewElement("", tag) }

func withText(n *xmltree.Node, text string) *xmltree.Node {
	n.SetText(text)
	return n
}

func TestDiffIdenticalTreesYieldsNoActions(t *testing.T) {
	d := mustNew(t, DefaultConfig())

	left := buildRoot("root")
	child := withText(buildRoot("item"), "hello")
	child.SetAttr("id", "1")
	left.AppendChild(child)

	right := left.Copy()

	actions, err := d.Diff(left, right)
	if err != nil {
		t.Fatalf("Diff error: %v", err)
	}
	if len(actions) != 0 {
		t.Errorf("expected no actions for identical trees, got %+v", actions)
	}
}

func TestDiffDetectsAttributeChange(t *testing.T) {
	d := mustNew(t, DefaultConfig())

	left := buildRoot("root")
	leftChild := buildRoot("item")
	leftChild.SetAttr("status", "old")
	left.AppendChild(leftChild)

	right := buildRoot("root")
	rightChild := buildRoot("item")
	rightChild.SetAttr("status", "new")
	right.AppendChild(rightChild)

	actions, err := d.Diff(left, right)
	if err != nil {
		t.Fatalf("Diff error: %v", err)
	}

	var found bool
	for _, a := range actions {
		if ua, ok := a.(action.UpdateAttrib); ok && ua.Name == "status" && ua.Value == "new" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected an UpdateAttrib(status, new) action, got %+v", actions)
	}
}

func TestDiffDetectsInsertedChild(t *testing.T) {
	d := mustNew(t, DefaultConfig())

	left := buildRoot("root")
	left.AppendChild(buildRoot("keep"))

	right := buildRoot("root")
	right.AppendChild(buildRoot("keep"))
	right.AppendChild(buildRoot("brandnew"))

	actions, err := d.Diff(left, right)
	if err != nil {
		t.Fatalf("Diff error: %v", err)
	}

	var found bool
	for _, a := range actions {
		if in, ok := a.(action.InsertNode); ok && in.Tag == "brandnew" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected an InsertNode(brandnew) action, got %+v", actions)
	}
}

func TestDiffDetectsDeletedChild(t *testing.T) {
	d := mustNew(t, DefaultConfig())

	left := buildRoot("root")
	left.AppendChild(buildRoot("keep"))
	left.AppendChild(buildRoot("goaway"))

	right := buildRoot("root")
	right.AppendChild(buildRoot("keep"))

	actions, err := d.Diff(left, right)
	if err != nil {
		t.Fatalf("Diff error: %v", err)
	}

	var found bool
	for _, a := range actions {
		if _, ok := a.(action.DeleteNode); ok {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a DeleteNode action, got %+v", actions)
	}
}

func TestDiffNamespaceInsertAndDelete(t *testing.T) {
	d := mustNew(t, DefaultConfig())

	left := buildRoot("root")
	left.SetNSDecl("app", "urn:old")

	right := buildRoot("root")
	right.SetNSDecl("space", "urn:space")

	actions, err := d.Diff(left, right)
	if err != nil {
		t.Fatalf("Diff error: %v", err)
	}

	var gotInsert, gotDelete bool
	for _, a := range actions {
		if ins, ok := a.(action.InsertNamespace); ok && ins.Prefix == "space" && ins.URI == "urn:space" {
			gotInsert = true
		}
		if del, ok := a.(action.DeleteNamespace); ok && del.Prefix == "app" {
			gotDelete = true
		}
	}
	if !gotInsert || !gotDelete {
		t.Errorf("expected InsertNamespace(space) and DeleteNamespace(app), got %+v", actions)
	}
}

func TestDiffNamespaceRebindIsFatal(t *testing.T) {
	d := mustNew(t, DefaultConfig())

	left := buildRoot("root")
	left.SetNSDecl("app", "urn:one")

	right := buildRoot("root")
	right.SetNSDecl("app", "urn:two")

	_, err := d.Diff(left, right)
	if !errors.IsErrorCode(err, errors.ErrNamespaceRebind) {
		t.Errorf("expected ErrNamespaceRebind, got %v", err)
	}
}

func TestDiffIsDeterministic(t *testing.T) {
	d := mustNew(t, DefaultConfig())

	build := func() (*xmltree.Node, *xmltree.Node) {
		left := buildRoot("root")
		for _, tag := range []string{"a", "b", "c"} {
			left.AppendChild(buildRoot(tag))
		}
		right := buildRoot("root")
		for _, tag := range []string{"c", "a", "b", "d"} {
			right.AppendChild(buildRoot(tag))
		}
		return left, right
	}

	l1, r1 := build()
	first, err := d.Diff(l1, r1)
	if err != nil {
		t.Fatalf("Diff error: %v", err)
	}

	l2, r2 := build()
	second, err := d.Diff(l2, r2)
	if err != nil {
		t.Fatalf("Diff error: %v", err)
	}

	if len(first) != len(second) {
		t.Fatalf("nondeterministic action count: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("action %d differs between runs: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestDiffUniqueAttrsOverridesContent(t *testing.T) {
	d := mustNew(t, Config{F: 0.9, RatioMode: RatioFast, UniqueAttrs: []UniqueAttr{{Name: "xml:id"}}})

	left := buildRoot("root")
	leftChild := withText(buildRoot("item"), "completely different content here")
	leftChild.SetAttr("xml:id", "stable")
	left.AppendChild(leftChild)

	right := buildRoot("root")
	rightChild := withText(buildRoot("item"), "totally unrelated text now")
	rightChild.SetAttr("xml:id", "stable")
	right.AppendChild(rightChild)

	actions, err := d.Diff(left, right)
	if err != nil {
		t.Fatalf("Diff error: %v", err)
	}

	for _, a := range actions {
		if _, ok := a.(action.DeleteNode); ok {
			t.Errorf("unique_attrs match should have prevented a delete/insert pair, got %+v", actions)
		}
		if _, ok := a.(action.InsertNode); ok {
			t.Errorf("unique_attrs match should have prevented a delete/insert pair, got %+v", actions)
		}
	}
}
