package action

import "testing"

// actionsOf pins down that every action type satisfies Action, and that
// a []Action can hold a mix of all thirteen without a type assertion —
// the closed-sum-type contract spec.md §4.B requires.
func actionsOf() []Action {
	return []Action{
		DeleteNode{Node: "/root[1]/a[1]"},
		InsertNode{Parent: "/root[1]", Tag: "b", Position: 0},
		RenameNode{Node: "/root[1]/a[1]", NewTag: "c"},
		MoveNode{Node: "/root[1]/a[1]", NewParent: "/root[1]/b[1]", Position: 0},
		UpdateTextIn{Node: "/root[1]/a[1]", NewText: "new", OldText: "old"},
		UpdateTextAfter{Node: "/root[1]/a[1]", NewText: "new", OldText: "old"},
		InsertAttrib{Node: "/root[1]/a[1]", Name: "x", Value: "1"},
		DeleteAttrib{Node: "/root[1]/a[1]", Name: "x"},
		UpdateAttrib{Node: "/root[1]/a[1]", Name: "x", Value: "2"},
		RenameAttrib{Node: "/root[1]/a[1]", OldName: "x", NewName: "y"},
		InsertComment{Parent: "/root[1]", Position: 0, Text: " hi "},
		InsertNamespace{Prefix: "app", URI: "urn:example:app"},
		DeleteNamespace{Prefix: "app"},
	}
}

func TestAllActionTypesSatisfyAction(t *testing.T) {
	acts := actionsOf()
	if len(acts) != 13 {
		t.Fatalf("expected 13 action values, got %d", len(acts))
	}
}

func TestActionEqualityIsStructural(t *testing.T) {
	a := UpdateAttrib{Node: "/root[1]", Name: "x", Value: "1"}
	b := UpdateAttrib{Node: "/root[1]", Name: "x", Value: "1"}
	c := UpdateAttrib{Node: "/root[1]", Name: "x", Value: "2"}

	if a != b {
		t.Errorf("expected structurally identical actions to be ==, got %+v != %+v", a, b)
	}
	if a == c {
		t.Errorf("expected differing actions to be !=, got %+v == %+v", a, c)
	}
}
