package textdiff

import "testing"

func render(segs []Segment) (equal, ins, del string) {
	for _, s := range segs {
		switch s.Kind {
		case Equal:
			equal += s.Text
		case Insert:
			ins += s.Text
		case Delete:
			del += s.Text
		}
	}
	return
}

func TestDiffNoChange(t *testing.T) {
	segs := Diff("hello world", "hello world")
	for _, s := range segs {
		if s.Kind != Equal {
			t.Fatalf("expected only Equal segments, got %+v", segs)
		}
	}
}

func TestDiffInsertAndDelete(t *testing.T) {
	segs := Diff("the quick fox", "the quick brown fox")
	_, ins, del := render(segs)
	if ins != "brown " {
		t.Errorf("insert text = %q, want %q", ins, "brown ")
	}
	if del != "" {
		t.Errorf("delete text = %q, want empty", del)
	}
}

func TestDiffReconstructsNewText(t *testing.T) {
	old, new_ := "abcdef", "abXYdef"
	segs := Diff(old, new_)

	var rebuilt string
	for _, s := range segs {
		switch s.Kind {
		case Equal, Insert:
			rebuilt += s.Text
		}
	}
	if rebuilt != new_ {
		t.Errorf("reconstructed new text = %q, want %q", rebuilt, new_)
	}
}

func TestJoinDeleteInsertCollapsesAdjacentPair(t *testing.T) {
	segs := []Segment{
		{Kind: Equal, Text: "foo "},
		{Kind: Delete, Text: "old"},
		{Kind: Insert, Text: "new"},
		{Kind: Equal, Text: " bar"},
	}
	got := JoinDeleteInsert(segs)
	want := []Segment{
		{Kind: Equal, Text: "foo "},
		{Kind: Replace, Text: "new", OldText: "old"},
		{Kind: Equal, Text: " bar"},
	}
	if len(got) != len(want) {
		t.Fatalf("JoinDeleteInsert len = %d, want %d: %+v", len(got), len(want), got)
	}
	for i := range got {
		if got[i] != want[i] {
			t.Errorf("segment %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestJoinDeleteInsertLeavesUnpairedAlone(t *testing.T) {
	segs := []Segment{
		{Kind: Insert, Text: "new"},
		{Kind: Equal, Text: " bar"},
		{Kind: Delete, Text: "old"},
	}
	got := JoinDeleteInsert(segs)
	if len(got) != 3 {
		t.Fatalf("expected no collapsing, got %+v", got)
	}
}

type fixedRealigner map[rune]Role

func (f fixedRealigner) Role(r rune) Role {
	if role, ok := f[r]; ok {
		return role
	}
	return RoleNone
}

const (
	openMark  rune = 0xE000
	closeMark rune = 0xE001
)

func TestRealignPassesBalancedTextThrough(t *testing.T) {
	r := fixedRealigner{openMark: RoleOpen, closeMark: RoleClose}
	want := string(openMark) + "bold" + string(closeMark)
	segs := []Segment{
		{Kind: Equal, Text: want},
	}
	got := Realign(segs, r)
	if len(got) != 1 || got[0].Text != want {
		t.Errorf("Realign mutated a balanced segment: %+v", got)
	}
}

func TestRealignTrimsUnmatchedCloseStack(t *testing.T) {
	r := fixedRealigner{openMark: RoleOpen, closeMark: RoleClose}
	segs := []Segment{
		{Kind: Insert, Text: string(openMark) + "word"},
		{Kind: Equal, Text: string(closeMark)},
	}
	got := Realign(segs, r)
	if len(got) != 2 {
		t.Fatalf("Realign changed segment count: %+v", got)
	}
	if got[0].Text != string(openMark)+"word" || got[1].Text != string(closeMark) {
		t.Errorf("Realign changed segment text: %+v", got)
	}
}
