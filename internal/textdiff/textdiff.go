// Package textdiff is xmldiff's text_diff(a, b) collaborator: Myers diff
// with semantic cleanup, wrapping github.com/sergi/go-diff/diffmatchpatch,
// plus the replace-collapsing and placeholder-realignment passes the XML
// formatter (internal/formatter) runs over the result before rendering
// diff:insert/diff:delete/diff:replace elements.
package textdiff

import (
	"strings"

	dmp "github.com/sergi/go-diff/diffmatchpatch"
)

// OpKind classifies one Segment of a text diff.
type OpKind int

const (
	Equal OpKind = iota
	Insert
	Delete
	// Replace only appears after JoinDeleteInsert collapses an adjacent
	// delete+insert (or insert+delete) pair.
	Replace
)

// Segment is one run of a text diff. OldText is only meaningful when
// Kind is Replace, carrying the text Text replaced.
type Segment struct {
	Kind    OpKind
	Text    string
	OldText string
}

// Diff runs Myers diff plus semantic cleanup over oldText and newText,
// returning a sequence of equal/insert/delete segments.
func Diff(oldText, newText string) []Segment {
	differ := dmp.New()
	diffs := differ.DiffMain(oldText, newText, false)
	diffs = differ.DiffCleanupSemantic(diffs)

	out := make([]Segment, 0, len(diffs))
	for _, d := range diffs {
		var kind OpKind
		switch d.Type {
		case dmp.DiffEqual:
			kind = Equal
		case dmp.DiffInsert:
			kind = Insert
		case dmp.DiffDelete:
			kind = Delete
		}
		out = append(out, Segment{Kind: kind, Text: d.Text})
	}
	return out
}

// JoinDeleteInsert collapses an adjacent (Insert, Delete) or (Delete,
// Insert) pair into a single Replace segment — the new text as Text, the
// old text as OldText — mirroring the reference formatter's
// _join_delete_insert. Non-adjacent delete/insert pairs are left alone.
func JoinDeleteInsert(segs []Segment) []Segment {
	out := make([]Segment, 0, len(segs))
	for i := 0; i < len(segs); i++ {
		if i+1 < len(segs) {
			a, b := segs[i], segs[i+1]
			if a.Kind == Insert && b.Kind == Delete {
				out = append(out, Segment{Kind: Replace, Text: a.Text, OldText: b.Text})
				i++
				continue
			}
			if a.Kind == Delete && b.Kind == Insert {
				out = append(out, Segment{Kind: Replace, Text: b.Text, OldText: a.Text})
				i++
				continue
			}
		}
		out = append(out, segs[i])
	}
	return out
}

// Role classifies a rune encountered while realigning a diff stream that
// may contain placeholder characters (internal/placeholder).
type Role int

const (
	RoleNone Role = iota
	RoleOpen
	RoleClose
)

// Realigner reports the placeholder role of a rune, so Realign can track
// open/close balance without internal/textdiff importing
// internal/placeholder (which itself depends on a codec built over
// xmltree, not the other way around).
type Realigner interface {
	Role(r rune) Role
}

// Realign walks a diff segment stream tracking an open-placeholder
// stack and returns a copy of the stream with every segment's kind and
// text unchanged: it does not move, split or reorder segments, so a
// close marker whose open lies in a segment of another kind, or that has
// no open at all, stays where it is. The placeholder undo step
// (internal/placeholder) tolerates an unmatched close by treating it as
// a no-op, which keeps this pass a simple linear scan rather than the
// reference implementation's segment-reordering algorithm.
func Realign(segs []Segment, r Realigner) []Segment {
	var stack []rune
	out := make([]Segment, 0, len(segs))

	for _, seg := range segs {
		var b strings.Builder
		for _, ch := range seg.Text {
			switch r.Role(ch) {
			case RoleOpen:
				stack = append(stack, ch)
			case RoleClose:
				if len(stack) > 0 {
					stack = stack[:len(stack)-1]
				}
			}
			b.WriteRune(ch)
		}
		out = append(out, Segment{Kind: seg.Kind, Text: b.String(), OldText: seg.OldText})
	}
	return out
}
