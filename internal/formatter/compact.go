package formatter

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/rgehrsitz/xmldiff/internal/action"
	"github.com/rgehrsitz/xmldiff/internal/errors"
	"github.com/rgehrsitz/xmldiff/internal/xmltree"
)

// CompactFormatter renders one bracketed, JSON-quoted record per action:
// [<verb>, <arg>, <arg>, …]. It has no Prepare-time work.
type CompactFormatter struct{}

func (f *CompactFormatter) Prepare(left, right *xmltree.Node) {}

func (f *CompactFormatter) Format(actions []action.Action, origLeft *xmltree.Node) (string, error) {
	lines := make([]string, 0, len(actions))
	for _, a := range actions {
		line, err := compactLine(a)
		if err != nil {
			return "", err
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n"), nil
}

func compactLine(a action.Action) (string, error) {
	switch act := a.(type) {
	case action.InsertNode:
		return encodeLine("insert", quote(act.Parent), quote(act.Tag), strconv.Itoa(act.Position)), nil
	case action.DeleteNode:
		return encodeLine("delete", quote(act.Node)), nil
	case action.RenameNode:
		return encodeLine("rename", quote(act.Node), quote(act.NewTag)), nil
	case action.MoveNode:
		return encodeLine("move", quote(act.Node), quote(act.NewParent), strconv.Itoa(act.Position)), nil
	case action.UpdateTextIn:
		return encodeLine("update-text", quote(act.Node), quote(act.NewText), quote(act.OldText)), nil
	case action.UpdateTextAfter:
		return encodeLine("update-text-after", quote(act.Node), quote(act.NewText), quote(act.OldText)), nil
	case action.InsertAttrib:
		return encodeLine("insert-attribute", quote(act.Node), quote(act.Name), quote(act.Value)), nil
	case action.DeleteAttrib:
		return encodeLine("delete-attribute", quote(act.Node), quote(act.Name)), nil
	case action.UpdateAttrib:
		return encodeLine("update-attribute", quote(act.Node), quote(act.Name), quote(act.Value)), nil
	case action.RenameAttrib:
		return encodeLine("rename-attribute", quote(act.Node), quote(act.OldName), quote(act.NewName)), nil
	case action.InsertComment:
		return encodeLine("insert-comment", quote(act.Parent), strconv.Itoa(act.Position), quote(act.Text)), nil
	case action.InsertNamespace:
		return encodeLine("insert-namespace", quote(act.Prefix), quote(act.URI)), nil
	case action.DeleteNamespace:
		return encodeLine("delete-namespace", quote(act.Prefix)), nil
	default:
		return "", errors.New(errors.ErrUnknown, fmt.Sprintf("unrecognized action type %T", a))
	}
}

func encodeLine(verb string, args ...string) string {
	var b strings.Builder
	b.WriteByte('[')
	b.WriteString(verb)
	for _, a := range args {
		b.WriteString(", ")
		b.WriteString(a)
	}
	b.WriteByte(']')
	return b.String()
}

func quote(s string) string {
	var b strings.Builder
	enc := json.NewEncoder(&b)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		// Encoding a string only fails on invalid UTF-8, which the tree
		// model never produces; fall back to a safe escape rather than panic.
		return strconv.Quote(s)
	}
	return strings.TrimSuffix(b.String(), "\n")
}
