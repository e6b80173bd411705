package formatter

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/rgehrsitz/xmldiff/internal/action"
	"github.com/rgehrsitz/xmldiff/internal/errors"
)

// ParseCompact is the inverse of CompactFormatter.Format: it reads the
// bracketed record grammar back into an action list. A record whose
// opening bracket is not closed on its line is joined with following
// lines until it is; an unterminated bracket at end of input is a fatal
// parse error, as is an unrecognized verb.
func ParseCompact(text string) ([]action.Action, error) {
	records, err := splitRecords(text)
	if err != nil {
		return nil, err
	}
	actions := make([]action.Action, 0, len(records))
	for _, rec := range records {
		a, err := parseRecord(rec)
		if err != nil {
			return nil, err
		}
		actions = append(actions, a)
	}
	return actions, nil
}

// splitRecords scans text for top-level `[...]` records, quote-aware so
// that brackets and commas inside JSON string literals never affect
// bracket depth or record boundaries. A record that never closes by end
// of input is a fatal error.
func splitRecords(text string) ([]string, error) {
	var records []string
	var cur strings.Builder
	depth := 0
	started := false
	inQuotes := false
	escaped := false

	lines := strings.Split(text, "\n")
	for li, line := range lines {
		if strings.TrimSpace(line) == "" && !started {
			continue
		}
		if cur.Len() > 0 {
			cur.WriteString("\n")
		}
		for _, r := range line {
			cur.WriteRune(r)
			if escaped {
				escaped = false
				continue
			}
			if inQuotes {
				switch r {
				case '\\':
					escaped = true
				case '"':
					inQuotes = false
				}
				continue
			}
			switch r {
			case '"':
				inQuotes = true
			case '[':
				depth++
				started = true
			case ']':
				depth--
			}
		}
		if started && depth == 0 {
			rec := strings.TrimSpace(cur.String())
			if rec != "" {
				records = append(records, rec)
			}
			cur.Reset()
			started = false
		} else if li == len(lines)-1 && started {
			return nil, errors.New(errors.ErrUnterminatedBracket, "unterminated bracket at end of input")
		}
	}
	return records, nil
}

func parseRecord(rec string) (action.Action, error) {
	tokens, err := splitTokens(rec)
	if err != nil {
		return nil, err
	}
	if len(tokens) == 0 {
		return nil, errors.New(errors.ErrUnknownVerb, "empty record")
	}
	verb := tokens[0]
	args := tokens[1:]

	str := func(i int) (string, error) { return decodeString(args, i, verb) }
	num := func(i int) (int, error) { return decodeInt(args, i, verb) }

	switch verb {
	case "insert":
		parent, err := str(0)
		if err != nil {
			return nil, err
		}
		tag, err := str(1)
		if err != nil {
			return nil, err
		}
		pos, err := num(2)
		if err != nil {
			return nil, err
		}
		return action.InsertNode{Parent: parent, Tag: tag, Position: pos}, nil

	case "delete":
		node, err := str(0)
		if err != nil {
			return nil, err
		}
		return action.DeleteNode{Node: node}, nil

	case "rename":
		node, err := str(0)
		if err != nil {
			return nil, err
		}
		tag, err := str(1)
		if err != nil {
			return nil, err
		}
		return action.RenameNode{Node: node, NewTag: tag}, nil

	case "move":
		node, err := str(0)
		if err != nil {
			return nil, err
		}
		newParent, err := str(1)
		if err != nil {
			return nil, err
		}
		pos, err := num(2)
		if err != nil {
			return nil, err
		}
		return action.MoveNode{Node: node, NewParent: newParent, Position: pos}, nil

	case "update-text":
		node, err := str(0)
		if err != nil {
			return nil, err
		}
		newText, err := str(1)
		if err != nil {
			return nil, err
		}
		oldText, err := str(2)
		if err != nil {
			return nil, err
		}
		return action.UpdateTextIn{Node: node, NewText: newText, OldText: oldText}, nil

	case "update-text-after":
		node, err := str(0)
		if err != nil {
			return nil, err
		}
		newText, err := str(1)
		if err != nil {
			return nil, err
		}
		oldText, err := str(2)
		if err != nil {
			return nil, err
		}
		return action.UpdateTextAfter{Node: node, NewText: newText, OldText: oldText}, nil

	case "insert-attribute":
		node, err := str(0)
		if err != nil {
			return nil, err
		}
		name, err := str(1)
		if err != nil {
			return nil, err
		}
		value, err := str(2)
		if err != nil {
			return nil, err
		}
		return action.InsertAttrib{Node: node, Name: name, Value: value}, nil

	case "delete-attribute":
		node, err := str(0)
		if err != nil {
			return nil, err
		}
		name, err := str(1)
		if err != nil {
			return nil, err
		}
		return action.DeleteAttrib{Node: node, Name: name}, nil

	case "update-attribute":
		node, err := str(0)
		if err != nil {
			return nil, err
		}
		name, err := str(1)
		if err != nil {
			return nil, err
		}
		value, err := str(2)
		if err != nil {
			return nil, err
		}
		return action.UpdateAttrib{Node: node, Name: name, Value: value}, nil

	case "rename-attribute":
		node, err := str(0)
		if err != nil {
			return nil, err
		}
		oldName, err := str(1)
		if err != nil {
			return nil, err
		}
		newName, err := str(2)
		if err != nil {
			return nil, err
		}
		return action.RenameAttrib{Node: node, OldName: oldName, NewName: newName}, nil

	case "insert-comment":
		parent, err := str(0)
		if err != nil {
			return nil, err
		}
		pos, err := num(1)
		if err != nil {
			return nil, err
		}
		text, err := str(2)
		if err != nil {
			return nil, err
		}
		return action.InsertComment{Parent: parent, Position: pos, Text: text}, nil

	case "insert-namespace":
		prefix, err := str(0)
		if err != nil {
			return nil, err
		}
		uri, err := str(1)
		if err != nil {
			return nil, err
		}
		return action.InsertNamespace{Prefix: prefix, URI: uri}, nil

	case "delete-namespace":
		prefix, err := str(0)
		if err != nil {
			return nil, err
		}
		return action.DeleteNamespace{Prefix: prefix}, nil

	default:
		return nil, errors.New(errors.ErrUnknownVerb, fmt.Sprintf("unknown verb %q", verb))
	}
}

// splitTokens strips rec's outer brackets and splits the remainder on
// commas that are not inside a double-quoted string. The verb itself is
// returned as a bare (unquoted) token; every other token is returned
// exactly as written, still JSON-quoted where applicable, for decodeString
// / decodeInt to interpret.
func splitTokens(rec string) ([]string, error) {
	rec = strings.TrimSpace(rec)
	if !strings.HasPrefix(rec, "[") || !strings.HasSuffix(rec, "]") {
		return nil, errors.New(errors.ErrMalformedString, "record is not a bracketed list: "+rec)
	}
	inner := rec[1 : len(rec)-1]

	var tokens []string
	var cur strings.Builder
	inQuotes := false
	escaped := false

	for _, r := range inner {
		if escaped {
			cur.WriteRune(r)
			escaped = false
			continue
		}
		if inQuotes {
			cur.WriteRune(r)
			switch r {
			case '\\':
				escaped = true
			case '"':
				inQuotes = false
			}
			continue
		}
		switch r {
		case '"':
			inQuotes = true
			cur.WriteRune(r)
		case ',':
			tokens = append(tokens, strings.TrimSpace(cur.String()))
			cur.Reset()
		default:
			cur.WriteRune(r)
		}
	}
	if inQuotes {
		return nil, errors.New(errors.ErrMalformedString, "unterminated string literal in record: "+rec)
	}
	last := strings.TrimSpace(cur.String())
	if last != "" || len(tokens) > 0 {
		tokens = append(tokens, last)
	}
	return tokens, nil
}

func decodeString(args []string, i int, verb string) (string, error) {
	if i >= len(args) {
		return "", errors.New(errors.ErrMalformedString, fmt.Sprintf("%s: missing argument %d", verb, i))
	}
	tok := args[i]
	if len(tok) < 2 || tok[0] != '"' {
		return "", errors.New(errors.ErrMalformedString, fmt.Sprintf("%s: expected quoted string, got %q", verb, tok))
	}
	var s string
	if err := json.Unmarshal([]byte(tok), &s); err != nil {
		return "", errors.New(errors.ErrMalformedString, fmt.Sprintf("%s: malformed string literal %q", verb, tok))
	}
	return s, nil
}

func decodeInt(args []string, i int, verb string) (int, error) {
	if i >= len(args) {
		return 0, errors.New(errors.ErrMalformedString, fmt.Sprintf("%s: missing argument %d", verb, i))
	}
	n, err := strconv.Atoi(args[i])
	if err != nil {
		return 0, errors.New(errors.ErrMalformedString, fmt.Sprintf("%s: expected integer, got %q", verb, args[i]))
	}
	return n, nil
}
