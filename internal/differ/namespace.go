package differ

import (
	"fmt"
	"sort"

	"github.com/rgehrsitz/xmldiff/internal/action"
	"github.com/rgehrsitz/xmldiff/internal/errors"
	"github.com/rgehrsitz/xmldiff/internal/xmltree"
)

// diffNamespaces compares the roots' effective namespace maps: a
// prefix only on the right emits InsertNamespace, a prefix only on the
// left emits DeleteNamespace, sorted by prefix for stability. A prefix
// bound to a different URI on each side has no edit-script primitive to
// express and is a fatal error.
func diffNamespaces(left, right *xmltree.Node) ([]action.Action, error) {
	lns := left.NSMap()
	rns := right.NSMap()

	var inserts, deletes []string
	for prefix, uri := range rns {
		if lu, ok := lns[prefix]; ok {
			if lu != uri {
				return nil, errors.New(errors.ErrNamespaceRebind,
					fmt.Sprintf("namespace prefix %q is bound to %q on the left and %q on the right", prefix, lu, uri))
			}
			continue
		}
		inserts = append(inserts, prefix)
	}
	for prefix := range lns {
		if _, ok := rns[prefix]; !ok {
			deletes = append(deletes, prefix)
		}
	}
	sort.Strings(inserts)
	sort.Strings(deletes)

	var actions []action.Action
	for _, p := range inserts {
		actions = append(actions, action.InsertNamespace{Prefix: p, URI: rns[p]})
	}
	for _, p := range deletes {
		actions = append(actions, action.DeleteNamespace{Prefix: p})
	}
	return actions, nil
}
