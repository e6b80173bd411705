// Package differ computes a node matching between two XML trees and emits
// the edit script that turns a working copy of the left tree into the
// right tree, following the Chawathe fast-match / edit-script approach.
package differ

import (
	"fmt"
	"strings"

	"github.com/rgehrsitz/xmldiff/internal/errors"
	"github.com/rgehrsitz/xmldiff/internal/xmltree"
)

// RatioMode selects the sequence-similarity algorithm used to compare
// node fingerprints.
type RatioMode int

const (
	RatioFast RatioMode = iota
	RatioAccurate
	RatioFaster
)

// ParseRatioMode parses a CLI/config string into a RatioMode. Empty
// string defaults to RatioFast, matching the CLI's documented default.
func ParseRatioMode(s string) (RatioMode, error) {
	switch s {
	case "", "fast":
		return RatioFast, nil
	case "accurate":
		return RatioAccurate, nil
	case "faster":
		return RatioFaster, nil
	default:
		return 0, errors.New(errors.ErrRatioModeUnknown, fmt.Sprintf("unknown ratio mode %q", s))
	}
}

// UniqueAttr names an attribute that, where present on either side of a
// candidate match, is the sole determinant of that match: equal values
// score 1.0, any other outcome scores 0, bypassing fingerprint
// similarity entirely. Tag, if non-empty, restricts the rule to nodes
// with that tag; empty applies the rule regardless of tag.
type UniqueAttr struct {
	Tag  string
	Name string
}

// defaultUniqueAttr is xml:id in Clark notation, the identifier the
// reference implementation treats as a unique-match attribute whenever
// the caller supplies none.
const defaultUniqueAttr = "{http://www.w3.org/XML/1998/namespace}id"

// NoUniqueAttrs is a non-nil, empty UniqueAttrs slice: pass it in Config
// to opt out of the xml:id default entirely. A nil (unset) UniqueAttrs
// is what triggers the default; NoUniqueAttrs is distinguishable from
// nil by Go's slice-nilness, which New checks explicitly.
var NoUniqueAttrs = []UniqueAttr{}

// Config holds the Differ's matching parameters. All fields have usable
// zero-adjacent defaults except F, which must be set explicitly (or via
// DefaultConfig) because 0 is not a valid similarity floor.
type Config struct {
	F            float64
	UniqueAttrs  []UniqueAttr
	RatioMode    RatioMode
	FastMatch    bool
	BestMatch    bool
	IgnoredAttrs []string
}

// DefaultConfig returns the CLI's documented defaults: F=0.5, fast ratio
// mode, generic (neither fast nor best) matcher.
func DefaultConfig() Config {
	return Config{F: 0.5, RatioMode: RatioFast}
}

func (c Config) validate() error {
	if c.F <= 0 || c.F > 1 {
		return errors.New(errors.ErrConfigInvalid, fmt.Sprintf("F must be in (0, 1], got %v", c.F))
	}
	if c.FastMatch && c.BestMatch {
		return errors.New(errors.ErrMatchModeConflict, "fast_match and best_match are mutually exclusive")
	}
	for _, ua := range c.UniqueAttrs {
		if strings.TrimSpace(ua.Name) == "" {
			return errors.New(errors.ErrUniqueAttrsInvalid, "unique_attrs entry missing an attribute name")
		}
	}
	return nil
}

// Differ holds matching configuration and the per-call fingerprint
// cache. One Differ is not safe for concurrent Diff calls; separate
// Differ values are independent.
type Differ struct {
	cfg          Config
	ignoredAttrs map[string]bool
	fpCache      map[*xmltree.Node]string
}

// New validates cfg and constructs a Differ. Configuration errors are
// fatal at construction, never at Diff time. A nil cfg.UniqueAttrs is
// defaulted to a single xml:id rule, per the reference implementation;
// pass NoUniqueAttrs to opt out explicitly.
func New(cfg Config) (*Differ, error) {
	if cfg.UniqueAttrs == nil {
		cfg.UniqueAttrs = []UniqueAttr{{Name: defaultUniqueAttr}}
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	ignored := make(map[string]bool, len(cfg.IgnoredAttrs))
	for _, a := range cfg.IgnoredAttrs {
		ignored[a] = true
	}
	return &Differ{cfg: cfg, ignoredAttrs: ignored}, nil
}
