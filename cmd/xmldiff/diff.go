package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/pborman/getopt"

	"github.com/rgehrsitz/xmldiff/internal/differ"
	"github.com/rgehrsitz/xmldiff/internal/errors"
	"github.com/rgehrsitz/xmldiff/internal/formatter"
	"github.com/rgehrsitz/xmldiff/internal/logging"
	"github.com/rgehrsitz/xmldiff/internal/xmlio"
)

func runDiff(args []string) int {
	set := getopt.New()
	set.SetParameters("file1 file2")

	formatterName := "diff"
	set.StringVarLong(&formatterName, "formatter", 0, "output format: diff, xml, old", "NAME")
	keepWhitespace := false
	set.BoolVarLong(&keepWhitespace, "keep-whitespace", 0, "preserve whitespace exactly as parsed")
	prettyPrint := false
	set.BoolVarLong(&prettyPrint, "pretty-print", 0, "indent the xml formatter's output")
	fStr := "0.5"
	set.StringVarLong(&fStr, "threshold", 'F', "similarity floor for node matching, in (0,1]", "RATIO")
	uniqueAttrsStr := ""
	set.StringVarLong(&uniqueAttrsStr, "unique-attributes", 0, "comma-separated list of {uri}tag@attr", "LIST")
	ratioModeStr := "fast"
	set.StringVarLong(&ratioModeStr, "ratio-mode", 0, "fast, accurate, or faster", "MODE")
	fastMatch := false
	set.BoolVarLong(&fastMatch, "fast-match", 0, "use the fast-match heuristic")
	bestMatch := false
	set.BoolVarLong(&bestMatch, "best-match", 0, "use the best-match heuristic")
	ignoredAttrsStr := ""
	set.StringVarLong(&ignoredAttrsStr, "ignored-attributes", 0, "comma-separated list of attribute names to ignore", "LIST")
	check := false
	set.BoolVarLong(&check, "check", 0, "exit 1 if the diff is non-empty")

	if err := set.Getopt(append([]string{"xmldiff diff"}, args...), nil); err != nil {
		fmt.Fprintln(os.Stderr, "xmldiff diff:", err)
		return 2
	}
	rem := set.Args()
	if len(rem) != 2 {
		fmt.Fprintln(os.Stderr, "xmldiff diff: exactly two positional arguments are required (file1 file2)")
		return 2
	}

	f, err := strconv.ParseFloat(fStr, 64)
	if err != nil {
		fmt.Fprintln(os.Stderr, "xmldiff diff:", errors.WrapError(errors.ErrConfigInvalid, "invalid -F value", err))
		return 2
	}
	ratioMode, err := differ.ParseRatioMode(ratioModeStr)
	if err != nil {
		fmt.Fprintln(os.Stderr, "xmldiff diff:", err)
		return 2
	}
	uniqueAttrs, err := parseUniqueAttrs(uniqueAttrsStr)
	if err != nil {
		fmt.Fprintln(os.Stderr, "xmldiff diff:", err)
		return 2
	}

	cfg := differ.Config{
		F:            f,
		UniqueAttrs:  uniqueAttrs,
		RatioMode:    ratioMode,
		FastMatch:    fastMatch,
		BestMatch:    bestMatch,
		IgnoredAttrs: splitNonEmpty(ignoredAttrsStr),
	}
	d, err := differ.New(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "xmldiff diff:", err)
		return 2
	}

	var fmtr formatter.Formatter
	switch formatterName {
	case "diff":
		fmtr = &formatter.CompactFormatter{}
	case "xml":
		fmtr = &formatter.XMLFormatter{Pretty: prettyPrint}
	case "old":
		fmtr = &formatter.LegacyFormatter{}
	default:
		fmt.Fprintf(os.Stderr, "xmldiff diff: unknown formatter %q\n", formatterName)
		return 2
	}

	wsMode := xmlio.WSBoth
	if keepWhitespace {
		wsMode = xmlio.WSNone
	}

	log := logging.GetLogger().WithOperation("diff")
	ctx := logging.ContextWithTrace(context.Background(), logging.NewTrace("diff"))

	exitCode := 0
	runErr := log.LogOperation(ctx, "diff", func() error {
		left, err := loadFile(rem[0], wsMode)
		if err != nil {
			return err
		}
		right, err := loadFile(rem[1], wsMode)
		if err != nil {
			return err
		}

		fmtr.Prepare(left, right)

		actions, err := d.Diff(left, right)
		if err != nil {
			return err
		}
		log.Info().Int("actions", len(actions)).Msg("computed edit script")

		out, err := fmtr.Format(actions, left)
		if err != nil {
			return err
		}
		fmt.Println(out)

		if check && len(actions) > 0 {
			exitCode = 1
		}
		return nil
	})
	if runErr != nil {
		fmt.Fprintln(os.Stderr, "xmldiff diff:", runErr)
		return 2
	}
	return exitCode
}

// parseUniqueAttrs parses a comma-separated list of entries shaped
// "{uri}tag@attr", "tag@attr", or "@attr" (tag omitted, rule applies
// regardless of tag) into differ.UniqueAttr rules. An empty string
// yields nil, which differ.New then defaults to xml:id.
func parseUniqueAttrs(s string) ([]differ.UniqueAttr, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var out []differ.UniqueAttr
	for _, entry := range strings.Split(s, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		at := strings.LastIndexByte(entry, '@')
		if at < 0 {
			return nil, errors.New(errors.ErrUniqueAttrsInvalid, fmt.Sprintf("unique-attributes entry %q missing @attr", entry))
		}
		tag, attr := entry[:at], entry[at+1:]
		if attr == "" {
			return nil, errors.New(errors.ErrUniqueAttrsInvalid, fmt.Sprintf("unique-attributes entry %q missing attribute name", entry))
		}
		out = append(out, differ.UniqueAttr{Tag: tag, Name: attr})
	}
	return out, nil
}

func splitNonEmpty(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
