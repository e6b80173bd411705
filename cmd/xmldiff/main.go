// Command xmldiff computes and applies structural XML edit scripts: a
// diff subcommand renders an action stream in one of three formats, and
// a patch subcommand re-applies a previously produced action stream to
// reconstruct the right-hand tree from the left.
package main

import (
	"fmt"
	"os"

	"github.com/rgehrsitz/xmldiff/internal/logging"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		usage()
		return 2
	}

	if err := logging.Initialize(logging.DefaultConfig()); err != nil {
		fmt.Fprintln(os.Stderr, "xmldiff:", err)
		return 2
	}

	switch args[0] {
	case "diff":
		return runDiff(args[1:])
	case "patch":
		return runPatch(args[1:])
	case "-h", "--help", "help":
		usage()
		return 0
	default:
		fmt.Fprintf(os.Stderr, "xmldiff: unknown command %q\n", args[0])
		usage()
		return 2
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `Usage:
  xmldiff diff file1 file2 [--formatter {diff,xml,old}] [--keep-whitespace]
                            [--pretty-print] [-F ratio] [--unique-attributes list]
                            [--ratio-mode {fast,accurate,faster}]
                            [--fast-match | --best-match] [--ignored-attributes list]
                            [--check]
  xmldiff patch patchfile xmlfile [--diff-encoding enc]`)
}
