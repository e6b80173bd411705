package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/pborman/getopt"

	"github.com/rgehrsitz/xmldiff/internal/errors"
	"github.com/rgehrsitz/xmldiff/internal/formatter"
	"github.com/rgehrsitz/xmldiff/internal/logging"
	"github.com/rgehrsitz/xmldiff/internal/patcher"
	"github.com/rgehrsitz/xmldiff/internal/xmlio"
)

func runPatch(args []string) int {
	set := getopt.New()
	set.SetParameters("patchfile xmlfile")

	diffEncoding := "utf-8"
	set.StringVarLong(&diffEncoding, "diff-encoding", 0, "text encoding of patchfile (only utf-8 is supported)", "ENC")

	if err := set.Getopt(append([]string{"xmldiff patch"}, args...), nil); err != nil {
		fmt.Fprintln(os.Stderr, "xmldiff patch:", err)
		return 2
	}
	rem := set.Args()
	if len(rem) != 2 {
		fmt.Fprintln(os.Stderr, "xmldiff patch: exactly two positional arguments are required (patchfile xmlfile)")
		return 2
	}

	// The corpus carries no charset-conversion library (x/text is absent
	// from go.mod), so only the wire format's native encoding is
	// supported; anything else is a config error rather than a silent
	// mis-decode.
	if !strings.EqualFold(diffEncoding, "utf-8") && !strings.EqualFold(diffEncoding, "utf8") {
		fmt.Fprintf(os.Stderr, "xmldiff patch: unsupported --diff-encoding %q (only utf-8 is supported)\n", diffEncoding)
		return 2
	}

	log := logging.GetLogger().WithOperation("patch")
	ctx := logging.ContextWithTrace(context.Background(), logging.NewTrace("patch"))

	var out []byte
	runErr := log.LogOperation(ctx, "patch", func() error {
		patchBytes, err := os.ReadFile(rem[0])
		if err != nil {
			return errors.WrapError(errors.ErrParseFailure, "failed to read "+rem[0], err)
		}
		actions, err := formatter.ParseCompact(string(patchBytes))
		if err != nil {
			return err
		}
		log.Info().Int("actions", len(actions)).Msg("parsed edit script")

		left, err := loadFile(rem[1], xmlio.WSNone)
		if err != nil {
			return err
		}

		patched, err := patcher.Patch(actions, left)
		if err != nil {
			return err
		}

		serialized, err := xmlio.Save(patched, false)
		if err != nil {
			return err
		}
		out = serialized
		return nil
	})
	if runErr != nil {
		fmt.Fprintln(os.Stderr, "xmldiff patch:", runErr)
		return 2
	}

	os.Stdout.Write(out)
	return 0
}
