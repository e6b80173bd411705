package xmltree

import "regexp"

var whitespaceRun = regexp.MustCompile(`\s+`)

// CleanupWhitespace collapses any run of whitespace in s to a single
// space, matching the fingerprinting and text-comparison normalization
// the reference implementation applies before computing similarity.
func CleanupWhitespace(s string) string {
	return whitespaceRun.ReplaceAllString(s, " ")
}
