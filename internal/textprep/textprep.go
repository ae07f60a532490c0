// Package textprep normalizes raw document content before it is sent to
// the tagging model: byte-level cleanup, HTML text extraction, whitespace
// collapsing, and sentence-aware truncation.
package textprep

import (
	"regexp"
	"strings"
)

var (
	spaceRun = regexp.MustCompile(`[ \t]+`)
	blankRun = regexp.MustCompile(`\n{3,}`)
)

// Prepare runs the full pipeline on a document body. HTML input is reduced
// to its visible text first. maxChars caps the result length in runes; zero
// or negative disables truncation.
func Prepare(body, contentType string, maxChars int) string {
	if IsHTML(body, contentType) {
		if text, err := StripHTML(body); err == nil && text != "" {
			body = text
		}
	}
	body = CollapseWhitespace(body)
	return TruncateAtSentence(body, maxChars)
}

// CollapseWhitespace squeezes runs of spaces and tabs, trims each line, and
// reduces blank-line runs to a single blank line.
func CollapseWhitespace(s string) string {
	s = spaceRun.ReplaceAllString(s, " ")
	lines := strings.Split(s, "\n")
	for i := range lines {
		lines[i] = strings.TrimSpace(lines[i])
	}
	s = strings.Join(lines, "\n")
	s = blankRun.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}
