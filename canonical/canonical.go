// Package canonical normalizes extracted text into the single canonical
// form that content hashing, chunking, and embedding operate on.
package canonical

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var (
	trailingSpace = regexp.MustCompile(`[ \t]+\n`)
	// Three or more blank lines (four or more consecutive newlines)
	// collapse to a single blank line.
	excessBlankLines = regexp.MustCompile(`\n{4,}`)
)

// Canonicalize produces the canonical plain-text form of extracted text.
// The function is pure, deterministic, and idempotent:
// Canonicalize(Canonicalize(x)) == Canonicalize(x).
func Canonicalize(text string) string {
	// Unicode compatibility normalization
	text = norm.NFKC.String(text)

	// Uniform newlines
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	// Strip control characters, keeping newline and tab
	text = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, text)

	// Trim trailing whitespace per line
	text = trailingSpace.ReplaceAllString(text, "\n")

	// Collapse excess blank lines
	text = excessBlankLines.ReplaceAllString(text, "\n\n")

	// Whole-document trim
	return strings.TrimSpace(text)
}

// WordCount counts whitespace-delimited words in canonical text.
func WordCount(text string) int {
	return len(strings.Fields(text))
}
