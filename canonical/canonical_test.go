package canonical

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalizeNewlines(t *testing.T) {
	assert.Equal(t, "one\ntwo\nthree", Canonicalize("one\r\ntwo\rthree"))
}

func TestCanonicalizeStripsControlCharacters(t *testing.T) {
	assert.Equal(t, "ab", Canonicalize("a\x00\x01\x7fb"))
	// Newlines and tabs survive
	assert.Equal(t, "a\tb\nc", Canonicalize("a\tb\nc"))
}

func TestCanonicalizeTrimsTrailingWhitespace(t *testing.T) {
	assert.Equal(t, "line one\nline two", Canonicalize("line one   \nline two\t "))
}

func TestCanonicalizeCollapsesBlankLines(t *testing.T) {
	// Three or more blank lines become one
	assert.Equal(t, "a\n\nb", Canonicalize("a\n\n\n\n\nb"))
	// One or two blank lines are preserved
	assert.Equal(t, "a\n\nb", Canonicalize("a\n\nb"))
	assert.Equal(t, "a\n\n\nb", Canonicalize("a\n\n\nb"))
}

func TestCanonicalizeCompatibilityNormalization(t *testing.T) {
	// Full-width characters normalize to ASCII under NFKC
	assert.Equal(t, "ABC", Canonicalize("ＡＢＣ"))
	// Ligatures decompose
	assert.Equal(t, "file", Canonicalize("ﬁle"))
}

func TestCanonicalizeIdempotent(t *testing.T) {
	inputs := []string{
		"",
		"plain text",
		"one\r\ntwo\r\n\r\n\r\n\r\nthree  \n",
		"  leading and trailing  ",
		"ＡＢＣ\x00\tmixed\r\ncontent\n\n\n\n",
	}
	for _, in := range inputs {
		once := Canonicalize(in)
		assert.Equal(t, once, Canonicalize(once), "not idempotent for %q", in)
	}
}

func TestWordCount(t *testing.T) {
	assert.Equal(t, 0, WordCount(""))
	assert.Equal(t, 3, WordCount("one  two\nthree"))
}
