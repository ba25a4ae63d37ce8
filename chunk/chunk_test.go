package chunk

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitEmptyInput(t *testing.T) {
	assert.Empty(t, New().Split(""))
}

func TestSplitSingleChunk(t *testing.T) {
	text := "A short story that fits in one chunk."
	chunks := New().Split(text)
	require.Len(t, chunks, 1)
	assert.Equal(t, 0, chunks[0].Index)
	assert.Equal(t, 0, chunks[0].StartChar)
	assert.Equal(t, len([]rune(text)), chunks[0].EndChar)
	assert.Equal(t, text, chunks[0].Text)
}

func TestSplitTwoChunksWithOverlap(t *testing.T) {
	// 2000 characters, size 1800, overlap 280: exactly 2 chunks, and the
	// second starts no later than the first ends.
	text := strings.Repeat("x", 2000)
	chunks := New(WithSize(1800), WithOverlap(280)).Split(text)
	require.Len(t, chunks, 2)
	assert.Equal(t, 0, chunks[0].StartChar)
	assert.Equal(t, 1800, chunks[0].EndChar)
	assert.LessOrEqual(t, chunks[1].StartChar, chunks[0].EndChar)
	assert.Equal(t, 2000, chunks[1].EndChar)
}

func TestSplitCoverage(t *testing.T) {
	text := strings.Repeat("The quick brown fox jumps over the lazy dog. ", 300)
	text = strings.TrimSpace(text)
	chunks := New().Split(text)
	require.NotEmpty(t, chunks)

	runes := []rune(text)
	assert.Equal(t, 0, chunks[0].StartChar)
	assert.Equal(t, len(runes), chunks[len(chunks)-1].EndChar)
	for i, c := range chunks {
		assert.Equal(t, i, c.Index)
		assert.Equal(t, string(runes[c.StartChar:c.EndChar]), c.Text)
		if i > 0 {
			// No gaps: each chunk starts inside or at the end of its predecessor.
			assert.LessOrEqual(t, c.StartChar, chunks[i-1].EndChar)
			assert.Greater(t, c.StartChar, chunks[i-1].StartChar)
		}
	}
}

func TestSplitPrefersParagraphBreak(t *testing.T) {
	// Paragraph break at 70% of the chunk size: deep enough to accept.
	para1 := strings.Repeat("a", 1260)
	para2 := strings.Repeat("b", 1500)
	text := para1 + "\n\n" + para2
	chunks := New(WithSize(1800), WithOverlap(280)).Split(text)
	require.GreaterOrEqual(t, len(chunks), 2)
	// First chunk ends at the paragraph boundary, not the hard cut.
	assert.Equal(t, 1262, chunks[0].EndChar)
	assert.True(t, strings.HasSuffix(chunks[0].Text, "\n\n"))
}

func TestSplitPrefersSentenceBreakOverHardCut(t *testing.T) {
	// A sentence ends at 1700 of 1800 with no paragraph breaks anywhere.
	sentence := strings.Repeat("c", 1699) + ". "
	text := sentence + strings.Repeat("d", 1000)
	chunks := New(WithSize(1800), WithOverlap(280)).Split(text)
	require.GreaterOrEqual(t, len(chunks), 2)
	assert.Equal(t, 1700, chunks[0].EndChar)
}

func TestSplitShallowBreakIsRejected(t *testing.T) {
	// A paragraph break at 30% is too shallow; the chunk hard-cuts instead.
	text := strings.Repeat("a", 540) + "\n\n" + strings.Repeat("b", 3000)
	chunks := New(WithSize(1800), WithOverlap(280)).Split(text)
	require.NotEmpty(t, chunks)
	assert.Equal(t, 1800, chunks[0].EndChar)
}

func TestSplitDeterministic(t *testing.T) {
	text := strings.Repeat("Sentences repeat here. Some more words follow!\n\nAnd a paragraph. ", 200)
	a := New().Split(text)
	b := New().Split(text)
	assert.Equal(t, a, b)
}

func TestExcerpt(t *testing.T) {
	assert.Equal(t, "one two three", Excerpt("one\n two\tthree"))
	long := strings.Repeat("word ", 100)
	assert.Len(t, []rune(Excerpt(long)), ExcerptRunes)
}

func TestOverlapClamp(t *testing.T) {
	s := New(WithSize(100), WithOverlap(150))
	chunks := s.Split(strings.Repeat("y", 500))
	require.NotEmpty(t, chunks)
	for i := 1; i < len(chunks); i++ {
		assert.Greater(t, chunks[i].StartChar, chunks[i-1].StartChar)
	}
	assert.Equal(t, 500, chunks[len(chunks)-1].EndChar)
}
