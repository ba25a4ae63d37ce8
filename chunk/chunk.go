// Package chunk splits canonical text into overlapping, boundary-aware
// windows, the unit of embedding.
package chunk

import (
	"strings"

	"github.com/jshaughn618/story-search/core"
)

// DefaultSizeChars is the default chunk target size in characters.
const DefaultSizeChars = 1800

// DefaultOverlapChars is the default overlap between consecutive chunks.
const DefaultOverlapChars = 280

// ExcerptRunes is the length of the one-line excerpt stored per chunk.
const ExcerptRunes = 160

// Boundary acceptance floors, as fractions of the target size. A break
// is only taken if it lands deep enough into the tentative chunk.
const (
	paragraphFloor = 0.60
	sentenceFloor  = 0.55
)

// Splitter is a deterministic sliding-window chunker. Offsets are rune
// positions into the canonical text.
type Splitter struct {
	size    int
	overlap int
}

// Option configures a Splitter.
type Option func(*Splitter)

// WithSize sets the chunk target size in characters.
func WithSize(size int) Option {
	return func(s *Splitter) {
		if size > 0 {
			s.size = size
		}
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(s *Splitter) {
		if overlap >= 0 {
			s.overlap = overlap
		}
	}
}

// New creates a Splitter with the given options.
func New(opts ...Option) *Splitter {
	s := &Splitter{
		size:    DefaultSizeChars,
		overlap: DefaultOverlapChars,
	}
	for _, opt := range opts {
		opt(s)
	}
	// Overlap must leave room for forward progress.
	if s.overlap >= s.size {
		s.overlap = s.size / 4
	}
	return s
}

// Split chunks canonical text. Guarantees: dense zero-based indices, full
// coverage with the configured overlap, and zero chunks for empty input.
// Identical input and configuration always produce identical boundaries.
func (s *Splitter) Split(text string) []core.Chunk {
	if text == "" {
		return nil
	}

	runes := []rune(text)
	total := len(runes)

	var chunks []core.Chunk
	start := 0
	for start < total {
		end := start + s.size
		if end >= total {
			end = total
		} else {
			end = s.breakPoint(runes, start, end)
		}

		body := string(runes[start:end])
		chunks = append(chunks, core.Chunk{
			Index:     len(chunks),
			StartChar: start,
			EndChar:   end,
			Text:      body,
			Excerpt:   Excerpt(body),
		})

		if end == total {
			break
		}
		next := end - s.overlap
		if next < 0 {
			next = 0
		}
		// Guard against stalling when the overlap swallows the whole step.
		if next <= start {
			next = start + 1
		}
		start = next
	}

	return chunks
}

// breakPoint searches backward from the tentative end for a natural break.
// A paragraph break is taken if it lands at least 60% into the chunk, a
// sentence break at 55%; otherwise the chunk is hard-cut at the target.
func (s *Splitter) breakPoint(runes []rune, start, end int) int {
	paraMin := start + int(float64(s.size)*paragraphFloor)
	for i := end; i > paraMin; i-- {
		if runes[i-1] == '\n' && i >= 2 && runes[i-2] == '\n' {
			return i
		}
	}

	sentMin := start + int(float64(s.size)*sentenceFloor)
	for i := end; i > sentMin; i-- {
		if isSentenceBreak(runes, i) {
			return i
		}
	}

	return end
}

// isSentenceBreak reports whether position i (exclusive end) follows a
// sentence terminator and precedes whitespace.
func isSentenceBreak(runes []rune, i int) bool {
	if i < 2 || i >= len(runes) {
		return false
	}
	switch runes[i-1] {
	case '.', '!', '?':
	default:
		return false
	}
	switch runes[i] {
	case ' ', '\n', '\t':
		return true
	}
	return false
}

// Excerpt produces a single-line preview of chunk text.
func Excerpt(text string) string {
	line := strings.Join(strings.Fields(text), " ")
	runes := []rune(line)
	if len(runes) <= ExcerptRunes {
		return line
	}
	return string(runes[:ExcerptRunes])
}
