// Package classify assigns a quality status to each extracted source file.
//
// The rules run in fixed priority order; the first that fires wins. The
// boundary constants are tuned heuristics, kept overridable rather than
// treated as optimal.
package classify

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/jshaughn618/story-search/core"
)

// Thresholds holds the tunable boundaries of the rule engine.
type Thresholds struct {
	// MinExtractChars is the canonical length below which a file is TOO_SHORT.
	MinExtractChars int
	// GarbageRatio is the maximum tolerated control/replacement character ratio.
	GarbageRatio float64
	// PDFMinFileBytes excludes near-empty PDFs from the scanned-image rule.
	PDFMinFileBytes int64
	// PDFMinCharsPerKB is the text-density floor for the scanned-image rule.
	PDFMinCharsPerKB float64
	// NeedsReviewRatio flags html/rtf/doc files whose extracted length is
	// below this fraction of the file size.
	NeedsReviewRatio float64
}

// DefaultThresholds returns the stock boundaries.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MinExtractChars:  500,
		GarbageRatio:     0.01,
		PDFMinFileBytes:  10 * 1024,
		PDFMinCharsPerKB: 20,
		NeedsReviewRatio: 0.02,
	}
}

// Input is everything the rule engine looks at for one file.
type Input struct {
	Ext           string // lowercase extension with dot
	FileSize      int64
	ExtractFailed bool
	ExtractedText string
	CanonicalText string
}

// markupExts are the formats where tiny extracted text relative to file
// size suggests the stripper lost the document body.
var markupExts = map[string]bool{
	".html": true,
	".htm":  true,
	".rtf":  true,
	".doc":  true,
}

// Classify runs the fixed-priority decision procedure and returns the
// status plus a human-readable reason for any non-OK outcome.
func Classify(in Input, th Thresholds) (core.QualityStatus, string) {
	ext := strings.ToLower(in.Ext)

	if in.ExtractFailed {
		return core.StatusExtractionFailed, "all extraction strategies failed"
	}

	if ratio := garbageRatio(in.ExtractedText); ratio > th.GarbageRatio {
		return core.StatusBinaryGarbage, "control/replacement character ratio above threshold"
	}

	if ext == ".pdf" &&
		len([]rune(in.ExtractedText)) < th.MinExtractChars &&
		in.FileSize >= th.PDFMinFileBytes &&
		charsPerKB(in.ExtractedText, in.FileSize) < th.PDFMinCharsPerKB {
		return core.StatusPDFScannedImage, "pdf with large file size and near-zero text density"
	}

	if markupExts[ext] && in.FileSize > 0 &&
		float64(len(in.ExtractedText)) < float64(in.FileSize)*th.NeedsReviewRatio {
		return core.StatusNeedsReview, "extracted text implausibly small for file size"
	}

	if len([]rune(in.CanonicalText)) < th.MinExtractChars {
		return core.StatusTooShort, "canonical text below minimum length"
	}

	return core.StatusOK, ""
}

// garbageRatio measures the share of control and replacement characters.
func garbageRatio(text string) float64 {
	if text == "" {
		return 0
	}
	var bad, total int
	for _, r := range text {
		total++
		if r == utf8.RuneError {
			bad++
			continue
		}
		if unicode.IsControl(r) && r != '\n' && r != '\t' && r != '\r' {
			bad++
		}
	}
	return float64(bad) / float64(total)
}

// charsPerKB measures extracted text density against the original file size.
func charsPerKB(text string, fileSize int64) float64 {
	if fileSize <= 0 {
		return 0
	}
	return float64(len([]rune(text))) / (float64(fileSize) / 1024.0)
}
