package classify

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jshaughn618/story-search/core"
)

func TestExtractionFailedWinsOverTooShort(t *testing.T) {
	// A failed extraction with short text must classify as
	// EXTRACTION_FAILED, never TOO_SHORT.
	status, _ := Classify(Input{
		Ext:           ".txt",
		FileSize:      100,
		ExtractFailed: true,
		ExtractedText: "",
		CanonicalText: "",
	}, DefaultThresholds())
	assert.Equal(t, core.StatusExtractionFailed, status)
}

func TestBinaryGarbage(t *testing.T) {
	// 10% replacement characters, well over the 1% default.
	text := strings.Repeat("plain txt", 90) + strings.Repeat("�", 90)
	status, reason := Classify(Input{
		Ext:           ".doc",
		FileSize:      4096,
		ExtractedText: text,
		CanonicalText: text,
	}, DefaultThresholds())
	assert.Equal(t, core.StatusBinaryGarbage, status)
	assert.NotEmpty(t, reason)
}

func TestPDFScannedImage(t *testing.T) {
	status, _ := Classify(Input{
		Ext:           ".pdf",
		FileSize:      2 * 1024 * 1024, // 2MB scanned pdf
		ExtractedText: "a few stray glyphs",
		CanonicalText: "a few stray glyphs",
	}, DefaultThresholds())
	assert.Equal(t, core.StatusPDFScannedImage, status)
}

func TestSmallPDFIsNotScannedImage(t *testing.T) {
	// Too small to exclude an empty document; falls through to TOO_SHORT.
	status, _ := Classify(Input{
		Ext:           ".pdf",
		FileSize:      512,
		ExtractedText: "tiny",
		CanonicalText: "tiny",
	}, DefaultThresholds())
	assert.Equal(t, core.StatusTooShort, status)
}

func TestNeedsReviewForMarkupFormats(t *testing.T) {
	status, _ := Classify(Input{
		Ext:           ".html",
		FileSize:      500_000,
		ExtractedText: "almost nothing came out",
		CanonicalText: "almost nothing came out",
	}, DefaultThresholds())
	assert.Equal(t, core.StatusNeedsReview, status)
}

func TestTooShort(t *testing.T) {
	status, _ := Classify(Input{
		Ext:           ".txt",
		FileSize:      50,
		ExtractedText: "A fifty character story would land right here....",
		CanonicalText: "A fifty character story would land right here....",
	}, DefaultThresholds())
	assert.Equal(t, core.StatusTooShort, status)
}

func TestOK(t *testing.T) {
	text := strings.Repeat("A perfectly ordinary paragraph of story text. ", 20)
	status, reason := Classify(Input{
		Ext:           ".txt",
		FileSize:      int64(len(text)),
		ExtractedText: text,
		CanonicalText: text,
	}, DefaultThresholds())
	assert.Equal(t, core.StatusOK, status)
	assert.Empty(t, reason)
}

func TestThresholdOverride(t *testing.T) {
	th := DefaultThresholds()
	th.MinExtractChars = 10
	status, _ := Classify(Input{
		Ext:           ".txt",
		FileSize:      50,
		ExtractedText: "Hello world, twelve.",
		CanonicalText: "Hello world, twelve.",
	}, th)
	assert.Equal(t, core.StatusOK, status)
}
