package mock

import (
	"context"
	"strings"

	"github.com/jshaughn618/story-search/ai"
)

// MockMetadataExtractor is a test double for ai.MetadataExtractor.
// It allows custom behavior injection via function fields.
type MockMetadataExtractor struct {
	// ExtractMetadataFunc is called by ExtractMetadata if set.
	// If nil, uses default synthetic metadata derived from the filename.
	ExtractMetadataFunc func(ctx context.Context, filename, text string) (*ai.StoryMetadata, error)

	callCount int
}

// NewMockMetadataExtractor creates a mock extractor with default behavior.
// Returns the concrete type so tests can inject behavior and assert calls.
func NewMockMetadataExtractor() *MockMetadataExtractor {
	return &MockMetadataExtractor{}
}

// ExtractMetadata returns synthetic but schema-complete metadata.
func (m *MockMetadataExtractor) ExtractMetadata(ctx context.Context, filename, text string) (*ai.StoryMetadata, error) {
	m.callCount++

	if m.ExtractMetadataFunc != nil {
		return m.ExtractMetadataFunc(ctx, filename, text)
	}

	title := strings.TrimSuffix(filename, ".txt")
	title = strings.ReplaceAll(title, "_", " ")
	if title == "" {
		title = "Untitled"
	}

	return &ai.StoryMetadata{
		Title:        title,
		SummaryShort: "A mock summary.",
		SummaryLong:  "A longer mock summary of the story used in tests.",
		Genre:        "fiction",
		Tone:         "neutral",
		Setting:      "unspecified",
		Themes:       []string{"testing"},
		Tags:         []string{"mock", "fixture"},
	}, nil
}

// CallCount returns the number of times ExtractMetadata was called.
func (m *MockMetadataExtractor) CallCount() int {
	return m.callCount
}

// Reset clears the call count and custom functions.
func (m *MockMetadataExtractor) Reset() {
	m.callCount = 0
	m.ExtractMetadataFunc = nil
}
