package mock

import "github.com/jshaughn618/story-search/ai"

// MockProvider is a test double for ai.Provider aggregating the mock
// embedder and metadata extractor.
type MockProvider struct {
	embedder  *MockEmbedder
	extractor *MockMetadataExtractor
}

// NewMockProvider creates a provider backed by default mocks.
func NewMockProvider() *MockProvider {
	return &MockProvider{
		embedder:  NewMockEmbedder(),
		extractor: NewMockMetadataExtractor(),
	}
}

// Embedder returns the embedding service.
func (p *MockProvider) Embedder() ai.Embedder {
	return p.embedder
}

// MetadataExtractor returns the metadata extraction service.
func (p *MockProvider) MetadataExtractor() ai.MetadataExtractor {
	return p.extractor
}

// Close is a no-op.
func (p *MockProvider) Close() error {
	return nil
}

// GetMockEmbedder exposes the concrete mock for behavior injection.
func (p *MockProvider) GetMockEmbedder() *MockEmbedder {
	return p.embedder
}

// GetMockExtractor exposes the concrete mock for behavior injection.
func (p *MockProvider) GetMockExtractor() *MockMetadataExtractor {
	return p.extractor
}
