package mock

import (
	"context"
	"hash/fnv"
)

// DefaultDimension is the vector size mock embeddings use unless overridden.
const DefaultDimension = 384

// MockEmbedder is a test double for ai.Embedder.
// It allows custom behavior injection via function fields.
type MockEmbedder struct {
	// EmbedTextsFunc is called by EmbedTexts if set.
	// If nil, uses default deterministic behavior.
	EmbedTextsFunc func(ctx context.Context, texts []string) ([][]float32, error)

	// DimensionFunc is called by Dimension if set.
	DimensionFunc func(ctx context.Context) (int, error)

	// Dim is the dimensionality of generated vectors. Zero means DefaultDimension.
	Dim int

	// ModelName is returned by Model. Empty means "mock-embedder".
	ModelName string

	callCount int
}

// NewMockEmbedder creates a mock embedder with default deterministic behavior.
// Returns the concrete type so tests can inject behavior and assert calls.
func NewMockEmbedder() *MockEmbedder {
	return &MockEmbedder{}
}

// Model returns the configured model name.
func (m *MockEmbedder) Model() string {
	if m.ModelName == "" {
		return "mock-embedder"
	}
	return m.ModelName
}

// Dimension returns the configured dimensionality.
func (m *MockEmbedder) Dimension(ctx context.Context) (int, error) {
	if m.DimensionFunc != nil {
		return m.DimensionFunc(ctx)
	}
	return m.dim(), nil
}

// EmbedTexts generates deterministic embeddings derived from text hashes.
func (m *MockEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	m.callCount++

	if m.EmbedTextsFunc != nil {
		return m.EmbedTextsFunc(ctx, texts)
	}

	embeddings := make([][]float32, len(texts))
	for i, text := range texts {
		embeddings[i] = generateDeterministicVector(text, m.dim())
	}
	return embeddings, nil
}

// CallCount returns the number of times EmbedTexts was called.
func (m *MockEmbedder) CallCount() int {
	return m.callCount
}

// Reset clears the call count and custom functions.
func (m *MockEmbedder) Reset() {
	m.callCount = 0
	m.EmbedTextsFunc = nil
	m.DimensionFunc = nil
}

func (m *MockEmbedder) dim() int {
	if m.Dim > 0 {
		return m.Dim
	}
	return DefaultDimension
}

// generateDeterministicVector creates a deterministic embedding vector from
// text so the same input always produces the same vector.
func generateDeterministicVector(text string, dim int) []float32 {
	h := fnv.New32a()
	h.Write([]byte(text))
	seed := h.Sum32()

	vector := make([]float32, dim)
	for i := 0; i < dim; i++ {
		seed = seed*1664525 + 1013904223 // LCG constants
		vector[i] = float32(seed%1000) / 1000.0
	}
	return vector
}
