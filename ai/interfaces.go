package ai

import "context"

// Embedder generates vector embeddings for chunk text.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedTexts generates embeddings for a batch of texts, honoring the
	// configured batch size internally. The returned slice is in input
	// order. A returned-count mismatch against the requested count is an
	// error, except for single-input requests where providers may pad.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)

	// Dimension probes and caches the output dimensionality of the active
	// embedding model. The cached value is used for corpus-consistency
	// enforcement and never changes within a run.
	Dimension(ctx context.Context) (int, error)

	// Model returns the active embedding model identifier.
	Model() string
}

// MetadataExtractor produces descriptive story metadata from canonical text
// via a schema-constrained structured-output call.
// Implementations must be thread-safe for concurrent use.
type MetadataExtractor interface {
	// ExtractMetadata analyzes the text and returns descriptive fields.
	// Long documents are truncated into a bounded multi-section prompt.
	// On a parse failure one repair round-trip is attempted; a persistent
	// failure is returned as an error so the caller can substitute
	// fallback metadata.
	ExtractMetadata(ctx context.Context, filename, text string) (*StoryMetadata, error)
}

// Provider aggregates AI services for convenient initialization and
// lifecycle management.
type Provider interface {
	// Embedder returns the embedding service.
	Embedder() Embedder

	// MetadataExtractor returns the metadata extraction service.
	MetadataExtractor() MetadataExtractor

	// Close releases resources held by the provider and its services.
	Close() error
}
