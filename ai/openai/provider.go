package openai

import (
	"log/slog"

	"github.com/jshaughn618/story-search/ai"
)

// Provider implements ai.Provider using OpenAI-compatible services.
// It manages embedder and metadata extractor instances.
type Provider struct {
	config    *ai.Config
	embedder  *Embedder
	extractor *MetadataExtractor
	logger    *slog.Logger
}

// NewProvider creates an AI provider with OpenAI-compatible services.
// The config is validated and normalized before use.
//
// Returns ai.Provider interface (not *Provider) to enforce abstraction
// and prevent coupling to OpenAI-specific implementation details.
func NewProvider(config *ai.Config) (ai.Provider, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	embedder, err := newEmbedder(config)
	if err != nil {
		return nil, err
	}

	extractor, err := newMetadataExtractor(config)
	if err != nil {
		return nil, err
	}

	return &Provider{
		config:    config,
		embedder:  embedder,
		extractor: extractor,
		logger:    slog.Default().With("component", "openai-provider"),
	}, nil
}

// Embedder returns the embedding service.
func (p *Provider) Embedder() ai.Embedder {
	return p.embedder
}

// MetadataExtractor returns the metadata extraction service.
func (p *Provider) MetadataExtractor() ai.MetadataExtractor {
	return p.extractor
}

// Close releases resources held by the provider.
// Currently a no-op as the underlying clients don't require explicit cleanup.
func (p *Provider) Close() error {
	p.logger.Debug("closing OpenAI provider")
	return nil
}
