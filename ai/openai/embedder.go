package openai

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/jshaughn618/story-search/ai"
)

// dimensionProbeText is the fixed input used to discover the active
// model's output dimensionality.
const dimensionProbeText = "dimension probe"

// Embedder implements ai.Embedder using OpenAI-compatible embedding APIs.
type Embedder struct {
	embedder  embeddings.Embedder
	model     string
	batchSize int
	logger    *slog.Logger

	mu  sync.Mutex
	dim int // cached probe result, 0 until probed
}

// newEmbedder is an internal constructor returning the concrete type.
// Used by Provider to manage the instance.
func newEmbedder(config *ai.Config) (*Embedder, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	// "none" as token supports local OpenAI-compatible services that
	// don't require authentication.
	client, err := openai.New(
		openai.WithBaseURL(config.EmbeddingHost),
		openai.WithToken("none"),
		openai.WithEmbeddingModel(config.EmbeddingModel),
	)
	if err != nil {
		return nil, err
	}

	embedder, err := embeddings.NewEmbedder(client,
		embeddings.WithStripNewLines(true),
		embeddings.WithBatchSize(config.EmbeddingBatchSize),
	)
	if err != nil {
		return nil, err
	}

	return &Embedder{
		embedder:  embedder,
		model:     config.EmbeddingModel,
		batchSize: config.EmbeddingBatchSize,
		logger:    slog.Default().With("component", "openai-embedder"),
	}, nil
}

// NewEmbedder creates an embedder using the provided configuration.
//
// Returns ai.Embedder interface to enforce abstraction.
func NewEmbedder(config *ai.Config) (ai.Embedder, error) {
	return newEmbedder(config)
}

// Model returns the active embedding model identifier.
func (e *Embedder) Model() string {
	return e.model
}

// Dimension probes the service once and caches the output dimensionality.
func (e *Embedder) Dimension(ctx context.Context) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.dim > 0 {
		return e.dim, nil
	}

	vectors, err := e.embedder.EmbedDocuments(ctx, []string{dimensionProbeText})
	if err != nil {
		e.logger.Error("dimension probe failed", "model", e.model, "err", err)
		return 0, fmt.Errorf("dimension probe: %w", err)
	}
	if len(vectors) == 0 || len(vectors[0]) == 0 {
		return 0, fmt.Errorf("dimension probe: empty embedding returned")
	}

	e.dim = len(vectors[0])
	e.logger.Debug("probed embedding dimensionality", "model", e.model, "dim", e.dim)
	return e.dim, nil
}

// EmbedTexts generates embeddings for a batch of texts. The underlying
// client sub-batches at the configured batch size; this wrapper enforces
// the returned-count contract.
func (e *Embedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	e.logger.Debug("generating embeddings", "count", len(texts))
	vectors, err := e.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		e.logger.Error("failed to generate embeddings", "count", len(texts), "err", err)
		return nil, err
	}

	if len(vectors) != len(texts) {
		// Some providers pad single-input requests; take the first vector.
		if len(texts) == 1 && len(vectors) > 0 {
			return vectors[:1], nil
		}
		return nil, fmt.Errorf("embedding count mismatch: requested %d, received %d", len(texts), len(vectors))
	}

	return vectors, nil
}
