package ai

import (
	"errors"
	"strings"
)

// Config holds configuration for AI service providers.
type Config struct {
	// EmbeddingHost is the base URL for the embedding service API.
	// Example: "http://localhost:11434/v1" for a local OpenAI-compatible server
	EmbeddingHost string

	// MetadataHost is the base URL for the metadata extraction service API.
	MetadataHost string

	// EmbeddingModel is the model identifier used for chunk embeddings.
	// Example: "embeddinggemma", "text-embedding-3-small"
	EmbeddingModel string

	// MetadataModel is the model identifier used for metadata extraction.
	// Example: "qwen2.5:3b", "gpt-4o-mini"
	MetadataModel string

	// EmbeddingBatchSize is the maximum number of texts per embedding call.
	// Default: 16
	EmbeddingBatchSize int

	// MaxPromptChars bounds the document text included in the metadata
	// prompt; longer documents are truncated into beginning/middle/end
	// sections. Default: 24000
	MaxPromptChars int
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithEmbeddingHost sets the embedding service host URL.
func WithEmbeddingHost(host string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingHost = host
	}
}

// WithMetadataHost sets the metadata service host URL.
func WithMetadataHost(host string) ConfigOption {
	return func(c *Config) {
		c.MetadataHost = host
	}
}

// WithHost sets both embedding and metadata hosts to the same URL.
func WithHost(host string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingHost = host
		c.MetadataHost = host
	}
}

// WithEmbeddingModel sets the embedding model identifier.
func WithEmbeddingModel(model string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingModel = model
	}
}

// WithMetadataModel sets the metadata model identifier.
func WithMetadataModel(model string) ConfigOption {
	return func(c *Config) {
		c.MetadataModel = model
	}
}

// WithEmbeddingBatchSize sets the maximum texts per embedding call.
func WithEmbeddingBatchSize(size int) ConfigOption {
	return func(c *Config) {
		c.EmbeddingBatchSize = size
	}
}

// WithMaxPromptChars sets the metadata prompt budget in characters.
func WithMaxPromptChars(n int) ConfigOption {
	return func(c *Config) {
		c.MaxPromptChars = n
	}
}

// DefaultConfig returns a Config with sensible defaults for local
// OpenAI-compatible services.
func DefaultConfig() *Config {
	defaultHost := "http://localhost:11434/v1"
	return &Config{
		EmbeddingHost:      defaultHost,
		MetadataHost:       defaultHost,
		EmbeddingModel:     "embeddinggemma",
		MetadataModel:      "qwen2.5:3b",
		EmbeddingBatchSize: 16,
		MaxPromptChars:     24000,
	}
}

// NewConfig creates a Config with default values and applies the provided options.
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Normalize ensures hosts carry the /v1 suffix required by most
// OpenAI-compatible APIs (Ollama, LocalAI, vLLM).
func (c *Config) Normalize() {
	if c.EmbeddingHost != "" && !strings.HasSuffix(c.EmbeddingHost, "/v1") {
		c.EmbeddingHost = strings.TrimSuffix(c.EmbeddingHost, "/") + "/v1"
	}
	if c.MetadataHost != "" && !strings.HasSuffix(c.MetadataHost, "/v1") {
		c.MetadataHost = strings.TrimSuffix(c.MetadataHost, "/") + "/v1"
	}
}

// Validate checks that the configuration is valid and complete.
// The configuration is normalized before validation.
func (c *Config) Validate() error {
	c.Normalize()

	if c.EmbeddingHost == "" {
		return errors.New("ai config: EmbeddingHost is required")
	}
	if c.MetadataHost == "" {
		return errors.New("ai config: MetadataHost is required")
	}
	if c.EmbeddingModel == "" {
		return errors.New("ai config: EmbeddingModel is required")
	}
	if c.MetadataModel == "" {
		return errors.New("ai config: MetadataModel is required")
	}
	if c.EmbeddingBatchSize < 1 {
		return errors.New("ai config: EmbeddingBatchSize must be at least 1")
	}
	if c.MaxPromptChars < 1000 {
		return errors.New("ai config: MaxPromptChars must be at least 1000")
	}
	return nil
}
