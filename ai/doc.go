// Package ai provides abstractions for the external AI services used by
// the indexing pipeline.
//
// Two capabilities are defined: Embedder turns chunk text into vectors,
// and MetadataExtractor turns canonical text into descriptive story
// metadata via a schema-constrained structured-output call. Provider
// aggregates both for convenient initialization.
//
// The core pipeline depends only on these interfaces. Two implementation
// sub-packages exist:
//
//   - ai/openai: production implementation against OpenAI-compatible APIs
//   - ai/mock: test doubles for unit testing without external services
//
// Public constructors in ai/openai return interface types to enforce
// abstraction; the mock constructors return concrete types so tests can
// inject behavior and make assertions.
package ai
