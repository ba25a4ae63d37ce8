// Package openai implements the ai interfaces against OpenAI-compatible
// APIs (OpenAI, Ollama, LocalAI, vLLM) via langchaingo.
//
// The embedder batches documents at the configured batch size and caches
// a one-time dimensionality probe. The metadata extractor runs chat
// completions in JSON mode at temperature zero, strips markdown fences,
// repairs common JSON defects, and performs a single repair round-trip
// when the response still fails to parse.
package openai
