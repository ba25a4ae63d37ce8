package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/jshaughn618/story-search/ai"
)

// MetadataExtractor implements ai.MetadataExtractor using OpenAI-compatible
// chat APIs with JSON-mode structured output.
type MetadataExtractor struct {
	client         llms.Model
	maxPromptChars int
	logger         *slog.Logger
}

// newMetadataExtractor is an internal constructor returning the concrete type.
// Used by Provider to manage the instance.
func newMetadataExtractor(config *ai.Config) (*MetadataExtractor, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client, err := openai.New(
		openai.WithBaseURL(config.MetadataHost),
		openai.WithToken("none"),
		openai.WithModel(config.MetadataModel),
	)
	if err != nil {
		return nil, err
	}

	return &MetadataExtractor{
		client:         client,
		maxPromptChars: config.MaxPromptChars,
		logger:         slog.Default().With("component", "openai-metadata"),
	}, nil
}

// NewMetadataExtractor creates a metadata extractor using the provided
// configuration.
//
// Returns ai.MetadataExtractor interface to enforce abstraction.
func NewMetadataExtractor(config *ai.Config) (ai.MetadataExtractor, error) {
	return newMetadataExtractor(config)
}

// ExtractMetadata asks the model for descriptive story metadata. The
// response is schema-validated; on a parse failure one repair round-trip
// is attempted, feeding the malformed output and the parse error back.
func (e *MetadataExtractor) ExtractMetadata(ctx context.Context, filename, text string) (*ai.StoryMetadata, error) {
	body := truncateForPrompt(text, e.maxPromptChars)

	systemPrompt := fmt.Sprintf(metadataSystemPrompt, metadataResponseSchema)
	userPrompt := fmt.Sprintf("Source filename: %s\n\n%s", filename, body)

	content := []llms.MessageContent{
		{
			Role:  llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{llms.TextPart(systemPrompt)},
		},
		{
			Role:  llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextPart(userPrompt)},
		},
	}

	responseText, err := e.generate(ctx, content)
	if err != nil {
		return nil, err
	}

	metadata, parseErr := parseMetadata(responseText)
	if parseErr == nil {
		return metadata, nil
	}

	// One repair round-trip: show the model its own output and the error.
	e.logger.Warn("metadata response failed to parse, attempting repair",
		"file", filename, "err", parseErr)

	repair := append(content,
		llms.MessageContent{
			Role:  llms.ChatMessageTypeAI,
			Parts: []llms.ContentPart{llms.TextPart(responseText)},
		},
		llms.MessageContent{
			Role:  llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextPart(fmt.Sprintf(metadataRepairPrompt, parseErr))},
		},
	)

	responseText, err = e.generate(ctx, repair)
	if err != nil {
		return nil, err
	}

	metadata, parseErr = parseMetadata(responseText)
	if parseErr != nil {
		e.logger.Error("metadata response unparseable after repair", "file", filename, "err", parseErr)
		return nil, fmt.Errorf("metadata parse failed after repair: %w", parseErr)
	}
	return metadata, nil
}

// generate runs one chat completion in JSON mode at temperature zero.
func (e *MetadataExtractor) generate(ctx context.Context, content []llms.MessageContent) (string, error) {
	response, err := e.client.GenerateContent(ctx, content,
		llms.WithTemperature(0.0), llms.WithJSONMode())
	if err != nil {
		e.logger.Error("metadata generation failed", "err", err)
		return "", err
	}
	if len(response.Choices) < 1 {
		return "", fmt.Errorf("metadata service returned no choices")
	}
	return response.Choices[0].Content, nil
}

// parseMetadata validates a raw model response against the schema shape.
func parseMetadata(responseText string) (*ai.StoryMetadata, error) {
	cleaned := repairJSON(stripCodeFences(responseText))

	var metadata ai.StoryMetadata
	if err := json.Unmarshal([]byte(cleaned), &metadata); err != nil {
		return nil, err
	}

	if strings.TrimSpace(metadata.Title) == "" {
		return nil, fmt.Errorf("schema violation: title is empty")
	}
	if strings.TrimSpace(metadata.SummaryShort) == "" {
		return nil, fmt.Errorf("schema violation: summary_short is empty")
	}
	if strings.TrimSpace(metadata.SummaryLong) == "" {
		return nil, fmt.Errorf("schema violation: summary_long is empty")
	}

	metadata.Clamp()
	for i, tag := range metadata.Tags {
		metadata.Tags[i] = strings.ToLower(strings.TrimSpace(tag))
	}
	return &metadata, nil
}
