package openai

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validResponse = `{
  "title": "The Lighthouse",
  "author": null,
  "summary_short": "A keeper tends a light alone.",
  "summary_long": "A lighthouse keeper spends a winter alone and confronts the sea.",
  "genre": "literary fiction",
  "tone": "melancholy",
  "setting": "remote island",
  "themes": ["isolation", "duty"],
  "tags": ["lighthouse", "sea", "winter"]
}`

func TestParseMetadataValid(t *testing.T) {
	m, err := parseMetadata(validResponse)
	require.NoError(t, err)
	assert.Equal(t, "The Lighthouse", m.Title)
	assert.Nil(t, m.Author)
	assert.Equal(t, []string{"isolation", "duty"}, m.Themes)
}

func TestParseMetadataStripsFences(t *testing.T) {
	m, err := parseMetadata("```json\n" + validResponse + "\n```")
	require.NoError(t, err)
	assert.Equal(t, "The Lighthouse", m.Title)
}

func TestParseMetadataRepairsMissingKeyQuote(t *testing.T) {
	broken := strings.Replace(validResponse, `"genre":`, `genre":`, 1)
	m, err := parseMetadata(broken)
	require.NoError(t, err)
	assert.Equal(t, "literary fiction", m.Genre)
}

func TestParseMetadataRejectsEmptyTitle(t *testing.T) {
	_, err := parseMetadata(strings.Replace(validResponse, `"The Lighthouse"`, `""`, 1))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "title")
}

func TestParseMetadataClampsAndLowercasesTags(t *testing.T) {
	response := strings.Replace(validResponse,
		`["lighthouse", "sea", "winter"]`,
		`["A","B","C","D","E","F","G","H","I","J","K","L","M","N"]`, 1)
	m, err := parseMetadata(response)
	require.NoError(t, err)
	assert.Len(t, m.Tags, 12)
	assert.Equal(t, "a", m.Tags[0])
}

func TestTruncateForPromptShortPassthrough(t *testing.T) {
	assert.Equal(t, "short text", truncateForPrompt("short text", 1000))
}

func TestTruncateForPromptSamplesSections(t *testing.T) {
	text := strings.Repeat("a", 10000) + strings.Repeat("b", 10000) + strings.Repeat("c", 10000)
	out := truncateForPrompt(text, 6000)

	assert.LessOrEqual(t, len([]rune(out)), 6000)
	assert.Equal(t, 2, strings.Count(out, "[...]"))
	// Beginning, middle, and end are all represented.
	assert.True(t, strings.HasPrefix(out, "a"))
	assert.Contains(t, out, "b")
	assert.True(t, strings.HasSuffix(out, "c"))
}

func TestRepairJSONLeavesValidInputAlone(t *testing.T) {
	assert.Equal(t, validResponse, repairJSON(validResponse))
}
