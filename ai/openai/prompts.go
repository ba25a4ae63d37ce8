package openai

const metadataResponseSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "title": {"type": "string", "minLength": 1},
    "author": {"type": ["string", "null"]},
    "summary_short": {"type": "string", "minLength": 1},
    "summary_long": {"type": "string", "minLength": 1},
    "genre": {"type": "string"},
    "tone": {"type": "string"},
    "setting": {"type": "string"},
    "themes": {
      "type": "array",
      "items": {"type": "string"},
      "maxItems": 5
    },
    "tags": {
      "type": "array",
      "items": {"type": "string", "pattern": "^[a-z0-9]+([ -][a-z0-9]+)*$"},
      "maxItems": 12
    },
    "content_notes": {"type": "string"}
  },
  "required": ["title", "author", "summary_short", "summary_long", "genre", "tone", "setting", "themes", "tags"],
  "additionalProperties": false
}`

const metadataSystemPrompt = `You catalog works of fiction. Given the text of a story, produce descriptive
metadata and return it as JSON.

Output ONLY valid JSON which complies with the schema given below. Do not include any preamble,
explanation, greeting, or acknowledgment. Start your response directly with the opening brace { and
end with the closing brace }. Your output must exactly follow this schema:

%s

Rules:
- "title": the story's title. If the text states no title, invent a short descriptive one.
- "author": the author's name exactly as the text states it, or null if the text names no author.
  Never guess an author.
- "summary_short": one or two sentences, at most 50 words.
- "summary_long": one paragraph, 100-200 words.
- "genre", "tone", "setting": one short phrase each, lowercase.
- "themes": up to 5 short lowercase phrases naming the story's central themes.
- "tags": up to 12 lowercase keywords useful for browsing and filtering.
- "content_notes": include only when the story contains material a reader may want warning about;
  otherwise omit the key.
- Describe only what the text supports. Do not hallucinate.
- The JSON must parse without errors; no trailing commas, no extra keys, and no extraneous text
  outside the object.

The user message contains the story text. Sections marked [...] indicate omitted text from a long
document; describe the whole work, not the omissions.`

const metadataRepairPrompt = `Your previous response was not valid JSON (parse error: %s).
Return the same metadata as ONLY valid JSON matching the schema. Start with { and end with }.`
