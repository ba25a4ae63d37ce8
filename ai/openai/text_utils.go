package openai

import "strings"

// truncationMarker separates the sampled sections of a long document.
const truncationMarker = "\n\n[...]\n\n"

// truncateForPrompt bounds document text for the metadata prompt. Documents
// over the budget are sampled as beginning/middle/end sections (roughly
// 50/25/25) so the model sees the arc of the whole work.
func truncateForPrompt(text string, maxChars int) string {
	runes := []rune(text)
	if len(runes) <= maxChars {
		return text
	}

	budget := maxChars - 2*len([]rune(truncationMarker))
	begin := budget / 2
	middle := budget / 4
	end := budget - begin - middle

	midStart := len(runes)/2 - middle/2

	var b strings.Builder
	b.WriteString(string(runes[:begin]))
	b.WriteString(truncationMarker)
	b.WriteString(string(runes[midStart : midStart+middle]))
	b.WriteString(truncationMarker)
	b.WriteString(string(runes[len(runes)-end:]))
	return b.String()
}

// stripCodeFences removes markdown code fences some models wrap around
// JSON output despite instructions.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// isLetter returns true if the rune is an ASCII letter.
func isLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}
