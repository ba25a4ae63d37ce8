package extract

import (
	"html"
	"regexp"
	"strings"
)

// Pre-compiled regular expressions for HTML stripping.
var (
	titleTag      = regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title>`)
	scriptTag     = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	styleTag      = regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`)
	headTag       = regexp.MustCompile(`(?is)<head[^>]*>.*?</head>`)
	htmlComments  = regexp.MustCompile(`(?s)<!--.*?-->`)
	blockElements = regexp.MustCompile(`(?i)</(p|div|h[1-6]|li|tr|blockquote|pre|section|article)>`)
	brTags        = regexp.MustCompile(`(?i)<(br|hr)\s*/?>`)
	allTags       = regexp.MustCompile(`<[^>]+>`)
	multiSpaces   = regexp.MustCompile(`[ \t]+`)
)

// extractHTML strips markup from an HTML document, capturing the <title>
// as the candidate title. Block-level closers become paragraph breaks so
// document structure survives as plain paragraphs.
func extractHTML(data []byte) (string, string, []string, error) {
	raw, notes := decodeBytes(data)

	var title string
	if m := titleTag.FindStringSubmatch(raw); len(m) > 1 {
		title = strings.TrimSpace(html.UnescapeString(m[1]))
	}

	text := htmlComments.ReplaceAllString(raw, "")
	text = headTag.ReplaceAllString(text, "")
	text = scriptTag.ReplaceAllString(text, "")
	text = styleTag.ReplaceAllString(text, "")
	text = brTags.ReplaceAllString(text, "\n")
	text = blockElements.ReplaceAllString(text, "\n\n")
	text = allTags.ReplaceAllString(text, " ")
	text = html.UnescapeString(text)
	text = multiSpaces.ReplaceAllString(text, " ")

	// Tidy line edges left behind by tag removal.
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	text = strings.TrimSpace(strings.Join(lines, "\n"))

	return text, title, notes, nil
}
