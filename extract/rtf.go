package extract

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/charmap"
)

// destination groups whose content is formatting data, not document text.
var rtfSkipGroups = map[string]bool{
	"fonttbl":    true,
	"colortbl":   true,
	"stylesheet": true,
	"info":       true,
	"pict":       true,
	"header":     true,
	"footer":     true,
}

// extractRTF strips RTF control words and groups, keeping document text.
// Hex escapes (\'hh) decode through Windows-1252, the default RTF code page.
func extractRTF(data []byte) (string, string, []string, error) {
	src := string(data)
	if !strings.HasPrefix(src, `{\rtf`) {
		return "", "", nil, fmt.Errorf("missing rtf header")
	}

	var b strings.Builder
	skipDepth := 0 // depth inside a skipped destination group, 0 = not skipping
	depth := 0

	i := 0
	for i < len(src) {
		ch := src[i]
		switch ch {
		case '{':
			depth++
			i++
			// Peek for a destination group to skip: {\*\word or {\word
			rest := src[i:]
			rest = strings.TrimPrefix(rest, `\*`)
			if strings.HasPrefix(rest, `\`) {
				word := leadingControlWord(rest[1:])
				if skipDepth == 0 && rtfSkipGroups[word] {
					skipDepth = depth
				}
			}
		case '}':
			if skipDepth == depth {
				skipDepth = 0
			}
			depth--
			i++
		case '\\':
			i++
			if i >= len(src) {
				break
			}
			switch c := src[i]; {
			case c == '\'':
				// \'hh hex escape
				if i+2 < len(src) {
					if n, err := strconv.ParseUint(src[i+1:i+3], 16, 8); err == nil && skipDepth == 0 {
						b.WriteRune(charmap.Windows1252.DecodeByte(byte(n)))
					}
					i += 3
				} else {
					i = len(src)
				}
			case c == '\\' || c == '{' || c == '}':
				if skipDepth == 0 {
					b.WriteByte(c)
				}
				i++
			default:
				word := leadingControlWord(src[i:])
				i += len(word)
				// Consume an optional numeric parameter.
				for i < len(src) && (src[i] == '-' || (src[i] >= '0' && src[i] <= '9')) {
					i++
				}
				// A single space after a control word is part of the word.
				if i < len(src) && src[i] == ' ' {
					i++
				}
				if skipDepth == 0 {
					switch word {
					case "par", "line", "sect", "page":
						b.WriteByte('\n')
					case "tab":
						b.WriteByte('\t')
					case "emdash", "endash":
						b.WriteByte('-')
					case "lquote", "rquote":
						b.WriteByte('\'')
					case "ldblquote", "rdblquote":
						b.WriteByte('"')
					}
				}
			}
		case '\r', '\n':
			i++
		default:
			if skipDepth == 0 {
				b.WriteByte(ch)
			}
			i++
		}
	}

	return strings.TrimSpace(b.String()), "", nil, nil
}

// leadingControlWord returns the alphabetic control word at the start of s.
func leadingControlWord(s string) string {
	end := 0
	for end < len(s) && ((s[end] >= 'a' && s[end] <= 'z') || (s[end] >= 'A' && s[end] <= 'Z')) {
		end++
	}
	return s[:end]
}
