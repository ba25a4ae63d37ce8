package extract

import (
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// decodeBytes turns raw bytes into a string, preferring strict UTF-8 and
// falling back to Windows-1252 with an advisory note when that path is taken.
func decodeBytes(data []byte) (string, []string) {
	if utf8.Valid(data) {
		return string(data), nil
	}

	decoded, err := charmap.Windows1252.NewDecoder().Bytes(data)
	if err != nil {
		// Windows-1252 decodes any byte; treat a decoder error as raw passthrough.
		return string(data), []string{"decoded with replacement characters"}
	}
	return string(decoded), []string{"decoded as windows-1252"}
}

// extractPlainText is the terminal strategy for byte-oriented text formats.
func extractPlainText(data []byte) (string, string, []string, error) {
	text, notes := decodeBytes(data)
	return text, "", notes, nil
}

// extractBinarySalvage recovers printable character runs from binary formats
// (legacy .doc, damaged .docx/.pdf). It is always a last-resort strategy; the
// classifier downgrades its output when the result is garbage.
func extractBinarySalvage(data []byte) (string, string, []string, error) {
	const minRun = 5

	var out []rune
	var run []rune
	flush := func() {
		if len(run) >= minRun {
			if len(out) > 0 {
				out = append(out, '\n')
			}
			out = append(out, run...)
		}
		run = run[:0]
	}

	for i := 0; i < len(data); {
		r, size := utf8.DecodeRune(data[i:])
		i += size
		if r == utf8.RuneError && size == 1 {
			flush()
			continue
		}
		if r == '\n' || r == '\t' || unicode.IsPrint(r) {
			run = append(run, r)
			continue
		}
		flush()
	}
	flush()

	return string(out), "", []string{"salvaged printable runs from binary content"}, nil
}
