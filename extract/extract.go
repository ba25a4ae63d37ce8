// Package extract converts raw document bytes into plain text.
//
// Each supported extension has an ordered chain of extraction strategies.
// A strategy's output is accepted only if it carries qualifying signals
// (non-empty, plausibly long); otherwise the chain falls through, finally
// returning the last attempt that produced any text at all. Recoverable
// conditions never surface as errors: a total failure is reported as an
// explicit Result with Method == MethodFailed.
package extract

import (
	"fmt"
	"strings"
)

// MethodFailed is the method recorded when every strategy in a chain failed.
const MethodFailed = "failed"

// minQualifyingRunes is the length below which a strategy's output is not
// accepted outright and the chain keeps looking for a better extraction.
const minQualifyingRunes = 24

// Result is the shared output shape of every extraction strategy.
type Result struct {
	Text   string
	Method string
	Title  string   // candidate title when the format carries one
	Notes  []string // advisory notes, e.g. fallback decode paths taken
	Err    error    // set only when Method == MethodFailed
}

// Failed reports whether extraction failed entirely.
func (r Result) Failed() bool {
	return r.Method == MethodFailed
}

// strategy is one pure extraction attempt in a fallback chain.
type strategy struct {
	name string
	fn   func(data []byte) (text, title string, notes []string, err error)
}

// chains maps a lowercase extension (with dot) to its ordered strategy list.
var chains = map[string][]strategy{
	".txt":  {{"text", extractPlainText}},
	".md":   {{"text", extractPlainText}},
	".html": {{"html", extractHTML}, {"text", extractPlainText}},
	".htm":  {{"html", extractHTML}, {"text", extractPlainText}},
	".rtf":  {{"rtf", extractRTF}, {"text", extractPlainText}},
	".doc":  {{"doc-salvage", extractBinarySalvage}},
	".docx": {{"docx", extractDOCX}, {"doc-salvage", extractBinarySalvage}},
	".pdf":  {{"pdf", extractPDF}, {"pdf-salvage", extractBinarySalvage}},
}

// AcceptedExtensions lists the extensions the decoder understands,
// lowercase and dot-prefixed.
func AcceptedExtensions() []string {
	exts := make([]string, 0, len(chains))
	for ext := range chains {
		exts = append(exts, ext)
	}
	return exts
}

// Supported reports whether the extension has an extraction chain.
func Supported(ext string) bool {
	_, ok := chains[strings.ToLower(ext)]
	return ok
}

// Decode extracts text from raw bytes using the extension's fallback chain.
func Decode(data []byte, ext string) Result {
	chain, ok := chains[strings.ToLower(ext)]
	if !ok {
		return Result{
			Method: MethodFailed,
			Err:    fmt.Errorf("unsupported extension %q", ext),
		}
	}

	var notes []string
	var last Result
	var lastErr error

	for _, s := range chain {
		text, title, strategyNotes, err := s.fn(data)
		notes = append(notes, strategyNotes...)
		if err != nil {
			lastErr = err
			notes = append(notes, fmt.Sprintf("%s: %v", s.name, err))
			continue
		}

		result := Result{
			Text:   text,
			Method: s.name,
			Title:  title,
			Notes:  notes,
		}
		if qualifies(text) {
			return result
		}
		// Keep the attempt; a later strategy may do better. A strategy
		// that produced no text at all is not worth keeping.
		if strings.TrimSpace(text) != "" {
			last = result
		}
	}

	if last.Method != "" {
		last.Notes = notes
		return last
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("no strategy produced text for %q", ext)
	}
	return Result{
		Method: MethodFailed,
		Notes:  notes,
		Err:    lastErr,
	}
}

// qualifies checks the signals that let a strategy's output win the chain.
func qualifies(text string) bool {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return false
	}
	return len([]rune(trimmed)) >= minQualifyingRunes
}
