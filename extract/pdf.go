package extract

import (
	"bytes"
	"fmt"

	"github.com/dslipak/pdf"
)

// extractPDF pulls plain text from a PDF using the pure Go reader.
// The library panics on some malformed files; the recover converts
// that into a per-strategy error so the fallback chain can continue.
func extractPDF(data []byte) (text, title string, notes []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text, title, notes = "", "", nil
			err = fmt.Errorf("pdf reader panic: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", "", nil, fmt.Errorf("opening pdf: %w", err)
	}

	plain, err := r.GetPlainText()
	if err != nil {
		return "", "", nil, fmt.Errorf("reading pdf text: %w", err)
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(plain); err != nil {
		return "", "", nil, fmt.Errorf("reading pdf text: %w", err)
	}

	return buf.String(), "", nil, nil
}
