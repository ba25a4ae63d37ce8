package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// extractDOCX unpacks the OOXML zip container and walks word/document.xml,
// turning paragraph elements into newlines and collecting character data.
func extractDOCX(data []byte) (string, string, []string, error) {
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", "", nil, fmt.Errorf("opening docx container: %w", err)
	}

	var documentXML *zip.File
	for _, f := range r.File {
		if f.Name == "word/document.xml" {
			documentXML = f
			break
		}
	}
	if documentXML == nil {
		return "", "", nil, fmt.Errorf("invalid docx: missing word/document.xml")
	}

	rc, err := documentXML.Open()
	if err != nil {
		return "", "", nil, fmt.Errorf("opening word/document.xml: %w", err)
	}
	defer rc.Close()

	decoder := xml.NewDecoder(rc)
	var b strings.Builder
	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", "", nil, fmt.Errorf("parsing word/document.xml: %w", err)
		}

		switch t := token.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "p":
				b.WriteString("\n")
			case "tab":
				b.WriteString("\t")
			case "br":
				b.WriteString("\n")
			}
		case xml.CharData:
			b.Write(t)
		}
	}

	return strings.TrimSpace(b.String()), "", nil, nil
}
