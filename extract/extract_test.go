package extract

import (
	"archive/zip"
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodePlainTextUTF8(t *testing.T) {
	res := Decode([]byte("Once upon a time there was a story."), ".txt")
	assert.False(t, res.Failed())
	assert.Equal(t, "text", res.Method)
	assert.Equal(t, "Once upon a time there was a story.", res.Text)
	assert.Empty(t, res.Notes)
}

func TestDecodeWindows1252Fallback(t *testing.T) {
	// 0x93/0x94 are curly quotes in Windows-1252 and invalid UTF-8.
	raw := append([]byte("She said \x93hello\x94 and walked away quietly."), '\n')
	res := Decode(raw, ".txt")
	require.False(t, res.Failed())
	assert.Contains(t, res.Text, "“hello”")
	assert.Contains(t, strings.Join(res.Notes, ";"), "windows-1252")
}

func TestDecodeShortTextStillReturned(t *testing.T) {
	// Below the qualifying length the chain falls through but the
	// last attempt is still returned.
	res := Decode([]byte("Hello world."), ".txt")
	require.False(t, res.Failed())
	assert.Equal(t, "Hello world.", res.Text)
	assert.Equal(t, "text", res.Method)
}

func TestDecodeHTML(t *testing.T) {
	page := `<!DOCTYPE html>
<html><head><title>The Lighthouse</title>
<style>body { color: red; }</style>
<script>alert("nope");</script></head>
<body><p>First paragraph of the tale.</p><p>Second &amp; final paragraph.</p></body></html>`
	res := Decode([]byte(page), ".html")
	require.False(t, res.Failed())
	assert.Equal(t, "html", res.Method)
	assert.Equal(t, "The Lighthouse", res.Title)
	assert.Contains(t, res.Text, "First paragraph of the tale.")
	assert.Contains(t, res.Text, "Second & final paragraph.")
	assert.NotContains(t, res.Text, "alert")
	assert.NotContains(t, res.Text, "color: red")
}

func TestDecodeRTF(t *testing.T) {
	doc := `{\rtf1\ansi{\fonttbl{\f0 Times New Roman;}}\f0\fs24 The quick brown fox.\par It jumped over the \'93lazy\'94 dog.\par}`
	res := Decode([]byte(doc), ".rtf")
	require.False(t, res.Failed())
	assert.Equal(t, "rtf", res.Method)
	assert.Contains(t, res.Text, "The quick brown fox.")
	assert.Contains(t, res.Text, "“lazy”")
	assert.NotContains(t, res.Text, "Times New Roman")
	assert.NotContains(t, res.Text, "fonttbl")
}

func TestDecodeRTFWithoutHeaderFallsBack(t *testing.T) {
	res := Decode([]byte("just plain text that happens to be named dot rtf"), ".rtf")
	require.False(t, res.Failed())
	assert.Equal(t, "text", res.Method)
}

func makeDOCX(t *testing.T, documentXML string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	f, err := w.Create("word/document.xml")
	require.NoError(t, err)
	_, err = f.Write([]byte(documentXML))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestDecodeDOCX(t *testing.T) {
	doc := makeDOCX(t, `<?xml version="1.0"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:body><w:p><w:r><w:t>A story told in a word processor.</w:t></w:r></w:p>
<w:p><w:r><w:t>With a second paragraph.</w:t></w:r></w:p></w:body></w:document>`)
	res := Decode(doc, ".docx")
	require.False(t, res.Failed())
	assert.Equal(t, "docx", res.Method)
	assert.Contains(t, res.Text, "A story told in a word processor.")
	assert.Contains(t, res.Text, "With a second paragraph.")
}

func TestDecodeCorruptDOCXFallsToSalvage(t *testing.T) {
	// Not a zip at all; the salvage strategy should still pull the
	// printable run out of the binary noise.
	data := append([]byte{0xd0, 0xcf, 0x11, 0xe0, 0x00, 0x01}, []byte("Readable sentence buried in binary junk here.")...)
	data = append(data, 0x00, 0x01, 0x02)
	res := Decode(data, ".docx")
	require.False(t, res.Failed())
	assert.Equal(t, "doc-salvage", res.Method)
	assert.Contains(t, res.Text, "Readable sentence buried in binary junk here.")
}

func TestDecodeMalformedPDFSalvages(t *testing.T) {
	res := Decode([]byte("%PDF-1.4 garbage that is not a valid document body at all"), ".pdf")
	// The pdf strategy fails, salvage still recovers the printable run.
	require.False(t, res.Failed())
	assert.Equal(t, "pdf-salvage", res.Method)
	assert.NotEmpty(t, res.Notes)
}

func TestDecodeEmptyInputFails(t *testing.T) {
	res := Decode(nil, ".pdf")
	assert.True(t, res.Failed())
	assert.Error(t, res.Err)
}

func TestDecodeUnsupportedExtension(t *testing.T) {
	res := Decode([]byte("anything"), ".xyz")
	assert.True(t, res.Failed())
	assert.Error(t, res.Err)
}

func TestSupported(t *testing.T) {
	assert.True(t, Supported(".txt"))
	assert.True(t, Supported(".PDF"))
	assert.False(t, Supported(".exe"))
	assert.Len(t, AcceptedExtensions(), 8)
}
