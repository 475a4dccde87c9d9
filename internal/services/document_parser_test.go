package services

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatOf(t *testing.T) {
	assert.Equal(t, FormatPDF, FormatOf("cv.PDF"))
	assert.Equal(t, FormatDOCX, FormatOf("/tmp/resume_1.docx"))
	assert.Empty(t, FormatOf("resume.doc"))
	assert.Empty(t, FormatOf("README"))
}

func TestExtractText_UnsupportedFormat(t *testing.T) {
	text, format, err := NewDocumentParser().ExtractText("resume.txt", []byte("hello"))

	assert.ErrorIs(t, err, ErrUnsupportedFormat)
	assert.Empty(t, text)
	assert.Empty(t, format)
}

func TestExtractText_CorruptPDF(t *testing.T) {
	_, format, err := NewDocumentParser().ExtractText("resume.pdf", []byte("definitely not a pdf"))

	assert.Error(t, err)
	assert.Equal(t, FormatPDF, format)
}

func TestExtractText_CorruptDocx(t *testing.T) {
	_, format, err := NewDocumentParser().ExtractText("resume.docx", []byte("PK broken"))

	assert.Error(t, err)
	assert.Equal(t, FormatDOCX, format)
}

func TestDocxParagraphs(t *testing.T) {
	content := `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:body>
<w:p><w:pPr><w:pStyle w:val="Title"/></w:pPr><w:r><w:t>Jane Doe</w:t></w:r></w:p>
<w:p><w:r><w:t xml:space="preserve">Skills: </w:t></w:r><w:r><w:t>Go</w:t><w:tab/><w:t>SQL</w:t></w:r></w:p>
<w:p/>
<w:p><w:r><w:t>5 years</w:t><w:br/><w:t>Remote</w:t></w:r></w:p>
</w:body>
</w:document>`

	paragraphs, err := docxParagraphs(content)
	require.NoError(t, err)

	assert.Equal(t, []string{"Jane Doe", "Skills: Go\tSQL", "", "5 years\nRemote"}, paragraphs)
}

func TestDocxParagraphs_Malformed(t *testing.T) {
	_, err := docxParagraphs(`<w:document><w:body><w:p>`)

	assert.Error(t, err)
}

// buildDocx assembles the smallest archive the docx reader accepts: a body
// part with one w:p per paragraph plus its relationships part.
func buildDocx(t *testing.T, paragraphs ...string) []byte {
	t.Helper()

	var body strings.Builder
	body.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`)
	body.WriteString(`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`)
	for _, p := range paragraphs {
		body.WriteString(`<w:p><w:r><w:t xml:space="preserve">`)
		require.NoError(t, xml.EscapeText(&body, []byte(p)))
		body.WriteString(`</w:t></w:r></w:p>`)
	}
	body.WriteString(`</w:body></w:document>`)

	parts := map[string]string{
		"word/document.xml": body.String(),
		"word/_rels/document.xml.rels": `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
			`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"></Relationships>`,
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range parts {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())

	return buf.Bytes()
}

func TestExtractText_Docx(t *testing.T) {
	data := buildDocx(t, "Jane Doe", "jane@example.com", "Python & SQL")

	text, format, err := NewDocumentParser().ExtractText("jane.docx", data)
	require.NoError(t, err)

	assert.Equal(t, FormatDOCX, format)
	assert.Equal(t, "Jane Doe\njane@example.com\nPython & SQL", text)
}

func TestExtractText_DocxWithoutBody(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	_, err := zw.Create("word/styles.xml")
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	_, _, err = NewDocumentParser().ExtractText("empty.docx", buf.Bytes())

	assert.ErrorContains(t, err, "failed to parse docx")
}
