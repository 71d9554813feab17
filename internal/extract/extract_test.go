package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/go-pdf/fpdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resumatch/internal/errors"
)

func TestDetectContentType(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		data     []byte
		want     string
	}{
		{"pdf magic", "resume.bin", []byte("%PDF-1.4\n%âãÏÓ\n"), MIMEPDF},
		{"plain text", "resume", []byte("Python and SQL"), MIMEText},
		{"txt extension", "resume.txt", []byte("Python"), MIMEText},
		{"markdown extension", "resume.md", []byte("# CV"), MIMEText},
		{"docx by extension", "resume.docx", []byte{0x00, 0x01, 0x02}, MIMEDOCX},
		{"docx content", "upload", buildDocx(t, "<w:p><w:r><w:t>Go</w:t></w:r></w:p>"), MIMEDOCX},
		{"png", "photo", []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), "image/png"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectContentType(tt.filename, tt.data))
		})
	}
}

func TestDispatcherPlainText(t *testing.T) {
	res, err := NewDispatcher().ExtractFile(context.Background(), "cv.txt", []byte("Python, SQL and Excel"))
	require.NoError(t, err)
	assert.Equal(t, "Python, SQL and Excel", res.Text)
	assert.Equal(t, MIMEText, res.ContentType)
}

func TestDispatcherUnsupported(t *testing.T) {
	_, err := NewDispatcher().ExtractFile(context.Background(), "photo.png", []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"))
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeUnsupportedFormat))
}

type stubExtractor struct {
	text string
	err  error
}

func (s stubExtractor) Extract(context.Context, []byte) (string, error) {
	return s.text, s.err
}

func TestDispatcherWrapsExtractorFailure(t *testing.T) {
	d := NewDispatcher()
	d.Register(MIMEText, stubExtractor{err: assert.AnError})

	_, err := d.ExtractFile(context.Background(), "cv.txt", []byte("x"))
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeExtractionFailed))
	assert.ErrorIs(t, err, assert.AnError)
}

func TestDispatcherCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewDispatcher().Extract(ctx, []byte("python"))
	assert.ErrorIs(t, err, context.Canceled)
}

// buildPDF writes one page per entry; an empty entry leaves its page blank.
func buildPDF(t *testing.T, pages ...string) []byte {
	t.Helper()
	doc := fpdf.New("P", "pt", "Letter", "")
	doc.SetCompression(false)
	for _, text := range pages {
		doc.AddPage()
		if text == "" {
			continue
		}
		doc.SetFont("Helvetica", "", 12)
		doc.Text(50, 50, text)
	}
	var buf bytes.Buffer
	require.NoError(t, doc.Output(&buf))
	return buf.Bytes()
}

func TestPDFExtractorPagesInOrder(t *testing.T) {
	data := buildPDF(t, "Python", "", "SQL")

	text, err := PDFExtractor{}.Extract(context.Background(), data)
	require.NoError(t, err)

	python := strings.Index(text, "Python")
	sql := strings.Index(text, "SQL")
	require.GreaterOrEqual(t, python, 0, text)
	require.GreaterOrEqual(t, sql, 0, text)
	assert.Less(t, python, sql)

	res, err := NewDispatcher().ExtractFile(context.Background(), "resume.pdf", data)
	require.NoError(t, err)
	assert.Equal(t, MIMEPDF, res.ContentType)
	assert.Equal(t, text, res.Text)
}

func TestPDFExtractorBlankDocument(t *testing.T) {
	text, err := PDFExtractor{}.Extract(context.Background(), buildPDF(t, "", ""))
	require.NoError(t, err)
	assert.Empty(t, strings.TrimSpace(text))
}

func TestPDFExtractorRejectsGarbage(t *testing.T) {
	_, err := PDFExtractor{}.Extract(context.Background(), []byte("%PDF-1.4 not really a pdf"))
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeExtractionFailed))
}

func TestDOCXExtractor(t *testing.T) {
	data := buildDocx(t, `<w:p><w:r><w:t>Jane Doe</w:t></w:r></w:p>`+
		`<w:p><w:r><w:t>Python &amp; SQL</w:t></w:r><w:r><w:tab/><w:t>Git</w:t></w:r></w:p>`)

	text, err := DOCXExtractor{}.Extract(context.Background(), data)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe\nPython & SQL\tGit", text)
}

func TestDOCXExtractorRejectsGarbage(t *testing.T) {
	_, err := DOCXExtractor{}.Extract(context.Background(), []byte("not a zip"))
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeExtractionFailed))
}

// buildDocx writes a minimal Word package around body.
func buildDocx(t *testing.T, body string) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	parts := map[string]string{
		"[Content_Types].xml": `<?xml version="1.0" encoding="UTF-8"?>` +
			`<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">` +
			`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>` +
			`<Default Extension="xml" ContentType="application/xml"/>` +
			`<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>` +
			`</Types>`,
		"_rels/.rels": `<?xml version="1.0" encoding="UTF-8"?>` +
			`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
			`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>` +
			`</Relationships>`,
		"word/_rels/document.xml.rels": `<?xml version="1.0" encoding="UTF-8"?>` +
			`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"></Relationships>`,
		"word/document.xml": `<?xml version="1.0" encoding="UTF-8"?>` +
			`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
			body + `</w:body></w:document>`,
	}
	for _, name := range []string{"[Content_Types].xml", "_rels/.rels", "word/_rels/document.xml.rels", "word/document.xml"} {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(parts[name]))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}
