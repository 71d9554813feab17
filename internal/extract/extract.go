// Package extract converts uploaded resume documents into plain text.
package extract

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"resumatch/internal/errors"
)

// Supported content types
const (
	MIMEPDF  = "application/pdf"
	MIMEDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MIMEText = "text/plain"
)

// Extractor turns document bytes into text.
type Extractor interface {
	Extract(ctx context.Context, data []byte) (string, error)
}

// Result is the text of a document together with the content type it was read as
type Result struct {
	Text        string
	ContentType string
}

// Dispatcher picks an Extractor by sniffing the content, falling back to the file extension
type Dispatcher struct {
	extractors map[string]Extractor
}

// NewDispatcher registers the PDF, DOCX and plain-text extractors.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		extractors: map[string]Extractor{
			MIMEPDF:  PDFExtractor{},
			MIMEDOCX: DOCXExtractor{},
			MIMEText: TextExtractor{},
		},
	}
}

// Register replaces the extractor used for contentType.
func (d *Dispatcher) Register(contentType string, e Extractor) {
	d.extractors[contentType] = e
}

// Extract implements Extractor using content sniffing only.
func (d *Dispatcher) Extract(ctx context.Context, data []byte) (string, error) {
	res, err := d.ExtractFile(ctx, "", data)
	if err != nil {
		return "", err
	}
	return res.Text, nil
}

// ExtractFile extracts text from data, using filename only when sniffing is inconclusive.
func (d *Dispatcher) ExtractFile(ctx context.Context, filename string, data []byte) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	contentType := DetectContentType(filename, data)
	extractor, ok := d.extractors[contentType]
	if !ok {
		return nil, errors.NewValidationError(errors.ErrCodeUnsupportedFormat,
			fmt.Sprintf("unsupported document type %s, expected PDF, DOCX or plain text", contentType), nil).
			WithContext("filename", filename)
	}

	text, err := extractor.Extract(ctx, data)
	if err != nil {
		if appErr, ok := errors.As(err); ok {
			return nil, appErr.WithContext("filename", filename)
		}
		return nil, errors.NewExtractionError(errors.ErrCodeExtractionFailed,
			"failed to extract document text", err).WithContext("filename", filename)
	}

	return &Result{Text: text, ContentType: contentType}, nil
}

// DetectContentType returns one of the supported MIME types, or the sniffed type when none applies.
func DetectContentType(filename string, data []byte) string {
	mtype := mimetype.Detect(data)
	switch {
	case mtype.Is(MIMEPDF):
		return MIMEPDF
	case mtype.Is(MIMEDOCX):
		return MIMEDOCX
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return MIMEPDF
	case ".docx":
		return MIMEDOCX
	case ".txt", ".text", ".md", ".markdown":
		return MIMEText
	}

	for m := mtype; m != nil; m = m.Parent() {
		if m.Is(MIMEText) {
			return MIMEText
		}
	}
	return strings.SplitN(mtype.String(), ";", 2)[0]
}

// TextExtractor passes UTF-8 text through unchanged
type TextExtractor struct{}

func (TextExtractor) Extract(_ context.Context, data []byte) (string, error) {
	return string(data), nil
}
