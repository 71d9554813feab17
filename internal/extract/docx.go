package extract

import (
	"bytes"
	"context"
	"html"
	"regexp"
	"strings"

	"github.com/nguyenthenguyen/docx"

	"resumatch/internal/errors"
)

var (
	paragraphEnd = regexp.MustCompile(`</w:p>|<w:br/>|<w:tab/>`)
	xmlTag       = regexp.MustCompile(`<[^>]*>`)
)

// DOCXExtractor reads the main document part of a Word file.
type DOCXExtractor struct{}

func (DOCXExtractor) Extract(_ context.Context, data []byte) (string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", errors.NewExtractionError(errors.ErrCodeExtractionFailed, "failed to parse docx", err)
	}
	defer doc.Close()

	return xmlToText(doc.Editable().GetContent()), nil
}

// xmlToText keeps paragraph breaks and drops WordprocessingML markup.
func xmlToText(content string) string {
	content = paragraphEnd.ReplaceAllStringFunc(content, func(tag string) string {
		if tag == "<w:tab/>" {
			return "\t"
		}
		return "\n"
	})
	content = xmlTag.ReplaceAllString(content, "")
	return strings.TrimSpace(html.UnescapeString(content))
}
