// Package report turns a match result into downloadable text and PDF reports.
package report

import (
	"fmt"
	"strings"

	"resumatch/internal/errors"
	"resumatch/internal/types"
)

// Kind selects the report serialization
type Kind string

const (
	KindText Kind = "text"
	KindPDF  Kind = "pdf"
)

// Kinds lists the supported report kinds.
var Kinds = []Kind{KindText, KindPDF}

// ParseKind accepts "text", "txt" and "pdf".
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "text", "txt":
		return KindText, nil
	case "pdf":
		return KindPDF, nil
	default:
		return "", errors.NewValidationError(errors.ErrCodeInvalidFormat,
			fmt.Sprintf("unsupported report type %q, expected text or pdf", s), nil)
	}
}

// Extension is the file extension used in report filenames.
func (k Kind) Extension() string {
	if k == KindPDF {
		return "pdf"
	}
	return "txt"
}

// ContentType is the MIME type served for the report.
func (k Kind) ContentType() string {
	if k == KindPDF {
		return "application/pdf"
	}
	return "text/plain"
}

// Filename builds "{role}_match_report.{ext}" with every space in role replaced by an underscore.
func Filename(role string, kind Kind) string {
	return fmt.Sprintf("%s_match_report.%s", strings.ReplaceAll(role, " ", "_"), kind.Extension())
}

// ToText renders the plain-text report.
func ToText(role string, score float64, matched, missing []string) string {
	return fmt.Sprintf("\nJob Role: %s\nMatch Score: %.2f%%\n\nMatched Skills:\n%s\n\nMissing Skills:\n%s\n",
		role, score, joinOrNone(matched), joinOrNone(missing))
}

func joinOrNone(skills []string) string {
	if len(skills) == 0 {
		return "None"
	}
	return strings.Join(skills, ", ")
}

// Report is a rendered, downloadable report
type Report struct {
	Filename    string
	ContentType string
	Content     []byte
}

// Generator produces reports using a page-drawing Renderer
type Generator struct {
	renderer Renderer
}

// NewGenerator returns a generator; a nil renderer selects the PDF renderer.
func NewGenerator(renderer Renderer) *Generator {
	if renderer == nil {
		renderer = NewPDFRenderer()
	}
	return &Generator{renderer: renderer}
}

// ToDocument renders the PDF report. Renderer failures come back as RenderError and no bytes.
func (g *Generator) ToDocument(role string, score float64, matched, missing []string) ([]byte, error) {
	doc := Document{
		Title:   DocumentTitle,
		Role:    role,
		Score:   score,
		Matched: matched,
		Missing: missing,
	}

	content, err := g.renderer.Render(doc)
	if err != nil {
		if errors.HasCode(err, errors.ErrCodeRenderFailed) {
			return nil, err
		}
		return nil, errors.NewRenderError("failed to render match report", err).WithContext("role", role)
	}
	return content, nil
}

// Export renders result as the requested kind.
func (g *Generator) Export(result types.MatchResult, kind Kind) (*Report, error) {
	var content []byte
	switch kind {
	case KindText:
		content = []byte(ToText(result.Role, result.Score, result.MatchedSkills, result.MissingSkills))
	case KindPDF:
		var err error
		content, err = g.ToDocument(result.Role, result.Score, result.MatchedSkills, result.MissingSkills)
		if err != nil {
			return nil, err
		}
	default:
		return nil, errors.NewValidationError(errors.ErrCodeInvalidFormat,
			fmt.Sprintf("unsupported report type %q", kind), nil)
	}

	return &Report{
		Filename:    Filename(result.Role, kind),
		ContentType: kind.ContentType(),
		Content:     content,
	}, nil
}
