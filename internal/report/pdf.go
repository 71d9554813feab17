package report

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"

	"resumatch/internal/errors"
)

const DocumentTitle = "Resume Match Report"

// Document is the content of a PDF report
type Document struct {
	Title   string
	Role    string
	Score   float64
	Matched []string
	Missing []string
}

// Renderer draws a Document into a binary page description.
type Renderer interface {
	Render(doc Document) ([]byte, error)
}

// ZapfDingbats code points for the list markers.
const (
	checkMark = "4" // ✔
	crossMark = "8" // ✘
)

// PDFRenderer lays a Document out on US Letter pages, coordinates in points from the top-left.
// Reports fit on one page unless the skill lists run past BottomLimit, in which case the
// lists continue on a new page instead of being drawn off the bottom edge.
type PDFRenderer struct {
	Left        float64
	ItemIndent  float64
	Top         float64
	BottomLimit float64
}

func NewPDFRenderer() *PDFRenderer {
	return &PDFRenderer{
		Left:        50,
		ItemIndent:  70,
		Top:         50,
		BottomLimit: 50,
	}
}

func (r *PDFRenderer) Render(doc Document) ([]byte, error) {
	pdf := r.layout(doc)
	if err := pdf.Error(); err != nil {
		return nil, errors.NewRenderError("pdf layout failed", err)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, errors.NewRenderError("pdf output failed", err)
	}
	return buf.Bytes(), nil
}

func (r *PDFRenderer) layout(doc Document) *fpdf.Fpdf {
	pdf := fpdf.New("P", "pt", "Letter", "")
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetTitle(doc.Title, true)
	pdf.SetCreator("resumatch", true)
	_, pageHeight := pdf.GetPageSize()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Text(r.Left, r.Top, tr(doc.Title))

	pdf.SetFont("Helvetica", "", 12)
	y := r.Top + 40
	pdf.Text(r.Left, y, tr("Job Role: "+doc.Role))
	y += 20
	pdf.Text(r.Left, y, fmt.Sprintf("Match Score: %.2f%%", doc.Score))

	y += 30
	pdf.Text(r.Left, y, "Matched Skills:")
	y += 20
	for _, skill := range doc.Matched {
		y = r.ensureRoom(pdf, y, pageHeight)
		r.item(pdf, y, checkMark, tr(skill))
		y += 15
	}

	y += 10
	y = r.ensureRoom(pdf, y, pageHeight)
	pdf.Text(r.Left, y, "Missing Skills:")
	y += 20
	for _, skill := range doc.Missing {
		y = r.ensureRoom(pdf, y, pageHeight)
		r.item(pdf, y, crossMark, tr(skill))
		y += 15
	}
	return pdf
}

// item draws a marker glyph followed by the skill name on baseline y.
func (r *PDFRenderer) item(pdf *fpdf.Fpdf, y float64, marker, text string) {
	pdf.SetFont("ZapfDingbats", "", 10)
	pdf.Text(r.ItemIndent, y, marker)
	offset := pdf.GetStringWidth(marker) + 4

	pdf.SetFont("Helvetica", "", 12)
	pdf.Text(r.ItemIndent+offset, y, text)
}

// ensureRoom starts a new page when y would fall into the bottom margin.
func (r *PDFRenderer) ensureRoom(pdf *fpdf.Fpdf, y, pageHeight float64) float64 {
	if y <= pageHeight-r.BottomLimit {
		return y
	}
	pdf.AddPage()
	pdf.SetFont("Helvetica", "", 12)
	return r.Top
}
