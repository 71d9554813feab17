package report

import (
	"bytes"
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resumatch/internal/errors"
	"resumatch/internal/types"
)

func TestToText(t *testing.T) {
	got := ToText("Data Analyst", 100.0/3, []string{"python", "sql"}, []string{"excel", "machine learning"})

	want := "\nJob Role: Data Analyst\nMatch Score: 33.33%\n\n" +
		"Matched Skills:\npython, sql\n\n" +
		"Missing Skills:\nexcel, machine learning\n"
	assert.Equal(t, want, got)
}

func TestToTextEmptyLists(t *testing.T) {
	got := ToText("Product Manager", 0, nil, []string{})

	assert.Contains(t, got, "Match Score: 0.00%")
	assert.Contains(t, got, "Matched Skills:\nNone\n")
	assert.Contains(t, got, "Missing Skills:\nNone\n")
}

func TestFilename(t *testing.T) {
	tests := []struct {
		role string
		kind Kind
		want string
	}{
		{"Data Analyst", KindText, "Data_Analyst_match_report.txt"},
		{"Machine Learning Engineer", KindPDF, "Machine_Learning_Engineer_match_report.pdf"},
		{"Two  Spaces", KindText, "Two__Spaces_match_report.txt"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Filename(tt.role, tt.kind))
	}
}

func TestParseKind(t *testing.T) {
	for in, want := range map[string]Kind{"text": KindText, "TXT": KindText, " pdf ": KindPDF} {
		got, err := ParseKind(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}

	_, err := ParseKind("docx")
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidFormat))
}

func TestKindContentType(t *testing.T) {
	assert.Equal(t, "text/plain", KindText.ContentType())
	assert.Equal(t, "application/pdf", KindPDF.ContentType())
}

type failingRenderer struct{ err error }

func (f failingRenderer) Render(Document) ([]byte, error) {
	return []byte("%PDF-partial"), f.err
}

type recordingRenderer struct{ got Document }

func (r *recordingRenderer) Render(doc Document) ([]byte, error) {
	r.got = doc
	return []byte("ok"), nil
}

func TestToDocumentPassesContent(t *testing.T) {
	rec := &recordingRenderer{}
	out, err := NewGenerator(rec).ToDocument("Software Engineer", 50, []string{"git"}, []string{"docker"})
	require.NoError(t, err)

	assert.Equal(t, []byte("ok"), out)
	assert.Equal(t, Document{
		Title:   "Resume Match Report",
		Role:    "Software Engineer",
		Score:   50,
		Matched: []string{"git"},
		Missing: []string{"docker"},
	}, rec.got)
}

func TestToDocumentRenderError(t *testing.T) {
	cause := stderrors.New("font table corrupt")
	out, err := NewGenerator(failingRenderer{err: cause}).ToDocument("Data Analyst", 10, nil, nil)

	assert.Nil(t, out)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeRenderFailed))
	assert.ErrorIs(t, err, cause)
}

func TestPDFRendererProducesPDF(t *testing.T) {
	out, err := NewPDFRenderer().Render(Document{
		Title:   DocumentTitle,
		Role:    "Data Scientist",
		Score:   66.666,
		Matched: []string{"python", "machine learning", "sql", "r"},
		Missing: []string{"statistics", "deep learning"},
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
	assert.Contains(t, string(out), "%%EOF")
}

func TestPDFRendererPaginatesLongLists(t *testing.T) {
	skills := make([]string, 120)
	for i := range skills {
		skills[i] = "skill"
	}

	pdf := NewPDFRenderer().layout(Document{Title: DocumentTitle, Role: "Long", Matched: skills, Missing: skills})
	require.NoError(t, pdf.Error())
	assert.GreaterOrEqual(t, pdf.PageCount(), 3)

	short := NewPDFRenderer().layout(Document{Title: DocumentTitle, Role: "Short", Matched: []string{"go"}})
	assert.Equal(t, 1, short.PageCount())
}

func TestExport(t *testing.T) {
	result := types.MatchResult{
		Role:          "Python Developer",
		MatchedSkills: []string{"python"},
		MissingSkills: []string{"django"},
		Score:         50,
	}
	g := NewGenerator(&recordingRenderer{})

	txt, err := g.Export(result, KindText)
	require.NoError(t, err)
	assert.Equal(t, "Python_Developer_match_report.txt", txt.Filename)
	assert.Equal(t, "text/plain", txt.ContentType)
	assert.Contains(t, string(txt.Content), "Match Score: 50.00%")

	pdf, err := g.Export(result, KindPDF)
	require.NoError(t, err)
	assert.Equal(t, "Python_Developer_match_report.pdf", pdf.Filename)
	assert.Equal(t, "application/pdf", pdf.ContentType)

	_, err = g.Export(result, Kind("html"))
	assert.Error(t, err)

	_, err = NewGenerator(failingRenderer{err: stderrors.New("x")}).Export(result, KindPDF)
	assert.True(t, errors.HasCode(err, errors.ErrCodeRenderFailed))
}
