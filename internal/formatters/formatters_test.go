package formatters

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resumatch/internal/types"
)

var sample = types.MatchResult{
	Role:          "Data Analyst",
	MatchedSkills: []string{"python", "sql"},
	MissingSkills: []string{"excel"},
	Score:         66.6666,
}

func TestFormatMatchText(t *testing.T) {
	out, err := GlobalRegistry.Format(sample, "text")
	require.NoError(t, err)
	assert.Equal(t, "\nJob Role: Data Analyst\nMatch Score: 66.67%\n\nMatched Skills:\npython, sql\n\nMissing Skills:\nexcel\n", out)

	ptrOut, err := GlobalRegistry.Format(&sample, "text")
	require.NoError(t, err)
	assert.Equal(t, out, ptrOut)
}

func TestFormatMatchMarkdown(t *testing.T) {
	out, err := GlobalRegistry.Format(types.MatchResult{Role: "SRE", MissingSkills: []string{"go"}}, "markdown")
	require.NoError(t, err)
	assert.Contains(t, out, "# Resume Match: SRE")
	assert.Contains(t, out, "**Match Score:** 0.00%")
	assert.Contains(t, out, "## Matched Skills\n\n_None_")
	assert.Contains(t, out, "- ✘ go")
}

func TestFormatJSON(t *testing.T) {
	out, err := GlobalRegistry.Format(sample, "json")
	require.NoError(t, err)

	var decoded types.MatchResult
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, sample, decoded)
}

func TestFormatAnalysis(t *testing.T) {
	analysis := types.Analysis{ExtractedText: "Python and SQL", Match: sample}

	text, err := GlobalRegistry.Format(analysis, "text")
	require.NoError(t, err)
	assert.Contains(t, text, "Job Role: Data Analyst")
	assert.Contains(t, text, "=== EXTRACTED TEXT ===\nPython and SQL")

	md, err := GlobalRegistry.Format(&analysis, "markdown")
	require.NoError(t, err)
	assert.Contains(t, md, "- ✔ python")
	assert.Contains(t, md, "<summary>Extracted text</summary>")
}

func TestFormatRoleList(t *testing.T) {
	roles := RoleList{{Name: "A", Skills: []string{"x", "y"}}}

	text, err := GlobalRegistry.Format(roles, "text")
	require.NoError(t, err)
	assert.Equal(t, "A: x, y\n", text)

	md, err := GlobalRegistry.Format(roles, "markdown")
	require.NoError(t, err)
	assert.Contains(t, md, "| A | x, y |")
}

func TestFormatUnknown(t *testing.T) {
	_, err := GlobalRegistry.Format(sample, "yaml")
	assert.Error(t, err)

	_, err = GlobalRegistry.Format(42, "text")
	assert.Error(t, err)
}

func TestSupportedFormats(t *testing.T) {
	assert.Equal(t, []string{"json", "markdown", "text"}, GlobalRegistry.GetSupportedFormats())
}
