package formatters

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"resumatch/internal/report"
	"resumatch/internal/types"
)

// Formatter renders one data type in one output format
type Formatter interface {
	Format(data any) (string, error)
	SupportedType() string
}

// FormatterRegistry maps format -> data type -> formatter
type FormatterRegistry struct {
	formatters map[string]map[string]Formatter
}

// GlobalRegistry is used by the CLI output handler
var GlobalRegistry = NewFormatterRegistry()

// NewFormatterRegistry creates a registry with the built-in formatters
func NewFormatterRegistry() *FormatterRegistry {
	registry := &FormatterRegistry{
		formatters: make(map[string]map[string]Formatter),
	}

	registry.RegisterFormatter("json", "any", &JSONFormatter{})
	registry.RegisterFormatter("text", "MatchResult", &MatchTextFormatter{})
	registry.RegisterFormatter("markdown", "MatchResult", &MatchMarkdownFormatter{})
	registry.RegisterFormatter("text", "Analysis", &AnalysisTextFormatter{})
	registry.RegisterFormatter("markdown", "Analysis", &AnalysisMarkdownFormatter{})
	registry.RegisterFormatter("text", "RoleList", &RoleListTextFormatter{})
	registry.RegisterFormatter("markdown", "RoleList", &RoleListMarkdownFormatter{})

	return registry
}

func (fr *FormatterRegistry) RegisterFormatter(format, dataType string, formatter Formatter) {
	if fr.formatters[format] == nil {
		fr.formatters[format] = make(map[string]Formatter)
	}
	fr.formatters[format][dataType] = formatter
}

// Format picks the formatter registered for data's type, falling back to the "any" formatter
func (fr *FormatterRegistry) Format(data any, format string) (string, error) {
	dataType := getDataType(data)

	if byType, exists := fr.formatters[format]; exists {
		if formatter, exists := byType[dataType]; exists {
			return formatter.Format(data)
		}
		if formatter, exists := byType["any"]; exists {
			return formatter.Format(data)
		}
	}

	return "", fmt.Errorf("no formatter found for format '%s' and type '%s'", format, dataType)
}

// GetSupportedFormats returns the registered formats in sorted order
func (fr *FormatterRegistry) GetSupportedFormats() []string {
	formats := make([]string, 0, len(fr.formatters))
	for format := range fr.formatters {
		formats = append(formats, format)
	}
	slices.Sort(formats)
	return formats
}

// RoleList is the output of the roles command
type RoleList []types.RoleInfo

func getDataType(data any) string {
	switch data.(type) {
	case types.MatchResult, *types.MatchResult:
		return "MatchResult"
	case types.Analysis, *types.Analysis:
		return "Analysis"
	case RoleList:
		return "RoleList"
	default:
		return "any"
	}
}

func asMatchResult(data any) (types.MatchResult, error) {
	switch v := data.(type) {
	case types.MatchResult:
		return v, nil
	case *types.MatchResult:
		return *v, nil
	default:
		return types.MatchResult{}, fmt.Errorf("expected MatchResult, got %T", data)
	}
}

func asAnalysis(data any) (types.Analysis, error) {
	switch v := data.(type) {
	case types.Analysis:
		return v, nil
	case *types.Analysis:
		return *v, nil
	default:
		return types.Analysis{}, fmt.Errorf("expected Analysis, got %T", data)
	}
}

// JSONFormatter handles any data type
type JSONFormatter struct{}

func (jf *JSONFormatter) Format(data any) (string, error) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", err
	}
	return string(jsonData) + "\n", nil
}

func (jf *JSONFormatter) SupportedType() string {
	return "any"
}

// MatchTextFormatter prints the same template as the downloadable text report
type MatchTextFormatter struct{}

func (f *MatchTextFormatter) Format(data any) (string, error) {
	result, err := asMatchResult(data)
	if err != nil {
		return "", err
	}
	return report.ToText(result.Role, result.Score, result.MatchedSkills, result.MissingSkills), nil
}

func (f *MatchTextFormatter) SupportedType() string {
	return "MatchResult"
}

type MatchMarkdownFormatter struct{}

func (f *MatchMarkdownFormatter) Format(data any) (string, error) {
	result, err := asMatchResult(data)
	if err != nil {
		return "", err
	}

	var output strings.Builder
	fmt.Fprintf(&output, "# Resume Match: %s\n\n", result.Role)
	fmt.Fprintf(&output, "**Match Score:** %.2f%%\n\n", result.Score)
	writeMarkdownList(&output, "Matched Skills", "✔", result.MatchedSkills)
	writeMarkdownList(&output, "Missing Skills", "✘", result.MissingSkills)
	return output.String(), nil
}

func (f *MatchMarkdownFormatter) SupportedType() string {
	return "MatchResult"
}

func writeMarkdownList(b *strings.Builder, heading, marker string, items []string) {
	fmt.Fprintf(b, "## %s\n\n", heading)
	if len(items) == 0 {
		b.WriteString("_None_\n\n")
		return
	}
	for _, item := range items {
		fmt.Fprintf(b, "- %s %s\n", marker, item)
	}
	b.WriteString("\n")
}

// AnalysisTextFormatter prints the report followed by the extracted text
type AnalysisTextFormatter struct{}

func (f *AnalysisTextFormatter) Format(data any) (string, error) {
	analysis, err := asAnalysis(data)
	if err != nil {
		return "", err
	}

	m := analysis.Match
	var output strings.Builder
	output.WriteString(report.ToText(m.Role, m.Score, m.MatchedSkills, m.MissingSkills))
	output.WriteString("\n=== EXTRACTED TEXT ===\n")
	output.WriteString(analysis.ExtractedText)
	output.WriteString("\n")
	return output.String(), nil
}

func (f *AnalysisTextFormatter) SupportedType() string {
	return "Analysis"
}

type AnalysisMarkdownFormatter struct{}

func (f *AnalysisMarkdownFormatter) Format(data any) (string, error) {
	analysis, err := asAnalysis(data)
	if err != nil {
		return "", err
	}

	out, err := (&MatchMarkdownFormatter{}).Format(analysis.Match)
	if err != nil {
		return "", err
	}

	var output strings.Builder
	output.WriteString(out)
	output.WriteString("<details>\n<summary>Extracted text</summary>\n\n```\n")
	output.WriteString(analysis.ExtractedText)
	output.WriteString("\n```\n</details>\n")
	return output.String(), nil
}

func (f *AnalysisMarkdownFormatter) SupportedType() string {
	return "Analysis"
}

type RoleListTextFormatter struct{}

func (f *RoleListTextFormatter) Format(data any) (string, error) {
	roles, ok := data.(RoleList)
	if !ok {
		return "", fmt.Errorf("expected RoleList, got %T", data)
	}

	var output strings.Builder
	for _, r := range roles {
		fmt.Fprintf(&output, "%s: %s\n", r.Name, strings.Join(r.Skills, ", "))
	}
	return output.String(), nil
}

func (f *RoleListTextFormatter) SupportedType() string {
	return "RoleList"
}

type RoleListMarkdownFormatter struct{}

func (f *RoleListMarkdownFormatter) Format(data any) (string, error) {
	roles, ok := data.(RoleList)
	if !ok {
		return "", fmt.Errorf("expected RoleList, got %T", data)
	}

	var output strings.Builder
	output.WriteString("| Role | Skills |\n|---|---|\n")
	for _, r := range roles {
		fmt.Fprintf(&output, "| %s | %s |\n", r.Name, strings.Join(r.Skills, ", "))
	}
	return output.String(), nil
}

func (f *RoleListMarkdownFormatter) SupportedType() string {
	return "RoleList"
}
