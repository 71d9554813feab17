package types

import "fmt"

// MatchResult is the outcome of matching one resume against one job role
type MatchResult struct {
	Role          string   `json:"role"`
	MatchedSkills []string `json:"matchedSkills"`
	MissingSkills []string `json:"missingSkills"`
	Score         float64  `json:"score"` // 0-100
}

// RequiredCount is the size of the role's skill list the result was computed from.
func (r MatchResult) RequiredCount() int {
	return len(r.MatchedSkills) + len(r.MissingSkills)
}

// Analysis bundles a match with the text it was computed from
type Analysis struct {
	Filename      string      `json:"filename,omitempty"`
	ContentType   string      `json:"contentType,omitempty"`
	ExtractedText string      `json:"extractedText"`
	Match         MatchResult `json:"match"`
}

// SuggestionResult is either suggestion text or the reason it could not be produced
type SuggestionResult struct {
	Text string `json:"text,omitempty"`
	Err  error  `json:"-"`
}

// OK reports whether the suggestions were produced.
func (s SuggestionResult) OK() bool {
	return s.Err == nil
}

// Display is the text shown to the user in both the success and the failure case.
func (s SuggestionResult) Display() string {
	if s.Err != nil {
		return fmt.Sprintf("Error getting suggestions: %v", s.Err)
	}
	return s.Text
}

// RoleInfo describes a catalog entry
type RoleInfo struct {
	Name   string   `json:"name"`
	Skills []string `json:"skills"`
}
