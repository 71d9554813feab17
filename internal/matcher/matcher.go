// Package matcher scores resume text against a role's required skills.
package matcher

import (
	"strings"

	"resumatch/internal/types"
)

// Lookuper resolves a role to its ordered skill list.
type Lookuper interface {
	Lookup(role string) ([]string, error)
}

// Match partitions required into skills found in text and skills not found.
// Containment is a case-insensitive substring test, so "pythonista" satisfies "python".
func Match(text string, required []string) types.MatchResult {
	haystack := strings.ToLower(text)

	matched := make([]string, 0, len(required))
	missing := make([]string, 0, len(required))
	for _, skill := range required {
		if strings.Contains(haystack, strings.ToLower(skill)) {
			matched = append(matched, skill)
		} else {
			missing = append(missing, skill)
		}
	}

	return types.MatchResult{
		MatchedSkills: matched,
		MissingSkills: missing,
		Score:         Score(len(matched), len(required)),
	}
}

// Score is the percentage of required skills matched, 0 when nothing is required.
func Score(matched, required int) float64 {
	if required == 0 {
		return 0
	}
	return float64(matched) / float64(required) * 100
}

// MatchRole looks role up in the catalog and matches text against it.
func MatchRole(catalog Lookuper, role, text string) (types.MatchResult, error) {
	skills, err := catalog.Lookup(role)
	if err != nil {
		return types.MatchResult{}, err
	}
	result := Match(text, skills)
	result.Role = role
	return result, nil
}
