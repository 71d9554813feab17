package types

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSuggestionResultDisplay(t *testing.T) {
	ok := SuggestionResult{Text: "1. Add metrics"}
	assert.True(t, ok.OK())
	assert.Equal(t, "1. Add metrics", ok.Display())

	failed := SuggestionResult{Err: errors.New("quota exceeded")}
	assert.False(t, failed.OK())
	assert.Equal(t, "Error getting suggestions: quota exceeded", failed.Display())
}

func TestMatchResultRequiredCount(t *testing.T) {
	r := MatchResult{MatchedSkills: []string{"python"}, MissingSkills: []string{"sql", "git"}}
	assert.Equal(t, 3, r.RequiredCount())
}
