package config

import (
	"fmt"
	"os"
	"strings"
)

// maxPromptFileSize bounds prompt template files
const maxPromptFileSize = 64 * 1024

// loadPromptFile reads AI.PromptFile once at startup
func (c *Config) loadPromptFile() error {
	if c.AI.PromptFile == "" {
		return nil
	}

	info, err := os.Stat(c.AI.PromptFile)
	if err != nil {
		return fmt.Errorf("prompt file %s: %w", c.AI.PromptFile, err)
	}
	if info.IsDir() {
		return fmt.Errorf("prompt file %s is a directory", c.AI.PromptFile)
	}
	if info.Size() > maxPromptFileSize {
		return fmt.Errorf("prompt file %s exceeds %d bytes", c.AI.PromptFile, maxPromptFileSize)
	}

	content, err := os.ReadFile(c.AI.PromptFile)
	if err != nil {
		return fmt.Errorf("failed to read prompt file %s: %w", c.AI.PromptFile, err)
	}
	if strings.TrimSpace(string(content)) == "" {
		return fmt.Errorf("prompt file %s is empty", c.AI.PromptFile)
	}

	if err := validatePromptTemplate(string(content)); err != nil {
		return fmt.Errorf("prompt file %s: %w", c.AI.PromptFile, err)
	}

	c.AI.promptFromFile = string(content)
	return nil
}

// promptVerbs are the placeholders every custom template must fill: role, then resume text
var promptVerbs = []string{"%[1]s", "%[2]s"}

// validatePromptTemplate rejects templates that would drop the role or the resume text
func validatePromptTemplate(template string) error {
	var missing []string
	for _, verb := range promptVerbs {
		if !strings.Contains(template, verb) {
			missing = append(missing, verb)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("prompt template must contain %s (role) and %s (resume text), missing %s",
			promptVerbs[0], promptVerbs[1], strings.Join(missing, ", "))
	}
	return nil
}

// PromptTemplate resolves the suggestion prompt: file content first, then inline config, then fallback.
func (c *AIConfig) PromptTemplate(fallback string) string {
	if c.promptFromFile != "" {
		return c.promptFromFile
	}
	if c.Prompt != "" {
		return c.Prompt
	}
	return fallback
}
