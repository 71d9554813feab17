package ai

import "fmt"

// DefaultSuggestionPrompt is the career-coach prompt. Custom templates use the
// same verbs: %[1]s is the job role, %[2]s the extracted resume text.
const DefaultSuggestionPrompt = `You are a helpful career coach. The user is applying for the role of %[1]s.
Here is their resume text:

%[2]s

Please provide 3 clear and actionable suggestions to improve their resume for better chances in this role.
`

// BuildPrompt fills template with role and resume text.
func BuildPrompt(template, role, resumeText string) string {
	if template == "" {
		template = DefaultSuggestionPrompt
	}
	return fmt.Sprintf(template, role, resumeText)
}
