package common

import (
	"fmt"
	"slices"
	"strings"

	"resumatch/internal/errors"
	"resumatch/internal/report"
)

// ValidateOutputFormat validates format against configured supported formats
func ValidateOutputFormat(format string, supportedFormats []string) error {
	if len(supportedFormats) == 0 {
		return nil // No restrictions configured
	}

	if slices.Contains(supportedFormats, format) {
		return nil
	}

	return errors.NewValidationError(errors.ErrCodeInvalidFormat,
		fmt.Sprintf("unsupported output format '%s'. Supported formats: %v", format, supportedFormats), nil)
}

// ValidateRole rejects an empty role before any file is read
func ValidateRole(role string) error {
	if strings.TrimSpace(role) == "" {
		return errors.NewValidationError(errors.ErrCodeInvalidRequest, "a job role is required (--role)", nil)
	}
	return nil
}

// ReportKinds lists the accepted --type values
func ReportKinds() []string {
	kinds := make([]string, len(report.Kinds))
	for i, k := range report.Kinds {
		kinds[i] = string(k)
	}
	return kinds
}
