package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldLabels maps struct field names to user-friendly labels
var FieldLabels = map[string]string{
	// Job fields
	"Title":               "Title",
	"Description":         "Description",
	"Location":            "Location",
	"SkillsRequired":      "Required skills",
	"ApplicationDeadline": "Application deadline",
	"SalaryMin":           "Minimum salary",
	"SalaryMax":           "Maximum salary",

	// Application fields
	"CoverLetter": "Cover letter",
	"Status":      "Status",
	"Notes":       "Review notes",

	// Messaging fields
	"RecipientID":     "Recipient",
	"Body":            "Message",
	"ScheduledAt":     "Interview time",
	"DurationMinutes": "Interview duration",
	"MeetingURL":      "Meeting link",
}

// FormatValidationErrors converts validator.ValidationErrors to user-friendly messages
func FormatValidationErrors(err error) []string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		// Not a validation error, return generic message
		return []string{err.Error()}
	}

	messages := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		messages = append(messages, formatSingleError(e))
	}
	return messages
}

// formatSingleError formats a single validation error to a user-friendly message
func formatSingleError(e validator.FieldError) string {
	label := getFieldLabel(e.Field())
	param := e.Param()

	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s: is required", label)
	case "min":
		if e.Kind().String() == "string" {
			return fmt.Sprintf("%s: must be at least %s characters", label, param)
		}
		return fmt.Sprintf("%s: must be at least %s", label, param)
	case "max":
		if e.Kind().String() == "string" {
			return fmt.Sprintf("%s: must be at most %s characters", label, param)
		}
		return fmt.Sprintf("%s: must be at most %s", label, param)
	case "oneof":
		return fmt.Sprintf("%s: must be one of: %s", label, strings.ReplaceAll(param, " ", ", "))
	case "url":
		return fmt.Sprintf("%s: invalid URL", label)
	case "skill_list":
		return fmt.Sprintf("%s: up to %d non-empty skills of at most %d characters", label, maxSkills, maxSkillLength)
	case "application_status":
		return fmt.Sprintf("%s: must be one of: pending, shortlisted, accepted, rejected", label)
	case "job_status":
		return fmt.Sprintf("%s: must be draft or published", label)
	case "no_emoji":
		return fmt.Sprintf("%s: must not contain emoji or special symbols", label)
	case "gtefield":
		return fmt.Sprintf("%s: must be greater than or equal to %s", label, getFieldLabel(param))
	default:
		return fmt.Sprintf("%s: failed validation (%s)", label, e.Tag())
	}
}

// getFieldLabel returns the user-friendly label for a field
func getFieldLabel(fieldName string) string {
	if label, ok := FieldLabels[fieldName]; ok {
		return label
	}
	return formatCamelCase(fieldName)
}

// formatCamelCase converts CamelCase to spaced words
func formatCamelCase(s string) string {
	var result strings.Builder
	for i, r := range s {
		if i > 0 && r >= 'A' && r <= 'Z' {
			result.WriteRune(' ')
		}
		result.WriteRune(r)
	}
	return result.String()
}
