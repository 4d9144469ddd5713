package errors

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	maxWorkflowNameLength        = 200
	maxWorkflowDescriptionLength = 2000
)

// ValidateWorkflowName checks a diagram name. Names must contain a visible
// character, stay under 200 characters and carry no control characters.
// Non-ASCII names are fine.
func ValidateWorkflowName(name string) error {
	if strings.TrimSpace(name) == "" {
		return New(ErrCodeInvalidInput, "workflow name cannot be empty")
	}
	if utf8.RuneCountInString(name) > maxWorkflowNameLength {
		return New(ErrCodeInvalidInput, "workflow name too long (max %d characters)", maxWorkflowNameLength)
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "workflow name contains invalid control characters")
		}
	}
	return nil
}

// ValidateWorkflowDescription checks a diagram description. Empty is fine;
// newlines and tabs are allowed.
func ValidateWorkflowDescription(desc string) error {
	if utf8.RuneCountInString(desc) > maxWorkflowDescriptionLength {
		return New(ErrCodeInvalidInput, "workflow description too long (max %d characters)", maxWorkflowDescriptionLength)
	}
	for _, r := range desc {
		if unicode.IsControl(r) && r != '\n' && r != '\t' && r != '\r' {
			return New(ErrCodeInvalidInput, "workflow description contains invalid control characters")
		}
	}
	return nil
}

// workflowIDRegex matches generated ids ("wf-1718000000000") and the short
// seeded ones ("wf-1").
var workflowIDRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]{0,127}$`)

// ValidateWorkflowID checks that id is safe to use as a key, a URL segment
// and an object name.
func ValidateWorkflowID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "workflow id cannot be empty")
	}
	if !workflowIDRegex.MatchString(id) {
		return New(ErrCodeInvalidInput, "invalid workflow id: %q", id)
	}
	return nil
}
