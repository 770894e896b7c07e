// Package privacy redacts personal data from queries before they are
// logged or stored for analytics.
package privacy

import (
	"regexp"
)

var (
	// Email pattern
	emailRegex = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Z|a-z]{2,}\b`)

	// Phone number patterns (Indian mobile, international, separated groups)
	// Matches: 9876543210, +91 98765 43210, 555-123-4567, (555) 123-4567
	phoneRegex = regexp.MustCompile(`(\+\d{1,3}[-.\s]?)?\(?\d{3,5}\)?[-.\s]?\d{3,5}[-.\s]\d{4,5}|\b[6-9]\d{9}\b`)

	// Credit card pattern (basic) - must have 4 groups
	creditCardRegex = regexp.MustCompile(`\b\d{4}[-\s]\d{4}[-\s]\d{4}[-\s]\d{4}\b`)
)

// RedactSensitiveData removes PII from text
func RedactSensitiveData(text string) string {
	text = emailRegex.ReplaceAllString(text, "[EMAIL]")
	text = phoneRegex.ReplaceAllString(text, "[PHONE]")
	text = creditCardRegex.ReplaceAllString(text, "[CARD]")
	return text
}

// SanitizeForLogging prepares text for safe logging
func SanitizeForLogging(text string) string {
	redacted := RedactSensitiveData(text)

	if len(redacted) > 200 {
		return redacted[:197] + "..."
	}
	return redacted
}

// ContainsPII checks if text contains potential PII
func ContainsPII(text string) bool {
	return emailRegex.MatchString(text) ||
		phoneRegex.MatchString(text) ||
		creditCardRegex.MatchString(text)
}
