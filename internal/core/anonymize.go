package core

import "regexp"

// Patterns for personal identifiers that must not reach the audit log.
var (
	rePhonePlain  = regexp.MustCompile(`\b\d{10}\b`)
	rePhoneDashed = regexp.MustCompile(`\b\d{3}[-.]?\d{3}[-.]?\d{4}\b`)
	reEmail       = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)
)

// Anonymize strips phone-number- and email-shaped substrings from text.  The
// result is used for audit logging only; the AI client still receives the
// raw symptom text.
func Anonymize(text string) string {
	text = rePhonePlain.ReplaceAllString(text, "[PHONE]")
	text = rePhoneDashed.ReplaceAllString(text, "[PHONE]")
	text = reEmail.ReplaceAllString(text, "[EMAIL]")
	return text
}
