// Package redact strips PII from user messages before they reach the
// decision engine or the audit log.
package redact

import "regexp"

// Redaction targets: emails, phone numbers, card-like digit runs, and
// CNIC-format national IDs.
var (
	emailRe = regexp.MustCompile(`[a-zA-Z0-9_.+-]+@[a-zA-Z0-9-]+\.[a-zA-Z0-9-.]+`)
	phoneRe = regexp.MustCompile(`\+?\d[\d\- ]{7,}\d`)
	cardRe  = regexp.MustCompile(`\b(?:\d[ -]*?){13,16}\b`)
	cnicRe  = regexp.MustCompile(`\b\d{5}-\d{7}-\d\b`)
)

// PII replaces detected identifiers with fixed placeholders.
// Order matters: CNIC and card patterns would otherwise be eaten by the
// broader phone pattern.
func PII(text string) string {
	t := emailRe.ReplaceAllString(text, "[REDACTED_EMAIL]")
	t = cnicRe.ReplaceAllString(t, "[REDACTED_CNIC]")
	t = cardRe.ReplaceAllString(t, "[REDACTED_CC]")
	t = phoneRe.ReplaceAllString(t, "[REDACTED_PHONE]")
	return t
}
