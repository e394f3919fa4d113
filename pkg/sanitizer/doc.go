// Package sanitizer provides display-masking helpers for sensitive values.
//
// The helpers are pure formatting functions with no cryptographic role: they
// exist so log lines and UI responses can reference a value ("secret ending
// in 1234") without ever reproducing it.
//
//	sanitizer.MaskString("4111111111111234", 4) // "************1234"
//	sanitizer.MaskEmail("alice@example.com")    // "a****@example.com"
//	sanitizer.MaskPhone("+1 (555) 123-4567")    // "*******4567"
//
// Values shorter than or equal to the visible-character count are masked
// entirely.
package sanitizer
