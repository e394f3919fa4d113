package sanitizer

import (
	"regexp"
	"strings"
)

var nonDigitRegex = regexp.MustCompile(`\D`)

// MaskString hides everything except the last visibleChars characters.
// Strings no longer than visibleChars are masked entirely so short values
// never leak whole. Handles multi-byte characters correctly.
//
//	MaskString("4111111111111234", 4) // "************1234"
func MaskString(s string, visibleChars int) string {
	if visibleChars < 0 {
		visibleChars = 0
	}

	runes := []rune(s)
	if len(runes) <= visibleChars {
		return strings.Repeat("*", len(runes))
	}

	hidden := len(runes) - visibleChars
	return strings.Repeat("*", hidden) + string(runes[hidden:])
}

// MaskEmail keeps the first character of the local part and the full domain
// so users can recognize their own address. Input that does not look like an
// email is returned unchanged.
func MaskEmail(email string) string {
	email = strings.TrimSpace(email)
	parts := strings.Split(email, "@")
	if len(parts) != 2 || parts[0] == "" {
		return email
	}

	local := []rune(parts[0])
	if len(local) == 1 {
		return "*@" + parts[1]
	}
	return string(local[0]) + strings.Repeat("*", len(local)-1) + "@" + parts[1]
}

// MaskPhone strips formatting and shows only the last 4 digits, following the
// common PCI-style display pattern.
func MaskPhone(phone string) string {
	digits := nonDigitRegex.ReplaceAllString(phone, "")
	return MaskString(digits, 4)
}
