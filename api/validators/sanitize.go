package validators

import (
	"strings"
	"unicode"
)

// SanitizeString trims surrounding whitespace, strips control characters, and
// truncates to maxLen runes. maxLen <= 0 disables truncation.
func SanitizeString(input string, maxLen int) string {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, strings.TrimSpace(input))

	if maxLen > 0 {
		runes := []rune(cleaned)
		if len(runes) > maxLen {
			return string(runes[:maxLen])
		}
	}
	return cleaned
}
