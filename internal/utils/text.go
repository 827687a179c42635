package utils

import (
	"strings"
	"unicode/utf8"
)

// Truncate shortens s to at most maxRunes runes for log previews.
func Truncate(s string, maxRunes int) string {
	if strings.TrimSpace(s) == "" {
		return ""
	}

	if utf8.RuneCountInString(s) <= maxRunes {
		return s
	}

	runes := []rune(s)
	return string(runes[:maxRunes]) + "..."
}
