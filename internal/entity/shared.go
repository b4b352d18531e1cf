package entity

import "strings"

// NormalizeWordToken lowercases and trims a headword for lookups.
func NormalizeWordToken(word string) string {
	trimmed := strings.TrimSpace(word)
	if trimmed == "" {
		return ""
	}
	return strings.ToLower(trimmed)
}
