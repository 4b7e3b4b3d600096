// Package strings provides string manipulation utilities.
package strings

import (
	"strings"
	"unicode"
)

// SplitStripped splits raw on sep and deletes every whitespace rune from each
// token. Tokens that end up empty are dropped. Order and duplicates are kept.
//
// Example:
//
//	SplitStripped(" LOGIN, LOG OUT ,, ", ",")
//	// Returns: []string{"LOGIN", "LOGOUT"}
func SplitStripped(raw, sep string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, sep)
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		stripped := DeleteWhitespace(p)
		if stripped == "" {
			continue
		}
		result = append(result, stripped)
	}
	return result
}

// DeleteWhitespace removes all whitespace runes from s, not only the
// surrounding ones.
func DeleteWhitespace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}
