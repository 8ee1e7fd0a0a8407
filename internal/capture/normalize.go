package capture

import (
	"strings"
	"unicode/utf8"
)

// MinValueChars is the minimum rune count for a value to be captured.
const MinValueChars = 2

// Clean trims leading and trailing whitespace.
func Clean(s string) string {
	return strings.TrimSpace(s)
}

// Normalize returns the comparison key for a value: trimmed and lowercased.
// Internal whitespace is kept as typed.
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// CountChars returns the character count as runes (not bytes).
func CountChars(text string) int {
	return utf8.RuneCountInString(text)
}

// Capturable reports whether the cleaned text is long enough to remember.
func Capturable(s string) bool {
	return CountChars(Clean(s)) >= MinValueChars
}

// Contains reports whether values already holds s under case-insensitive comparison.
func Contains(values []CapturedValue, s string) bool {
	key := Normalize(s)
	for _, v := range values {
		if v.Key() == key {
			return true
		}
	}
	return false
}
