// Package text provides small rune-aware string helpers shared by the
// domain types and the report renderers.
package text

import "strings"

// CountRunes counts the number of Unicode characters (runes) in the given text.
// Multi-byte characters such as CJK text and emoji count as one each.
//
// Examples:
//
//	CountRunes("hello")     // returns 5
//	CountRunes("日本語")      // returns 3
//	CountRunes("")          // returns 0
func CountRunes(text string) int {
	return len([]rune(text))
}

// Truncate cuts text to at most max runes. A non-positive max yields "".
func Truncate(text string, max int) string {
	if max <= 0 {
		return ""
	}
	if CountRunes(text) <= max {
		return text
	}
	return string([]rune(text)[:max])
}

// CollapseSpace replaces every run of whitespace with a single space and
// trims both ends, so multi-line feed descriptions render on one line.
func CollapseSpace(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
