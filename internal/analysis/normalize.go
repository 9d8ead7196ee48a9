package analysis

import "strings"

// Normalize collapses runs of whitespace to single spaces, trims, and
// lowercases. The result is used only for equality and similarity checks,
// never for display.
func Normalize(phrase string) string {
	return strings.ToLower(strings.Join(strings.Fields(phrase), " "))
}
