package helpers

import (
	"strings"
	"unicode"
)

// CleanText collapses every run of whitespace, including no-break spaces,
// into a single space and trims the result.
func CleanText(s string) string {
	return strings.Join(strings.FieldsFunc(s, unicode.IsSpace), " ")
}
