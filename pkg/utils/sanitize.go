package utils

import "strings"

var unsafeChars = strings.NewReplacer("<", "", ">", "", `"`, "", "'", "")

// SanitizeInput removes markup-significant characters (< > " ') from free
// text and trims surrounding whitespace.
func SanitizeInput(text string) string {
	if text == "" {
		return ""
	}
	return strings.TrimSpace(unsafeChars.Replace(text))
}
