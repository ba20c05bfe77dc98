// Package sanitize cleans free-text metadata before it is recorded in an
// image container.
//
// Case numbers and examiner names are often pasted from case management
// tools and e-mail, which drags in:
//   - Windows/Mac line endings (CRLF/CR → LF)
//   - Invisible Unicode characters (zero-width spaces, etc.)
//   - Runs of whitespace
package sanitize

import (
	"regexp"
	"strings"
)

var (
	spaceRuns   = regexp.MustCompile(`[ \t]+`)
	newlineRuns = regexp.MustCompile(`\n+`)
)

// Field sanitizes a single-line metadata field such as a case number or
// examiner name. Line breaks collapse into spaces.
func Field(s string) string {
	if s == "" {
		return s
	}

	s = strings.ReplaceAll(s, "\r\n", " ")
	s = strings.ReplaceAll(s, "\r", " ")
	s = strings.ReplaceAll(s, "\n", " ")

	s = removeInvisibleChars(s)
	s = spaceRuns.ReplaceAllString(s, " ")

	return strings.TrimSpace(s)
}

// Notes sanitizes a multi-line metadata field. Line structure is kept but
// line endings are normalized and blank-line runs collapse.
func Notes(s string) string {
	if s == "" {
		return s
	}

	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")

	s = removeInvisibleChars(s)
	s = spaceRuns.ReplaceAllString(s, " ")
	s = newlineRuns.ReplaceAllString(s, "\n")

	return strings.TrimSpace(s)
}

// removeInvisibleChars removes zero-width and other invisible Unicode characters
func removeInvisibleChars(s string) string {
	invisibleChars := []string{
		"\u200B", // Zero-width space
		"\u200C", // Zero-width non-joiner
		"\u200D", // Zero-width joiner
		"\uFEFF", // Zero-width no-break space (BOM)
		"\u00AD", // Soft hyphen
		"\u2060", // Word joiner
		"\u180E", // Mongolian vowel separator
	}

	for _, char := range invisibleChars {
		s = strings.ReplaceAll(s, char, "")
	}

	return s
}
