package sanitize

import "testing"

func TestField(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain", "CASE-042", "CASE-042"},
		{"surrounding whitespace", "  CASE-042  ", "CASE-042"},
		{"crlf becomes space", "CASE\r\n042", "CASE 042"},
		{"zero-width space removed", "CASE\u200B-042", "CASE-042"},
		{"bom removed", "\uFEFFJ. Doe", "J. Doe"},
		{"whitespace runs collapse", "J.   Doe\t\tExaminer", "J. Doe Examiner"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Field(tt.input); got != tt.expected {
				t.Errorf("Field(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestNotes(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"keeps line structure", "line one\nline two", "line one\nline two"},
		{"normalizes crlf", "line one\r\nline two", "line one\nline two"},
		{"collapses blank runs", "line one\n\n\nline two", "line one\nline two"},
		{"strips invisible chars", "seized\u200D from suspect", "seized from suspect"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Notes(tt.input); got != tt.expected {
				t.Errorf("Notes(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}
