package strings

import "testing"

func TestPluralize(t *testing.T) {
	if got := Pluralize("file", 1); got != "file" {
		t.Errorf("Pluralize(file, 1) = %q", got)
	}
	if got := Pluralize("file", 3); got != "files" {
		t.Errorf("Pluralize(file, 3) = %q", got)
	}
	if got := Pluralize("file", 0); got != "files" {
		t.Errorf("Pluralize(file, 0) = %q", got)
	}
}

func TestFormatSize(t *testing.T) {
	tests := []struct {
		bytes int64
		want  string
	}{
		{-1, "unknown"},
		{0, "0 B"},
		{512, "512 B"},
		{1000, "1.00 KB"},
		{1536000, "1.54 MB"},
		{2500000000, "2.50 GB"},
	}
	for _, tt := range tests {
		if got := FormatSize(tt.bytes); got != tt.want {
			t.Errorf("FormatSize(%d) = %q, want %q", tt.bytes, got, tt.want)
		}
	}
}

func TestFormatRate(t *testing.T) {
	if got := FormatRate(0); got != "0 B/s" {
		t.Errorf("FormatRate(0) = %q", got)
	}
	if got := FormatRate(-5); got != "0 B/s" {
		t.Errorf("FormatRate(-5) = %q", got)
	}
	if got := FormatRate(1536000); got != "1.54 MB/s" {
		t.Errorf("FormatRate(1536000) = %q", got)
	}
}

func TestFormatGiB(t *testing.T) {
	if got := FormatGiB(64023257088); got != "59.63 GiB" {
		t.Errorf("FormatGiB = %q", got)
	}
	if got := FormatGiB(0); got != "size unknown" {
		t.Errorf("FormatGiB(0) = %q", got)
	}
}
