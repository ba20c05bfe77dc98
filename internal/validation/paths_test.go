package validation

import "testing"

func TestValidateFilename(t *testing.T) {
	valid := []string{
		"usb.dd",
		"evidence.e01",
		"data..v2.img",
		".hidden",
	}
	for _, name := range valid {
		if err := ValidateFilename(name); err != nil {
			t.Errorf("ValidateFilename(%q) = %v, want nil", name, err)
		}
	}

	invalid := []string{
		"",
		"..",
		"a/b.img",
		"a\\b.img",
		"/etc/passwd",
		"nul\x00byte",
	}
	for _, name := range invalid {
		if err := ValidateFilename(name); err == nil {
			t.Errorf("ValidateFilename(%q) = nil, want error", name)
		}
	}
}

func TestValidateRemotePath(t *testing.T) {
	valid := []string{
		"",
		"case-042",
		"case-042/media",
		"a..b/c",
	}
	for _, path := range valid {
		if err := ValidateRemotePath(path); err != nil {
			t.Errorf("ValidateRemotePath(%q) = %v, want nil", path, err)
		}
	}

	invalid := []string{
		"/absolute",
		"../escape",
		"a/../../b",
		"windows\\style",
		"nul\x00byte",
	}
	for _, path := range invalid {
		if err := ValidateRemotePath(path); err == nil {
			t.Errorf("ValidateRemotePath(%q) = nil, want error", path)
		}
	}
}
