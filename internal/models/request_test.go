package models

import (
	"testing"
)

func TestAcquisitionRequestValidate(t *testing.T) {
	base := AcquisitionRequest{
		SourceType: SourceFile,
		SourceRoot: "uploads",
		SourcePath: "evidence/disk.img",
		Format:     FormatRaw,
		Dest:       DestinationDownload,
	}

	if err := base.Validate(); err != nil {
		t.Fatalf("valid request rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*AcquisitionRequest)
	}{
		{"unknown source type", func(r *AcquisitionRequest) { r.SourceType = "disk" }},
		{"empty source path", func(r *AcquisitionRequest) { r.SourcePath = "  " }},
		{"missing root for file source", func(r *AcquisitionRequest) { r.SourceRoot = "" }},
		{"unknown destination", func(r *AcquisitionRequest) { r.Dest = "ftp" }},
		{"missing format", func(r *AcquisitionRequest) { r.Format = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := base
			tt.mutate(&r)
			if err := r.Validate(); err == nil {
				t.Error("expected validation error, got nil")
			}
		})
	}
}

func TestAcquisitionRequestValidateRootOnlyForFileAndFolder(t *testing.T) {
	tests := []struct {
		kind SourceKind
		path string
	}{
		{SourceDevice, `\\.\PhysicalDrive1`},
		{SourceCloud, "bucket42/evidence/disk.img"},
	}
	for _, tt := range tests {
		r := AcquisitionRequest{
			SourceType: tt.kind,
			SourcePath: tt.path,
			Format:     FormatEWF,
			Dest:       DestinationSession,
		}
		if err := r.Validate(); err != nil {
			t.Errorf("%s request without root rejected: %v", tt.kind, err)
		}
	}
}

func TestAcquisitionRequestFormValues(t *testing.T) {
	r := AcquisitionRequest{
		SourceType: SourceFolder,
		SourceRoot: "uploads",
		SourcePath: "case42",
		Format:     FormatEWF,
		Dest:       DestinationSession,
		CaseNumber: "2025-0042",
		Examiner:   "jdoe",
		Notes:      "triage set",
		Compress:   true,
	}
	v := r.FormValues()
	if got := v.Get("source_type"); got != "folder" {
		t.Errorf("source_type = %q, want folder", got)
	}
	if got := v.Get("image_format"); got != ".e01" {
		t.Errorf("image_format = %q, want .e01", got)
	}
	if got := v.Get("compress"); got != "1" {
		t.Errorf("compress = %q, want 1", got)
	}

	r.Compress = false
	v = r.FormValues()
	if _, ok := v["compress"]; !ok {
		t.Error("compress field must be present even when off")
	}
	if got := v.Get("compress"); got != "" {
		t.Errorf("compress = %q, want empty", got)
	}
}

func TestIsEWF(t *testing.T) {
	for _, format := range []string{"e01", "E01", ".e01"} {
		r := AcquisitionRequest{Format: format}
		if !r.IsEWF() {
			t.Errorf("IsEWF() = false for %q", format)
		}
	}
	r := AcquisitionRequest{Format: "raw"}
	if r.IsEWF() {
		t.Error("IsEWF() = true for raw")
	}
}

func TestFormValuesNormalizesFormatSpellings(t *testing.T) {
	tests := []struct {
		format string
		wire   string
	}{
		{".dd", ".dd"},
		{"raw", ".dd"},
		{"dd", ".dd"},
		{".e01", ".e01"},
		{"e01", ".e01"},
		{"E01", ".e01"},
	}
	for _, tt := range tests {
		r := AcquisitionRequest{Format: tt.format}
		if got := r.FormValues().Get("image_format"); got != tt.wire {
			t.Errorf("image_format for %q = %q, want %q", tt.format, got, tt.wire)
		}
	}
}

func TestJobSnapshotTerminal(t *testing.T) {
	tests := []struct {
		status   string
		errMsg   string
		terminal bool
	}{
		{StatusQueued, "", false},
		{StatusRunning, "", false},
		{StatusFinished, "", true},
		{StatusError, "", true},
		{"verifying", "", false}, // unrecognized statuses keep the monitor alive
		{StatusRunning, "disk read failed", true},
		{"", "disk read failed", true}, // error field alone settles the job
	}
	for _, tt := range tests {
		s := JobSnapshot{Status: tt.status, Error: tt.errMsg}
		if s.Terminal() != tt.terminal {
			t.Errorf("Terminal() for status=%q error=%q = %v, want %v",
				tt.status, tt.errMsg, s.Terminal(), tt.terminal)
		}
	}

	s := JobSnapshot{Status: StatusFinished, Error: "checksum mismatch"}
	if s.Succeeded() {
		t.Error("Succeeded() = true for a finished status carrying an error")
	}
}

func TestDeviceRefAndLabel(t *testing.T) {
	d := Device{Path: "/dev/sdb", SizeBytes: 64023257088}
	if d.Ref() != "/dev/sdb" {
		t.Errorf("Ref() = %q", d.Ref())
	}
	if got, want := d.Label(), "/dev/sdb (59.63 GiB)"; got != want {
		t.Errorf("Label() = %q, want %q", got, want)
	}

	d = Device{ID: "disk3", SizeBytes: 0}
	if d.Ref() != "disk3" {
		t.Errorf("Ref() = %q, want disk3", d.Ref())
	}
	if got, want := d.Label(), "disk3 (size unknown)"; got != want {
		t.Errorf("Label() = %q, want %q", got, want)
	}
}
