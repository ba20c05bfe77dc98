// Package models defines data structures for the FAC agent.
package models

import (
	"fmt"
	"net/url"
	"strings"
)

// SourceKind identifies what the carver server should read from.
type SourceKind string

const (
	SourceFile   SourceKind = "file"
	SourceFolder SourceKind = "folder"
	SourceCloud  SourceKind = "cloud"
	SourceDevice SourceKind = "device"
)

// Destination controls where the finished image lands.
type Destination string

const (
	// DestinationDownload makes the image available for browser-style download.
	DestinationDownload Destination = "download"

	// DestinationSession stores the image in the server-side session workspace.
	DestinationSession Destination = "session"
)

// Image container formats as sent on the wire. The server keys on the
// extension string.
const (
	FormatRaw = ".dd"
	FormatEWF = ".e01"
)

// AcquisitionRequest carries everything needed to start an imaging job.
// The zero value is not valid; callers should go through Validate before
// submitting.
type AcquisitionRequest struct {
	SourceType SourceKind
	SourceRoot string
	SourcePath string
	Format     string
	Dest       Destination
	CaseNumber string
	Examiner   string
	Notes      string
	Compress   bool
}

// IsEWF reports whether the request targets the Expert Witness container.
func (r *AcquisitionRequest) IsEWF() bool {
	return strings.EqualFold(r.Format, FormatEWF) || strings.EqualFold(r.Format, "e01")
}

// wireFormat maps accepted format spellings onto the extension strings
// the server keys on.
func (r *AcquisitionRequest) wireFormat() string {
	switch {
	case r.IsEWF():
		return FormatEWF
	case strings.EqualFold(r.Format, FormatRaw),
		strings.EqualFold(r.Format, "dd"),
		strings.EqualFold(r.Format, "raw"):
		return FormatRaw
	}
	return r.Format
}

// Validate checks the request for fields the server would reject.
func (r *AcquisitionRequest) Validate() error {
	switch r.SourceType {
	case SourceFile, SourceFolder, SourceCloud, SourceDevice:
	default:
		return fmt.Errorf("unknown source type %q", r.SourceType)
	}
	if strings.TrimSpace(r.SourcePath) == "" {
		return fmt.Errorf("source path is required")
	}
	if (r.SourceType == SourceFile || r.SourceType == SourceFolder) && strings.TrimSpace(r.SourceRoot) == "" {
		return fmt.Errorf("source root is required for %s sources", r.SourceType)
	}
	switch r.Dest {
	case DestinationDownload, DestinationSession:
	default:
		return fmt.Errorf("unknown destination %q", r.Dest)
	}
	if r.Format == "" {
		return fmt.Errorf("image format is required")
	}
	return nil
}

// FormValues encodes the request as the multipart form fields the server
// expects. Compression is a flag field: "1" when on, empty when off.
func (r *AcquisitionRequest) FormValues() url.Values {
	v := url.Values{}
	v.Set("source_type", string(r.SourceType))
	v.Set("source_root", r.SourceRoot)
	v.Set("source_path", r.SourcePath)
	v.Set("image_format", r.wireFormat())
	v.Set("destination", string(r.Dest))
	v.Set("case_number", r.CaseNumber)
	v.Set("examiner", r.Examiner)
	v.Set("notes", r.Notes)
	if r.Compress {
		v.Set("compress", "1")
	} else {
		v.Set("compress", "")
	}
	return v
}
