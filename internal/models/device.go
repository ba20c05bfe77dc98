package models

import (
	"fmt"

	facstrings "github.com/Kavinesh-C/Forensic-Auto-Carver-Pro/internal/util/strings"
)

// Device is a block device the server can image. Depending on platform the
// server reports either a path (\\.\PhysicalDrive0, /dev/sda) or an opaque
// identifier; exactly one of the two is set.
type Device struct {
	Path      string `json:"path,omitempty"`
	ID        string `json:"id,omitempty"`
	SizeBytes int64  `json:"size_bytes"`
}

// Ref returns the string used to address this device in requests and in
// destructive-operation confirmations.
func (d *Device) Ref() string {
	if d.Path != "" {
		return d.Path
	}
	return d.ID
}

// Label renders the device for listings, with its capacity in GiB.
func (d *Device) Label() string {
	return fmt.Sprintf("%s (%s)", d.Ref(), facstrings.FormatGiB(d.SizeBytes))
}
