package imaging

import (
	"testing"

	"github.com/Kavinesh-C/Forensic-Auto-Carver-Pro/internal/models"
)

func TestEvaluateConfirmation(t *testing.T) {
	const device = `\\.\PhysicalDrive1`

	tests := []struct {
		name       string
		kind       models.SourceKind
		typed      string
		ack        bool
		wantArmed  bool
		wantReason string
	}{
		{"file source always armed", models.SourceFile, "", false, true, ""},
		{"folder source always armed", models.SourceFolder, "", false, true, ""},
		{"cloud source always armed", models.SourceCloud, "", false, true, ""},
		{"device without ack", models.SourceDevice, device, false, false, ReasonAckRequired},
		{"device ack but no text", models.SourceDevice, "", true, false, ReasonMismatch},
		{"device ack wrong text", models.SourceDevice, `\\.\PhysicalDrive2`, true, false, ReasonMismatch},
		{"device ack wrong case", models.SourceDevice, `\\.\physicaldrive1`, true, false, ReasonMismatch},
		{"device exact match", models.SourceDevice, device, true, true, ""},
		{"device match with surrounding spaces", models.SourceDevice, "  " + device + " ", true, true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EvaluateConfirmation(tt.kind, device, tt.typed, tt.ack)
			if got.Armed != tt.wantArmed {
				t.Errorf("Armed = %v, want %v", got.Armed, tt.wantArmed)
			}
			if got.Reason != tt.wantReason {
				t.Errorf("Reason = %q, want %q", got.Reason, tt.wantReason)
			}
		})
	}
}

func TestEvaluateConfirmationAckAloneInsufficient(t *testing.T) {
	got := EvaluateConfirmation(models.SourceDevice, "/dev/sdb", "", true)
	if got.Armed {
		t.Error("acknowledgement without matching text must not arm the gate")
	}
}

func TestDeviceConfirmationKindChangeResets(t *testing.T) {
	gate := NewDeviceConfirmation(models.SourceDevice, "/dev/sdb")
	gate.SetAcknowledged(true)
	gate.SetTyped("/dev/sdb")

	if d := gate.Evaluate(); !d.Armed {
		t.Fatalf("expected armed gate, got %+v", d)
	}

	// Leaving the device kind discards prior confirmation state.
	gate.SetSourceKind(models.SourceFile)
	if d := gate.Evaluate(); !d.Armed {
		t.Fatalf("file source should be armed, got %+v", d)
	}

	gate.SetSourceKind(models.SourceDevice)
	d := gate.Evaluate()
	if d.Armed {
		t.Error("returning to device kind must start disarmed")
	}
	if d.Reason != ReasonAckRequired {
		t.Errorf("Reason = %q, want %q", d.Reason, ReasonAckRequired)
	}
}

func TestDeviceConfirmationDeviceChange(t *testing.T) {
	gate := NewDeviceConfirmation(models.SourceDevice, "/dev/sdb")
	gate.SetAcknowledged(true)
	gate.SetTyped("/dev/sdb")

	gate.SetDevice("/dev/sdc")
	d := gate.Evaluate()
	if d.Armed {
		t.Error("typed text for the old device must not arm the gate for the new one")
	}
	if d.Reason != ReasonMismatch {
		t.Errorf("Reason = %q, want %q", d.Reason, ReasonMismatch)
	}
}
