// Package imaging implements the acquisition job workflow: the
// destructive-source confirmation gate, single-flight job submission,
// and status polling until a terminal state.
package imaging

import (
	"strings"

	"github.com/Kavinesh-C/Forensic-Auto-Carver-Pro/internal/models"
)

// Confirmation gate disarm reasons.
const (
	ReasonAckRequired = "acknowledgement required"
	ReasonMismatch    = "confirmation text mismatch"
)

// Decision is the gate's verdict on whether submission may proceed.
type Decision struct {
	Armed  bool
	Reason string
}

// EvaluateConfirmation decides whether an acquisition may be submitted.
// Non-device sources are always armed. Device sources require an
// explicit acknowledgement plus the device reference typed back exactly;
// comparison trims surrounding whitespace but is case sensitive.
func EvaluateConfirmation(kind models.SourceKind, deviceRef, typed string, acknowledged bool) Decision {
	if kind != models.SourceDevice {
		return Decision{Armed: true}
	}
	if !acknowledged {
		return Decision{Reason: ReasonAckRequired}
	}
	if strings.TrimSpace(typed) != strings.TrimSpace(deviceRef) {
		return Decision{Reason: ReasonMismatch}
	}
	return Decision{Armed: true}
}

// DeviceConfirmation tracks gate state across an interactive session.
// It exists so a surface can re-render the verdict as the operator
// types, without re-plumbing every input on each keystroke.
type DeviceConfirmation struct {
	kind         models.SourceKind
	deviceRef    string
	typed        string
	acknowledged bool
}

// NewDeviceConfirmation starts a gate session for the given source kind.
func NewDeviceConfirmation(kind models.SourceKind, deviceRef string) *DeviceConfirmation {
	return &DeviceConfirmation{kind: kind, deviceRef: deviceRef}
}

// SetSourceKind switches the source kind. Moving away from a device
// source discards the acknowledgement and typed text, so a later switch
// back starts from a disarmed state.
func (g *DeviceConfirmation) SetSourceKind(kind models.SourceKind) {
	if g.kind == models.SourceDevice && kind != models.SourceDevice {
		g.typed = ""
		g.acknowledged = false
	}
	g.kind = kind
}

// SetDevice updates the device the gate is protecting.
func (g *DeviceConfirmation) SetDevice(ref string) {
	g.deviceRef = ref
}

// SetTyped records the operator's confirmation text.
func (g *DeviceConfirmation) SetTyped(text string) {
	g.typed = text
}

// SetAcknowledged records the destruction acknowledgement.
func (g *DeviceConfirmation) SetAcknowledged(ack bool) {
	g.acknowledged = ack
}

// Evaluate returns the current verdict.
func (g *DeviceConfirmation) Evaluate() Decision {
	return EvaluateConfirmation(g.kind, g.deviceRef, g.typed, g.acknowledged)
}
