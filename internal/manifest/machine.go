package manifest

import (
	"fmt"
	"strings"
	"time"

	"github.com/rfaguiar/manifestops/internal/common"
)

// MinPulledToReceived is the minimum gap required between the pulled and
// received instants at registration time.
const MinPulledToReceived = time.Minute

// Registration carries the operator-supplied fields of a register action.
type Registration struct {
	Carrier    string
	Shift      Shift
	PulledAt   *time.Time
	ReceivedAt *time.Time // optional; defaults to the registration instant
}

// NewFromRegistration validates a registration and produces the initial
// manifest in status Received. The id is assigned by the caller (sequential
// per year, owned by the store).
func NewFromRegistration(id string, reg Registration, actor string, now time.Time) (Manifest, error) {
	if strings.TrimSpace(reg.Carrier) == "" {
		return Manifest{}, fmt.Errorf("carrier: %w", common.ErrMissingRequiredField)
	}
	if reg.PulledAt == nil {
		return Manifest{}, fmt.Errorf("pulled instant: %w", common.ErrMissingRequiredField)
	}

	receivedAt := reg.ReceivedAt
	if receivedAt == nil {
		receivedAt = &now
	} else if receivedAt.Before(reg.PulledAt.Add(MinPulledToReceived)) {
		return Manifest{}, common.ErrReceivedBeforePulled
	}

	shift := reg.Shift
	if shift == 0 {
		shift = ShiftForHour(receivedAt.Hour())
	}

	return Manifest{
		ID:           id,
		Carrier:      strings.ToUpper(strings.TrimSpace(reg.Carrier)),
		Shift:        shift,
		Status:       StatusReceived,
		PulledAt:     reg.PulledAt,
		ReceivedAt:   receivedAt,
		RegisteredBy: actor,
		LastActionBy: actor,
		UpdatedAt:    now,
	}, nil
}

// Start moves a received manifest to Started, assigning it to the actor.
func Start(m Manifest, actor string, at time.Time) (Manifest, error) {
	if m.Status != StatusReceived {
		return m, transitionError(m.Status, ActionStart)
	}
	m.Status = StatusStarted
	m.StartedAt = &at
	m.AssignedTo = actor
	m.LastActionBy = actor
	m.UpdatedAt = at
	return m, nil
}

// Finalize moves a started manifest to Finalized, recording completion.
func Finalize(m Manifest, actor string, at time.Time) (Manifest, error) {
	if m.Status != StatusStarted {
		return m, transitionError(m.Status, ActionFinalize)
	}
	m.Status = StatusFinalized
	m.CompletedAt = &at
	m.LastActionBy = actor
	m.UpdatedAt = at
	return m, nil
}

// RecordSignature stores the CIA-representative signature instant on a
// finalized manifest. The status does not change; a signed manifest is a
// finalized one with a non-nil signature.
func RecordSignature(m Manifest, actor string, at time.Time) (Manifest, error) {
	if m.Status != StatusFinalized {
		return m, transitionError(m.Status, ActionSignature)
	}
	m.SignedAt = &at
	m.LastActionBy = actor
	m.UpdatedAt = at
	return m, nil
}

// Deliver moves a signed, finalized manifest to Delivered. This is the one
// hard gate of the lifecycle: without a recorded signature the attempt must
// fail visibly, not fall through as a no-op.
func Deliver(m Manifest, actor string, at time.Time) (Manifest, error) {
	if m.Status != StatusFinalized {
		return m, transitionError(m.Status, ActionDeliver)
	}
	if !m.Signed() {
		return m, common.ErrSignatureRequired
	}
	m.Status = StatusDelivered
	m.DeliveredAt = &at
	m.LastActionBy = actor
	m.UpdatedAt = at
	return m, nil
}

// Cancel terminates any non-terminal manifest.
func Cancel(m Manifest, actor string, at time.Time) (Manifest, error) {
	if m.Status.Terminal() {
		return m, transitionError(m.Status, ActionCancel)
	}
	m.Status = StatusCanceled
	m.LastActionBy = actor
	m.UpdatedAt = at
	return m, nil
}

// Edit carries the mutable fields of a manual edit. Nil / empty fields keep
// their current value.
type Edit struct {
	Carrier    string
	PulledAt   *time.Time
	ReceivedAt *time.Time
}

// ApplyEdit mutates a still-received manifest in place. A justification of
// at least common.MinJustificationLen characters is mandatory; the caller
// must carry it into the audit entry.
func ApplyEdit(m Manifest, e Edit, justification, actor string, at time.Time) (Manifest, error) {
	if m.Status != StatusReceived {
		return m, transitionError(m.Status, ActionEdit)
	}
	if len(strings.TrimSpace(justification)) < common.MinJustificationLen {
		return m, common.ErrJustificationTooShort
	}

	if strings.TrimSpace(e.Carrier) != "" {
		m.Carrier = strings.ToUpper(strings.TrimSpace(e.Carrier))
	}
	if e.PulledAt != nil {
		m.PulledAt = e.PulledAt
	}
	if e.ReceivedAt != nil {
		m.ReceivedAt = e.ReceivedAt
	}
	m.LastActionBy = actor
	m.UpdatedAt = at
	return m, nil
}

func transitionError(from Status, action Action) error {
	return fmt.Errorf("%w: cannot %s a %s manifest", common.ErrInvalidTransition, action, from)
}
