// Package manifest defines the cargo-manifest entity, its status lifecycle
// and the transition rules between statuses. Transitions are pure functions
// over manifest values; persistence and audit writes are the caller's job.
package manifest

import (
	"time"
)

// Status is the lifecycle state of a manifest.
type Status string

const (
	StatusReceived  Status = "received"
	StatusStarted   Status = "started"
	StatusFinalized Status = "finalized"
	StatusDelivered Status = "delivered"
	StatusCanceled  Status = "canceled"
)

// Terminal reports whether no further transition may leave this status.
// Terminal manifests are append-only: later edits produce audit entries but
// never change the status.
func (s Status) Terminal() bool {
	return s == StatusDelivered || s == StatusCanceled
}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusReceived, StatusStarted, StatusFinalized, StatusDelivered, StatusCanceled:
		return true
	}
	return false
}

// Shift is one of the three fixed 8-hour operational windows.
type Shift int

const (
	ShiftMorning Shift = 1 // 06:00–14:00
	ShiftEvening Shift = 2 // 14:00–22:00
	ShiftNight   Shift = 3 // 22:00–06:00
)

// ShiftForHour maps an hour of day to its operational window.
func ShiftForHour(hour int) Shift {
	switch {
	case hour >= 6 && hour < 14:
		return ShiftMorning
	case hour >= 14 && hour < 22:
		return ShiftEvening
	default:
		return ShiftNight
	}
}

// Manifest is the central entity: one cargo handling record tracked from
// pull to delivery. Instant fields are nil when unknown; the store owns the
// record and the dashboard holds a read-mostly cached copy.
type Manifest struct {
	ID      string // MAO-YY#######, immutable
	Carrier string
	Shift   Shift
	Status  Status

	PulledAt    *time.Time
	ReceivedAt  *time.Time
	StartedAt   *time.Time
	CompletedAt *time.Time
	SignedAt    *time.Time // CIA-representative signature
	DeliveredAt *time.Time

	RegisteredBy string
	AssignedTo   string
	LastActionBy string
	UpdatedAt    time.Time
}

// Signed reports whether the CIA-representative signature has been recorded.
func (m *Manifest) Signed() bool {
	return m.SignedAt != nil
}

// InProgress reports whether the manifest is in a non-terminal status.
func (m *Manifest) InProgress() bool {
	return !m.Status.Terminal()
}

// lifecycleInstant pairs a label with one of the manifest's instants, in
// lifecycle order.
type lifecycleInstant struct {
	label string
	at    *time.Time
}

func (m *Manifest) lifecycle() []lifecycleInstant {
	return []lifecycleInstant{
		{"pulled", m.PulledAt},
		{"received", m.ReceivedAt},
		{"started", m.StartedAt},
		{"completed", m.CompletedAt},
		{"signed", m.SignedAt},
		{"delivered", m.DeliveredAt},
	}
}

// OrderViolations reports each adjacent pair of recorded instants that is
// out of lifecycle order, e.g. "signed before completed". Out-of-order
// instants are flagged, never rejected: operators routinely backfill fields
// after the fact and the record must stay editable.
func (m *Manifest) OrderViolations() []string {
	var violations []string

	instants := m.lifecycle()
	prev := -1
	for i, cur := range instants {
		if cur.at == nil {
			continue
		}
		if prev >= 0 && cur.at.Before(*instants[prev].at) {
			violations = append(violations, cur.label+" before "+instants[prev].label)
		}
		prev = i
	}

	return violations
}
