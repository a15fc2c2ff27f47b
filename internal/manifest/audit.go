package manifest

import (
	"time"

	"github.com/google/uuid"
)

// Action labels the operation that produced an audit entry.
type Action string

const (
	ActionRegister  Action = "register"
	ActionStart     Action = "start"
	ActionFinalize  Action = "finalize"
	ActionSignature Action = "record-signature"
	ActionDeliver   Action = "deliver"
	ActionCancel    Action = "cancel"
	ActionEdit      Action = "edit"
)

// AuditEntry is the side-record of one state transition or manual edit.
// Entries are append-only: never updated, never deleted.
type AuditEntry struct {
	ID            string
	ManifestID    string
	Action        Action
	Actor         string
	Justification string // mandatory for manual edits, empty otherwise
	CreatedAt     time.Time
}

// NewAuditEntry builds the audit record a transition must append.
func NewAuditEntry(manifestID string, action Action, actor, justification string, at time.Time) AuditEntry {
	return AuditEntry{
		ID:            uuid.NewString(),
		ManifestID:    manifestID,
		Action:        action,
		Actor:         actor,
		Justification: justification,
		CreatedAt:     at,
	}
}
