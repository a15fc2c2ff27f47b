// Package models defines the row types owned by the hosted store.
package models

import "time"

// Operator is a dashboard user profile. ActiveToken implements the
// single-active-session policy: a new login overwrites it, and the
// previously-active client detects the mismatch and forces logout.
type Operator struct {
	ID          string
	Username    string
	DisplayName string
	Role        string // "operator" or "supervisor"
	Salt        []byte
	Verifier    []byte
	ActiveToken string
	CreatedAt   time.Time
}
