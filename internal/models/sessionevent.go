package models

// SessionEvent is one row-level change notification on the operator's
// profile: the active token changed. Consumers compare the token against
// their own to decide whether they have been superseded.
type SessionEvent struct {
	OperatorID  string `json:"operator_id"`
	ActiveToken string `json:"active_token"`
}
