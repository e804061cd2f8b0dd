package models

import "encoding/json"

// Command statuses. A command only ever moves forward through its
// lifecycle; the uploader drives every transition after pending.
const (
	CommandStatusPending   = "pending"
	CommandStatusPickedUp  = "picked_up"
	CommandStatusCompleted = "completed"
	CommandStatusFailed    = "failed"
)

// Command types.
const (
	CommandTypeSendSMS = "send_sms"
)

// Command is a queued action (e.g. send SMS) for the uploader client to
// execute and report back on.
type Command struct {
	ID        int64           `json:"id"`
	UserID    string          `json:"user_id"`
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload"` // e.g. {"to": "+12345", "body": "hello"}
	Status    string          `json:"status"`
	CreatedAt int64           `json:"created_at"`
	UpdatedAt int64           `json:"updated_at"`
}

// ValidCommandStatus reports whether s is a known command status.
func ValidCommandStatus(s string) bool {
	switch s {
	case CommandStatusPending, CommandStatusPickedUp, CommandStatusCompleted, CommandStatusFailed:
		return true
	}
	return false
}

// CanTransition reports whether a command may move from one status to
// another. Transitions never go backward and terminal states are final.
func CanTransition(from, to string) bool {
	switch from {
	case CommandStatusPending:
		return to == CommandStatusPickedUp || to == CommandStatusCompleted || to == CommandStatusFailed
	case CommandStatusPickedUp:
		return to == CommandStatusCompleted || to == CommandStatusFailed
	}
	return false
}
