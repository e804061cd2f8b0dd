package models

// Log types as reported by the mobile uploader.
const (
	LogTypeSmsInbox     = "sms_inbox"
	LogTypeSmsSent      = "sms_sent"
	LogTypeCallIncoming = "call_incoming"
	LogTypeCallOutgoing = "call_outgoing"
	LogTypeCallMissed   = "call_missed"
)

// Conversation categories accepted by list/mark operations.
const (
	CategoryMessages = "messages"
	CategoryCalls    = "calls"
	CategoryAll      = "all"
)

// Log represents one SMS message or call event belonging to a user.
// The tuple (UserID, Timestamp, RemoteNumber, Type) is the natural key
// used to deduplicate repeated uploads of the same physical event.
type Log struct {
	ID           int64   `json:"id"`
	UserID       string  `json:"user_id"`
	Type         string  `json:"type"`
	RemoteNumber string  `json:"remote_number"`
	RemoteName   *string `json:"remote_name"`
	Content      *string `json:"content"`  // SMS body, nil for calls
	Duration     *int64  `json:"duration"` // call seconds, nil for SMS
	Timestamp    int64   `json:"timestamp"` // origin-device epoch milliseconds
	SyncedAt     int64   `json:"synced_at"` // server receipt time, unix seconds
	IsRead       bool    `json:"is_read"`
}

// ValidLogType reports whether t is one of the known log types.
func ValidLogType(t string) bool {
	switch t {
	case LogTypeSmsInbox, LogTypeSmsSent, LogTypeCallIncoming, LogTypeCallOutgoing, LogTypeCallMissed:
		return true
	}
	return false
}

// IsInboundRelevant reports whether t counts toward unread totals.
func IsInboundRelevant(t string) bool {
	switch t {
	case LogTypeSmsInbox, LogTypeCallMissed, LogTypeCallIncoming:
		return true
	}
	return false
}

// SmsTypes and CallTypes are the type sets behind the category filters.
var (
	SmsTypes  = []string{LogTypeSmsInbox, LogTypeSmsSent}
	CallTypes = []string{LogTypeCallIncoming, LogTypeCallOutgoing, LogTypeCallMissed}

	// InboundRelevantTypes are counted toward unread totals regardless of
	// any category filter applied to a conversation listing.
	InboundRelevantTypes = []string{LogTypeSmsInbox, LogTypeCallMissed, LogTypeCallIncoming}
)

// CategoryTypes returns the log types a listing category selects, or nil
// for no filter. The second return value is false for unknown categories.
func CategoryTypes(category string) ([]string, bool) {
	switch category {
	case "", CategoryAll:
		return nil, true
	case CategoryMessages:
		return SmsTypes, true
	case CategoryCalls:
		return CallTypes, true
	}
	return nil, false
}

// MarkReadTypes returns the log types a mark-category-read call touches.
// Unlike listing, the messages category here covers only the inbox:
// sent SMS never contribute to unread state.
func MarkReadTypes(category string) ([]string, bool) {
	switch category {
	case CategoryAll:
		return nil, true
	case CategoryMessages:
		return []string{LogTypeSmsInbox}, true
	case CategoryCalls:
		return []string{LogTypeCallMissed, LogTypeCallIncoming}, true
	}
	return nil, false
}
