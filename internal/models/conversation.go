package models

// Conversation is the derived per-contact summary: the most recent Log
// for a (user, remote_number) pair plus a count of unread inbound
// events. It is recomputed on every read and never persisted.
type Conversation struct {
	RemoteNumber string  `json:"remote_number"`
	RemoteName   *string `json:"remote_name"`
	Content      *string `json:"content"`
	Type         string  `json:"type"`
	Timestamp    int64   `json:"timestamp"`
	Duration     *int64  `json:"duration"`
	UnreadCount  int     `json:"unread_count"`
}

// UnreadCounts is the global unread tally split by surface.
type UnreadCounts struct {
	Messages int `json:"messages"`
	Calls    int `json:"calls"`
}

// SyncStatus carries the per-category high-water marks the uploader uses
// to detect incomplete batches and resume.
type SyncStatus struct {
	LastSmsTimestamp  int64 `json:"lastSmsTimestamp"`
	LastCallTimestamp int64 `json:"lastCallTimestamp"`
}
