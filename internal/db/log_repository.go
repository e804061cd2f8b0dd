package db

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/dreamolight/Phone2/internal/models"
)

// LogRepository defines the interface for communication-log data access.
type LogRepository interface {
	Upsert(log *models.Log) error
	ListByNumber(userID, remoteNumber string, limit, offset int) ([]*models.Log, error)
	List(userID string, limit, offset int) ([]*models.Log, error)
	ListConversations(userID string, types []string) ([]*models.Conversation, error)
	MarkConversationRead(userID, remoteNumber string) error
	MarkCategoryRead(userID string, types []string) error
	UnreadCounts(userID string) (*models.UnreadCounts, error)
	SyncStatus(userID string) (*models.SyncStatus, error)
}

// logRepository implements LogRepository interface
type logRepository struct {
	db *sql.DB
}

// NewLogRepository creates a new LogRepository
func NewLogRepository(db *sql.DB) LogRepository {
	return &logRepository{db: db}
}

// Upsert inserts a log keyed on (user_id, timestamp, remote_number, type).
// On a key collision the row is merged, never replaced: remote_name and
// content take the incoming values, synced_at is refreshed, and is_read
// only ever moves false -> true. Re-applying the same record converges.
func (r *logRepository) Upsert(log *models.Log) error {
	if log == nil {
		return fmt.Errorf("log cannot be nil")
	}
	if log.UserID == "" {
		return fmt.Errorf("user ID cannot be empty")
	}

	log.SyncedAt = time.Now().Unix()

	query := `
		INSERT INTO logs (user_id, type, remote_number, remote_name, content, duration, timestamp, synced_at, is_read)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, timestamp, remote_number, type) DO UPDATE SET
			remote_name = excluded.remote_name,
			content = excluded.content,
			synced_at = excluded.synced_at,
			is_read = CASE WHEN logs.is_read THEN logs.is_read ELSE excluded.is_read END
	`

	_, err := r.db.Exec(query,
		log.UserID,
		log.Type,
		log.RemoteNumber,
		log.RemoteName,
		log.Content,
		log.Duration,
		log.Timestamp,
		log.SyncedAt,
		log.IsRead,
	)

	if err != nil {
		return fmt.Errorf("failed to upsert log: %w", err)
	}

	return nil
}

// ListByNumber retrieves the logs of one conversation, newest first.
func (r *logRepository) ListByNumber(userID, remoteNumber string, limit, offset int) ([]*models.Log, error) {
	if userID == "" {
		return nil, fmt.Errorf("user ID cannot be empty")
	}
	if remoteNumber == "" {
		return nil, fmt.Errorf("remote number cannot be empty")
	}

	query := `
		SELECT id, user_id, type, remote_number, remote_name, content, duration, timestamp, synced_at, is_read
		FROM logs
		WHERE user_id = ? AND remote_number = ?
		ORDER BY timestamp DESC, id DESC
		LIMIT ? OFFSET ?
	`

	rows, err := r.db.Query(query, userID, remoteNumber, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversation logs: %w", err)
	}
	defer rows.Close()

	return scanLogs(rows)
}

// List retrieves all logs for a user, newest first.
func (r *logRepository) List(userID string, limit, offset int) ([]*models.Log, error) {
	if userID == "" {
		return nil, fmt.Errorf("user ID cannot be empty")
	}

	query := `
		SELECT id, user_id, type, remote_number, remote_name, content, duration, timestamp, synced_at, is_read
		FROM logs
		WHERE user_id = ?
		ORDER BY timestamp DESC, id DESC
		LIMIT ? OFFSET ?
	`

	rows, err := r.db.Query(query, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list logs: %w", err)
	}
	defer rows.Close()

	return scanLogs(rows)
}

// ListConversations derives one summary row per distinct remote_number:
// the latest log for that contact (ties broken by id, newest row wins)
// plus a count of unread inbound-relevant logs. The optional types slice
// filters which logs may represent a conversation, but the unread count
// always spans all inbound-relevant types for the contact. Results are
// ordered by the selected log's timestamp, descending.
func (r *logRepository) ListConversations(userID string, types []string) ([]*models.Conversation, error) {
	if userID == "" {
		return nil, fmt.Errorf("user ID cannot be empty")
	}

	// Positional parameters bind in textual order, and the unread-count
	// subquery sits in the SELECT list ahead of the derived table: its
	// inbound-relevant types bind first, then the user ID, then any
	// listing type filter.
	args := make([]interface{}, 0, len(models.InboundRelevantTypes)+1+len(types))
	for _, t := range models.InboundRelevantTypes {
		args = append(args, t)
	}
	args = append(args, userID)

	typeFilter := ""
	if len(types) > 0 {
		typeFilter = " AND type IN (" + placeholders(len(types)) + ")"
		for _, t := range types {
			args = append(args, t)
		}
	}

	query := `
		SELECT l1.remote_number, l1.remote_name, l1.content, l1.type, l1.timestamp, l1.duration,
			(SELECT COUNT(*) FROM logs l2
				WHERE l2.user_id = l1.user_id
				AND l2.remote_number = l1.remote_number
				AND l2.is_read = 0
				AND l2.type IN (` + placeholders(len(models.InboundRelevantTypes)) + `)
			) AS unread_count
		FROM (
			SELECT *, ROW_NUMBER() OVER (
				PARTITION BY remote_number ORDER BY timestamp DESC, id DESC
			) AS rn
			FROM logs
			WHERE user_id = ?` + typeFilter + `
		) l1
		WHERE l1.rn = 1
		ORDER BY l1.timestamp DESC, l1.id DESC
	`

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	defer rows.Close()

	var conversations []*models.Conversation
	for rows.Next() {
		conv := &models.Conversation{}
		err := rows.Scan(
			&conv.RemoteNumber,
			&conv.RemoteName,
			&conv.Content,
			&conv.Type,
			&conv.Timestamp,
			&conv.Duration,
			&conv.UnreadCount,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan conversation: %w", err)
		}
		conversations = append(conversations, conv)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating conversations: %w", err)
	}

	return conversations, nil
}

// MarkConversationRead sets is_read on every log for the contact, across
// all types. Unconditional and idempotent; succeeds with zero matches.
func (r *logRepository) MarkConversationRead(userID, remoteNumber string) error {
	if userID == "" {
		return fmt.Errorf("user ID cannot be empty")
	}
	if remoteNumber == "" {
		return fmt.Errorf("remote number cannot be empty")
	}

	query := `UPDATE logs SET is_read = 1 WHERE user_id = ? AND remote_number = ?`

	_, err := r.db.Exec(query, userID, remoteNumber)
	if err != nil {
		return fmt.Errorf("failed to mark conversation read: %w", err)
	}

	return nil
}

// MarkCategoryRead sets is_read on currently-unread logs restricted to
// the given type set; an empty set means no type filter.
func (r *logRepository) MarkCategoryRead(userID string, types []string) error {
	if userID == "" {
		return fmt.Errorf("user ID cannot be empty")
	}

	query := `UPDATE logs SET is_read = 1 WHERE user_id = ? AND is_read = 0`
	args := []interface{}{userID}
	if len(types) > 0 {
		query += " AND type IN (" + placeholders(len(types)) + ")"
		for _, t := range types {
			args = append(args, t)
		}
	}

	_, err := r.db.Exec(query, args...)
	if err != nil {
		return fmt.Errorf("failed to mark category read: %w", err)
	}

	return nil
}

// UnreadCounts tallies unread logs split into the messages and calls
// surfaces the client badges on.
func (r *logRepository) UnreadCounts(userID string) (*models.UnreadCounts, error) {
	if userID == "" {
		return nil, fmt.Errorf("user ID cannot be empty")
	}

	query := `
		SELECT
			COALESCE(SUM(CASE WHEN type = ? THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN type IN (?, ?) THEN 1 ELSE 0 END), 0)
		FROM logs
		WHERE user_id = ? AND is_read = 0
	`

	counts := &models.UnreadCounts{}
	err := r.db.QueryRow(query,
		models.LogTypeSmsInbox,
		models.LogTypeCallMissed,
		models.LogTypeCallIncoming,
		userID,
	).Scan(&counts.Messages, &counts.Calls)
	if err != nil {
		return nil, fmt.Errorf("failed to get unread counts: %w", err)
	}

	return counts, nil
}

// SyncStatus returns the maximum stored timestamp per category, 0 when a
// category holds no logs. Clients compare these high-water marks against
// local state to detect incomplete uploads and resume.
func (r *logRepository) SyncStatus(userID string) (*models.SyncStatus, error) {
	if userID == "" {
		return nil, fmt.Errorf("user ID cannot be empty")
	}

	query := `
		SELECT
			COALESCE(MAX(CASE WHEN type IN (?, ?) THEN timestamp END), 0),
			COALESCE(MAX(CASE WHEN type IN (?, ?, ?) THEN timestamp END), 0)
		FROM logs
		WHERE user_id = ?
	`

	status := &models.SyncStatus{}
	err := r.db.QueryRow(query,
		models.LogTypeSmsInbox,
		models.LogTypeSmsSent,
		models.LogTypeCallIncoming,
		models.LogTypeCallOutgoing,
		models.LogTypeCallMissed,
		userID,
	).Scan(&status.LastSmsTimestamp, &status.LastCallTimestamp)
	if err != nil {
		return nil, fmt.Errorf("failed to get sync status: %w", err)
	}

	return status, nil
}

// scanLogs drains rows into Log records.
func scanLogs(rows *sql.Rows) ([]*models.Log, error) {
	var logs []*models.Log
	for rows.Next() {
		log := &models.Log{}
		err := rows.Scan(
			&log.ID,
			&log.UserID,
			&log.Type,
			&log.RemoteNumber,
			&log.RemoteName,
			&log.Content,
			&log.Duration,
			&log.Timestamp,
			&log.SyncedAt,
			&log.IsRead,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan log: %w", err)
		}
		logs = append(logs, log)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating logs: %w", err)
	}

	return logs, nil
}

// placeholders returns n comma-separated SQL parameter markers.
func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
