package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dreamolight/Phone2/internal/db"
	"github.com/dreamolight/Phone2/internal/models"
	"github.com/dreamolight/Phone2/pkg/logger"

	"go.uber.org/zap"
)

var (
	// ErrInvalidCategory indicates an unknown conversation category
	ErrInvalidCategory = errors.New("invalid category")
)

// SyncService handles log upload, conversation aggregation and
// read-state reconciliation.
type SyncService struct {
	repo db.LogRepository
}

// NewSyncService creates a new sync service
func NewSyncService(repo db.LogRepository) *SyncService {
	return &SyncService{repo: repo}
}

// sanitizeString strips control characters that the store rejects,
// keeping newline, carriage return and tab (drops 0x00-0x08, 0x0B,
// 0x0C, 0x0E-0x1F).
func sanitizeString(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 0x20 && r != '\n' && r != '\r' && r != '\t' {
			return -1
		}
		return r
	}, s)
}

// SanitizeLog cleans every string field of a raw uploaded record in
// place. Non-string fields pass through unchanged; no validation
// happens here.
func SanitizeLog(log *models.Log) {
	if log == nil {
		return
	}

	log.Type = sanitizeString(log.Type)
	log.RemoteNumber = sanitizeString(log.RemoteNumber)
	if log.RemoteName != nil {
		clean := sanitizeString(*log.RemoteName)
		log.RemoteName = &clean
	}
	if log.Content != nil {
		clean := sanitizeString(*log.Content)
		log.Content = &clean
	}
}

// UploadLogs merges a batch of raw records for the user, sequentially
// and in upload order. Each record is sanitized, stamped with the
// owning user and upserted against the natural key. The batch is not
// transactional: the first failing record aborts the rest but earlier
// merges stand, and the caller recovers via the sync-status high-water
// marks. Returns the number of records applied.
func (s *SyncService) UploadLogs(userID string, logs []*models.Log) (int, error) {
	if userID == "" {
		return 0, fmt.Errorf("user ID is required")
	}

	for i, log := range logs {
		if log == nil {
			return i, fmt.Errorf("log at index %d is nil", i)
		}

		SanitizeLog(log)
		log.UserID = userID

		if err := s.validateLog(log); err != nil {
			return i, fmt.Errorf("log at index %d: %w", i, err)
		}

		if err := s.repo.Upsert(log); err != nil {
			logger.Error("Failed to merge log",
				zap.String("user_id", userID),
				zap.Int("index", i),
				zap.Error(err),
			)
			return i, err
		}
	}

	return len(logs), nil
}

// validateLog checks the fields the store cannot default.
func (s *SyncService) validateLog(log *models.Log) error {
	if !models.ValidLogType(log.Type) {
		return fmt.Errorf("unknown log type %q", log.Type)
	}

	if log.RemoteNumber == "" {
		return fmt.Errorf("remote number is required")
	}

	if log.Timestamp == 0 {
		return fmt.Errorf("timestamp is required")
	}

	return nil
}

// ListConversations returns one summary per contact, most recent first.
// The optional category narrows which logs can headline a conversation;
// unread counts are unaffected by it.
func (s *SyncService) ListConversations(userID, category string) ([]*models.Conversation, error) {
	if userID == "" {
		return nil, fmt.Errorf("user ID is required")
	}

	types, ok := models.CategoryTypes(category)
	if !ok {
		return nil, ErrInvalidCategory
	}

	return s.repo.ListConversations(userID, types)
}

// ListMessages retrieves one conversation's logs, newest first.
func (s *SyncService) ListMessages(userID, remoteNumber string, limit, offset int) ([]*models.Log, error) {
	if userID == "" {
		return nil, fmt.Errorf("user ID is required")
	}
	if remoteNumber == "" {
		return nil, fmt.Errorf("remote number is required")
	}

	if limit <= 0 {
		limit = 50 // default page size
	}
	if offset < 0 {
		offset = 0
	}

	return s.repo.ListByNumber(userID, remoteNumber, limit, offset)
}

// FetchLogs retrieves all of a user's logs with pagination, newest first.
func (s *SyncService) FetchLogs(userID string, limit, offset int) ([]*models.Log, error) {
	if userID == "" {
		return nil, fmt.Errorf("user ID is required")
	}

	if limit <= 0 {
		limit = 100 // default limit
	}
	if offset < 0 {
		offset = 0
	}

	return s.repo.List(userID, limit, offset)
}

// MarkConversationRead flips every log for the contact to read. The
// transition is monotonic; re-applying it has no further effect.
func (s *SyncService) MarkConversationRead(userID, remoteNumber string) error {
	if userID == "" {
		return fmt.Errorf("user ID is required")
	}
	if remoteNumber == "" {
		return fmt.Errorf("remote number is required")
	}

	return s.repo.MarkConversationRead(userID, remoteNumber)
}

// MarkCategoryRead flips the unread logs of one category to read.
// Unlike listing, an explicit category is required here.
func (s *SyncService) MarkCategoryRead(userID, category string) error {
	if userID == "" {
		return fmt.Errorf("user ID is required")
	}

	types, ok := models.MarkReadTypes(category)
	if !ok {
		return ErrInvalidCategory
	}

	return s.repo.MarkCategoryRead(userID, types)
}

// UnreadCounts returns the global unread tally for the user.
func (s *SyncService) UnreadCounts(userID string) (*models.UnreadCounts, error) {
	if userID == "" {
		return nil, fmt.Errorf("user ID is required")
	}

	return s.repo.UnreadCounts(userID)
}

// SyncStatus returns the per-category high-water marks.
func (s *SyncService) SyncStatus(userID string) (*models.SyncStatus, error) {
	if userID == "" {
		return nil, fmt.Errorf("user ID is required")
	}

	return s.repo.SyncStatus(userID)
}
