package handlers

import (
	"encoding/json"

	"github.com/dreamolight/Phone2/internal/models"
)

// SyncServiceInterface defines the contract for log sync operations
// This interface is used for dependency injection and testing
type SyncServiceInterface interface {
	UploadLogs(userID string, logs []*models.Log) (int, error)
	ListConversations(userID, category string) ([]*models.Conversation, error)
	ListMessages(userID, remoteNumber string, limit, offset int) ([]*models.Log, error)
	FetchLogs(userID string, limit, offset int) ([]*models.Log, error)
	MarkConversationRead(userID, remoteNumber string) error
	MarkCategoryRead(userID, category string) error
	UnreadCounts(userID string) (*models.UnreadCounts, error)
	SyncStatus(userID string) (*models.SyncStatus, error)
}

// CommandServiceInterface defines the contract for the command relay
// This interface is used for dependency injection and testing
type CommandServiceInterface interface {
	Enqueue(userID, cmdType string, payload json.RawMessage) (*models.Command, error)
	ListPending(userID string) ([]*models.Command, error)
	AdvanceStatus(userID string, commandID int64, status string) error
}

// UserServiceInterface defines the contract for user service operations
// This interface is used for dependency injection and testing
type UserServiceInterface interface {
	CreateUser(username, password string) (*models.User, error)
	Authenticate(username, password, totpCode string) (*models.User, error)
	GetUser(id string) (*models.User, error)
	GenerateTOTPSecret(userID string) (string, error)
	EnableTOTP(userID, totpCode string) error
	DisableTOTP(userID string) error
}
