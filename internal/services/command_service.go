package services

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dreamolight/Phone2/internal/db"
	"github.com/dreamolight/Phone2/internal/models"
)

var (
	// ErrCommandNotFound indicates the command does not exist or belongs to another user
	ErrCommandNotFound = errors.New("command not found")

	// ErrInvalidTransition indicates a backward or otherwise disallowed status change
	ErrInvalidTransition = errors.New("invalid status transition")
)

// CommandService handles the outbound command relay: the controller
// enqueues actions, the uploader drains and acknowledges them.
type CommandService struct {
	repo db.CommandRepository
}

// NewCommandService creates a new command service
func NewCommandService(repo db.CommandRepository) *CommandService {
	return &CommandService{repo: repo}
}

// Enqueue creates a pending command for the user.
func (s *CommandService) Enqueue(userID, cmdType string, payload json.RawMessage) (*models.Command, error) {
	if userID == "" {
		return nil, fmt.Errorf("user ID is required")
	}
	if cmdType == "" {
		return nil, fmt.Errorf("command type is required")
	}
	if len(payload) == 0 {
		return nil, fmt.Errorf("command payload is required")
	}
	if !json.Valid(payload) {
		return nil, fmt.Errorf("command payload must be valid JSON")
	}

	cmd := &models.Command{
		UserID:  userID,
		Type:    cmdType,
		Payload: payload,
	}

	if err := s.repo.Create(cmd); err != nil {
		return nil, err
	}

	return cmd, nil
}

// ListPending returns the user's pending commands in FIFO order. Rows
// stay pending until the uploader advances them; there is no implicit
// pickup, retry or expiry.
func (s *CommandService) ListPending(userID string) ([]*models.Command, error) {
	if userID == "" {
		return nil, fmt.Errorf("user ID is required")
	}

	return s.repo.ListPending(userID)
}

// AdvanceStatus moves a command forward through its lifecycle
// (pending -> picked_up -> completed|failed). Backward transitions are
// rejected, and the command must belong to the user.
func (s *CommandService) AdvanceStatus(userID string, commandID int64, status string) error {
	if userID == "" {
		return fmt.Errorf("user ID is required")
	}
	if !models.ValidCommandStatus(status) {
		return fmt.Errorf("unknown command status %q", status)
	}

	cmd, err := s.repo.GetByID(commandID, userID)
	if err != nil {
		return err
	}
	if cmd == nil {
		return ErrCommandNotFound
	}

	if !models.CanTransition(cmd.Status, status) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, cmd.Status, status)
	}

	return s.repo.UpdateStatus(commandID, userID, status)
}
