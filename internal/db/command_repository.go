package db

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/dreamolight/Phone2/internal/models"
)

// CommandRepository defines the interface for command-queue data access.
type CommandRepository interface {
	Create(cmd *models.Command) error
	GetByID(id int64, userID string) (*models.Command, error)
	ListPending(userID string) ([]*models.Command, error)
	UpdateStatus(id int64, userID, status string) error
}

// commandRepository implements CommandRepository interface
type commandRepository struct {
	db *sql.DB
}

// NewCommandRepository creates a new CommandRepository
func NewCommandRepository(db *sql.DB) CommandRepository {
	return &commandRepository{db: db}
}

// Create enqueues a command in pending status.
func (r *commandRepository) Create(cmd *models.Command) error {
	if cmd == nil {
		return fmt.Errorf("command cannot be nil")
	}
	if cmd.UserID == "" {
		return fmt.Errorf("user ID cannot be empty")
	}

	now := time.Now().Unix()
	cmd.Status = models.CommandStatusPending
	cmd.CreatedAt = now
	cmd.UpdatedAt = now

	query := `
		INSERT INTO commands (user_id, type, payload, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.Exec(query,
		cmd.UserID,
		cmd.Type,
		string(cmd.Payload),
		cmd.Status,
		cmd.CreatedAt,
		cmd.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create command: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get command ID: %w", err)
	}
	cmd.ID = id

	return nil
}

// GetByID retrieves a command scoped to its owner.
func (r *commandRepository) GetByID(id int64, userID string) (*models.Command, error) {
	if userID == "" {
		return nil, fmt.Errorf("user ID cannot be empty")
	}

	query := `
		SELECT id, user_id, type, payload, status, created_at, updated_at
		FROM commands
		WHERE id = ? AND user_id = ?
	`

	cmd := &models.Command{}
	var payload string
	err := r.db.QueryRow(query, id, userID).Scan(
		&cmd.ID,
		&cmd.UserID,
		&cmd.Type,
		&payload,
		&cmd.Status,
		&cmd.CreatedAt,
		&cmd.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get command: %w", err)
	}
	cmd.Payload = []byte(payload)

	return cmd, nil
}

// ListPending returns a user's pending commands, oldest first, so the
// uploader drains them in FIFO order. Rows are not marked picked_up
// here; the uploader reports that transition explicitly.
func (r *commandRepository) ListPending(userID string) ([]*models.Command, error) {
	if userID == "" {
		return nil, fmt.Errorf("user ID cannot be empty")
	}

	query := `
		SELECT id, user_id, type, payload, status, created_at, updated_at
		FROM commands
		WHERE user_id = ? AND status = ?
		ORDER BY created_at ASC, id ASC
	`

	rows, err := r.db.Query(query, userID, models.CommandStatusPending)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending commands: %w", err)
	}
	defer rows.Close()

	var commands []*models.Command
	for rows.Next() {
		cmd := &models.Command{}
		var payload string
		err := rows.Scan(
			&cmd.ID,
			&cmd.UserID,
			&cmd.Type,
			&payload,
			&cmd.Status,
			&cmd.CreatedAt,
			&cmd.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan command: %w", err)
		}
		cmd.Payload = []byte(payload)
		commands = append(commands, cmd)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating commands: %w", err)
	}

	return commands, nil
}

// UpdateStatus sets a command's status and refreshes updated_at, scoped
// so a user can only mutate their own commands.
func (r *commandRepository) UpdateStatus(id int64, userID, status string) error {
	if userID == "" {
		return fmt.Errorf("user ID cannot be empty")
	}

	query := `UPDATE commands SET status = ?, updated_at = ? WHERE id = ? AND user_id = ?`

	result, err := r.db.Exec(query, status, time.Now().Unix(), id, userID)
	if err != nil {
		return fmt.Errorf("failed to update command status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("command not found")
	}

	return nil
}
