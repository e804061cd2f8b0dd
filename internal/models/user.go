package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents a registered account. A user owns all of their logs
// and commands; identity is immutable after registration.
type User struct {
	ID                  string  `json:"id"` // UUID
	Username            string  `json:"username" binding:"required,min=3,max=50"`
	PasswordHash        string  `json:"-"` // EXCLUDED from JSON - bcrypt hash
	TOTPSecret          *string `json:"-"` // EXCLUDED from JSON - encrypted TOTP secret
	TOTPEnabled         bool    `json:"totp_enabled"`
	Active              bool    `json:"active"`
	FailedLoginAttempts int     `json:"failed_login_attempts"`
	LockedUntil         *int64  `json:"locked_until,omitempty"` // Unix timestamp when account lock expires
	LastLogin           *int64  `json:"last_login,omitempty"`
	CreatedAt           int64   `json:"created_at"`
	UpdatedAt           int64   `json:"updated_at"`
}

// RegisterRequest represents the request body for registration.
type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50"`
	Password string `json:"password" binding:"required,min=8"`
}

// UserResponse is a safe user representation for API responses,
// excluding all sensitive fields.
type UserResponse struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	Active      bool   `json:"active"`
	TOTPEnabled bool   `json:"totp_enabled"`
	LastLogin   *int64 `json:"last_login,omitempty"`
	CreatedAt   int64  `json:"created_at"`
}

// NewUser creates a new User with generated UUID and timestamps.
// The password should already be hashed before calling this function.
func NewUser(username, passwordHash string) *User {
	now := time.Now().Unix()
	return &User{
		ID:           uuid.New().String(),
		Username:     username,
		PasswordHash: passwordHash,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// IsActive returns whether the user account is active and not locked.
func (u *User) IsActive() bool {
	if !u.Active {
		return false
	}
	return !u.IsLocked()
}

// IsLocked returns whether the account is currently locked. An account
// is locked if LockedUntil is set and in the future.
func (u *User) IsLocked() bool {
	if u.LockedUntil == nil {
		return false
	}
	return *u.LockedUntil > time.Now().Unix()
}

// ToResponse converts User to UserResponse, excluding sensitive fields.
func (u *User) ToResponse() *UserResponse {
	return &UserResponse{
		ID:          u.ID,
		Username:    u.Username,
		Active:      u.Active,
		TOTPEnabled: u.TOTPEnabled,
		LastLogin:   u.LastLogin,
		CreatedAt:   u.CreatedAt,
	}
}
