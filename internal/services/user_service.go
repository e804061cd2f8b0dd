package services

import (
	"errors"
	"fmt"
	"regexp"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/dreamolight/Phone2/internal/config"
	"github.com/dreamolight/Phone2/internal/db"
	"github.com/dreamolight/Phone2/internal/models"
	"github.com/dreamolight/Phone2/pkg/logger"
	"github.com/dreamolight/Phone2/pkg/utils"

	"github.com/pquerna/otp/totp"
	"go.uber.org/zap"
)

const (
	// BcryptCost is the cost parameter for bcrypt password hashing
	BcryptCost = 12

	// MaxFailedLoginAttempts is the number of failed attempts before account lockout
	MaxFailedLoginAttempts = 5

	// LockoutDuration is the duration of account lockout after max failed attempts
	LockoutDuration = 30 * time.Minute

	// MinPasswordLength is the minimum length for passwords
	MinPasswordLength = 8
)

var (
	// ErrInvalidCredentials indicates authentication failure
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrAccountLocked indicates the account is temporarily locked
	ErrAccountLocked = errors.New("account is locked due to too many failed login attempts")

	// ErrInvalidTOTP indicates TOTP code validation failure
	ErrInvalidTOTP = errors.New("invalid TOTP code")

	// ErrNoTOTPSecret indicates TOTP was used before a secret was provisioned
	ErrNoTOTPSecret = errors.New("no TOTP secret generated")

	// ErrUserNotFound indicates user does not exist
	ErrUserNotFound = errors.New("user not found")

	// ErrUsernameTaken indicates registration with an existing username
	ErrUsernameTaken = errors.New("username already exists")

	// ErrInvalidUsername indicates username validation failure
	ErrInvalidUsername = errors.New("username must be 3-50 characters and contain only alphanumeric characters and underscores")

	// ErrInvalidPassword indicates password validation failure
	ErrInvalidPassword = errors.New("password must be at least 8 characters")
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]{3,50}$`)

// UserService provides registration and authentication
type UserService struct {
	repo          db.UserRepository
	encryptionKey string
}

// NewUserService creates a new UserService instance
func NewUserService(repo db.UserRepository) *UserService {
	return &UserService{repo: repo}
}

// NewUserServiceWithEncryption creates a UserService that encrypts
// stored TOTP secrets with the configured key
func NewUserServiceWithEncryption(repo db.UserRepository, cfg *config.Config) *UserService {
	return &UserService{
		repo:          repo,
		encryptionKey: cfg.Security.TOTPEncryptionKey,
	}
}

// CreateUser registers a new user with a hashed password
func (s *UserService) CreateUser(username, password string) (*models.User, error) {
	if !usernamePattern.MatchString(username) {
		return nil, ErrInvalidUsername
	}

	if len(password) < MinPasswordLength {
		return nil, ErrInvalidPassword
	}

	existing, err := s.repo.GetByUsername(username)
	if err != nil {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}
	if existing != nil {
		return nil, ErrUsernameTaken
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.NewUser(username, string(hashedPassword))
	if err := s.repo.Create(user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// Authenticate verifies username/password and, when enabled for the
// account, a TOTP code. Unknown usernames and wrong passwords report
// the same error so usernames cannot be enumerated.
func (s *UserService) Authenticate(username, password, totpCode string) (*models.User, error) {
	user, err := s.repo.GetByUsername(username)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}

	if user.IsLocked() {
		return nil, ErrAccountLocked
	}
	if !user.Active {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.recordFailedLogin(user)
		return nil, ErrInvalidCredentials
	}

	if user.TOTPEnabled {
		secret, err := s.totpSecret(user)
		if err != nil {
			return nil, err
		}
		if !totp.Validate(totpCode, secret) {
			s.recordFailedLogin(user)
			return nil, ErrInvalidTOTP
		}
	}

	now := time.Now().Unix()
	user.FailedLoginAttempts = 0
	user.LockedUntil = nil
	user.LastLogin = &now
	if err := s.repo.Update(user); err != nil {
		// Login bookkeeping must not block a successful authentication
		logger.Warn("Failed to record login",
			zap.String("user_id", user.ID),
			zap.Error(err),
		)
	}

	return user, nil
}

// recordFailedLogin bumps the failure counter and locks the account once
// the threshold is hit.
func (s *UserService) recordFailedLogin(user *models.User) {
	user.FailedLoginAttempts++
	if user.FailedLoginAttempts >= MaxFailedLoginAttempts {
		lockedUntil := time.Now().Add(LockoutDuration).Unix()
		user.LockedUntil = &lockedUntil
		logger.Warn("Account locked after repeated failed logins",
			zap.String("user_id", user.ID),
		)
	}

	if err := s.repo.Update(user); err != nil {
		logger.Error("Failed to record failed login",
			zap.String("user_id", user.ID),
			zap.Error(err),
		)
	}
}

// GetUser retrieves a user by ID
func (s *UserService) GetUser(id string) (*models.User, error) {
	user, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// GenerateTOTPSecret creates and stores a new TOTP secret for the user.
// The secret is returned once for provisioning; it is stored encrypted
// when an encryption key is configured.
func (s *UserService) GenerateTOTPSecret(userID string) (string, error) {
	user, err := s.GetUser(userID)
	if err != nil {
		return "", err
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      "Phone2",
		AccountName: user.Username,
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate TOTP secret: %w", err)
	}

	secret := key.Secret()
	stored := secret
	if s.encryptionKey != "" {
		stored, err = utils.EncryptTOTPSecret(secret, s.encryptionKey)
		if err != nil {
			return "", fmt.Errorf("failed to encrypt TOTP secret: %w", err)
		}
	}

	user.TOTPSecret = &stored
	if err := s.repo.Update(user); err != nil {
		return "", fmt.Errorf("failed to store TOTP secret: %w", err)
	}

	return secret, nil
}

// EnableTOTP turns on the second factor after the user proves possession
// of the secret with a valid code
func (s *UserService) EnableTOTP(userID, totpCode string) error {
	user, err := s.GetUser(userID)
	if err != nil {
		return err
	}
	if user.TOTPSecret == nil || *user.TOTPSecret == "" {
		return ErrNoTOTPSecret
	}

	secret, err := s.totpSecret(user)
	if err != nil {
		return err
	}
	if !totp.Validate(totpCode, secret) {
		return ErrInvalidTOTP
	}

	user.TOTPEnabled = true
	if err := s.repo.Update(user); err != nil {
		return fmt.Errorf("failed to enable TOTP: %w", err)
	}

	return nil
}

// DisableTOTP turns off the second factor and discards the secret
func (s *UserService) DisableTOTP(userID string) error {
	user, err := s.GetUser(userID)
	if err != nil {
		return err
	}

	user.TOTPEnabled = false
	user.TOTPSecret = nil
	if err := s.repo.Update(user); err != nil {
		return fmt.Errorf("failed to disable TOTP: %w", err)
	}

	return nil
}

// totpSecret returns the user's TOTP secret, decrypting when a key is
// configured.
func (s *UserService) totpSecret(user *models.User) (string, error) {
	if user.TOTPSecret == nil {
		return "", ErrNoTOTPSecret
	}

	if s.encryptionKey == "" {
		return *user.TOTPSecret, nil
	}

	secret, err := utils.DecryptTOTPSecret(*user.TOTPSecret, s.encryptionKey)
	if err != nil {
		return "", fmt.Errorf("failed to decrypt TOTP secret: %w", err)
	}
	return secret, nil
}
