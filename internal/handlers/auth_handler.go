package handlers

import (
	"errors"
	"net/http"

	"github.com/dreamolight/Phone2/internal/config"
	"github.com/dreamolight/Phone2/internal/services"
	"github.com/dreamolight/Phone2/pkg/logger"
	"github.com/dreamolight/Phone2/pkg/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	TOTPCode string `json:"totp_code"`
}

// TOTPCodeRequest carries the code proving possession of a TOTP secret.
type TOTPCodeRequest struct {
	TOTPCode string `json:"totp_code"`
}

// AuthHandler handles registration and authentication requests
type AuthHandler struct {
	config      *config.Config
	userService UserServiceInterface
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(cfg *config.Config, userService UserServiceInterface) *AuthHandler {
	return &AuthHandler{config: cfg, userService: userService}
}

// Register creates a new account and returns a JWT token
func (h *AuthHandler) Register(c *gin.Context) {
	logger.Info("Auth register endpoint called")

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	if req.Username == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username and password are required"})
		return
	}

	user, err := h.userService.CreateUser(req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUsernameTaken):
			c.JSON(http.StatusConflict, gin.H{"error": "Username already exists"})
		case errors.Is(err, services.ErrInvalidUsername), errors.Is(err, services.ErrInvalidPassword):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to create user", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
		}
		return
	}

	token, err := middleware.GenerateToken(user.ID, user.Username, h.config)
	if err != nil {
		logger.Error("Failed to generate token", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	logger.Info("User registered", zap.String("user_id", user.ID))
	c.JSON(http.StatusOK, gin.H{"token": token, "userId": user.ID})
}

// TOTPSetup generates a fresh TOTP secret for the authenticated user.
// The secret is returned once for provisioning an authenticator app;
// the second factor stays off until the user confirms a code.
func (h *AuthHandler) TOTPSetup(c *gin.Context) {
	userID := c.GetString("userID")

	secret, err := h.userService.GenerateTOTPSecret(userID)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		logger.Error("Failed to generate TOTP secret",
			zap.String("user_id", userID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate TOTP secret"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"secret": secret})
}

// TOTPEnable turns on the second factor after the user proves possession
// of the provisioned secret with a valid code.
func (h *AuthHandler) TOTPEnable(c *gin.Context) {
	userID := c.GetString("userID")

	var req TOTPCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.TOTPCode == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "totp_code is required"})
		return
	}

	if err := h.userService.EnableTOTP(userID, req.TOTPCode); err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidTOTP):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid TOTP code"})
		case errors.Is(err, services.ErrNoTOTPSecret):
			c.JSON(http.StatusBadRequest, gin.H{"error": "No TOTP secret generated"})
		case errors.Is(err, services.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		default:
			logger.Error("Failed to enable TOTP",
				zap.String("user_id", userID),
				zap.Error(err),
			)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to enable TOTP"})
		}
		return
	}

	logger.Info("TOTP enabled", zap.String("user_id", userID))
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

// TOTPDisable turns off the second factor and discards the secret.
func (h *AuthHandler) TOTPDisable(c *gin.Context) {
	userID := c.GetString("userID")

	if err := h.userService.DisableTOTP(userID); err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		logger.Error("Failed to disable TOTP",
			zap.String("user_id", userID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to disable TOTP"})
		return
	}

	logger.Info("TOTP disabled", zap.String("user_id", userID))
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

// Login authenticates a user and returns a JWT token. Unknown usernames
// and wrong passwords get the same response.
func (h *AuthHandler) Login(c *gin.Context) {
	logger.Info("Auth login endpoint called")

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	if req.Username == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username and password are required"})
		return
	}

	user, err := h.userService.Authenticate(req.Username, req.Password, req.TOTPCode)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidCredentials), errors.Is(err, services.ErrInvalidTOTP):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		case errors.Is(err, services.ErrAccountLocked):
			c.JSON(http.StatusForbidden, gin.H{"error": "Account is locked"})
		default:
			logger.Error("Login failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Login failed"})
		}
		return
	}

	token, err := middleware.GenerateToken(user.ID, user.Username, h.config)
	if err != nil {
		logger.Error("Failed to generate token", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token, "userId": user.ID})
}
