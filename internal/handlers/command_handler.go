package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/dreamolight/Phone2/internal/models"
	"github.com/dreamolight/Phone2/internal/services"
	"github.com/dreamolight/Phone2/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// EnqueueCommandRequest is posted by the controller client.
type EnqueueCommandRequest struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// CommandStatusRequest advances one command's lifecycle.
type CommandStatusRequest struct {
	Status string `json:"status"`
}

// CommandHandler handles the outbound command relay endpoints
type CommandHandler struct {
	commandService CommandServiceInterface
}

// NewCommandHandler creates a new command handler
func NewCommandHandler(commandService CommandServiceInterface) *CommandHandler {
	return &CommandHandler{commandService: commandService}
}

// Enqueue queues an action (e.g. send_sms) for the uploader to execute.
func (h *CommandHandler) Enqueue(c *gin.Context) {
	userID := c.GetString("userID")

	var req EnqueueCommandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	if req.Type == "" || len(req.Payload) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing fields"})
		return
	}

	cmd, err := h.commandService.Enqueue(userID, req.Type, req.Payload)
	if err != nil {
		logger.Error("Failed to enqueue command",
			zap.String("user_id", userID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to enqueue command"})
		return
	}

	logger.Info("Command enqueued",
		zap.String("user_id", userID),
		zap.Int64("command_id", cmd.ID),
		zap.String("type", cmd.Type),
	)
	c.JSON(http.StatusOK, gin.H{"status": "success", "id": cmd.ID})
}

// ListPending returns pending commands oldest first. The uploader polls
// this and acknowledges each command via the status endpoint.
func (h *CommandHandler) ListPending(c *gin.Context) {
	userID := c.GetString("userID")

	commands, err := h.commandService.ListPending(userID)
	if err != nil {
		logger.Error("Failed to list pending commands",
			zap.String("user_id", userID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get commands"})
		return
	}

	if commands == nil {
		commands = []*models.Command{}
	}
	c.JSON(http.StatusOK, commands)
}

// AdvanceStatus moves a command forward through its lifecycle.
func (h *CommandHandler) AdvanceStatus(c *gin.Context) {
	userID := c.GetString("userID")

	commandID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid command ID"})
		return
	}

	var req CommandStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Status == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status is required"})
		return
	}

	if !models.ValidCommandStatus(req.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
		return
	}

	if err := h.commandService.AdvanceStatus(userID, commandID, req.Status); err != nil {
		switch {
		case errors.Is(err, services.ErrCommandNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Command not found"})
		case errors.Is(err, services.ErrInvalidTransition):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to advance command status",
				zap.String("user_id", userID),
				zap.Int64("command_id", commandID),
				zap.Error(err),
			)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update command"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success"})
}
