package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/dreamolight/Phone2/internal/models"
	"github.com/dreamolight/Phone2/internal/services"
	"github.com/dreamolight/Phone2/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// UploadRequest is the batch body sent by the mobile uploader.
type UploadRequest struct {
	Logs []*models.Log `json:"logs" binding:"required"`
}

// MarkReadRequest marks one conversation read.
type MarkReadRequest struct {
	RemoteNumber string `json:"remote_number"`
}

// MarkCategoryReadRequest marks a whole category read.
type MarkCategoryReadRequest struct {
	Category string `json:"category"`
}

// SyncHandler handles log upload and read-back requests
type SyncHandler struct {
	syncService SyncServiceInterface
}

// NewSyncHandler creates a new sync handler
func NewSyncHandler(syncService SyncServiceInterface) *SyncHandler {
	return &SyncHandler{syncService: syncService}
}

// Upload merges a batch of uploaded log records. Records are applied in
// order; a mid-batch failure leaves earlier records applied and reports
// a server error, and the client resumes via GET /api/sync/status.
func (h *SyncHandler) Upload(c *gin.Context) {
	userID := c.GetString("userID")

	var req UploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Invalid upload request",
			zap.String("user_id", userID),
			zap.Error(err),
		)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid data format"})
		return
	}

	applied, err := h.syncService.UploadLogs(userID, req.Logs)
	if err != nil {
		logger.Error("Upload failed partway",
			zap.String("user_id", userID),
			zap.Int("applied", applied),
			zap.Int("total", len(req.Logs)),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save logs"})
		return
	}

	logger.Info("Upload complete",
		zap.String("user_id", userID),
		zap.Int("count", applied),
	)
	c.JSON(http.StatusOK, gin.H{"status": "success", "synced": applied})
}

// Conversations lists per-contact summaries, most recent first.
func (h *SyncHandler) Conversations(c *gin.Context) {
	userID := c.GetString("userID")
	category := c.Query("category")

	conversations, err := h.syncService.ListConversations(userID, category)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCategory) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category"})
			return
		}
		logger.Error("Failed to list conversations",
			zap.String("user_id", userID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get conversations"})
		return
	}

	if conversations == nil {
		conversations = []*models.Conversation{}
	}
	c.JSON(http.StatusOK, conversations)
}

// Messages lists the logs of one conversation, newest first.
func (h *SyncHandler) Messages(c *gin.Context) {
	userID := c.GetString("userID")

	remoteNumber := c.Query("remote_number")
	if remoteNumber == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "remote_number is required"})
		return
	}

	limit, offset, ok := parsePagination(c, 50)
	if !ok {
		return
	}

	logs, err := h.syncService.ListMessages(userID, remoteNumber, limit, offset)
	if err != nil {
		logger.Error("Failed to list messages",
			zap.String("user_id", userID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get messages"})
		return
	}

	if logs == nil {
		logs = []*models.Log{}
	}
	c.JSON(http.StatusOK, logs)
}

// Fetch lists all of a user's logs with pagination, newest first.
func (h *SyncHandler) Fetch(c *gin.Context) {
	userID := c.GetString("userID")

	limit, offset, ok := parsePagination(c, 100)
	if !ok {
		return
	}

	logs, err := h.syncService.FetchLogs(userID, limit, offset)
	if err != nil {
		logger.Error("Failed to fetch logs",
			zap.String("user_id", userID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get logs"})
		return
	}

	if logs == nil {
		logs = []*models.Log{}
	}
	c.JSON(http.StatusOK, logs)
}

// MarkRead marks every log of one conversation read.
func (h *SyncHandler) MarkRead(c *gin.Context) {
	userID := c.GetString("userID")

	var req MarkReadRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.RemoteNumber == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "remote_number is required"})
		return
	}

	if err := h.syncService.MarkConversationRead(userID, req.RemoteNumber); err != nil {
		logger.Error("Failed to mark conversation read",
			zap.String("user_id", userID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to mark read"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

// MarkCategoryRead marks every unread log of a category read.
func (h *SyncHandler) MarkCategoryRead(c *gin.Context) {
	userID := c.GetString("userID")

	var req MarkCategoryReadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	if err := h.syncService.MarkCategoryRead(userID, req.Category); err != nil {
		if errors.Is(err, services.ErrInvalidCategory) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category"})
			return
		}
		logger.Error("Failed to mark category read",
			zap.String("user_id", userID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to mark read"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

// UnreadCounts returns the global unread tally.
func (h *SyncHandler) UnreadCounts(c *gin.Context) {
	userID := c.GetString("userID")

	counts, err := h.syncService.UnreadCounts(userID)
	if err != nil {
		logger.Error("Failed to get unread counts",
			zap.String("user_id", userID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get unread counts"})
		return
	}

	c.JSON(http.StatusOK, counts)
}

// Status returns the sync high-water marks.
func (h *SyncHandler) Status(c *gin.Context) {
	userID := c.GetString("userID")

	status, err := h.syncService.SyncStatus(userID)
	if err != nil {
		logger.Error("Failed to get sync status",
			zap.String("user_id", userID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get sync status"})
		return
	}

	c.JSON(http.StatusOK, status)
}

// parsePagination reads limit/offset query values, rejecting bad input.
// Responds 400 and returns ok=false when a value does not parse.
func parsePagination(c *gin.Context, defaultLimit int) (limit, offset int, ok bool) {
	limit = defaultLimit
	offset = 0

	if limitStr := c.Query("limit"); limitStr != "" {
		l, err := strconv.Atoi(limitStr)
		if err != nil || l <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit value"})
			return 0, 0, false
		}
		limit = l
	}

	if offsetStr := c.Query("offset"); offsetStr != "" {
		o, err := strconv.Atoi(offsetStr)
		if err != nil || o < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid offset value"})
			return 0, 0, false
		}
		offset = o
	}

	return limit, offset, true
}
