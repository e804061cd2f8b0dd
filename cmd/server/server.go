package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dreamolight/Phone2/internal/config"
	"github.com/dreamolight/Phone2/internal/db"
	"github.com/dreamolight/Phone2/internal/handlers"
	"github.com/dreamolight/Phone2/internal/services"
	"github.com/dreamolight/Phone2/pkg/logger"
	"github.com/dreamolight/Phone2/pkg/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// maxUploadBytes bounds a single request body; log batches from months
// of history stay well under this.
const maxUploadBytes = 10 << 20

// SetupServer initializes and returns a configured HTTP server
func SetupServer(cfg *config.Config) (*http.Server, error) {
	if cfg == nil {
		return nil, errors.New("configuration is required")
	}

	if cfg.Server.Port <= 0 {
		return nil, errors.New("invalid server port")
	}

	// Initialize database and run migrations
	database, err := db.NewDatabase(cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// Seed admin user if enabled
	if cfg.Seed.Enable {
		if err := database.SeedAdminUser(cfg.Seed.AdminUsername, cfg.Seed.AdminPassword); err != nil {
			return nil, fmt.Errorf("failed to seed database: %w", err)
		}
	}

	// Initialize repositories
	userRepo := db.NewUserRepository(database.GetDB())
	logRepo := db.NewLogRepository(database.GetDB())
	commandRepo := db.NewCommandRepository(database.GetDB())

	// Initialize services
	userService := services.NewUserServiceWithEncryption(userRepo, cfg)
	syncService := services.NewSyncService(logRepo)
	commandService := services.NewCommandService(commandRepo)

	// Initialize router
	router := gin.Default()

	// Setup routes
	setupRoutes(router, cfg, syncService, commandService, userService)

	// Create server with security timeouts
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return srv, nil
}

// setupRoutes configures all the HTTP routes
func setupRoutes(
	router *gin.Engine,
	cfg *config.Config,
	syncService *services.SyncService,
	commandService *services.CommandService,
	userService *services.UserService,
) {
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())
	router.Use(middleware.RequestSizeLimitMiddleware(maxUploadBytes))
	router.Use(middleware.AuditLogMiddleware())

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(cfg, userService)
	syncHandler := handlers.NewSyncHandler(syncService)
	commandHandler := handlers.NewCommandHandler(commandService)

	// Basic health check endpoint (public)
	router.GET("/health", handleHealthCheck)

	// Auth endpoints (public)
	authGroup := router.Group("/api/auth")
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
	}

	// TOTP enrollment (protected)
	totpGroup := router.Group("/api/auth/totp")
	totpGroup.Use(middleware.AuthMiddleware(cfg))
	{
		totpGroup.POST("/setup", authHandler.TOTPSetup)
		totpGroup.POST("/enable", authHandler.TOTPEnable)
		totpGroup.POST("/disable", authHandler.TOTPDisable)
	}

	// Sync routes (protected)
	syncGroup := router.Group("/api/sync")
	syncGroup.Use(middleware.AuthMiddleware(cfg))
	{
		syncGroup.POST("/upload", syncHandler.Upload)
		syncGroup.GET("/conversations", syncHandler.Conversations)
		syncGroup.GET("/messages", syncHandler.Messages)
		syncGroup.GET("/fetch", syncHandler.Fetch)
		syncGroup.POST("/mark_read", syncHandler.MarkRead)
		syncGroup.POST("/mark_category_read", syncHandler.MarkCategoryRead)
		syncGroup.GET("/unread_counts", syncHandler.UnreadCounts)
		syncGroup.GET("/status", syncHandler.Status)

		syncGroup.POST("/command", commandHandler.Enqueue)
		syncGroup.GET("/commands", commandHandler.ListPending)
		syncGroup.POST("/command/:id/status", commandHandler.AdvanceStatus)
	}
}

// handleHealthCheck handles the health check endpoint
func handleHealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"time":    time.Now().UTC(),
		"version": version,
		"service": "phone2-server",
	})
}

// StartServer starts the HTTP server and handles graceful shutdown
func StartServer(srv *http.Server) error {
	// Start server in a goroutine
	go func() {
		logger.Info("Starting server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server error", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Create a timeout context for shutdown
	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	return nil
}
