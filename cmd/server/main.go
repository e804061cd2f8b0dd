package main

import (
	"github.com/dreamolight/Phone2/internal/config"
	"github.com/dreamolight/Phone2/pkg/logger"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// version is set at build time via -ldflags
var version = "dev"

func main() {
	// Load .env before config so env overrides pick it up
	_ = godotenv.Load(".env")

	cfg := config.DefaultConfig()

	// Initialize logger
	if err := logger.Init(cfg.Logging.Path, cfg.Logging.Level); err != nil {
		panic(err)
	}
	defer logger.Info("Server shutting down")

	// Setup and start server
	srv, err := SetupServer(cfg)
	if err != nil {
		logger.Fatal("Failed to setup server", zap.Error(err))
	}

	if err := StartServer(srv); err != nil {
		logger.Fatal("Server error", zap.Error(err))
	}
}
