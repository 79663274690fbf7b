package config

import (
	"os"

	"github.com/joho/godotenv"

	"gitlab.connectwisedev.com/product-catalog/pkg/logger"
)

// LoadEnv loads environment variables from .env.local if APP_ENV is "local"
func LoadEnv() {
	appEnv := os.Getenv("APP_ENV")
	if appEnv == "" {
		appEnv = "development" // Default to development if not set
		os.Setenv("APP_ENV", appEnv)
	}

	if appEnv != "local" {
		logger.Debug("not loading .env.local", "app_env", appEnv)
		return
	}

	// Existing variables win over the file, so a shell export can override it.
	if err := godotenv.Load(".env.local"); err != nil {
		logger.Warn(".env.local not loaded, relying on system environment", "error", err)
		return
	}
	logger.Info("loaded .env.local for local development")
}
