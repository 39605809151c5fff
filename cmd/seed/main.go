package main

import (
	"log/slog"
	"os"

	"github.com/vocalia/vocalia-backend/internal/config"
	"github.com/vocalia/vocalia-backend/internal/database"
	"github.com/vocalia/vocalia-backend/internal/logging"
	"github.com/vocalia/vocalia-backend/internal/seed"
)

func main() {
	logging.Setup()

	cfg := config.Load()
	if cfg.DBPassword == "" {
		slog.Error("DB_PASSWORD environment variable is required")
		os.Exit(1)
	}

	if err := database.Connect(cfg); err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}

	if err := database.Migrate(); err != nil {
		slog.Error("migration failed", "error", err)
		fail()
	}

	if err := seed.Run(database.DB); err != nil {
		slog.Error("plan seeding failed", "error", err)
		fail()
	}

	slog.Info("plan seeding completed")
	if err := database.Close(); err != nil {
		slog.Error("database close error", "error", err)
	}
}

// fail releases the connection pool before exiting non-zero.
func fail() {
	if err := database.Close(); err != nil {
		slog.Error("database close error", "error", err)
	}
	os.Exit(1)
}
