// Command create-admin creates the first administrator, or promotes and
// resets an existing account. It reads ADMIN_EMAIL, ADMIN_PASSWORD and
// ADMIN_NAME plus the usual database settings.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"

	"github.com/mmynk/duespay/internal/auth"
	"github.com/mmynk/duespay/internal/config"
	"github.com/mmynk/duespay/internal/storage"
	"github.com/mmynk/duespay/internal/storage/postgres"
	"github.com/mmynk/duespay/internal/storage/sqlite"
	"github.com/mmynk/duespay/pkg/logging"
)

func main() {
	email := flag.String("email", "", "admin email (overrides ADMIN_EMAIL)")
	name := flag.String("name", "", "admin display name (overrides ADMIN_NAME)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}
	logger := logging.Setup(cfg.LogLevel, cfg.LogFormat)

	if *email != "" {
		cfg.AdminEmail = *email
	}
	if *name != "" {
		cfg.AdminName = *name
	}
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		logger.Error("ADMIN_EMAIL and ADMIN_PASSWORD are required")
		os.Exit(2)
	}

	ctx := context.Background()
	var store storage.Store
	if cfg.DBDriver == "postgres" {
		store, err = postgres.New(ctx, cfg.DatabaseURL)
	} else {
		store, err = sqlite.New(cfg.DBPath)
	}
	if err != nil {
		logger.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	user, created, err := auth.NewPasswordAuthenticator(store).EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminName, cfg.AdminPassword)
	if errors.Is(err, auth.ErrWeakPassword) || errors.Is(err, auth.ErrInvalidEmail) {
		logger.Error("Rejected admin credentials", "error", err)
		os.Exit(2)
	}
	if err != nil {
		logger.Error("Failed to create admin", "error", err)
		os.Exit(1)
	}

	if created {
		logger.Info("Admin created", "user_id", user.ID, "email", user.Email)
	} else {
		logger.Info("Existing account promoted to admin", "user_id", user.ID, "email", user.Email)
	}
}
