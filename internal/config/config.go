// Package config loads server settings from the environment, optionally
// seeded from .env files.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds every runtime setting.
type Config struct {
	Port int `validate:"min=1,max=65535"`

	DBDriver    string `validate:"oneof=sqlite postgres"`
	DBPath      string `validate:"required_if=DBDriver sqlite"`
	DatabaseURL string `validate:"required_if=DBDriver postgres"`

	JWTSecret string        `validate:"required,min=16"`
	TokenTTL  time.Duration `validate:"min=1m"`

	ReceiptDir      string `validate:"required"`
	ReceiptMaxBytes int64  `validate:"min=1"`

	LogLevel  string `validate:"oneof=debug info warn error"`
	LogFormat string `validate:"oneof=text json"`

	// Used by cmd/create-admin only.
	AdminEmail    string
	AdminPassword string
	AdminName     string
}

// Defaults used when a variable is unset.
const (
	DefaultPort            = 8080
	DefaultDBPath          = "./data/duespay.db"
	DefaultTokenTTL        = 24 * time.Hour
	DefaultReceiptDir      = "./data/receipts"
	DefaultReceiptMaxBytes = 3 << 20
)

var validate = validator.New()

// Load reads .env files (default ".env"; missing files are skipped), then the
// process environment. Variables already set in the environment win over .env.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return FromLookup(os.Getenv)
}

// FromLookup builds a Config from getenv and validates it.
func FromLookup(getenv func(string) string) (*Config, error) {
	get := func(key, fallback string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return fallback
	}

	port, err := strconv.Atoi(get("PORT", strconv.Itoa(DefaultPort)))
	if err != nil {
		return nil, fmt.Errorf("PORT: %w", err)
	}
	ttl, err := time.ParseDuration(get("TOKEN_TTL", DefaultTokenTTL.String()))
	if err != nil {
		return nil, fmt.Errorf("TOKEN_TTL: %w", err)
	}
	maxBytes, err := strconv.ParseInt(get("RECEIPT_MAX_BYTES", strconv.Itoa(DefaultReceiptMaxBytes)), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("RECEIPT_MAX_BYTES: %w", err)
	}

	cfg := &Config{
		Port:            port,
		DBDriver:        strings.ToLower(get("DB_DRIVER", "sqlite")),
		DBPath:          get("DB_PATH", DefaultDBPath),
		DatabaseURL:     get("DATABASE_URL", ""),
		JWTSecret:       get("JWT_SECRET", ""),
		TokenTTL:        ttl,
		ReceiptDir:      get("RECEIPT_DIR", DefaultReceiptDir),
		ReceiptMaxBytes: maxBytes,
		LogLevel:        strings.ToLower(get("LOG_LEVEL", "info")),
		LogFormat:       strings.ToLower(get("LOG_FORMAT", "text")),
		AdminEmail:      get("ADMIN_EMAIL", ""),
		AdminPassword:   getenv("ADMIN_PASSWORD"),
		AdminName:       get("ADMIN_NAME", "Administrator"),
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, describe(err)
	}
	return cfg, nil
}

// Addr is the listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// envNames maps struct fields back to the variables that set them.
var envNames = map[string]string{
	"Port":            "PORT",
	"DBDriver":        "DB_DRIVER",
	"DBPath":          "DB_PATH",
	"DatabaseURL":     "DATABASE_URL",
	"JWTSecret":       "JWT_SECRET",
	"TokenTTL":        "TOKEN_TTL",
	"ReceiptDir":      "RECEIPT_DIR",
	"ReceiptMaxBytes": "RECEIPT_MAX_BYTES",
	"LogLevel":        "LOG_LEVEL",
	"LogFormat":       "LOG_FORMAT",
}

func describe(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		name := envNames[fe.Field()]
		if name == "" {
			name = fe.Field()
		}
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s: failed %s=%s", name, fe.Tag(), fe.Param()))
		} else {
			msgs = append(msgs, fmt.Sprintf("%s: failed %s", name, fe.Tag()))
		}
	}
	return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
}
