// Package auth issues session tokens and checks passwords.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/mmynk/duespay/internal/models"
	"github.com/mmynk/duespay/internal/storage"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrEmailExists        = errors.New("email already registered")
)

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 8

// Authenticator registers and verifies accounts.
type Authenticator interface {
	// Register creates a MEMBER account.
	Register(ctx context.Context, email, name, credential string) (*models.User, error)

	// Authenticate returns the user when the credential matches.
	Authenticate(ctx context.Context, email, credential string) (*models.User, error)
}

// UserStorage is the subset of storage.Store the authenticator needs.
type UserStorage interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateUser(ctx context.Context, user *models.User) error
}

var _ Authenticator = (*PasswordAuthenticator)(nil)

// PasswordAuthenticator implements password-based authentication using bcrypt.
type PasswordAuthenticator struct {
	storage  UserStorage
	validate *validator.Validate
	cost     int
}

// Option configures a PasswordAuthenticator.
type Option func(*PasswordAuthenticator)

// WithCost sets the bcrypt cost. Values outside bcrypt's range are ignored.
func WithCost(cost int) Option {
	return func(a *PasswordAuthenticator) {
		if cost >= bcrypt.MinCost && cost <= bcrypt.MaxCost {
			a.cost = cost
		}
	}
}

// NewPasswordAuthenticator creates a new password-based authenticator.
func NewPasswordAuthenticator(storage UserStorage, opts ...Option) *PasswordAuthenticator {
	a := &PasswordAuthenticator{
		storage:  storage,
		validate: validator.New(),
		cost:     bcrypt.DefaultCost,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// NormalizeEmail lowercases and trims an address. Emails are stored normalized.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (a *PasswordAuthenticator) checkInput(email, credential string) error {
	if err := a.validate.Var(email, "required,email"); err != nil {
		return ErrInvalidEmail
	}
	if len(credential) < MinPasswordLength {
		return ErrWeakPassword
	}
	return nil
}

func (a *PasswordAuthenticator) hash(credential string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(credential), a.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

// Register creates a MEMBER account with a hashed password.
func (a *PasswordAuthenticator) Register(ctx context.Context, email, name, credential string) (*models.User, error) {
	email = NormalizeEmail(email)
	if err := a.checkInput(email, credential); err != nil {
		return nil, err
	}

	hashed, err := a.hash(credential)
	if err != nil {
		return nil, err
	}

	user := models.NewUser(email, strings.TrimSpace(name), hashed)
	err = a.storage.CreateUser(ctx, user)
	if errors.Is(err, storage.ErrConflict) {
		return nil, ErrEmailExists
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// Authenticate verifies the email and password. Unknown emails and wrong
// passwords are indistinguishable to the caller.
func (a *PasswordAuthenticator) Authenticate(ctx context.Context, email, credential string) (*models.User, error) {
	user, err := a.storage.GetUserByEmail(ctx, NormalizeEmail(email))
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(credential)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// EnsureAdmin creates an ADMIN account, or promotes and resets the password
// of an existing one. It reports whether the account was created.
func (a *PasswordAuthenticator) EnsureAdmin(ctx context.Context, email, name, credential string) (*models.User, bool, error) {
	email = NormalizeEmail(email)
	if err := a.checkInput(email, credential); err != nil {
		return nil, false, err
	}
	hashed, err := a.hash(credential)
	if err != nil {
		return nil, false, err
	}

	user, err := a.storage.GetUserByEmail(ctx, email)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		user = models.NewUser(email, strings.TrimSpace(name), hashed)
		user.Role = models.RoleAdmin
		if err := a.storage.CreateUser(ctx, user); err != nil {
			return nil, false, fmt.Errorf("failed to create admin: %w", err)
		}
		return user, true, nil
	case err != nil:
		return nil, false, fmt.Errorf("failed to load user: %w", err)
	}

	user.Role = models.RoleAdmin
	user.PasswordHash = hashed
	if name = strings.TrimSpace(name); name != "" {
		user.Name = name
	}
	if err := a.storage.UpdateUser(ctx, user); err != nil {
		return nil, false, fmt.Errorf("failed to update admin: %w", err)
	}
	return user, false, nil
}
