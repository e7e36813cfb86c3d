package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/mmynk/duespay/internal/models"
	"github.com/mmynk/duespay/internal/storage"
)

// ListUsers returns all users with their bill and payment counts.
func (l *Ledger) ListUsers(ctx context.Context) ([]*models.UserSummary, error) {
	users, err := l.store.ListUsers(ctx)
	if err != nil {
		l.logger.Error("Failed to list users", "error", err)
		return nil, err
	}
	return users, nil
}

// UpdateUserInput holds the fields an administrator may change.
type UpdateUserInput struct {
	Name  string
	Email string
	Role  models.Role
}

// UpdateUser changes a user's name, email and role. The email must not belong
// to another user.
func (l *Ledger) UpdateUser(ctx context.Context, userID string, in UpdateUserInput) (*models.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Role = models.Role(strings.ToUpper(strings.TrimSpace(string(in.Role))))

	switch {
	case in.Email == "":
		return nil, invalid("email", "required")
	case !validEmail(in.Email):
		return nil, invalid("email", "malformed address")
	case !in.Role.Valid():
		return nil, invalid("role", fmt.Sprintf("unsupported role %q", in.Role))
	}

	var user *models.User
	err := l.store.WithTx(ctx, func(tx storage.Store) error {
		var err error
		user, err = tx.GetUserByID(ctx, userID)
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrUserNotFound, userID)
		}
		if err != nil {
			return err
		}

		other, err := tx.GetUserByEmail(ctx, in.Email)
		switch {
		case err == nil && other.ID != user.ID:
			return fmt.Errorf("%w: %s", ErrEmailInUse, in.Email)
		case err != nil && !errors.Is(err, storage.ErrNotFound):
			return err
		}

		user.Name = in.Name
		user.Email = in.Email
		user.Role = in.Role
		err = tx.UpdateUser(ctx, user)
		if errors.Is(err, storage.ErrConflict) {
			return fmt.Errorf("%w: %s", ErrEmailInUse, in.Email)
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	l.logger.Info("User updated", "user_id", user.ID, "email", user.Email, "role", user.Role)
	return user, nil
}

var validate = validator.New()

func validEmail(s string) bool {
	return validate.Var(s, "email") == nil
}
