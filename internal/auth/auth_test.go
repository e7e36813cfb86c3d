package auth

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/mmynk/duespay/internal/models"
	"github.com/mmynk/duespay/internal/storage/sqlite"
)

func newTestAuthenticator(t *testing.T) *PasswordAuthenticator {
	t.Helper()
	store, err := sqlite.New(filepath.Join(t.TempDir(), "auth.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	return NewPasswordAuthenticator(store, WithCost(bcrypt.MinCost))
}

func TestRegisterAndAuthenticate(t *testing.T) {
	a := newTestAuthenticator(t)
	ctx := context.Background()

	user, err := a.Register(ctx, "  Ani@Example.com ", "Ani", "password123")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if user.Email != "ani@example.com" {
		t.Errorf("Email = %q, want normalized", user.Email)
	}
	if user.Role != models.RoleMember {
		t.Errorf("Role = %s, want MEMBER", user.Role)
	}
	if user.PasswordHash == "password123" {
		t.Error("password stored in plain text")
	}

	tests := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{"correct", "ANI@example.com", "password123", nil},
		{"wrong password", "ani@example.com", "password124", ErrInvalidCredentials},
		{"unknown email", "nobody@example.com", "password123", ErrInvalidCredentials},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := a.Authenticate(ctx, tt.email, tt.password)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Authenticate error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr == nil && got.ID != user.ID {
				t.Errorf("authenticated %s, want %s", got.ID, user.ID)
			}
		})
	}
}

func TestRegisterRejects(t *testing.T) {
	a := newTestAuthenticator(t)
	ctx := context.Background()
	if _, err := a.Register(ctx, "ani@example.com", "", "password123"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	tests := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{"duplicate email", "ANI@example.com", "password123", ErrEmailExists},
		{"short password", "budi@example.com", "short", ErrWeakPassword},
		{"malformed email", "budi", "password123", ErrInvalidEmail},
		{"empty email", "", "password123", ErrInvalidEmail},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := a.Register(ctx, tt.email, "", tt.password)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Register error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestEnsureAdmin(t *testing.T) {
	a := newTestAuthenticator(t)
	ctx := context.Background()

	admin, created, err := a.EnsureAdmin(ctx, "admin@example.com", "Admin", "first-password")
	if err != nil {
		t.Fatalf("EnsureAdmin failed: %v", err)
	}
	if !created || admin.Role != models.RoleAdmin {
		t.Fatalf("created=%v role=%s", created, admin.Role)
	}

	again, created, err := a.EnsureAdmin(ctx, "admin@example.com", "", "second-password")
	if err != nil {
		t.Fatalf("EnsureAdmin failed: %v", err)
	}
	if created || again.ID != admin.ID || again.Name != "Admin" {
		t.Errorf("expected the existing admin to be reset, got created=%v %+v", created, again)
	}
	if _, err := a.Authenticate(ctx, "admin@example.com", "first-password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("old password should stop working, got %v", err)
	}
	if _, err := a.Authenticate(ctx, "admin@example.com", "second-password"); err != nil {
		t.Errorf("new password rejected: %v", err)
	}

	member, err := a.Register(ctx, "ani@example.com", "", "password123")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	promoted, _, err := a.EnsureAdmin(ctx, "ani@example.com", "", "password456")
	if err != nil {
		t.Fatalf("EnsureAdmin failed: %v", err)
	}
	if promoted.ID != member.ID || promoted.Role != models.RoleAdmin {
		t.Errorf("expected member to be promoted, got %+v", promoted)
	}
}

func TestJWTManager(t *testing.T) {
	user := &models.User{ID: "user-1", Email: "ani@example.com", Role: models.RoleAdmin}
	manager := NewJWTManager("test-secret", time.Hour)

	token, err := manager.Generate(user)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	t.Run("round trip", func(t *testing.T) {
		claims, err := manager.Validate(token)
		if err != nil {
			t.Fatalf("Validate failed: %v", err)
		}
		if claims.UserID != user.ID || claims.Email != user.Email || !claims.IsAdmin() {
			t.Errorf("unexpected claims: %+v", claims)
		}
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := NewJWTManager("other-secret", time.Hour)
		if _, err := other.Validate(token); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("expected ErrInvalidToken, got %v", err)
		}
	})

	t.Run("expired", func(t *testing.T) {
		late := NewJWTManager("test-secret", time.Hour)
		late.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
		if _, err := late.Validate(token); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("expected ErrInvalidToken, got %v", err)
		}
	})

	t.Run("tampered", func(t *testing.T) {
		parts := strings.Split(token, ".")
		tampered := parts[0] + "." + parts[1] + "x." + parts[2]
		if _, err := manager.Validate(tampered); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("expected ErrInvalidToken, got %v", err)
		}
	})

	t.Run("unknown role", func(t *testing.T) {
		odd, err := manager.Generate(&models.User{ID: "user-2", Role: "OWNER"})
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}
		if _, err := manager.Validate(odd); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("expected ErrInvalidToken, got %v", err)
		}
	})
}
