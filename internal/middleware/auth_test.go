package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mmynk/duespay/internal/auth"
	"github.com/mmynk/duespay/internal/models"
)

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header  string
		want    string
		wantErr error
	}{
		{"Bearer abc", "abc", nil},
		{"bearer  abc ", "abc", nil},
		{"", "", auth.ErrMissingToken},
		{"Basic abc", "", auth.ErrInvalidToken},
		{"Bearer", "", auth.ErrInvalidToken},
	}
	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			h := http.Header{}
			if tt.header != "" {
				h.Set("Authorization", tt.header)
			}
			got, err := bearerToken(h)
			if !errors.Is(err, tt.wantErr) || got != tt.want {
				t.Errorf("bearerToken(%q) = %q, %v; want %q, %v", tt.header, got, err, tt.want, tt.wantErr)
			}
		})
	}
}

func TestHTTPAuth(t *testing.T) {
	jwtManager := auth.NewJWTManager("test-secret", time.Hour)
	member, _ := jwtManager.Generate(&models.User{ID: "m1", Email: "m@example.com", Role: models.RoleMember})
	admin, _ := jwtManager.Generate(&models.User{ID: "a1", Email: "a@example.com", Role: models.RoleAdmin})

	var seen string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetUserID(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})

	tests := []struct {
		name       string
		admin      bool
		token      string
		wantStatus int
		wantUser   string
	}{
		{"member on member route", false, member, http.StatusNoContent, "m1"},
		{"member on admin route", true, member, http.StatusForbidden, ""},
		{"admin on admin route", true, admin, http.StatusNoContent, "a1"},
		{"no token", false, "", http.StatusUnauthorized, ""},
		{"garbage token", false, "not-a-jwt", http.StatusUnauthorized, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = ""
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			rec := httptest.NewRecorder()

			HTTPAuth(jwtManager, tt.admin, next).ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if seen != tt.wantUser {
				t.Errorf("handler saw user %q, want %q", seen, tt.wantUser)
			}
		})
	}
}
