package handlers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"birthchart-server/internal/auth"
	"birthchart-server/internal/middleware"
	"birthchart-server/internal/shared/errors"
	"birthchart-server/internal/user"
)

type singleUser struct {
	u *user.User
}

func (s singleUser) Create(context.Context, *user.User) error { return nil }

func (s singleUser) FindByEmail(context.Context, string) (*user.User, error) {
	return nil, errors.WrapNotFound("user not found", user.ErrUserNotFound)
}

func (s singleUser) GetByID(_ context.Context, id int) (*user.User, error) {
	if id == s.u.ID {
		return s.u, nil
	}
	return nil, errors.WrapNotFound("user not found", user.ErrUserNotFound)
}

func (s singleUser) UsernameExists(context.Context, string) (bool, error) { return false, nil }

func TestProfile(t *testing.T) {
	hash := "$2a$10$hash"
	store := singleUser{u: &user.User{ID: 3, Username: "luna", Email: "luna@example.com", PasswordHash: &hash}}
	h := NewProfileHandler(user.NewService(store, slog.New(slog.NewTextHandler(io.Discard, nil))))

	tests := []struct {
		name   string
		claims *auth.Claims
		want   int
	}{
		{"no claims", nil, http.StatusUnauthorized},
		{"deleted user", &auth.Claims{UserID: 99}, http.StatusNotFound},
		{"ok", &auth.Claims{UserID: 3}, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/profile", nil)
			if tt.claims != nil {
				req = req.WithContext(middleware.ContextWithUser(req.Context(), tt.claims))
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d", rec.Code, tt.want)
			}
			if tt.want != http.StatusOK {
				return
			}

			var body map[string]interface{}
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatal(err)
			}
			if body["username"] != "luna" {
				t.Errorf("username = %v", body["username"])
			}
			if _, leaked := body["password_hash"]; leaked {
				t.Error("profile leaks password hash")
			}
		})
	}
}
