package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"birthchart-server/internal/auth"
	"birthchart-server/internal/shared/cookies"
	"birthchart-server/internal/shared/errors"
	"birthchart-server/internal/shared/response"
	"birthchart-server/internal/shared/validation"
	"birthchart-server/internal/user"
)

const maxAccountBody = 1 << 16

type registerRequest struct {
	Username string `json:"username" validate:"required,min=3,max=80,alphanum"`
	Email    string `json:"email" validate:"required,email,max=120"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	AccessToken string     `json:"access_token"`
	User        *user.User `json:"user"`
}

// AccountHandler serves local username/password accounts.
type AccountHandler struct {
	users       *user.Service
	authService *auth.Service
}

func NewAccountHandler(users *user.Service, authService *auth.Service) *AccountHandler {
	return &AccountHandler{users: users, authService: authService}
}

func (h *AccountHandler) Register(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "register")

	var req registerRequest
	if err := decodeBody(w, r, &req); err != nil {
		response.Error(w, r, logger, err)
		return
	}
	if err := validation.Struct(r.Context(), &req); err != nil {
		response.Error(w, r, logger, err)
		return
	}

	u, err := h.users.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusCreated, u)
}

func (h *AccountHandler) Login(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "login")

	var req loginRequest
	if err := decodeBody(w, r, &req); err != nil {
		response.Error(w, r, logger, err)
		return
	}
	if err := validation.Struct(r.Context(), &req); err != nil {
		response.Error(w, r, logger, err)
		return
	}

	u, err := h.users.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	token, err := h.authService.IssueToken(u)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	cookies.SetAuthCookie(w, token)
	response.Success(w, http.StatusOK, loginResponse{AccessToken: token, User: u})
}

// Logout clears the session cookie. It needs no account backend.
func Logout(w http.ResponseWriter, r *http.Request) {
	cookies.ClearAuthCookie(w)
	response.Success(w, http.StatusOK, map[string]string{"message": "logged out"})
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxAccountBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return errors.Validationf("invalid request body: %v", err)
	}
	return nil
}
