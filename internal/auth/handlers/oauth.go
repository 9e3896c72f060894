package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"birthchart-server/internal/auth"
	"birthchart-server/internal/auth/providers"
	"birthchart-server/internal/shared/cookies"
	"birthchart-server/internal/shared/errors"
	"birthchart-server/internal/shared/response"
)

const oauthCallbackTimeout = 30 * time.Second

type OAuthHandler struct {
	provider     providers.OAuthProvider
	authService  *auth.Service
	isConfigured bool
}

func NewOAuthHandler(provider providers.OAuthProvider, authService *auth.Service, isConfigured bool) *OAuthHandler {
	return &OAuthHandler{
		provider:     provider,
		authService:  authService,
		isConfigured: isConfigured,
	}
}

func (h *OAuthHandler) HandleAuth(w http.ResponseWriter, r *http.Request) {
	name := h.provider.Name()
	logger := slog.With("handler", name+"_oauth_init")

	if !h.isConfigured {
		response.Error(w, r, logger, errors.Unavailable(fmt.Sprintf("%s login is not configured", name)))
		return
	}

	redirectURI := resolveRedirectURI(r.URL.Query().Get("redirect_uri"))

	state, err := auth.GenerateOAuthState(name, r.UserAgent(), redirectURI)
	if err != nil {
		response.Error(w, r, logger, errors.WrapInternal("failed to initialize OAuth flow", err))
		return
	}

	http.Redirect(w, r, h.provider.GetAuthURL(state), http.StatusTemporaryRedirect)
}

func (h *OAuthHandler) HandleCallback(w http.ResponseWriter, r *http.Request) {
	name := h.provider.Name()
	query := r.URL.Query()
	code := query.Get("code")
	state := query.Get("state")

	logger := slog.With(
		"handler", name+"_oauth_callback",
		"user_agent", r.UserAgent(),
		"has_code", code != "",
		"has_state", state != "",
	)

	entry, err := auth.ValidateOAuthState(state, name, r.UserAgent())
	if err != nil {
		logger.Warn("OAuth state rejected", "error", err)
		redirectWithError(w, r, "", "invalid_state")
		return
	}
	redirectURI := entry.RedirectURI

	if oauthErr := query.Get("error"); oauthErr != "" {
		logger.Warn("OAuth authorization denied",
			"oauth_error", oauthErr,
			"error_description", query.Get("error_description"))
		redirectWithError(w, r, redirectURI, "oauth_denied")
		return
	}

	if code == "" {
		logger.Error("OAuth callback missing authorization code")
		redirectWithError(w, r, redirectURI, "oauth_error")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), oauthCallbackTimeout)
	defer cancel()

	token, err := h.provider.ExchangeCode(ctx, code)
	if err != nil {
		logger.Error("Failed to exchange authorization code", "error", err)
		redirectWithError(w, r, redirectURI, "oauth_error")
		return
	}

	info, err := h.provider.GetUserInfo(ctx, token)
	if err != nil {
		logger.Error("Failed to get user info", "error", err)
		redirectWithError(w, r, redirectURI, "oauth_error")
		return
	}

	u, err := h.authService.ResolveOAuthUser(ctx, name, info)
	if err != nil {
		if errors.GetType(err) == errors.ErrorTypeUnauthorized {
			logger.Warn("OAuth login rejected", "error", err)
			redirectWithError(w, r, redirectURI, "email_not_verified")
			return
		}
		logger.Error("Failed to resolve user", "error", err)
		redirectWithError(w, r, redirectURI, "database_error")
		return
	}

	jwtToken, err := h.authService.IssueToken(u)
	if err != nil {
		logger.Error("Failed to generate JWT token", "error", err, "user_id", u.ID)
		redirectWithError(w, r, redirectURI, "auth_error")
		return
	}

	cookies.SetAuthCookie(w, jwtToken)

	logger.Info("OAuth authentication successful", "user_id", u.ID, "username", u.Username)
	http.Redirect(w, r, redirectURI+"/auth/callback?success=true", http.StatusTemporaryRedirect)
}
