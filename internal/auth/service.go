package auth

import (
	"context"
	"log/slog"

	"birthchart-server/internal/auth/providers"
	"birthchart-server/internal/shared/errors"
	"birthchart-server/internal/user"
)

type Service struct {
	store  ProviderStore
	users  *user.Service
	logger *slog.Logger
}

func NewService(store ProviderStore, users *user.Service, logger *slog.Logger) *Service {
	logger.Debug("Initializing auth service")

	return &Service{
		store:  store,
		users:  users,
		logger: logger,
	}
}

// ResolveOAuthUser maps a provider identity to a local account. A known link
// wins; otherwise the account is found or created by email and linked.
func (s *Service) ResolveOAuthUser(ctx context.Context, provider string, info *providers.OAuthUser) (*user.User, error) {
	logger := s.logger.With(
		"component", "auth_service",
		"operation", "resolve_oauth_user",
		"provider", provider,
		"provider_user_id", info.ID,
	)

	email, err := info.VerifiedEmail()
	if err != nil {
		return nil, errors.WrapUnauthorized("a verified email address is required", err)
	}

	userID, err := s.store.FindUserByAuthProvider(ctx, provider, info.ID)
	if err == nil {
		logger.Debug("Found existing provider link", "user_id", userID)
		return s.users.GetByID(ctx, userID)
	}
	if errors.GetType(err) != errors.ErrorTypeNotFound {
		return nil, err
	}

	u, err := s.users.FindOrCreateByOAuth(ctx, provider, email, info.Name, info.Avatar())
	if err != nil {
		return nil, err
	}

	if err := s.store.CreateAuthProvider(ctx, u.ID, provider, info.ID, email); err != nil {
		return nil, err
	}

	logger.Info("Linked provider to user", "user_id", u.ID)
	return u, nil
}

// IssueToken signs a session token for u.
func (s *Service) IssueToken(u *user.User) (string, error) {
	token, err := GenerateJWT(u.ID, u.Username, u.Email)
	if err != nil {
		return "", errors.WrapInternal("failed to issue token", err)
	}
	return token, nil
}
