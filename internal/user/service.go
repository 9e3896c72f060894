package user

import (
	"context"
	"log/slog"
	"strings"

	"birthchart-server/internal/shared/errors"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type Service struct {
	store    Store
	logger   *slog.Logger
	hashCost int
}

func NewService(store Store, logger *slog.Logger) *Service {
	logger.Debug("Initializing user service")

	return &Service{
		store:    store,
		logger:   logger,
		hashCost: bcrypt.DefaultCost,
	}
}

func (s *Service) GetByID(ctx context.Context, id int) (*User, error) {
	return s.store.GetByID(ctx, id)
}

// Register creates a local account with a bcrypt password hash.
func (s *Service) Register(ctx context.Context, username, email, password string) (*User, error) {
	logger := s.logger.With(
		"component", "user_service",
		"operation", "register",
		"username", username,
	)

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		return nil, errors.WrapInternal("failed to hash password", err)
	}
	hashed := string(hash)

	u := &User{
		Username:     username,
		Email:        strings.ToLower(email),
		DisplayName:  username,
		PasswordHash: &hashed,
	}
	if err := s.store.Create(ctx, u); err != nil {
		return nil, err
	}

	logger.Info("User registered", "user_id", u.ID)
	return u, nil
}

// Authenticate checks a local email/password pair. Unknown emails, OAuth-only
// accounts and wrong passwords all produce the same unauthorized error.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	logger := s.logger.With(
		"component", "user_service",
		"operation", "authenticate",
	)

	u, err := s.store.FindByEmail(ctx, strings.ToLower(email))
	if err != nil {
		if errors.GetType(err) == errors.ErrorTypeNotFound {
			return nil, errors.WrapUnauthorized("invalid email or password", ErrInvalidCredentials)
		}
		return nil, err
	}

	if !u.HasPassword() {
		logger.Debug("Login attempt on account without password", "user_id", u.ID)
		return nil, errors.WrapUnauthorized("invalid email or password", ErrInvalidCredentials)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(*u.PasswordHash), []byte(password)); err != nil {
		return nil, errors.WrapUnauthorized("invalid email or password", ErrInvalidCredentials)
	}

	logger.Debug("User authenticated", "user_id", u.ID)
	return u, nil
}

// FindOrCreateByOAuth returns the account registered under email, creating a
// password-less one if none exists.
func (s *Service) FindOrCreateByOAuth(ctx context.Context, provider, email, displayName string, avatarURL *string) (*User, error) {
	logger := s.logger.With(
		"component", "user_service",
		"operation", "find_or_create_oauth",
		"provider", provider,
	)

	email = strings.ToLower(email)
	u, err := s.store.FindByEmail(ctx, email)
	if err == nil {
		logger.Debug("Found existing user by email", "user_id", u.ID)
		return u, nil
	}
	if errors.GetType(err) != errors.ErrorTypeNotFound {
		return nil, err
	}

	username, err := s.availableUsername(ctx, usernameFromEmail(email))
	if err != nil {
		return nil, err
	}
	if displayName == "" {
		displayName = username
	}

	u = &User{
		Username:    username,
		Email:       email,
		DisplayName: displayName,
		AvatarURL:   avatarURL,
	}
	if err := s.store.Create(ctx, u); err != nil {
		return nil, err
	}

	logger.Info("Created user from OAuth login", "user_id", u.ID, "username", u.Username)
	return u, nil
}

func (s *Service) availableUsername(ctx context.Context, base string) (string, error) {
	exists, err := s.store.UsernameExists(ctx, base)
	if err != nil {
		return "", err
	}
	if !exists {
		return base, nil
	}
	return base + "-" + uuid.NewString()[:8], nil
}

func usernameFromEmail(email string) string {
	if idx := strings.Index(email, "@"); idx > 0 {
		return email[:idx]
	}
	return "user"
}
