package providers

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"golang.org/x/oauth2"
)

const githubAPIURL = "https://api.github.com"

type githubUserInfo struct {
	ID        int    `json:"id"`
	Login     string `json:"login"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url"`
}

type githubEmail struct {
	Email    string `json:"email"`
	Primary  bool   `json:"primary"`
	Verified bool   `json:"verified"`
}

type GitHubProvider struct {
	config *oauth2.Config
	apiURL string
}

func NewGitHubProvider(config *oauth2.Config) *GitHubProvider {
	return &GitHubProvider{config: config, apiURL: githubAPIURL}
}

func (p *GitHubProvider) Name() string {
	return GitHub
}

func (p *GitHubProvider) GetAuthURL(state string) string {
	return p.config.AuthCodeURL(state)
}

func (p *GitHubProvider) ExchangeCode(ctx context.Context, code string) (*oauth2.Token, error) {
	token, err := p.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
	}
	return token, nil
}

// GetUserInfo reads the profile and picks the primary verified address from
// the emails endpoint, falling back to any verified one. The profile's public
// email is not trusted as verified.
func (p *GitHubProvider) GetUserInfo(ctx context.Context, token *oauth2.Token) (*OAuthUser, error) {
	logger := slog.With("provider", GitHub, "operation", "get_user_info")
	client := p.config.Client(ctx, token)

	var info githubUserInfo
	if err := getJSON(client, p.apiURL+"/user", &info); err != nil {
		logger.Error("Failed to fetch GitHub user info", "error", err)
		return nil, err
	}
	if info.ID == 0 {
		return nil, fmt.Errorf("github user info missing user ID")
	}

	user := &OAuthUser{
		ID:        strconv.Itoa(info.ID),
		Email:     info.Email,
		Name:      info.Name,
		AvatarURL: info.AvatarURL,
	}
	if user.Name == "" {
		user.Name = info.Login
	}

	var emails []githubEmail
	if err := getJSON(client, p.apiURL+"/user/emails", &emails); err != nil {
		logger.Warn("Failed to fetch GitHub emails", "error", err)
		return user, nil
	}

	if email, ok := pickGitHubEmail(emails); ok {
		user.Email = email
		user.EmailVerified = true
	}

	logger.Debug("Retrieved GitHub user info",
		"github_user_id", info.ID,
		"email_count", len(emails),
		"verified", user.EmailVerified)

	return user, nil
}

func pickGitHubEmail(emails []githubEmail) (string, bool) {
	for _, e := range emails {
		if e.Primary && e.Verified {
			return e.Email, true
		}
	}
	for _, e := range emails {
		if e.Verified {
			return e.Email, true
		}
	}
	return "", false
}
