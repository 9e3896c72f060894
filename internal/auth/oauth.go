package auth

import (
	"log/slog"

	"birthchart-server/internal/auth/providers"
	"birthchart-server/internal/shared/config"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
	"golang.org/x/oauth2/google"
)

// ConfiguredProvider pairs a login provider with whether its client
// credentials are present.
type ConfiguredProvider struct {
	Provider   providers.OAuthProvider
	Configured bool
}

func InitOAuth() []ConfiguredProvider {
	cfg := config.GlobalConfig
	logger := slog.With("component", "oauth", "operation", "init")

	googleConfig := &oauth2.Config{
		ClientID:     cfg.OAuth.Google.ClientID,
		ClientSecret: cfg.OAuth.Google.ClientSecret,
		RedirectURL:  cfg.OAuth.Google.RedirectURL,
		Scopes:       cfg.OAuth.Google.Scopes,
		Endpoint:     google.Endpoint,
	}

	githubConfig := &oauth2.Config{
		ClientID:     cfg.OAuth.GitHub.ClientID,
		ClientSecret: cfg.OAuth.GitHub.ClientSecret,
		RedirectURL:  cfg.OAuth.GitHub.RedirectURL,
		Scopes:       cfg.OAuth.GitHub.Scopes,
		Endpoint:     github.Endpoint,
	}

	configured := []ConfiguredProvider{
		{Provider: providers.NewGoogleProvider(googleConfig), Configured: cfg.GoogleOAuthConfigured()},
		{Provider: providers.NewGitHubProvider(githubConfig), Configured: cfg.GitHubOAuthConfigured()},
	}

	for _, cp := range configured {
		if !cp.Configured {
			logger.Warn("OAuth provider not configured, missing client credentials", "provider", cp.Provider.Name())
		}
	}

	logger.Info("OAuth configuration completed",
		"server_url", cfg.Server.URL,
		"google_configured", configured[0].Configured,
		"github_configured", configured[1].Configured,
	)

	return configured
}
