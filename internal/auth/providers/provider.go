package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
)

// Provider names, used in /auth/{name} routes and stored with each link.
const (
	Google = "google"
	GitHub = "github"
)

var ErrUnverifiedEmail = errors.New("provider did not verify the email address")

// OAuthUser is the identity a provider vouches for after the code exchange.
// ID is stable per provider. EmailVerified is only set when the provider
// itself reports Email as verified; accounts are keyed on that address.
type OAuthUser struct {
	ID            string
	Email         string
	EmailVerified bool
	Name          string
	AvatarURL     string
}

// VerifiedEmail returns the normalized address an account may be found or
// created by, or ErrUnverifiedEmail.
func (u *OAuthUser) VerifiedEmail() (string, error) {
	email := strings.ToLower(strings.TrimSpace(u.Email))
	if email == "" || !u.EmailVerified {
		return "", ErrUnverifiedEmail
	}
	return email, nil
}

// Avatar returns the avatar URL, nil when the provider has none.
func (u *OAuthUser) Avatar() *string {
	if u.AvatarURL == "" {
		return nil
	}
	avatar := u.AvatarURL
	return &avatar
}

// OAuthProvider drives one authorization-code login for the account
// service. GetAuthURL embeds the one-time state token; GetUserInfo must
// fill OAuthUser from the provider's own verification data and never mark
// an unverified address as verified.
type OAuthProvider interface {
	Name() string
	GetAuthURL(state string) string
	ExchangeCode(ctx context.Context, code string) (*oauth2.Token, error)
	GetUserInfo(ctx context.Context, token *oauth2.Token) (*OAuthUser, error)
}

// getJSON fetches url with the token-bearing client and decodes a 200 body.
func getJSON(client *http.Client, url string, dst interface{}) error {
	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("request %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s returned status %d", url, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("decode %s: %w", url, err)
	}
	return nil
}
