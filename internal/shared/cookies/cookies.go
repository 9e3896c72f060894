package cookies

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"birthchart-server/internal/shared/config"
)

// AuthCookieName is the cookie carrying the session JWT.
const AuthCookieName = "auth_token"

// SetAuthCookie stores a session token for as long as the token is valid.
func SetAuthCookie(w http.ResponseWriter, token string) {
	ttl := config.GlobalConfig.Auth.TokenExpiration

	cookie := authCookie()
	cookie.Value = token
	cookie.MaxAge = int(ttl.Seconds())
	cookie.Expires = time.Now().Add(ttl)

	http.SetCookie(w, cookie)
}

func ClearAuthCookie(w http.ResponseWriter) {
	cookie := authCookie()
	cookie.MaxAge = -1
	cookie.Expires = time.Unix(0, 0)

	http.SetCookie(w, cookie)
}

// AuthToken returns the session token from the auth cookie, or from an
// "Authorization: Bearer" header for API clients that keep the access_token
// returned by /login.
func AuthToken(r *http.Request) (string, bool) {
	if cookie, err := r.Cookie(AuthCookieName); err == nil && cookie.Value != "" {
		return cookie.Value, true
	}

	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func authCookie() *http.Cookie {
	cfg := config.GlobalConfig
	sameSite := parseSameSite(cfg.Auth.CookieSameSite)

	// browsers drop SameSite=None cookies that are not Secure
	if sameSite == http.SameSiteNoneMode && !cfg.Auth.CookieSecure {
		sameSite = http.SameSiteLaxMode
	}

	return &http.Cookie{
		Name:     AuthCookieName,
		Path:     "/",
		Domain:   cookieDomain(cfg.Frontend.URL),
		HttpOnly: true,
		Secure:   cfg.Auth.CookieSecure,
		SameSite: sameSite,
	}
}

// cookieDomain scopes the cookie to the frontend host. Loopback hosts get a
// host-only cookie.
func cookieDomain(frontendURL string) string {
	u, err := url.Parse(frontendURL)
	if err != nil {
		return ""
	}

	switch host := u.Hostname(); host {
	case "", "localhost", "127.0.0.1", "::1":
		return ""
	default:
		return host
	}
}

func parseSameSite(mode string) http.SameSite {
	switch strings.ToLower(mode) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}
