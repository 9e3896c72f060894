package handlers

import (
	"net/http"
	"net/url"
	"strings"

	"birthchart-server/internal/shared/config"
)

// redirectWithError sends the browser back to the frontend's auth error page.
func redirectWithError(w http.ResponseWriter, r *http.Request, redirectURI, errorType string) {
	if redirectURI == "" {
		redirectURI = config.GlobalConfig.Frontend.URL
	}
	q := url.Values{}
	q.Set("error", errorType)
	http.Redirect(w, r, strings.TrimRight(redirectURI, "/")+"/auth/error?"+q.Encode(), http.StatusTemporaryRedirect)
}

// resolveRedirectURI accepts a client-supplied redirect only when it shares
// the configured frontend's origin.
func resolveRedirectURI(raw string) string {
	frontend := config.GlobalConfig.Frontend.URL
	if raw == "" {
		return frontend
	}

	want, err := url.Parse(frontend)
	if err != nil {
		return frontend
	}
	got, err := url.Parse(raw)
	if err != nil || got.Scheme != want.Scheme || got.Host != want.Host {
		return frontend
	}
	return strings.TrimRight(raw, "/")
}
