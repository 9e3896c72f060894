package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"golang.org/x/oauth2"
)

func TestGitHubUserInfo(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("authorization header = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/user":
			_, _ = w.Write([]byte(`{"id":7,"login":"octo","email":"public@example.com","avatar_url":"http://a/x.png"}`))
		case "/user/emails":
			_, _ = w.Write([]byte(`[{"email":"old@example.com","primary":false,"verified":true},{"email":"main@example.com","primary":true,"verified":true}]`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	p := NewGitHubProvider(&oauth2.Config{})
	p.apiURL = srv.URL

	user, err := p.GetUserInfo(context.Background(), &oauth2.Token{AccessToken: "tok", TokenType: "Bearer"})
	if err != nil {
		t.Fatalf("GetUserInfo: %v", err)
	}
	if user.ID != "7" || user.Name != "octo" {
		t.Errorf("unexpected user: %+v", user)
	}
	if user.Email != "main@example.com" || !user.EmailVerified {
		t.Errorf("email = %q verified=%v, want primary verified address", user.Email, user.EmailVerified)
	}
}

func TestGitHubUnverifiedEmail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/user":
			_, _ = w.Write([]byte(`{"id":7,"login":"octo","email":"public@example.com"}`))
		case "/user/emails":
			_, _ = w.Write([]byte(`[{"email":"public@example.com","primary":true,"verified":false}]`))
		}
	}))
	defer srv.Close()

	p := NewGitHubProvider(&oauth2.Config{})
	p.apiURL = srv.URL

	user, err := p.GetUserInfo(context.Background(), &oauth2.Token{AccessToken: "tok"})
	if err != nil {
		t.Fatalf("GetUserInfo: %v", err)
	}
	if user.EmailVerified {
		t.Error("expected unverified email")
	}
}

func TestGoogleUserInfo(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":"g-1","email":"luna@example.com","verified_email":true,"name":"Luna","picture":"http://p"}`))
	}))
	defer srv.Close()

	p := NewGoogleProvider(&oauth2.Config{})
	p.userInfoURL = srv.URL

	user, err := p.GetUserInfo(context.Background(), &oauth2.Token{AccessToken: "tok"})
	if err != nil {
		t.Fatalf("GetUserInfo: %v", err)
	}
	want := OAuthUser{ID: "g-1", Email: "luna@example.com", EmailVerified: true, Name: "Luna", AvatarURL: "http://p"}
	if *user != want {
		t.Errorf("got %+v, want %+v", *user, want)
	}
}

func TestGoogleUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	p := NewGoogleProvider(&oauth2.Config{})
	p.userInfoURL = srv.URL

	if _, err := p.GetUserInfo(context.Background(), &oauth2.Token{AccessToken: "tok"}); err == nil {
		t.Fatal("expected error on 401")
	}
}

func TestOAuthUserVerifiedEmail(t *testing.T) {
	tests := []struct {
		name    string
		user    OAuthUser
		want    string
		wantErr bool
	}{
		{"verified", OAuthUser{Email: " Luna@Example.com ", EmailVerified: true}, "luna@example.com", false},
		{"unverified", OAuthUser{Email: "luna@example.com"}, "", true},
		{"verified but empty", OAuthUser{EmailVerified: true}, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.user.VerifiedEmail()
			if (err != nil) != tt.wantErr {
				t.Fatalf("VerifiedEmail error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("VerifiedEmail = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestOAuthUserAvatar(t *testing.T) {
	if (&OAuthUser{}).Avatar() != nil {
		t.Error("expected nil avatar")
	}
	u := &OAuthUser{AvatarURL: "http://a/x.png"}
	if got := u.Avatar(); got == nil || *got != "http://a/x.png" {
		t.Errorf("unexpected avatar %v", got)
	}
}

func TestProviderNames(t *testing.T) {
	if NewGoogleProvider(&oauth2.Config{}).Name() != Google || NewGitHubProvider(&oauth2.Config{}).Name() != GitHub {
		t.Fatal("provider names must match the route constants")
	}
}
