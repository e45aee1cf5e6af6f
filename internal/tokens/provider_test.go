package tokens

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/playlistbridge/playlistbridge/internal/shared"
	"golang.org/x/oauth2"
)

func testProvider(tokenURL string) *OAuthProvider {
	return &OAuthProvider{
		config: &oauth2.Config{
			ClientID:     "client-id",
			ClientSecret: "client-secret",
			RedirectURL:  "http://localhost:8216/callback",
			Endpoint: oauth2.Endpoint{
				AuthURL:  "https://auth.example.com/authorize",
				TokenURL: tokenURL,
			},
		},
		now: time.Now,
	}
}

func TestNewProviders(t *testing.T) {
	creds := shared.OAuthClientConfig{
		ClientID:     "id",
		ClientSecret: "secret",
		RedirectURI:  "http://localhost:8216/auth/spotify/callback",
	}

	t.Run("spotify", func(t *testing.T) {
		p, err := NewSpotifyProvider(creds)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		authURL := p.AuthURL("state-token")
		if !strings.Contains(authURL, "accounts.spotify.com") {
			t.Errorf("expected spotify auth host, got %q", authURL)
		}
		if !strings.Contains(authURL, "state=state-token") {
			t.Errorf("expected state parameter, got %q", authURL)
		}
		if !strings.Contains(authURL, "access_type=offline") {
			t.Errorf("expected offline access request, got %q", authURL)
		}
	})

	t.Run("youtube", func(t *testing.T) {
		p, err := NewYouTubeProvider(creds)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(p.AuthURL("s"), "accounts.google.com") {
			t.Error("expected google auth host")
		}
	})

	t.Run("missing credentials", func(t *testing.T) {
		if _, err := NewSpotifyProvider(shared.OAuthClientConfig{}); !errors.Is(err, shared.ErrMissingCredentials) {
			t.Errorf("expected ErrMissingCredentials, got %v", err)
		}
	})
}

func TestOAuthProviderExchange(t *testing.T) {
	t.Run("converts expiry to relative seconds", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := r.ParseForm(); err != nil {
				t.Fatalf("failed to parse form: %v", err)
			}
			if got := r.FormValue("code"); got != "auth-code" {
				t.Errorf("expected auth-code, got %q", got)
			}

			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"access_token":"at","refresh_token":"rt","token_type":"Bearer","expires_in":3600}`)
		}))
		defer ts.Close()

		p := testProvider(ts.URL)
		pair, err := p.Exchange(context.Background(), "auth-code")
		if err != nil {
			t.Fatalf("exchange failed: %v", err)
		}

		if pair.AccessToken != "at" || pair.RefreshToken != "rt" {
			t.Errorf("unexpected pair: %+v", pair)
		}
		if pair.ExpiresIn <= 0 || pair.ExpiresIn > 3600 {
			t.Errorf("expected relative expiry within (0, 3600], got %d", pair.ExpiresIn)
		}
	})

	t.Run("rejected code", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprint(w, `{"error":"invalid_grant"}`)
		}))
		defer ts.Close()

		p := testProvider(ts.URL)
		_, err := p.Exchange(context.Background(), "bad-code")
		if !errors.Is(err, shared.ErrAuthFailed) {
			t.Errorf("expected ErrAuthFailed, got %v", err)
		}
		if errors.Is(err, shared.ErrInvalidToken) {
			t.Errorf("rejected code must not look like a rejected refresh token: %v", err)
		}
	})

	t.Run("unreachable server", func(t *testing.T) {
		p := testProvider("http://127.0.0.1:0/token")
		if _, err := p.Exchange(context.Background(), "code"); !errors.Is(err, shared.ErrAuthFailed) {
			t.Errorf("expected ErrAuthFailed, got %v", err)
		}
	})
}

func TestOAuthProviderRefresh(t *testing.T) {
	t.Run("unrotated refresh token is omitted", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := r.ParseForm(); err != nil {
				t.Fatalf("failed to parse form: %v", err)
			}
			if got := r.FormValue("grant_type"); got != "refresh_token" {
				t.Errorf("expected refresh_token grant, got %q", got)
			}

			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"access_token":"fresh","token_type":"Bearer","expires_in":1800}`)
		}))
		defer ts.Close()

		p := testProvider(ts.URL)
		pair, err := p.Refresh(context.Background(), "stored-refresh")
		if err != nil {
			t.Fatalf("refresh failed: %v", err)
		}

		if pair.AccessToken != "fresh" {
			t.Errorf("expected fresh access token, got %q", pair.AccessToken)
		}
		if pair.RefreshToken != "" {
			t.Errorf("expected empty refresh token when not rotated, got %q", pair.RefreshToken)
		}
	})

	t.Run("rotated refresh token is returned", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"access_token":"fresh","refresh_token":"rotated","token_type":"Bearer","expires_in":1800}`)
		}))
		defer ts.Close()

		p := testProvider(ts.URL)
		pair, err := p.Refresh(context.Background(), "stored-refresh")
		if err != nil {
			t.Fatalf("refresh failed: %v", err)
		}
		if pair.RefreshToken != "rotated" {
			t.Errorf("expected rotated refresh token, got %q", pair.RefreshToken)
		}
	})

	t.Run("revoked refresh token", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprint(w, `{"error":"invalid_grant","error_description":"Token has been revoked"}`)
		}))
		defer ts.Close()

		p := testProvider(ts.URL)
		if _, err := p.Refresh(context.Background(), "revoked"); !errors.Is(err, shared.ErrInvalidToken) {
			t.Errorf("expected ErrInvalidToken, got %v", err)
		}
	})
}
