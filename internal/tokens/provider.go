package tokens

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/playlistbridge/playlistbridge/internal/shared"
	"golang.org/x/oauth2"
)

const (
	spotifyAuthURL  = "https://accounts.spotify.com/authorize"
	spotifyTokenURL = "https://accounts.spotify.com/api/token"

	googleAuthURL  = "https://accounts.google.com/o/oauth2/auth"
	googleTokenURL = "https://oauth2.googleapis.com/token"
)

// OAuthProvider implements [Provider] on top of an [oauth2.Config].
type OAuthProvider struct {
	config *oauth2.Config
	now    func() time.Time
}

// NewSpotifyProvider creates a provider for the Spotify Accounts service.
func NewSpotifyProvider(creds shared.OAuthClientConfig) (*OAuthProvider, error) {
	if creds.ClientID == "" || creds.ClientSecret == "" {
		return nil, fmt.Errorf("%w: spotify client id and secret are required", shared.ErrMissingCredentials)
	}

	return &OAuthProvider{
		config: &oauth2.Config{
			ClientID:     creds.ClientID,
			ClientSecret: creds.ClientSecret,
			RedirectURL:  creds.RedirectURI,
			Scopes: []string{
				"playlist-read-private",
				"playlist-read-collaborative",
				"playlist-modify-private",
				"playlist-modify-public",
			},
			Endpoint: oauth2.Endpoint{
				AuthURL:  spotifyAuthURL,
				TokenURL: spotifyTokenURL,
			},
		},
		now: time.Now,
	}, nil
}

// NewYouTubeProvider creates a provider for Google's OAuth service scoped to
// the YouTube Data API.
func NewYouTubeProvider(creds shared.OAuthClientConfig) (*OAuthProvider, error) {
	if creds.ClientID == "" || creds.ClientSecret == "" {
		return nil, fmt.Errorf("%w: youtube client id and secret are required", shared.ErrMissingCredentials)
	}

	return &OAuthProvider{
		config: &oauth2.Config{
			ClientID:     creds.ClientID,
			ClientSecret: creds.ClientSecret,
			RedirectURL:  creds.RedirectURI,
			Scopes:       []string{"https://www.googleapis.com/auth/youtube"},
			Endpoint: oauth2.Endpoint{
				AuthURL:  googleAuthURL,
				TokenURL: googleTokenURL,
			},
		},
		now: time.Now,
	}, nil
}

// Exchange trades an authorization code for a token pair.
func (p *OAuthProvider) Exchange(ctx context.Context, code string) (TokenPair, error) {
	token, err := p.config.Exchange(ctx, code)
	if err != nil {
		return TokenPair{}, p.normalizeError("failed to exchange auth code", shared.ErrAuthFailed, err)
	}
	return p.toPair(token), nil
}

// Refresh obtains a new access token using refreshToken. The returned pair's
// RefreshToken is empty when the authorization server did not rotate it.
func (p *OAuthProvider) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	src := p.config.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})
	token, err := src.Token()
	if err != nil {
		return TokenPair{}, p.normalizeError("failed to refresh token", shared.ErrInvalidToken, err)
	}

	pair := p.toPair(token)
	if token.RefreshToken == refreshToken {
		pair.RefreshToken = ""
	}
	return pair, nil
}

// AuthURL returns the authorization URL with offline access requested so the
// platform issues a refresh token.
func (p *OAuthProvider) AuthURL(state string) string {
	return p.config.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// toPair converts an [oauth2.Token] to a [TokenPair], reducing the absolute
// expiry to relative seconds clamped at zero.
func (p *OAuthProvider) toPair(token *oauth2.Token) TokenPair {
	pair := TokenPair{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
	}

	if !token.Expiry.IsZero() {
		if remaining := token.Expiry.Sub(p.now()); remaining > 0 {
			pair.ExpiresIn = int(remaining / time.Second)
		}
	}

	return pair
}

// normalizeError maps authorization server rejections to rejected, the
// sentinel for the credential the caller presented (a bad auth code fails
// authentication, a bad refresh token is a dead credential). Transport and
// malformed-response failures map to [shared.ErrAuthFailed].
func (p *OAuthProvider) normalizeError(msg string, rejected error, err error) error {
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		return fmt.Errorf("%s: %w: %s", msg, rejected, retrieveErr.ErrorCode)
	}
	return fmt.Errorf("%s: %w: %v", msg, shared.ErrAuthFailed, err)
}
