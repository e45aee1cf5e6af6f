// package tokens manages the OAuth token lifecycle for streaming platforms.
//
// A [Provider] talks to one platform's authorization server; a [Manager]
// pairs a provider with a credential store and keeps per-user access tokens
// valid, refreshing them on demand.
package tokens

import "context"

// TokenPair is the result of a code exchange or a refresh.
//
// ExpiresIn is relative seconds until the access token expires, never
// negative. RefreshToken may be empty on refresh responses; callers keep the
// previously stored refresh token in that case.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int
}

// Provider exchanges and refreshes tokens against one platform's
// authorization server.
type Provider interface {
	// Exchange trades an authorization code for a token pair.
	Exchange(ctx context.Context, code string) (TokenPair, error)

	// Refresh obtains a new access token using a refresh token.
	Refresh(ctx context.Context, refreshToken string) (TokenPair, error)

	// AuthURL returns the authorization URL a user visits to grant access.
	AuthURL(state string) string
}
