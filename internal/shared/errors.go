package shared

import "fmt"

var (
	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Token lifecycle errors
	ErrAuthFailed     = fmt.Errorf("authentication failed")
	ErrNoRefreshToken = fmt.Errorf("no refresh token found for this user")
	ErrInvalidToken   = fmt.Errorf("invalid or expired token")

	// API and resource errors
	ErrAPIRequest        = fmt.Errorf("API request failed")
	ErrPlaylistNotFound  = fmt.Errorf("playlist not found")
	ErrInvalidPlaylistID = fmt.Errorf("invalid playlist id")
	ErrTrackNotFound     = fmt.Errorf("track not found")

	// Input validation errors
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrInvalidPlatform = fmt.Errorf("invalid source or destination platform")
)
