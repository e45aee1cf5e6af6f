// package services implements playlist clients for streaming platforms.
//
// Spotify talks to the Spotify Web API; YouTube talks to the YouTube Data
// API v3. Both authenticate per user through an [AccessTokenProvider].
package services

import (
	"context"
)

// Platform name constants used in storage keys, routes and reports.
const (
	PlatformSpotify = "spotify"
	PlatformYouTube = "youtube"
)

// AccessTokenProvider yields a live access token for a user on one platform.
//
// Implemented by the token manager; refreshing and storage are its concern.
type AccessTokenProvider interface {
	GetValidAccessToken(ctx context.Context, userID string) (string, error)
}

// PlaylistClient defines the playlist operations a platform must support to
// participate in a migration, as either source or destination.
type PlaylistClient interface {
	// GetPlaylist retrieves a playlist's metadata.
	GetPlaylist(ctx context.Context, userID, playlistID string) (*Playlist, error)

	// GetPlaylistTracks retrieves every track in a playlist, following
	// pagination until exhausted.
	GetPlaylistTracks(ctx context.Context, userID, playlistID string) ([]Track, error)

	// CreatePlaylist creates a private playlist and returns it.
	CreatePlaylist(ctx context.Context, userID, name, description string) (*Playlist, error)

	// SearchTrack finds the best match for a track by title and artist.
	// The second return is false when the platform has no match; that is
	// not an error.
	SearchTrack(ctx context.Context, userID, title, artist string) (*Track, bool, error)

	// AddTrackToPlaylist appends a platform track to a playlist.
	AddTrackToPlaylist(ctx context.Context, userID, playlistID, trackID string) error

	// ListPlaylists retrieves the user's playlists.
	ListPlaylists(ctx context.Context, userID string) ([]Playlist, error)

	// Name returns the display name of the platform (e.g. "Spotify").
	Name() string
}

// Playlist represents a playlist on any platform.
type Playlist struct {
	ID          string
	Name        string
	Description string
	TrackCount  int
	Public      bool
}

// Track represents a track on any platform.
type Track struct {
	ID       string
	Title    string
	Artist   string
	Album    string
	Duration int // seconds
	ISRC     string
}
