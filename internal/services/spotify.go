// Spotify Web API implementation of [PlaylistClient]
//
// Response types based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/playlistbridge/playlistbridge/internal/shared"
)

const spotifyBaseURL = "https://api.spotify.com/v1"

// SpotifyImage represents an image resource.
type SpotifyImage struct {
	URL    string `json:"url"`
	Height int    `json:"height"`
	Width  int    `json:"width"`
}

// SpotifyArtist represents a Spotify artist.
type SpotifyArtist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URI  string `json:"uri"`
}

// SpotifyAlbum represents a Spotify album.
type SpotifyAlbum struct {
	ID     string         `json:"id"`
	Name   string         `json:"name"`
	Images []SpotifyImage `json:"images"`
	URI    string         `json:"uri"`
}

type externalIDs struct {
	ISRC string `json:"isrc"`
}

// SpotifyTrack represents a Spotify track.
type SpotifyTrack struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Artists     []SpotifyArtist `json:"artists"`
	Album       SpotifyAlbum    `json:"album"`
	DurationMS  int             `json:"duration_ms"`
	ExternalIDs externalIDs     `json:"external_ids"`
	URI         string          `json:"uri"`
}

type spotifyOwner struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

type spotifyTrackRef struct {
	Total int `json:"total"`
}

// SpotifyPlaylist represents a Spotify playlist.
type SpotifyPlaylist struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Owner       spotifyOwner    `json:"owner"`
	Public      bool            `json:"public"`
	Tracks      spotifyTrackRef `json:"tracks"`
	URI         string          `json:"uri"`
}

// SpotifyPlaylistTrack represents a track within a playlist context.
type SpotifyPlaylistTrack struct {
	AddedAt string       `json:"added_at"`
	Track   SpotifyTrack `json:"track"`
}

// SpotifyPaginatedPlaylistTracks represents one page of playlist tracks.
type SpotifyPaginatedPlaylistTracks struct {
	Items  []SpotifyPlaylistTrack `json:"items"`
	Total  int                    `json:"total"`
	Limit  int                    `json:"limit"`
	Offset int                    `json:"offset"`
	Next   *string                `json:"next"`
}

// SpotifyPaginatedPlaylists represents one page of the user's playlists.
type SpotifyPaginatedPlaylists struct {
	Items  []SpotifyPlaylist `json:"items"`
	Total  int               `json:"total"`
	Limit  int               `json:"limit"`
	Offset int               `json:"offset"`
	Next   *string           `json:"next"`
}

// SpotifyClient implements [PlaylistClient] against the Spotify Web API.
type SpotifyClient struct {
	baseURL    string
	tokens     AccessTokenProvider
	httpClient *http.Client
}

// NewSpotifyClient creates a Spotify client authenticating through tokens.
func NewSpotifyClient(tokens AccessTokenProvider) *SpotifyClient {
	return &SpotifyClient{
		baseURL:    spotifyBaseURL,
		tokens:     tokens,
		httpClient: http.DefaultClient,
	}
}

// Name returns the platform display name.
func (s *SpotifyClient) Name() string {
	return "Spotify"
}

// doRequest performs an authenticated request against the Spotify API.
func (s *SpotifyClient) doRequest(ctx context.Context, userID, method, endpoint string, body, result any) error {
	token, err := s.tokens.GetValidAccessToken(ctx, userID)
	if err != nil {
		return err
	}

	var reqBody *bytes.Buffer
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewBuffer(data)
	} else {
		reqBody = &bytes.Buffer{}
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+endpoint, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return s.apiError(resp)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// apiError maps a Spotify error response onto the shared error taxonomy.
func (s *SpotifyClient) apiError(resp *http.Response) error {
	var errResp struct {
		Error struct {
			Status  int    `json:"status"`
			Message string `json:"message"`
		} `json:"error"`
	}
	msg := ""
	if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil {
		msg = errResp.Error.Message
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: spotify: %s", shared.ErrPlaylistNotFound, msg)
	case resp.StatusCode == http.StatusBadRequest:
		return fmt.Errorf("%w: spotify: %s", shared.ErrInvalidPlaylistID, msg)
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w: spotify: status %d: %s", shared.ErrAuthFailed, resp.StatusCode, msg)
	default:
		return fmt.Errorf("%w: spotify: status %d: %s", shared.ErrAPIRequest, resp.StatusCode, msg)
	}
}

// GetPlaylist retrieves a playlist's metadata.
func (s *SpotifyClient) GetPlaylist(ctx context.Context, userID, playlistID string) (*Playlist, error) {
	var sp SpotifyPlaylist
	endpoint := fmt.Sprintf("/playlists/%s", url.PathEscape(playlistID))
	if err := s.doRequest(ctx, userID, http.MethodGet, endpoint, nil, &sp); err != nil {
		return nil, err
	}

	return &Playlist{
		ID:          sp.ID,
		Name:        sp.Name,
		Description: sp.Description,
		TrackCount:  sp.Tracks.Total,
		Public:      sp.Public,
	}, nil
}

// GetPlaylistTracks retrieves all tracks in a playlist, following pagination.
func (s *SpotifyClient) GetPlaylistTracks(ctx context.Context, userID, playlistID string) ([]Track, error) {
	var tracks []Track
	offset := 0

	for {
		endpoint := fmt.Sprintf("/playlists/%s/tracks?limit=100&offset=%d", url.PathEscape(playlistID), offset)

		var page SpotifyPaginatedPlaylistTracks
		if err := s.doRequest(ctx, userID, http.MethodGet, endpoint, nil, &page); err != nil {
			return nil, err
		}

		for _, item := range page.Items {
			if item.Track.ID == "" {
				continue // local or removed tracks have no usable ID
			}
			tracks = append(tracks, toTrack(item.Track))
		}

		if page.Next == nil || len(page.Items) == 0 {
			break
		}
		offset += len(page.Items)
	}

	return tracks, nil
}

func toTrack(st SpotifyTrack) Track {
	track := Track{
		ID:       st.ID,
		Title:    st.Name,
		Album:    st.Album.Name,
		Duration: st.DurationMS / 1000,
		ISRC:     st.ExternalIDs.ISRC,
	}
	if len(st.Artists) > 0 {
		track.Artist = st.Artists[0].Name
	}
	return track
}

// currentProfileID returns the Spotify account id behind the user's token.
// Playlist creation is addressed per account, not per token.
func (s *SpotifyClient) currentProfileID(ctx context.Context, userID string) (string, error) {
	var me struct {
		ID string `json:"id"`
	}
	if err := s.doRequest(ctx, userID, http.MethodGet, "/me", nil, &me); err != nil {
		return "", err
	}
	return me.ID, nil
}

// CreatePlaylist creates a private playlist for the user.
func (s *SpotifyClient) CreatePlaylist(ctx context.Context, userID, name, description string) (*Playlist, error) {
	profileID, err := s.currentProfileID(ctx, userID)
	if err != nil {
		return nil, err
	}

	body := struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		Public      bool   `json:"public"`
	}{
		Name:        name,
		Description: description,
	}

	endpoint := fmt.Sprintf("/users/%s/playlists", url.PathEscape(profileID))
	var sp SpotifyPlaylist
	if err := s.doRequest(ctx, userID, http.MethodPost, endpoint, body, &sp); err != nil {
		return nil, err
	}

	return &Playlist{
		ID:          sp.ID,
		Name:        sp.Name,
		Description: sp.Description,
		Public:      sp.Public,
	}, nil
}

// SearchTrack finds the best Spotify match for a track by title and artist.
func (s *SpotifyClient) SearchTrack(ctx context.Context, userID, title, artist string) (*Track, bool, error) {
	query := title
	if artist != "" {
		query = fmt.Sprintf("track:%s artist:%s", title, artist)
	}

	endpoint := fmt.Sprintf("/search?q=%s&type=track&limit=1", url.QueryEscape(query))

	var response struct {
		Tracks struct {
			Items []SpotifyTrack `json:"items"`
		} `json:"tracks"`
	}

	if err := s.doRequest(ctx, userID, http.MethodGet, endpoint, nil, &response); err != nil {
		return nil, false, err
	}

	if len(response.Tracks.Items) == 0 {
		return nil, false, nil
	}

	track := toTrack(response.Tracks.Items[0])
	return &track, true, nil
}

// AddTrackToPlaylist appends a track to a playlist.
func (s *SpotifyClient) AddTrackToPlaylist(ctx context.Context, userID, playlistID, trackID string) error {
	body := struct {
		URIs []string `json:"uris"`
	}{
		URIs: []string{"spotify:track:" + trackID},
	}

	endpoint := fmt.Sprintf("/playlists/%s/tracks", url.PathEscape(playlistID))
	return s.doRequest(ctx, userID, http.MethodPost, endpoint, body, nil)
}

// ListPlaylists retrieves the user's playlists, following pagination.
func (s *SpotifyClient) ListPlaylists(ctx context.Context, userID string) ([]Playlist, error) {
	var playlists []Playlist
	offset := 0

	for {
		endpoint := fmt.Sprintf("/me/playlists?limit=50&offset=%d", offset)

		var page SpotifyPaginatedPlaylists
		if err := s.doRequest(ctx, userID, http.MethodGet, endpoint, nil, &page); err != nil {
			return nil, err
		}

		for _, sp := range page.Items {
			playlists = append(playlists, Playlist{
				ID:          sp.ID,
				Name:        sp.Name,
				Description: sp.Description,
				TrackCount:  sp.Tracks.Total,
				Public:      sp.Public,
			})
		}

		if page.Next == nil || len(page.Items) == 0 {
			break
		}
		offset += len(page.Items)
	}

	return playlists, nil
}
