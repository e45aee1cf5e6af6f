// YouTube Data API v3 implementation of [PlaylistClient]
//
// Response types based on https://developers.google.com/youtube/v3/docs
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/playlistbridge/playlistbridge/internal/shared"
)

const youtubeBaseURL = "https://www.googleapis.com/youtube/v3"

type youtubeResourceID struct {
	Kind    string `json:"kind"`
	VideoID string `json:"videoId"`
}

type youtubeSnippet struct {
	Title                  string            `json:"title"`
	Description            string            `json:"description"`
	ChannelTitle           string            `json:"channelTitle"`
	VideoOwnerChannelTitle string            `json:"videoOwnerChannelTitle"`
	ResourceID             youtubeResourceID `json:"resourceId"`
}

type youtubeStatus struct {
	PrivacyStatus string `json:"privacyStatus"`
}

type youtubeContentDetails struct {
	ItemCount int `json:"itemCount"`
}

// YouTubePlaylist represents a playlist resource.
type YouTubePlaylist struct {
	ID             string                `json:"id"`
	Snippet        youtubeSnippet        `json:"snippet"`
	Status         youtubeStatus         `json:"status"`
	ContentDetails youtubeContentDetails `json:"contentDetails"`
}

// YouTubePlaylistItem represents a video entry within a playlist.
type YouTubePlaylistItem struct {
	ID      string         `json:"id"`
	Snippet youtubeSnippet `json:"snippet"`
}

type youtubePlaylistPage struct {
	Items         []YouTubePlaylist `json:"items"`
	NextPageToken string            `json:"nextPageToken"`
}

type youtubePlaylistItemPage struct {
	Items         []YouTubePlaylistItem `json:"items"`
	NextPageToken string                `json:"nextPageToken"`
}

// YouTubeClient implements [PlaylistClient] against the YouTube Data API v3.
type YouTubeClient struct {
	baseURL    string
	tokens     AccessTokenProvider
	httpClient *http.Client
}

// NewYouTubeClient creates a YouTube client authenticating through tokens.
func NewYouTubeClient(tokens AccessTokenProvider) *YouTubeClient {
	return &YouTubeClient{
		baseURL:    youtubeBaseURL,
		tokens:     tokens,
		httpClient: http.DefaultClient,
	}
}

// Name returns the platform display name.
func (y *YouTubeClient) Name() string {
	return "YouTube"
}

// doRequest performs an authenticated request against the YouTube API.
func (y *YouTubeClient) doRequest(ctx context.Context, userID, method, endpoint string, body, result any) error {
	token, err := y.tokens.GetValidAccessToken(ctx, userID)
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

	req, err := http.NewRequestWithContext(ctx, method, y.baseURL+endpoint, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := y.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return y.apiError(resp)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// apiError maps a YouTube error response onto the shared error taxonomy.
//
// A 403 is an auth failure unless the reason names a quota problem, which is
// an API error the caller may retry later.
func (y *YouTubeClient) apiError(resp *http.Response) error {
	var errResp struct {
		Error struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
			Errors  []struct {
				Reason string `json:"reason"`
			} `json:"errors"`
		} `json:"error"`
	}

	msg, reason := "", ""
	if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil {
		msg = errResp.Error.Message
		if len(errResp.Error.Errors) > 0 {
			reason = errResp.Error.Errors[0].Reason
		}
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: youtube: %s", shared.ErrPlaylistNotFound, msg)
	case resp.StatusCode == http.StatusBadRequest:
		return fmt.Errorf("%w: youtube: %s", shared.ErrInvalidPlaylistID, msg)
	case resp.StatusCode == http.StatusUnauthorized:
		return fmt.Errorf("%w: youtube: %s", shared.ErrAuthFailed, msg)
	case resp.StatusCode == http.StatusForbidden:
		if strings.Contains(reason, "quota") || strings.Contains(reason, "rateLimit") {
			return fmt.Errorf("%w: youtube: %s: %s", shared.ErrAPIRequest, reason, msg)
		}
		return fmt.Errorf("%w: youtube: %s", shared.ErrAuthFailed, msg)
	default:
		return fmt.Errorf("%w: youtube: status %d: %s", shared.ErrAPIRequest, resp.StatusCode, msg)
	}
}

// GetPlaylist retrieves a playlist's metadata.
//
// The list endpoint returns 200 with no items for an unknown ID, which is
// reported as a missing playlist.
func (y *YouTubeClient) GetPlaylist(ctx context.Context, userID, playlistID string) (*Playlist, error) {
	endpoint := fmt.Sprintf("/playlists?part=snippet,status,contentDetails&id=%s", url.QueryEscape(playlistID))

	var page youtubePlaylistPage
	if err := y.doRequest(ctx, userID, http.MethodGet, endpoint, nil, &page); err != nil {
		return nil, err
	}

	if len(page.Items) == 0 {
		return nil, fmt.Errorf("%w: youtube: playlist %s", shared.ErrPlaylistNotFound, playlistID)
	}

	return toPlaylist(page.Items[0]), nil
}

func toPlaylist(yp YouTubePlaylist) *Playlist {
	return &Playlist{
		ID:          yp.ID,
		Name:        yp.Snippet.Title,
		Description: yp.Snippet.Description,
		TrackCount:  yp.ContentDetails.ItemCount,
		Public:      yp.Status.PrivacyStatus == "public",
	}
}

// GetPlaylistTracks retrieves all videos in a playlist, following pagination.
func (y *YouTubeClient) GetPlaylistTracks(ctx context.Context, userID, playlistID string) ([]Track, error) {
	var tracks []Track
	pageToken := ""

	for {
		endpoint := fmt.Sprintf("/playlistItems?part=snippet&playlistId=%s&maxResults=50", url.QueryEscape(playlistID))
		if pageToken != "" {
			endpoint += "&pageToken=" + url.QueryEscape(pageToken)
		}

		var page youtubePlaylistItemPage
		if err := y.doRequest(ctx, userID, http.MethodGet, endpoint, nil, &page); err != nil {
			return nil, err
		}

		for _, item := range page.Items {
			if item.Snippet.ResourceID.VideoID == "" {
				continue
			}
			tracks = append(tracks, Track{
				ID:     item.Snippet.ResourceID.VideoID,
				Title:  item.Snippet.Title,
				Artist: channelArtist(item.Snippet.VideoOwnerChannelTitle),
			})
		}

		if page.NextPageToken == "" {
			break
		}
		pageToken = page.NextPageToken
	}

	return tracks, nil
}

// channelArtist derives an artist name from a video owner channel title.
// Auto-generated music channels carry a " - Topic" suffix.
func channelArtist(channelTitle string) string {
	return strings.TrimSuffix(channelTitle, " - Topic")
}

// CreatePlaylist creates a private playlist for the user.
func (y *YouTubeClient) CreatePlaylist(ctx context.Context, userID, name, description string) (*Playlist, error) {
	body := struct {
		Snippet struct {
			Title       string `json:"title"`
			Description string `json:"description"`
		} `json:"snippet"`
		Status youtubeStatus `json:"status"`
	}{}
	body.Snippet.Title = name
	body.Snippet.Description = description
	body.Status.PrivacyStatus = "private"

	var yp YouTubePlaylist
	if err := y.doRequest(ctx, userID, http.MethodPost, "/playlists?part=snippet,status", body, &yp); err != nil {
		return nil, err
	}

	return toPlaylist(yp), nil
}

// SearchTrack finds the best YouTube match for a track by title and artist.
func (y *YouTubeClient) SearchTrack(ctx context.Context, userID, title, artist string) (*Track, bool, error) {
	query := strings.TrimSpace(title + " " + artist)
	endpoint := fmt.Sprintf("/search?part=snippet&type=video&videoCategoryId=10&maxResults=1&q=%s", url.QueryEscape(query))

	var response struct {
		Items []struct {
			ID struct {
				VideoID string `json:"videoId"`
			} `json:"id"`
			Snippet youtubeSnippet `json:"snippet"`
		} `json:"items"`
	}

	if err := y.doRequest(ctx, userID, http.MethodGet, endpoint, nil, &response); err != nil {
		return nil, false, err
	}

	if len(response.Items) == 0 || response.Items[0].ID.VideoID == "" {
		return nil, false, nil
	}

	item := response.Items[0]
	return &Track{
		ID:     item.ID.VideoID,
		Title:  item.Snippet.Title,
		Artist: channelArtist(item.Snippet.ChannelTitle),
	}, true, nil
}

// AddTrackToPlaylist appends a video to a playlist.
func (y *YouTubeClient) AddTrackToPlaylist(ctx context.Context, userID, playlistID, trackID string) error {
	body := struct {
		Snippet struct {
			PlaylistID string            `json:"playlistId"`
			ResourceID youtubeResourceID `json:"resourceId"`
		} `json:"snippet"`
	}{}
	body.Snippet.PlaylistID = playlistID
	body.Snippet.ResourceID = youtubeResourceID{Kind: "youtube#video", VideoID: trackID}

	return y.doRequest(ctx, userID, http.MethodPost, "/playlistItems?part=snippet", body, nil)
}

// ListPlaylists retrieves the user's playlists, following pagination.
func (y *YouTubeClient) ListPlaylists(ctx context.Context, userID string) ([]Playlist, error) {
	var playlists []Playlist
	pageToken := ""

	for {
		endpoint := "/playlists?part=snippet,status,contentDetails&mine=true&maxResults=50"
		if pageToken != "" {
			endpoint += "&pageToken=" + url.QueryEscape(pageToken)
		}

		var page youtubePlaylistPage
		if err := y.doRequest(ctx, userID, http.MethodGet, endpoint, nil, &page); err != nil {
			return nil, err
		}

		for _, yp := range page.Items {
			playlists = append(playlists, *toPlaylist(yp))
		}

		if page.NextPageToken == "" {
			break
		}
		pageToken = page.NextPageToken
	}

	return playlists, nil
}
