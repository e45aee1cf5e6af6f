package repositories

import (
	"errors"
	"fmt"
	"strings"

	"github.com/playlistbridge/playlistbridge/internal/models"
	"github.com/playlistbridge/playlistbridge/internal/services"
	"github.com/playlistbridge/playlistbridge/internal/shared"
)

// TrackCacheAdapter exposes [TrackRepository] as a search cache for the
// migration engine.
//
// Duplicate inserts are silently ignored via the platform+platform_id UNIQUE
// constraint, so caching the same resolution twice is not an error.
type TrackCacheAdapter struct {
	repo *TrackRepository
}

// NewTrackCacheAdapter creates a TrackCacheAdapter with the given repository.
func NewTrackCacheAdapter(repo *TrackRepository) *TrackCacheAdapter {
	return &TrackCacheAdapter{repo: repo}
}

// CacheTrack records a resolved platform track. Returns nil if the track is
// already cached.
func (a *TrackCacheAdapter) CacheTrack(platform string, track services.Track) error {
	existing, err := a.repo.GetByPlatformID(platform, track.ID)
	if err == nil && existing != nil {
		return nil
	}

	cached := models.NewCachedTrack(0, platform, track.ID, track.Title, track.Artist)

	if err := a.repo.Create(cached); err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			return nil
		}
		return fmt.Errorf("failed to cache track: %w", err)
	}

	return nil
}

// LookupMatch returns a previously resolved platform track for title and
// artist. The second return is false on a cache miss.
func (a *TrackCacheAdapter) LookupMatch(platform, title, artist string) (*services.Track, bool, error) {
	cached, err := a.repo.FindMatch(platform, title, artist)
	if err != nil {
		if errors.Is(err, shared.ErrTrackNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}

	return &services.Track{
		ID:     cached.PlatformID(),
		Title:  cached.Title(),
		Artist: cached.Artist(),
	}, true, nil
}
