package tasks

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/playlistbridge/playlistbridge/internal/models"
	"github.com/playlistbridge/playlistbridge/internal/services"
	"github.com/playlistbridge/playlistbridge/internal/shared"
	mocks "github.com/playlistbridge/playlistbridge/internal/testing"
)

// memoryReportStore implements [ReportStore] in memory.
type memoryReportStore struct {
	mu      sync.Mutex
	created []*models.MigrationJob
	updates int
}

func (s *memoryReportStore) Create(job *models.MigrationJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	job.SetID(fmt.Sprintf("job-%d", len(s.created)+1))
	s.created = append(s.created, job)
	return nil
}

func (s *memoryReportStore) Update(job *models.MigrationJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updates++
	return nil
}

// memoryCache implements [TrackCacher] in memory.
type memoryCache struct {
	mu      sync.Mutex
	entries map[string]services.Track
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[string]services.Track)}
}

func (c *memoryCache) key(platform, title, artist string) string {
	return platform + "|" + title + "|" + artist
}

func (c *memoryCache) CacheTrack(platform string, track services.Track) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[c.key(platform, track.Title, track.Artist)] = track
	return nil
}

func (c *memoryCache) LookupMatch(platform, title, artist string) (*services.Track, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	track, ok := c.entries[c.key(platform, title, artist)]
	if !ok {
		return nil, false, nil
	}
	return &track, true, nil
}

func sourceWithTracks(tracks []services.Track) *mocks.MockPlaylistClient {
	return &mocks.MockPlaylistClient{
		PlatformName: "Spotify",
		GetPlaylistFunc: func(ctx context.Context, userID, playlistID string) (*services.Playlist, error) {
			return &services.Playlist{ID: playlistID, Name: "Road Trip", TrackCount: len(tracks)}, nil
		},
		GetPlaylistTracksFunc: func(ctx context.Context, userID, playlistID string) ([]services.Track, error) {
			return tracks, nil
		},
	}
}

func matchingDest() *mocks.MockPlaylistClient {
	return &mocks.MockPlaylistClient{
		PlatformName: "YouTube",
		SearchTrackFunc: func(ctx context.Context, userID, title, artist string) (*services.Track, bool, error) {
			return &services.Track{ID: "yt-" + title, Title: title, Artist: artist}, true, nil
		},
	}
}

func TestEngineMigrate(t *testing.T) {
	tracks := []services.Track{
		{ID: "s1", Title: "One", Artist: "A"},
		{ID: "s2", Title: "Two", Artist: "B"},
		{ID: "s3", Title: "Three", Artist: "C"},
	}

	t.Run("migrates all matched tracks", func(t *testing.T) {
		source := sourceWithTracks(tracks)
		dest := matchingDest()
		engine := NewEngine(nil, nil)

		result, err := engine.Migrate(context.Background(), nil, "user-1", source, dest, "pl1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if result.TotalTracks != 3 || result.MigratedCount != 3 || result.FailedCount != 0 {
			t.Errorf("unexpected counts: %d/%d/%d", result.TotalTracks, result.MigratedCount, result.FailedCount)
		}
		if result.MatchPercentage != 100 {
			t.Errorf("expected 100%% match, got %v", result.MatchPercentage)
		}
		if added := dest.AddedTracks(); len(added) != 3 || added[0] != "yt-One" {
			t.Errorf("unexpected added tracks: %v", added)
		}
	})

	t.Run("track miss counts as failed and run continues", func(t *testing.T) {
		source := sourceWithTracks(tracks)
		dest := &mocks.MockPlaylistClient{
			PlatformName: "YouTube",
			SearchTrackFunc: func(ctx context.Context, userID, title, artist string) (*services.Track, bool, error) {
				if title == "Two" {
					return nil, false, nil
				}
				return &services.Track{ID: "yt-" + title, Title: title}, true, nil
			},
		}
		engine := NewEngine(nil, nil)

		result, err := engine.Migrate(context.Background(), nil, "user-1", source, dest, "pl1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if result.MigratedCount != 2 || result.FailedCount != 1 {
			t.Errorf("unexpected counts: %d migrated, %d failed", result.MigratedCount, result.FailedCount)
		}
		if result.TrackResults[1].Matched != nil || result.TrackResults[1].Error != nil {
			t.Errorf("expected clean miss for second track: %+v", result.TrackResults[1])
		}
	})

	t.Run("transient search error fails track only", func(t *testing.T) {
		source := sourceWithTracks(tracks)
		dest := &mocks.MockPlaylistClient{
			PlatformName: "YouTube",
			SearchTrackFunc: func(ctx context.Context, userID, title, artist string) (*services.Track, bool, error) {
				if title == "One" {
					return nil, false, fmt.Errorf("throttled: %w", shared.ErrAPIRequest)
				}
				return &services.Track{ID: "yt-" + title, Title: title}, true, nil
			},
		}
		engine := NewEngine(nil, nil)

		result, err := engine.Migrate(context.Background(), nil, "user-1", source, dest, "pl1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if result.FailedCount != 1 || result.MigratedCount != 2 {
			t.Errorf("unexpected counts: %d migrated, %d failed", result.MigratedCount, result.FailedCount)
		}
		if !errors.Is(result.TrackResults[0].Error, shared.ErrAPIRequest) {
			t.Errorf("expected per-track API error, got %v", result.TrackResults[0].Error)
		}
	})

	t.Run("auth failure aborts the run", func(t *testing.T) {
		source := sourceWithTracks(tracks)
		dest := &mocks.MockPlaylistClient{
			PlatformName: "YouTube",
			SearchTrackFunc: func(ctx context.Context, userID, title, artist string) (*services.Track, bool, error) {
				return nil, false, fmt.Errorf("token rejected: %w", shared.ErrAuthFailed)
			},
		}
		engine := NewEngine(nil, nil)

		result, err := engine.Migrate(context.Background(), nil, "user-1", source, dest, "pl1")
		if !errors.Is(err, shared.ErrAuthFailed) {
			t.Fatalf("expected ErrAuthFailed, got %v", err)
		}
		if result == nil || len(result.TrackResults) != 1 {
			t.Errorf("expected partial result with one attempted track")
		}
	})

	t.Run("missing source playlist", func(t *testing.T) {
		source := &mocks.MockPlaylistClient{
			PlatformName: "Spotify",
			GetPlaylistFunc: func(ctx context.Context, userID, playlistID string) (*services.Playlist, error) {
				return nil, fmt.Errorf("%w: spotify", shared.ErrPlaylistNotFound)
			},
		}
		engine := NewEngine(nil, nil)

		if _, err := engine.Migrate(context.Background(), nil, "user-1", source, matchingDest(), "missing"); !errors.Is(err, shared.ErrPlaylistNotFound) {
			t.Errorf("expected ErrPlaylistNotFound, got %v", err)
		}
	})

	t.Run("empty playlist succeeds with empty destination", func(t *testing.T) {
		source := sourceWithTracks(nil)
		dest := matchingDest()
		engine := NewEngine(nil, nil)

		result, err := engine.Migrate(context.Background(), nil, "user-1", source, dest, "pl1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if result.TotalTracks != 0 || result.DestPlaylist == nil {
			t.Errorf("expected empty destination playlist, got %+v", result)
		}
		if len(dest.AddedTracks()) != 0 {
			t.Error("expected no tracks added")
		}
	})

	t.Run("cache hit skips destination search", func(t *testing.T) {
		cache := newMemoryCache()
		cache.CacheTrack(services.PlatformYouTube, services.Track{ID: "yt-cached", Title: "One", Artist: "A"})

		source := sourceWithTracks(tracks[:1])
		dest := matchingDest()
		engine := NewEngine(nil, nil).WithTrackCache(cache)

		result, err := engine.Migrate(context.Background(), nil, "user-1", source, dest, "pl1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if dest.SearchCalls() != 0 {
			t.Errorf("expected no searches, got %d", dest.SearchCalls())
		}
		if !result.TrackResults[0].FromCache {
			t.Error("expected cache hit to be recorded")
		}
		if added := dest.AddedTracks(); len(added) != 1 || added[0] != "yt-cached" {
			t.Errorf("expected cached track added, got %v", added)
		}
	})

	t.Run("resolved tracks populate the cache", func(t *testing.T) {
		cache := newMemoryCache()
		source := sourceWithTracks(tracks[:1])
		engine := NewEngine(nil, nil).WithTrackCache(cache)

		if _, err := engine.Migrate(context.Background(), nil, "user-1", source, matchingDest(), "pl1"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if _, found, _ := cache.LookupMatch(services.PlatformYouTube, "One", "A"); !found {
			t.Error("expected resolved track in cache")
		}
	})

	t.Run("report store records lifecycle", func(t *testing.T) {
		reports := &memoryReportStore{}
		source := sourceWithTracks(tracks)
		engine := NewEngine(nil, nil).WithReportStore(reports)

		result, err := engine.Migrate(context.Background(), nil, "user-1", source, matchingDest(), "pl1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(reports.created) != 1 {
			t.Fatalf("expected one job, got %d", len(reports.created))
		}

		job := reports.created[0]
		if job.Status() != models.MigrationCompleted {
			t.Errorf("expected completed job, got %q", job.Status())
		}
		if job.SourcePlatform() != services.PlatformSpotify || job.DestPlatform() != services.PlatformYouTube {
			t.Errorf("unexpected platform pair: %s -> %s", job.SourcePlatform(), job.DestPlatform())
		}
		if job.TracksTotal() != 3 || job.TracksMigrated() != 3 {
			t.Errorf("unexpected job counts: %d/%d", job.TracksTotal(), job.TracksMigrated())
		}
		if result.JobID != job.ID() {
			t.Errorf("expected result to carry job id %q, got %q", job.ID(), result.JobID)
		}
	})

	t.Run("failed run marks job failed", func(t *testing.T) {
		reports := &memoryReportStore{}
		source := &mocks.MockPlaylistClient{
			PlatformName: "Spotify",
			GetPlaylistFunc: func(ctx context.Context, userID, playlistID string) (*services.Playlist, error) {
				return nil, fmt.Errorf("%w: gone", shared.ErrPlaylistNotFound)
			},
		}
		engine := NewEngine(nil, nil).WithReportStore(reports)

		if _, err := engine.Migrate(context.Background(), nil, "user-1", source, matchingDest(), "pl1"); err == nil {
			t.Fatal("expected error")
		}

		if reports.created[0].Status() != models.MigrationFailed {
			t.Errorf("expected failed job, got %q", reports.created[0].Status())
		}
		if reports.created[0].ErrorMessage() == "" {
			t.Error("expected error message on failed job")
		}
	})

	t.Run("cancelled context aborts", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		source := sourceWithTracks(tracks)
		dest := matchingDest()
		engine := NewEngine(nil, nil)

		_, err := engine.Migrate(ctx, nil, "user-1", source, dest, "pl1")
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})

	t.Run("nil clients rejected", func(t *testing.T) {
		engine := NewEngine(nil, nil)
		if _, err := engine.Migrate(context.Background(), nil, "user-1", nil, nil, "pl1"); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})
}

func TestEngineProgress(t *testing.T) {
	tracks := []services.Track{{ID: "s1", Title: "One", Artist: "A"}}

	t.Run("emits phase updates", func(t *testing.T) {
		progress := make(chan ProgressUpdate, 64)
		source := sourceWithTracks(tracks)
		engine := NewEngine(nil, nil)

		if _, err := engine.Migrate(context.Background(), progress, "user-1", source, matchingDest(), "pl1"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		close(progress)

		phases := make(map[Phase]bool)
		for update := range progress {
			phases[update.Phase] = true
		}

		for _, want := range []Phase{FetchSource, FetchTracks, CreateDest, SearchTracks, AddTracks, Complete} {
			if !phases[want] {
				t.Errorf("expected a %s update", want)
			}
		}
	})

	t.Run("full channel does not block", func(t *testing.T) {
		progress := make(chan ProgressUpdate) // unbuffered, never drained
		source := sourceWithTracks(tracks)
		engine := NewEngine(nil, nil)

		if _, err := engine.Migrate(context.Background(), progress, "user-1", source, matchingDest(), "pl1"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})
}

func TestRatePacer(t *testing.T) {
	t.Run("unlimited pacer never blocks", func(t *testing.T) {
		p := NewRatePacer(0)
		for range 100 {
			if err := p.Wait(context.Background()); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		}
	})

	t.Run("respects cancelled context", func(t *testing.T) {
		p := NewRatePacer(0.001)
		if err := p.Wait(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if err := p.Wait(ctx); err == nil {
			t.Error("expected error from cancelled context")
		}
	})
}
