// package tasks implements playlist migration between streaming platforms.
//
// The core abstraction is [Engine], which orchestrates a migration run:
// fetch the source playlist, create the destination playlist, then resolve
// and add each track. Progress is emitted via channels for non-blocking
// status reporting to the CLI and server layers.
package tasks

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/playlistbridge/playlistbridge/internal/models"
	"github.com/playlistbridge/playlistbridge/internal/services"
	"github.com/playlistbridge/playlistbridge/internal/shared"
)

// TrackMigrationResult represents the outcome for a single source track.
type TrackMigrationResult struct {
	Source    services.Track  // Track from the source playlist
	Matched   *services.Track // Destination match (nil if not found)
	FromCache bool            // Match came from the local track cache
	Error     error           // Error if search or add failed
}

// Migrated reports whether the track made it into the destination playlist.
func (r TrackMigrationResult) Migrated() bool {
	return r.Matched != nil && r.Error == nil
}

// MigrationResult contains all data from a full migration run.
type MigrationResult struct {
	JobID           string              // Persisted migration job ID, empty without a report store
	SourcePlaylist  *services.Playlist  // Source playlist metadata
	DestPlaylist    *services.Playlist  // Created destination playlist
	TrackResults    []TrackMigrationResult
	TotalTracks     int
	MigratedCount   int
	FailedCount     int
	MatchPercentage float64 // Migrated tracks as a percentage of total
}

// ReportStore persists migration job lifecycle transitions.
type ReportStore interface {
	Create(job *models.MigrationJob) error
	Update(job *models.MigrationJob) error
}

// TrackCacher caches destination search resolutions across runs.
type TrackCacher interface {
	CacheTrack(platform string, track services.Track) error
	LookupMatch(platform, title, artist string) (*services.Track, bool, error)
}

// Engine runs playlist migrations between two platform clients.
//
// The pacer throttles destination searches. The report store and track cache
// are optional; a nil store skips persistence and a nil cache always misses.
type Engine struct {
	pacer   Pacer
	reports ReportStore
	cache   TrackCacher
	logger  *log.Logger
}

// NewEngine creates an Engine with the given pacer.
func NewEngine(pacer Pacer, logger *log.Logger) *Engine {
	if pacer == nil {
		pacer = NewRatePacer(0)
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Engine{pacer: pacer, logger: logger}
}

// WithReportStore enables migration job persistence.
func (e *Engine) WithReportStore(store ReportStore) *Engine {
	e.reports = store
	return e
}

// WithTrackCache enables the cross-run search cache.
func (e *Engine) WithTrackCache(cache TrackCacher) *Engine {
	e.cache = cache
	return e
}

// sendProgress sends a progress update through the channel without blocking.
func (e *Engine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// Migrate copies the playlist identified by playlistID from source to dest
// for userID.
//
// Individual track misses and add failures are recorded in the result and do
// not abort the run. Authorization failures and context cancellation abort
// immediately. An empty source playlist still produces an empty destination
// playlist and succeeds.
func (e *Engine) Migrate(ctx context.Context, progress chan<- ProgressUpdate, userID string, source, dest services.PlaylistClient, playlistID string) (*MigrationResult, error) {
	if source == nil || dest == nil {
		return nil, fmt.Errorf("%w: source and destination clients are required", shared.ErrMissingArgument)
	}

	job := e.startJob(userID, source, dest, playlistID)

	result, err := e.run(ctx, progress, userID, source, dest, playlistID, job)
	e.finishJob(job, result, err)
	if result != nil && job != nil {
		result.JobID = job.ID()
	}

	return result, err
}

func (e *Engine) run(ctx context.Context, progress chan<- ProgressUpdate, userID string, source, dest services.PlaylistClient, playlistID string, job *models.MigrationJob) (*MigrationResult, error) {
	e.sendProgress(progress, fetchSourceUpdate(source.Name()))

	srcPlaylist, err := source.GetPlaylist(ctx, userID, playlistID)
	if err != nil {
		return nil, err
	}
	e.sendProgress(progress, foundPlaylistUpdate(srcPlaylist))

	e.sendProgress(progress, fetchTracksUpdate(source.Name()))
	tracks, err := source.GetPlaylistTracks(ctx, userID, playlistID)
	if err != nil {
		return nil, err
	}

	e.sendProgress(progress, createDestUpdate(dest.Name()))
	description := srcPlaylist.Description
	if description == "" {
		description = fmt.Sprintf("Migrated from %s", source.Name())
	}
	destPlaylist, err := dest.CreatePlaylist(ctx, userID, srcPlaylist.Name, description)
	if err != nil {
		return nil, err
	}

	if job != nil {
		job.MarkRunning()
		job.SetDestPlaylistID(destPlaylist.ID)
		job.SetTracksTotal(len(tracks))
		e.updateJob(job)
	}

	result := &MigrationResult{
		SourcePlaylist: srcPlaylist,
		DestPlaylist:   destPlaylist,
		TrackResults:   make([]TrackMigrationResult, 0, len(tracks)),
		TotalTracks:    len(tracks),
	}

	for i, track := range tracks {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		e.sendProgress(progress, searchTrackUpdate(i+1, len(tracks), track))

		trackResult, err := e.migrateTrack(ctx, userID, dest, destPlaylist.ID, track)
		result.TrackResults = append(result.TrackResults, trackResult)

		if err != nil {
			return result, err
		}

		if trackResult.Migrated() {
			result.MigratedCount++
			e.sendProgress(progress, trackMigratedUpdate(i+1, len(tracks), track))
		} else {
			result.FailedCount++
			reason := "no match found"
			if trackResult.Error != nil {
				reason = trackResult.Error.Error()
			}
			e.sendProgress(progress, trackFailedUpdate(i+1, len(tracks), track, reason))
		}
	}

	if result.TotalTracks > 0 {
		result.MatchPercentage = float64(result.MigratedCount) / float64(result.TotalTracks) * 100
	}

	e.sendProgress(progress, completeUpdate(result))
	return result, nil
}

// migrateTrack resolves one source track on the destination and adds it to
// the destination playlist.
//
// The second return carries errors that abort the whole migration; per-track
// failures live in the result instead.
func (e *Engine) migrateTrack(ctx context.Context, userID string, dest services.PlaylistClient, destPlaylistID string, track services.Track) (TrackMigrationResult, error) {
	result := TrackMigrationResult{Source: track}

	match, found := e.cachedMatch(dest, track)
	result.FromCache = found

	if !found {
		if err := e.pacer.Wait(ctx); err != nil {
			return result, err
		}

		var err error
		match, found, err = dest.SearchTrack(ctx, userID, track.Title, track.Artist)
		if err != nil {
			if fatal(err) {
				return result, err
			}
			result.Error = err
			return result, nil
		}

		if found && e.cache != nil {
			if cacheErr := e.cache.CacheTrack(platformKey(dest), *match); cacheErr != nil {
				e.logger.Warn("failed to cache track", "track", track.Title, "error", cacheErr)
			}
		}
	}

	if !found {
		return result, nil
	}
	result.Matched = match

	if err := dest.AddTrackToPlaylist(ctx, userID, destPlaylistID, match.ID); err != nil {
		if fatal(err) {
			return result, err
		}
		result.Error = err
	}

	return result, nil
}

// cachedMatch consults the track cache for a previous resolution.
func (e *Engine) cachedMatch(dest services.PlaylistClient, track services.Track) (*services.Track, bool) {
	if e.cache == nil {
		return nil, false
	}

	match, found, err := e.cache.LookupMatch(platformKey(dest), track.Title, track.Artist)
	if err != nil {
		e.logger.Warn("track cache lookup failed", "track", track.Title, "error", err)
		return nil, false
	}
	return match, found
}

// fatal reports whether an error should abort the whole migration rather
// than fail a single track.
func fatal(err error) bool {
	return errors.Is(err, shared.ErrAuthFailed) ||
		errors.Is(err, shared.ErrNoRefreshToken) ||
		errors.Is(err, shared.ErrInvalidToken) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}

// platformKey maps a client's display name to its storage key.
func platformKey(client services.PlaylistClient) string {
	switch client.Name() {
	case "Spotify":
		return services.PlatformSpotify
	case "YouTube":
		return services.PlatformYouTube
	default:
		return client.Name()
	}
}

// startJob creates a pending migration job when a report store is configured.
func (e *Engine) startJob(userID string, source, dest services.PlaylistClient, playlistID string) *models.MigrationJob {
	if e.reports == nil {
		return nil
	}

	job := models.NewMigrationJob(0, userID, platformKey(source), playlistID, platformKey(dest))
	if err := e.reports.Create(job); err != nil {
		e.logger.Warn("failed to record migration job", "error", err)
		return nil
	}
	return job
}

func (e *Engine) updateJob(job *models.MigrationJob) {
	if e.reports == nil || job == nil {
		return
	}
	if err := e.reports.Update(job); err != nil {
		e.logger.Warn("failed to update migration job", "job", job.ID(), "error", err)
	}
}

// finishJob records the terminal state of a migration job.
func (e *Engine) finishJob(job *models.MigrationJob, result *MigrationResult, runErr error) {
	if job == nil {
		return
	}

	if runErr != nil {
		job.MarkFailed(runErr)
	} else if result != nil {
		job.MarkCompleted(result.TotalTracks, result.MigratedCount, result.FailedCount)
	}

	e.updateJob(job)
}
