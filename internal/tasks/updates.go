package tasks

import (
	"fmt"

	"github.com/playlistbridge/playlistbridge/internal/services"
)

// ProgressUpdate represents a progress event during a migration.
//
// Used to send real-time updates to the CLI or server layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data
}

// Operation phase enumeration
type Phase int

const (
	FetchSource Phase = iota
	FetchTracks
	CreateDest
	SearchTracks
	AddTracks
	Complete
)

func (p Phase) String() string {
	switch p {
	case FetchSource:
		return "fetch_source"
	case FetchTracks:
		return "fetch_tracks"
	case CreateDest:
		return "create_dest"
	case SearchTracks:
		return "search_tracks"
	case AddTracks:
		return "add_tracks"
	case Complete:
		return "complete"
	default:
		return ""
	}
}

func fetchSourceUpdate(name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchSource,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Fetching source playlist from %s...", name),
	}
}

func foundPlaylistUpdate(playlist *services.Playlist) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchSource,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Found playlist: %s (%d tracks)", playlist.Name, playlist.TrackCount),
		Data:    playlist,
	}
}

func fetchTracksUpdate(name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchTracks,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Fetching tracks from %s...", name),
	}
}

func createDestUpdate(name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CreateDest,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Creating playlist on %s...", name),
	}
}

func searchTrackUpdate(step, total int, track services.Track) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SearchTracks,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s - %s", step, total, track.Artist, track.Title),
	}
}

func trackMigratedUpdate(step, total int, track services.Track) ProgressUpdate {
	return ProgressUpdate{
		Phase:   AddTracks,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s - %s", step, total, track.Artist, track.Title),
	}
}

func trackFailedUpdate(step, total int, track services.Track, reason string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   AddTracks,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s - %s: %s", step, total, track.Artist, track.Title, reason),
	}
}

func completeUpdate(result *MigrationResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Complete,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Migrated %d of %d tracks", result.MigratedCount, result.TotalTracks),
		Data:    result,
	}
}
