package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/playlistbridge/playlistbridge/internal/services"
	"github.com/playlistbridge/playlistbridge/internal/shared"
	"github.com/playlistbridge/playlistbridge/internal/tasks"
)

// MigratedTrack is one per-track outcome, in source playlist order. Found
// entries carry the destination match's title and artist; misses carry the
// source track's.
type MigratedTrack struct {
	Title  string `json:"title"`
	Artist string `json:"artist"`
	Found  bool   `json:"found"`
}

// MigrateResponse is the body returned by a successful migration request.
type MigrateResponse struct {
	JobID             string          `json:"job_id,omitempty"`
	CreatedPlaylistID string          `json:"created_playlist_id"`
	TracksTotal       int             `json:"tracks_total"`
	MigratedCount     int             `json:"migrated_count"`
	FailedCount       int             `json:"failed_count"`
	MatchPercentage   float64         `json:"match_percentage"`
	TracksMigrated    []MigratedTrack `json:"tracks_migrated"`
}

// MigrateHandler runs playlist migrations over HTTP.
// Implements the [Handler] interface for registration with a [Router].
//
// The route pair segment is "{source}-to-{destination}", e.g. "spotify-to-youtube".
// Callers identify themselves with the X-User-ID header.
type MigrateHandler struct {
	engine  *tasks.Engine
	clients map[string]services.PlaylistClient
	logger  *log.Logger
}

// NewMigrateHandler creates a migration handler over the given engine and
// per-platform playlist clients.
func NewMigrateHandler(engine *tasks.Engine, clients map[string]services.PlaylistClient, logger *log.Logger) *MigrateHandler {
	if logger == nil {
		logger = log.Default()
	}
	return &MigrateHandler{engine: engine, clients: clients, logger: logger}
}

// Routes returns the HTTP routes this handler serves.
func (h *MigrateHandler) Routes() []string {
	return []string{"POST /migrate/{pair}/{playlist_id}"}
}

// ServeHTTP runs the requested migration synchronously and reports the outcome.
func (h *MigrateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get("X-User-ID")
	if userID == "" {
		writeError(w, fmt.Errorf("%w: X-User-ID header", shared.ErrMissingArgument))
		return
	}

	source, dest, err := h.resolvePair(r.PathValue("pair"))
	if err != nil {
		writeError(w, err)
		return
	}

	playlistID := r.PathValue("playlist_id")
	h.logger.Info("migration requested",
		"user_id", userID,
		"source", source.Name(),
		"dest", dest.Name(),
		"playlist_id", playlistID,
	)

	result, err := h.engine.Migrate(r.Context(), nil, userID, source, dest, playlistID)
	if err != nil {
		h.logger.Error("migration failed", "user_id", userID, "error", err)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, MigrateResponse{
		JobID:             result.JobID,
		CreatedPlaylistID: result.DestPlaylist.ID,
		TracksTotal:       result.TotalTracks,
		MigratedCount:     result.MigratedCount,
		FailedCount:       result.FailedCount,
		MatchPercentage:   result.MatchPercentage,
		TracksMigrated:    migratedTracks(result.TrackResults),
	})
}

// migratedTracks flattens engine track results into the response shape.
func migratedTracks(results []tasks.TrackMigrationResult) []MigratedTrack {
	tracks := make([]MigratedTrack, 0, len(results))
	for _, tr := range results {
		track := MigratedTrack{Title: tr.Source.Title, Artist: tr.Source.Artist}
		if tr.Migrated() {
			track = MigratedTrack{Title: tr.Matched.Title, Artist: tr.Matched.Artist, Found: true}
		}
		tracks = append(tracks, track)
	}
	return tracks
}

// resolvePair parses a "{source}-to-{destination}" pair into playlist clients.
func (h *MigrateHandler) resolvePair(pair string) (services.PlaylistClient, services.PlaylistClient, error) {
	sourceName, destName, ok := strings.Cut(pair, "-to-")
	if !ok {
		return nil, nil, fmt.Errorf("%w: expected {source}-to-{destination}, got %q", shared.ErrInvalidArgument, pair)
	}

	source, ok := h.clients[sourceName]
	if !ok {
		return nil, nil, fmt.Errorf("%w: %q", shared.ErrInvalidPlatform, sourceName)
	}
	dest, ok := h.clients[destName]
	if !ok {
		return nil, nil, fmt.Errorf("%w: %q", shared.ErrInvalidPlatform, destName)
	}
	if sourceName == destName {
		return nil, nil, fmt.Errorf("%w: source and destination must differ", shared.ErrInvalidPlatform)
	}

	return source, dest, nil
}
