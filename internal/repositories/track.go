package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/playlistbridge/playlistbridge/internal/models"
	"github.com/playlistbridge/playlistbridge/internal/shared"
)

// TrackRepository persists [models.CachedTrack] records.
//
// Tracks resolved during a migration are cached so repeated runs can reuse
// earlier search results instead of spending platform quota again.
type TrackRepository struct {
	db *sql.DB
}

// NewTrackRepository creates a TrackRepository with the given database connection.
func NewTrackRepository(db *sql.DB) *TrackRepository {
	return &TrackRepository{db: db}
}

// Create inserts a new cached track with a generated ID and sequence.
func (r *TrackRepository) Create(track *models.CachedTrack) error {
	sequence, err := NextSequence(r.db, "tracks")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	track.SetID(shared.GenerateID())

	if err := track.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO tracks (id, sequence, platform, platform_id, title, artist, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		track.ID(),
		sequence,
		track.Platform(),
		track.PlatformID(),
		track.Title(),
		track.Artist(),
		track.CreatedAt(),
		track.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert track: %w", err)
	}

	return nil
}

// GetByPlatformID retrieves a cached track by its platform handle.
func (r *TrackRepository) GetByPlatformID(platform, platformID string) (*models.CachedTrack, error) {
	query := `
		SELECT id, sequence, platform, platform_id, title, artist, created_at, updated_at
		FROM tracks
		WHERE platform = ? AND platform_id = ?
	`

	return r.scanTrack(r.db.QueryRow(query, platform, platformID))
}

// FindMatch retrieves a cached track on platform by title and artist.
func (r *TrackRepository) FindMatch(platform, title, artist string) (*models.CachedTrack, error) {
	query := `
		SELECT id, sequence, platform, platform_id, title, artist, created_at, updated_at
		FROM tracks
		WHERE platform = ? AND title = ? AND artist = ?
		LIMIT 1
	`

	return r.scanTrack(r.db.QueryRow(query, platform, title, artist))
}

func (r *TrackRepository) scanTrack(row *sql.Row) (*models.CachedTrack, error) {
	var (
		id         string
		sequence   int
		platform   string
		platformID string
		title      string
		artist     string
		createdAt  time.Time
		updatedAt  time.Time
	)

	err := row.Scan(&id, &sequence, &platform, &platformID, &title, &artist, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: cached track", shared.ErrTrackNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan track: %w", err)
	}

	track := models.NewCachedTrack(sequence, platform, platformID, title, artist)
	track.SetID(id)
	track.SetCreatedAt(createdAt)
	track.SetUpdatedAt(updatedAt)

	return track, nil
}

// List retrieves cached tracks for a platform ordered by sequence.
func (r *TrackRepository) List(platform string) ([]*models.CachedTrack, error) {
	query := `
		SELECT id, sequence, platform, platform_id, title, artist, created_at, updated_at
		FROM tracks
		WHERE platform = ?
		ORDER BY sequence ASC
	`

	rows, err := r.db.Query(query, platform)
	if err != nil {
		return nil, fmt.Errorf("failed to query tracks: %w", err)
	}
	defer rows.Close()

	var tracks []*models.CachedTrack
	for rows.Next() {
		var (
			id         string
			sequence   int
			plat       string
			platformID string
			title      string
			artist     string
			createdAt  time.Time
			updatedAt  time.Time
		)

		if err := rows.Scan(&id, &sequence, &plat, &platformID, &title, &artist, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan track: %w", err)
		}

		track := models.NewCachedTrack(sequence, plat, platformID, title, artist)
		track.SetID(id)
		track.SetCreatedAt(createdAt)
		track.SetUpdatedAt(updatedAt)
		tracks = append(tracks, track)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return tracks, nil
}
