package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/playlistbridge/playlistbridge/internal/models"
	"github.com/playlistbridge/playlistbridge/internal/shared"
)

// MigrationRepository persists [models.MigrationJob] records.
//
// Jobs track every migration run: platform pair, playlist IDs, status and
// final track counts. Soft deletes keep history recoverable.
type MigrationRepository struct {
	db *sql.DB
}

// NewMigrationRepository creates a MigrationRepository with the given database connection.
func NewMigrationRepository(db *sql.DB) *MigrationRepository {
	return &MigrationRepository{db: db}
}

// Create inserts a new migration job with a generated ID and sequence.
func (r *MigrationRepository) Create(job *models.MigrationJob) error {
	sequence, err := NextSequence(r.db, "migrations")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	job.SetID(shared.GenerateID())

	if err := job.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO migrations (
			id, sequence, user_id, source_platform, source_playlist_id,
			dest_platform, dest_playlist_id, status, tracks_total,
			tracks_migrated, tracks_failed, error_message, started_at,
			completed_at, created_at, updated_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		job.ID(),
		sequence,
		job.UserID(),
		job.SourcePlatform(),
		job.SourcePlaylistID(),
		job.DestPlatform(),
		nullable(job.DestPlaylistID()),
		job.Status(),
		job.TracksTotal(),
		job.TracksMigrated(),
		job.TracksFailed(),
		nullable(job.ErrorMessage()),
		job.StartedAt(),
		job.CompletedAt(),
		job.CreatedAt(),
		job.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert migration: %w", err)
	}

	return nil
}

// nullable maps an empty string to SQL NULL.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// Get retrieves a migration job by ID, excluding soft-deleted jobs.
func (r *MigrationRepository) Get(id string) (*models.MigrationJob, error) {
	query := `
		SELECT
			id, sequence, user_id, source_platform, source_playlist_id,
			dest_platform, dest_playlist_id, status, tracks_total,
			tracks_migrated, tracks_failed, error_message, started_at,
			completed_at, created_at, updated_at, deleted_at
		FROM migrations
		WHERE id = ? AND deleted_at IS NULL
	`

	job, err := scanMigration(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("migration not found: %s", id)
	}
	return job, err
}

// Update modifies an existing migration job.
func (r *MigrationRepository) Update(job *models.MigrationJob) error {
	if err := job.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	job.SetUpdatedAt(now)

	query := `
		UPDATE migrations
		SET dest_playlist_id = ?, status = ?, tracks_total = ?,
			tracks_migrated = ?, tracks_failed = ?, error_message = ?,
			started_at = ?, completed_at = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query,
		nullable(job.DestPlaylistID()),
		job.Status(),
		job.TracksTotal(),
		job.TracksMigrated(),
		job.TracksFailed(),
		nullable(job.ErrorMessage()),
		job.StartedAt(),
		job.CompletedAt(),
		now,
		job.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update migration: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("migration not found or already deleted: %s", job.ID())
	}

	return nil
}

// Delete soft-deletes a migration job by ID.
func (r *MigrationRepository) Delete(id string) error {
	now := time.Now()

	query := `
		UPDATE migrations
		SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, now, id)
	if err != nil {
		return fmt.Errorf("failed to delete migration: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("migration not found or already deleted: %s", id)
	}

	return nil
}

// List retrieves migration jobs matching the given criteria, newest first.
func (r *MigrationRepository) List(criteria map[string]any) ([]*models.MigrationJob, error) {
	query := `
		SELECT
			id, sequence, user_id, source_platform, source_playlist_id,
			dest_platform, dest_playlist_id, status, tracks_total,
			tracks_migrated, tracks_failed, error_message, started_at,
			completed_at, created_at, updated_at, deleted_at
		FROM migrations
		WHERE deleted_at IS NULL
	`

	args := []any{}

	if userID, ok := criteria["user_id"].(string); ok && userID != "" {
		query += " AND user_id = ?"
		args = append(args, userID)
	}

	if status, ok := criteria["status"].(string); ok && status != "" {
		query += " AND status = ?"
		args = append(args, status)
	}

	if source, ok := criteria["source_platform"].(string); ok && source != "" {
		query += " AND source_platform = ?"
		args = append(args, source)
	}

	if dest, ok := criteria["dest_platform"].(string); ok && dest != "" {
		query += " AND dest_platform = ?"
		args = append(args, dest)
	}

	query += " ORDER BY sequence DESC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query migrations: %w", err)
	}
	defer rows.Close()

	var jobs []*models.MigrationJob
	for rows.Next() {
		job, err := scanMigration(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return jobs, nil
}

// scanner is satisfied by both [sql.Row] and [sql.Rows].
type scanner interface {
	Scan(dest ...any) error
}

func scanMigration(row scanner) (*models.MigrationJob, error) {
	var (
		id               string
		sequence         int
		userID           string
		sourcePlatform   string
		sourcePlaylistID string
		destPlatform     string
		destPlaylistID   sql.NullString
		status           string
		tracksTotal      int
		tracksMigrated   int
		tracksFailed     int
		errorMessage     sql.NullString
		startedAt        sql.NullTime
		completedAt      sql.NullTime
		createdAt        time.Time
		updatedAt        time.Time
		deletedAt        sql.NullTime
	)

	err := row.Scan(
		&id, &sequence, &userID, &sourcePlatform, &sourcePlaylistID,
		&destPlatform, &destPlaylistID, &status, &tracksTotal,
		&tracksMigrated, &tracksFailed, &errorMessage, &startedAt,
		&completedAt, &createdAt, &updatedAt, &deletedAt,
	)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan migration: %w", err)
	}

	job := models.NewMigrationJob(sequence, userID, sourcePlatform, sourcePlaylistID, destPlatform)
	job.SetID(id)
	job.SetCreatedAt(createdAt)
	job.SetUpdatedAt(updatedAt)

	if destPlaylistID.Valid {
		job.SetDestPlaylistID(destPlaylistID.String)
	}
	job.SetStatus(status)
	job.SetTracksTotal(tracksTotal)
	job.SetTracksMigrated(tracksMigrated)
	job.SetTracksFailed(tracksFailed)
	if errorMessage.Valid {
		job.SetErrorMessage(errorMessage.String)
	}
	if startedAt.Valid {
		job.SetStartedAt(&startedAt.Time)
	}
	if completedAt.Valid {
		job.SetCompletedAt(&completedAt.Time)
	}
	if deletedAt.Valid {
		job.SetDeletedAt(&deletedAt.Time)
	}

	return job, nil
}
