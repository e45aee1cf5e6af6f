package models

import (
	"fmt"
	"time"
)

// Migration job status values.
const (
	MigrationPending   = "pending"
	MigrationRunning   = "running"
	MigrationCompleted = "completed"
	MigrationFailed    = "failed"
)

// MigrationJob records a single playlist migration run between two platforms.
type MigrationJob struct {
	id               string
	sequence         int
	userID           string
	sourcePlatform   string
	sourcePlaylistID string
	destPlatform     string
	destPlaylistID   string
	status           string
	tracksTotal      int
	tracksMigrated   int
	tracksFailed     int
	errorMessage     string
	startedAt        *time.Time
	completedAt      *time.Time
	createdAt        time.Time
	updatedAt        time.Time
	deletedAt        *time.Time
}

// NewMigrationJob creates a pending MigrationJob for the given user and playlist pair.
func NewMigrationJob(sequence int, userID, sourcePlatform, sourcePlaylistID, destPlatform string) *MigrationJob {
	now := time.Now()
	return &MigrationJob{
		sequence:         sequence,
		userID:           userID,
		sourcePlatform:   sourcePlatform,
		sourcePlaylistID: sourcePlaylistID,
		destPlatform:     destPlatform,
		status:           MigrationPending,
		createdAt:        now,
		updatedAt:        now,
	}
}

func (m *MigrationJob) ID() string               { return m.id }
func (m *MigrationJob) Sequence() int            { return m.sequence }
func (m *MigrationJob) UserID() string           { return m.userID }
func (m *MigrationJob) SourcePlatform() string   { return m.sourcePlatform }
func (m *MigrationJob) SourcePlaylistID() string { return m.sourcePlaylistID }
func (m *MigrationJob) DestPlatform() string     { return m.destPlatform }
func (m *MigrationJob) DestPlaylistID() string   { return m.destPlaylistID }
func (m *MigrationJob) Status() string           { return m.status }
func (m *MigrationJob) TracksTotal() int         { return m.tracksTotal }
func (m *MigrationJob) TracksMigrated() int      { return m.tracksMigrated }
func (m *MigrationJob) TracksFailed() int        { return m.tracksFailed }
func (m *MigrationJob) ErrorMessage() string     { return m.errorMessage }
func (m *MigrationJob) StartedAt() *time.Time    { return m.startedAt }
func (m *MigrationJob) CompletedAt() *time.Time  { return m.completedAt }
func (m *MigrationJob) CreatedAt() time.Time     { return m.createdAt }
func (m *MigrationJob) UpdatedAt() time.Time     { return m.updatedAt }
func (m *MigrationJob) DeletedAt() *time.Time    { return m.deletedAt }

func (m *MigrationJob) SetID(id string)             { m.id = id }
func (m *MigrationJob) SetDestPlaylistID(id string) { m.destPlaylistID = id }
func (m *MigrationJob) SetStatus(status string)     { m.status = status }
func (m *MigrationJob) SetTracksTotal(n int)        { m.tracksTotal = n }
func (m *MigrationJob) SetTracksMigrated(n int)     { m.tracksMigrated = n }
func (m *MigrationJob) SetTracksFailed(n int)       { m.tracksFailed = n }
func (m *MigrationJob) SetErrorMessage(msg string)  { m.errorMessage = msg }
func (m *MigrationJob) SetStartedAt(t *time.Time)   { m.startedAt = t }
func (m *MigrationJob) SetCompletedAt(t *time.Time) { m.completedAt = t }
func (m *MigrationJob) SetCreatedAt(t time.Time)    { m.createdAt = t }
func (m *MigrationJob) SetUpdatedAt(t time.Time)    { m.updatedAt = t }
func (m *MigrationJob) SetDeletedAt(t *time.Time)   { m.deletedAt = t }

// MarkRunning transitions the job to running and stamps the start time.
func (m *MigrationJob) MarkRunning() {
	now := time.Now()
	m.status = MigrationRunning
	m.startedAt = &now
}

// MarkCompleted transitions the job to completed with final track counts.
func (m *MigrationJob) MarkCompleted(total, migrated, failed int) {
	now := time.Now()
	m.status = MigrationCompleted
	m.tracksTotal = total
	m.tracksMigrated = migrated
	m.tracksFailed = failed
	m.completedAt = &now
}

// MarkFailed transitions the job to failed and records the error message.
func (m *MigrationJob) MarkFailed(err error) {
	now := time.Now()
	m.status = MigrationFailed
	if err != nil {
		m.errorMessage = err.Error()
	}
	m.completedAt = &now
}

// Validate checks that the job references a user, a playlist pair and a known status.
func (m *MigrationJob) Validate() error {
	if m.userID == "" {
		return fmt.Errorf("user id is required")
	}
	if m.sourcePlatform == "" || m.destPlatform == "" {
		return fmt.Errorf("source and destination platforms are required")
	}
	if m.sourcePlatform == m.destPlatform {
		return fmt.Errorf("source and destination platforms must differ")
	}
	if m.sourcePlaylistID == "" {
		return fmt.Errorf("source playlist id is required")
	}
	switch m.status {
	case MigrationPending, MigrationRunning, MigrationCompleted, MigrationFailed:
	default:
		return fmt.Errorf("unknown status: %q", m.status)
	}
	return nil
}
