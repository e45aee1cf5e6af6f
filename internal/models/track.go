package models

import (
	"fmt"
	"time"
)

// CachedTrack is a track resolved on a platform, persisted so repeated
// migrations can skip redundant search calls.
type CachedTrack struct {
	id         string
	sequence   int
	platform   string
	platformID string
	title      string
	artist     string
	createdAt  time.Time
	updatedAt  time.Time
}

// NewCachedTrack creates a CachedTrack for the given platform track handle.
func NewCachedTrack(sequence int, platform, platformID, title, artist string) *CachedTrack {
	now := time.Now()
	return &CachedTrack{
		sequence:   sequence,
		platform:   platform,
		platformID: platformID,
		title:      title,
		artist:     artist,
		createdAt:  now,
		updatedAt:  now,
	}
}

func (t *CachedTrack) ID() string           { return t.id }
func (t *CachedTrack) Sequence() int        { return t.sequence }
func (t *CachedTrack) Platform() string     { return t.platform }
func (t *CachedTrack) PlatformID() string   { return t.platformID }
func (t *CachedTrack) Title() string        { return t.title }
func (t *CachedTrack) Artist() string       { return t.artist }
func (t *CachedTrack) CreatedAt() time.Time { return t.createdAt }
func (t *CachedTrack) UpdatedAt() time.Time { return t.updatedAt }

func (t *CachedTrack) SetID(id string)           { t.id = id }
func (t *CachedTrack) SetCreatedAt(ts time.Time) { t.createdAt = ts }
func (t *CachedTrack) SetUpdatedAt(ts time.Time) { t.updatedAt = ts }

// Validate checks that the track names a platform handle and a title.
func (t *CachedTrack) Validate() error {
	if t.platform == "" || t.platformID == "" {
		return fmt.Errorf("platform and platform id are required")
	}
	if t.title == "" {
		return fmt.Errorf("title is required")
	}
	return nil
}
