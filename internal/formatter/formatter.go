// package formatter renders migration results to various formats (JSON, CSV, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"

	"github.com/playlistbridge/playlistbridge/internal/tasks"
)

// trackStatus describes the outcome of a single track for report output.
func trackStatus(result tasks.TrackMigrationResult) string {
	switch {
	case result.Migrated():
		return "migrated"
	case result.Error != nil:
		return "error"
	default:
		return "not_found"
	}
}

type reportTrack struct {
	SourceID  string `json:"source_id"`
	Title     string `json:"title"`
	Artist    string `json:"artist"`
	Status    string `json:"status"`
	MatchedID string `json:"matched_id,omitempty"`
	FromCache bool   `json:"from_cache,omitempty"`
	Error     string `json:"error,omitempty"`
}

type report struct {
	JobID           string        `json:"job_id,omitempty"`
	SourcePlaylist  string        `json:"source_playlist"`
	DestPlaylist    string        `json:"dest_playlist"`
	DestPlaylistID  string        `json:"dest_playlist_id"`
	TotalTracks     int           `json:"total_tracks"`
	MigratedCount   int           `json:"migrated_count"`
	FailedCount     int           `json:"failed_count"`
	MatchPercentage float64       `json:"match_percentage"`
	Tracks          []reportTrack `json:"tracks"`
}

func buildReport(result *tasks.MigrationResult) report {
	r := report{
		JobID:           result.JobID,
		TotalTracks:     result.TotalTracks,
		MigratedCount:   result.MigratedCount,
		FailedCount:     result.FailedCount,
		MatchPercentage: result.MatchPercentage,
		Tracks:          make([]reportTrack, 0, len(result.TrackResults)),
	}

	if result.SourcePlaylist != nil {
		r.SourcePlaylist = result.SourcePlaylist.Name
	}
	if result.DestPlaylist != nil {
		r.DestPlaylist = result.DestPlaylist.Name
		r.DestPlaylistID = result.DestPlaylist.ID
	}

	for _, track := range result.TrackResults {
		rt := reportTrack{
			SourceID:  track.Source.ID,
			Title:     track.Source.Title,
			Artist:    track.Source.Artist,
			Status:    trackStatus(track),
			FromCache: track.FromCache,
		}
		if track.Matched != nil {
			rt.MatchedID = track.Matched.ID
			if track.Migrated() {
				rt.Title = track.Matched.Title
				rt.Artist = track.Matched.Artist
			}
		}
		if track.Error != nil {
			rt.Error = track.Error.Error()
		}
		r.Tracks = append(r.Tracks, rt)
	}

	return r
}

// ReportToJSON renders a migration result as indented JSON.
func ReportToJSON(result *tasks.MigrationResult) ([]byte, error) {
	data, err := json.MarshalIndent(buildReport(result), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode report: %w", err)
	}
	return data, nil
}

// ReportToCSV renders per-track outcomes as CSV with columns:
// Title, Artist, Status, SourceID, MatchedID, Error
func ReportToCSV(result *tasks.MigrationResult) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Title", "Artist", "Status", "SourceID", "MatchedID", "Error"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, track := range buildReport(result).Tracks {
		record := []string{
			track.Title,
			track.Artist,
			track.Status,
			track.SourceID,
			track.MatchedID,
			track.Error,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ReportToText renders a human-readable migration summary.
func ReportToText(result *tasks.MigrationResult) ([]byte, error) {
	var buf bytes.Buffer
	r := buildReport(result)

	buf.WriteString(fmt.Sprintf("Migration: %s -> %s\n", r.SourcePlaylist, r.DestPlaylist))
	if r.DestPlaylistID != "" {
		buf.WriteString(fmt.Sprintf("Destination playlist ID: %s\n", r.DestPlaylistID))
	}
	buf.WriteString(fmt.Sprintf("Migrated %d of %d tracks (%.1f%%)\n\n", r.MigratedCount, r.TotalTracks, r.MatchPercentage))

	for i, track := range r.Tracks {
		marker := "✓"
		detail := ""
		switch track.Status {
		case "not_found":
			marker = "✗"
			detail = " (no match)"
		case "error":
			marker = "✗"
			detail = fmt.Sprintf(" (%s)", track.Error)
		}
		buf.WriteString(fmt.Sprintf("%d. %s %s - %s%s\n", i+1, marker, track.Artist, track.Title, detail))
	}

	return buf.Bytes(), nil
}

// SaveToFile writes data to the specified file path with 0644 permissions.
func SaveToFile(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write file %s: %w", path, err)
	}
	return nil
}
