package formatter

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/playlistbridge/playlistbridge/internal/services"
	"github.com/playlistbridge/playlistbridge/internal/tasks"
	mocks "github.com/playlistbridge/playlistbridge/internal/testing"
)

func sampleResult() *tasks.MigrationResult {
	return &tasks.MigrationResult{
		JobID:          "job-1",
		SourcePlaylist: &services.Playlist{ID: "pl1", Name: "Road Trip"},
		DestPlaylist:   &services.Playlist{ID: "PLnew", Name: "Road Trip"},
		TrackResults: []tasks.TrackMigrationResult{
			{
				Source:  services.Track{ID: "s1", Title: "One", Artist: "A"},
				Matched: &services.Track{ID: "yt1", Title: "One", Artist: "A"},
			},
			{
				Source: services.Track{ID: "s2", Title: "Two", Artist: "B"},
			},
			{
				Source: services.Track{ID: "s3", Title: "Three", Artist: "C"},
				Error:  errors.New("request throttled"),
			},
		},
		TotalTracks:     3,
		MigratedCount:   1,
		FailedCount:     2,
		MatchPercentage: 33.333333,
	}
}

func TestReportToJSON(t *testing.T) {
	data, err := ReportToJSON(sampleResult())
	if err != nil {
		t.Fatalf("failed to render JSON: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}

	if decoded["job_id"] != "job-1" || decoded["dest_playlist_id"] != "PLnew" {
		t.Errorf("unexpected report header: %v", decoded)
	}

	tracks := decoded["tracks"].([]any)
	if len(tracks) != 3 {
		t.Fatalf("expected 3 tracks, got %d", len(tracks))
	}

	first := tracks[0].(map[string]any)
	if first["status"] != "migrated" || first["matched_id"] != "yt1" {
		t.Errorf("unexpected first track: %v", first)
	}

	second := tracks[1].(map[string]any)
	if second["status"] != "not_found" {
		t.Errorf("expected not_found status, got %v", second["status"])
	}

	third := tracks[2].(map[string]any)
	if third["status"] != "error" || third["error"] != "request throttled" {
		t.Errorf("unexpected third track: %v", third)
	}
}

func TestReportToCSV(t *testing.T) {
	data, err := ReportToCSV(sampleResult())
	if err != nil {
		t.Fatalf("failed to render CSV: %v", err)
	}

	records, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid CSV: %v", err)
	}

	if len(records) != 4 {
		t.Fatalf("expected header plus 3 rows, got %d", len(records))
	}
	if records[0][0] != "Title" {
		t.Errorf("unexpected header: %v", records[0])
	}
	if records[1][2] != "migrated" || records[2][2] != "not_found" || records[3][2] != "error" {
		t.Errorf("unexpected statuses: %v %v %v", records[1][2], records[2][2], records[3][2])
	}
}

func TestReportToText(t *testing.T) {
	data, err := ReportToText(sampleResult())
	if err != nil {
		t.Fatalf("failed to render text: %v", err)
	}
	text := string(data)

	if !strings.Contains(text, "Migrated 1 of 3 tracks") {
		t.Errorf("expected summary line, got:\n%s", text)
	}
	if !strings.Contains(text, "✓ A - One") {
		t.Errorf("expected migrated marker, got:\n%s", text)
	}
	if !strings.Contains(text, "✗ B - Two (no match)") {
		t.Errorf("expected miss marker, got:\n%s", text)
	}
	if !strings.Contains(text, "(request throttled)") {
		t.Errorf("expected error detail, got:\n%s", text)
	}
}

func TestSaveToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")

	data, err := ReportToJSON(sampleResult())
	if err != nil {
		t.Fatalf("failed to render JSON: %v", err)
	}
	if err := SaveToFile(path, data); err != nil {
		t.Fatalf("failed to save file: %v", err)
	}

	mocks.AssertFileExists(t, path)
	if content := mocks.MustReadFile(t, path); !strings.Contains(content, "job-1") {
		t.Error("expected report content in saved file")
	}
}
