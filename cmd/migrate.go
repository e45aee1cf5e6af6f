package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/playlistbridge/playlistbridge/internal/formatter"
	"github.com/playlistbridge/playlistbridge/internal/models"
	"github.com/playlistbridge/playlistbridge/internal/repositories"
	"github.com/playlistbridge/playlistbridge/internal/shared"
	"github.com/playlistbridge/playlistbridge/internal/tasks"
	"github.com/playlistbridge/playlistbridge/internal/ui"
	"github.com/urfave/cli/v3"
)

// MigrateRun copies a playlist from one platform to another.
func (r *Runner) MigrateRun(ctx context.Context, cmd *cli.Command) error {
	userID := cmd.String("user")

	source, err := r.resolveClient(cmd.String("source"))
	if err != nil {
		return err
	}
	dest, err := r.resolveClient(cmd.String("dest"))
	if err != nil {
		return err
	}
	if cmd.String("source") == cmd.String("dest") {
		return fmt.Errorf("%w: source and destination must differ", shared.ErrInvalidPlatform)
	}

	playlistID := cmd.String("playlist-id")
	if cmd.Bool("pick") {
		playlist, err := ui.PickPlaylist(ctx, userID, source)
		if err != nil {
			return err
		}
		if playlist == nil {
			return r.writePlain("No playlist selected\n")
		}
		playlistID = playlist.ID
	}
	if playlistID == "" {
		return fmt.Errorf("%w: --playlist-id (or --pick) is required", shared.ErrMissingArgument)
	}

	r.logger.Info("starting migration", "source", source.Name(), "dest", dest.Name(), "playlist", playlistID)
	r.writePlain("Migrating playlist %s from %s to %s...\n\n", playlistID, source.Name(), dest.Name())

	progressCh := make(chan tasks.ProgressUpdate, 50)
	drained := make(chan struct{})
	go func() {
		defer close(drained)
		for update := range progressCh {
			switch update.Phase {
			case tasks.FetchSource, tasks.FetchTracks:
				r.writePlain("📥 %s\n", update.Message)
			case tasks.CreateDest:
				r.writePlain("📝 %s\n", update.Message)
			case tasks.SearchTracks, tasks.AddTracks:
				r.writePlain("   %s\n", update.Message)
			case tasks.Complete:
				r.writePlain("\n%s\n", update.Message)
			}
		}
	}()

	result, err := r.engine.Migrate(ctx, progressCh, userID, source, dest, playlistID)
	close(progressCh)
	<-drained

	if err != nil {
		return err
	}

	r.writePlain("\n")
	r.writePlainHeader("Migration Complete!")
	r.writePlain("Source: %s (%d tracks)\n", result.SourcePlaylist.Name, result.TotalTracks)
	r.writePlain("Destination: %s\n", result.DestPlaylist.Name)
	r.writePlain("Success rate: %d/%d (%.1f%%)\n", result.MigratedCount, result.TotalTracks, result.MatchPercentage)

	if result.FailedCount > 0 {
		r.writePlain("\nFailed to migrate %d tracks:\n", result.FailedCount)
		for _, track := range result.TrackResults {
			if !track.Migrated() {
				r.writePlain("  - %s - %s\n", track.Source.Artist, track.Source.Title)
			}
		}
	}

	return r.writeReport(cmd, result)
}

// writeReport renders the migration report in the requested format.
func (r *Runner) writeReport(cmd *cli.Command, result *tasks.MigrationResult) error {
	format := cmd.String("report")
	path := cmd.String("report-file")
	if format == "" && path == "" {
		return nil
	}
	if format == "" {
		format = "json"
	}

	var data []byte
	var err error
	switch format {
	case "json":
		data, err = formatter.ReportToJSON(result)
	case "csv":
		data, err = formatter.ReportToCSV(result)
	case "text":
		data, err = formatter.ReportToText(result)
	default:
		return fmt.Errorf("%w: report format %q (must be json, csv, or text)", shared.ErrInvalidArgument, format)
	}
	if err != nil {
		return fmt.Errorf("failed to build report: %w", err)
	}

	if path != "" {
		if err := formatter.SaveToFile(path, data); err != nil {
			return err
		}
		return r.writePlain("\nReport saved to %s\n", path)
	}

	return r.writePlain("\n%s", data)
}

// MigrateUI launches the interactive terminal UI for playlist migration.
func (r *Runner) MigrateUI(ctx context.Context, cmd *cli.Command) error {
	userID := cmd.String("user")

	source, err := r.resolveClient(cmd.String("source"))
	if err != nil {
		return err
	}
	dest, err := r.resolveClient(cmd.String("dest"))
	if err != nil {
		return err
	}

	// Redirect logs to a file to avoid interfering with TUI rendering
	logPath := filepath.Join(os.TempDir(), "playlistbridge-tui.log")
	if logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644); err == nil {
		defer logFile.Close()
		r.logger.SetOutput(logFile)
	}

	model := ui.NewModel(ctx, userID, source, dest, r.engine)
	final, err := tea.NewProgram(model).Run()
	if err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	if result, err := final.(*ui.Model).Result(); err != nil {
		return err
	} else if result != nil {
		r.logger.Info("migration finished",
			"playlist", result.SourcePlaylist.Name,
			"migrated", result.MigratedCount,
			"failed", result.FailedCount,
		)
	}

	return nil
}

// MigrateHistory shows past migration runs.
func (r *Runner) MigrateHistory(ctx context.Context, cmd *cli.Command) error {
	if r.db == nil {
		return fmt.Errorf("%w: database unavailable, run 'playlistbridge setup' first", shared.ErrMissingConfig)
	}

	criteria := map[string]any{"user_id": cmd.String("user")}
	if status := cmd.String("status"); status != "" {
		criteria["status"] = status
	}

	jobs, err := repositories.NewMigrationRepository(r.db).List(criteria)
	if err != nil {
		return fmt.Errorf("failed to list migrations: %w", err)
	}

	if len(jobs) == 0 {
		return r.writePlain("No migrations found\n")
	}

	r.writePlainHeader(fmt.Sprintf("Migration History (%d)", len(jobs)))
	for _, job := range jobs {
		icon := "•"
		switch job.Status() {
		case models.MigrationCompleted:
			icon = "✓"
		case models.MigrationFailed:
			icon = "✗"
		}

		r.writePlain("%s %s → %s  playlist %s  [%s]\n",
			icon, job.SourcePlatform(), job.DestPlatform(), job.SourcePlaylistID(), job.Status())
		r.writePlain("  %d/%d tracks migrated, started %s\n",
			job.TracksMigrated(), job.TracksTotal(), job.CreatedAt().Format("2006-01-02 15:04"))
		if job.ErrorMessage() != "" {
			r.writePlain("  error: %s\n", job.ErrorMessage())
		}
	}

	return nil
}
