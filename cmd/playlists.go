package main

import (
	"context"
	"fmt"

	"github.com/playlistbridge/playlistbridge/internal/shared"
	"github.com/urfave/cli/v3"
)

// Playlists lists the user's playlists on a platform.
func (r *Runner) Playlists(ctx context.Context, cmd *cli.Command) error {
	platform := cmd.String("platform")
	userID := cmd.String("user")

	client, err := r.resolveClient(platform)
	if err != nil {
		return err
	}

	r.logger.Infof("listing %s playlists for user %v", platform, userID)

	playlists, err := client.ListPlaylists(ctx, userID)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(playlists, cmd.Bool("pretty"))
	}

	if len(playlists) == 0 {
		return r.writePlain("No playlists found on %s\n", client.Name())
	}

	r.writePlainHeader(fmt.Sprintf("%s Playlists (%d)", client.Name(), len(playlists)))
	for i, playlist := range playlists {
		r.writePlain("%d. %s (%d tracks)\n", i+1, playlist.Name, playlist.TrackCount)
		if playlist.Description != "" {
			r.writePlain("   %s\n", playlist.Description)
		}
		r.writePlain("   ID: %s\n", playlist.ID)
	}

	return nil
}
