// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func userFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "user",
		Aliases: []string{"u"},
		Usage:   "Local user ID owning the stored tokens",
		Value:   "default",
	}
}

func platformFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "platform",
		Aliases: []string{"p"},
		Usage:   "Platform name (spotify or youtube)",
		Value:   "spotify",
	}
}

// setupCommand handles setup operations for configuration and storage.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Initialize configuration, database, and credential store",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
		},
		Action: r.Setup,
	}
}

// authCommand handles authentication operations
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage platform authentication",
		Commands: []*cli.Command{
			{
				Name:   "login",
				Usage:  "Authorize a platform using OAuth2 in the browser",
				Flags:  []cli.Flag{platformFlag(), userFlag()},
				Action: r.AuthLogin,
			},
			{
				Name:   "status",
				Usage:  "Show which platforms hold stored tokens",
				Flags:  []cli.Flag{userFlag()},
				Action: r.AuthStatus,
			},
			{
				Name:   "revoke",
				Usage:  "Discard stored tokens for a platform",
				Flags:  []cli.Flag{platformFlag(), userFlag()},
				Action: r.AuthRevoke,
			},
		},
	}
}

// playlistsCommand lists playlists on a platform.
func playlistsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "playlists",
		Usage: "List playlists on a platform",
		Flags: []cli.Flag{
			platformFlag(),
			userFlag(),
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print output",
				Value: true,
			},
		},
		Action: r.Playlists,
	}
}

// migrateCommand handles playlist migration operations
func migrateCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Migrate playlists between platforms",
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "Copy a playlist from one platform to another",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "source",
						Usage: "Source platform (spotify or youtube)",
						Value: "spotify",
					},
					&cli.StringFlag{
						Name:  "dest",
						Usage: "Destination platform (spotify or youtube)",
						Value: "youtube",
					},
					&cli.StringFlag{
						Name:  "playlist-id",
						Usage: "Source playlist ID",
					},
					&cli.BoolFlag{
						Name:  "pick",
						Usage: "Choose the source playlist interactively",
					},
					userFlag(),
					&cli.StringFlag{
						Name:  "report",
						Usage: "Report format (json, csv, or text)",
					},
					&cli.StringFlag{
						Name:    "report-file",
						Aliases: []string{"o"},
						Usage:   "Write the report to a file instead of stdout",
					},
				},
				Action: r.MigrateRun,
			},
			{
				Name:    "ui",
				Aliases: []string{"interactive"},
				Usage:   "Interactive TUI for playlist migration",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "source",
						Usage: "Source platform (spotify or youtube)",
						Value: "spotify",
					},
					&cli.StringFlag{
						Name:  "dest",
						Usage: "Destination platform (spotify or youtube)",
						Value: "youtube",
					},
					userFlag(),
				},
				Action: r.MigrateUI,
			},
			{
				Name:  "history",
				Usage: "Show past migration runs",
				Flags: []cli.Flag{
					userFlag(),
					&cli.StringFlag{
						Name:  "status",
						Usage: "Filter by status (pending, running, completed, failed)",
					},
				},
				Action: r.MigrateHistory,
			},
		},
	}
}

// serveCommand runs the HTTP server.
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the HTTP API server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "host",
				Usage: "Host to bind (defaults to config)",
			},
			&cli.IntFlag{
				Name:  "port",
				Usage: "Port to bind (defaults to config)",
			},
		},
		Action: r.Serve,
	}
}
