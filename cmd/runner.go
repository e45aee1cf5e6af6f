package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/playlistbridge/playlistbridge/internal/services"
	"github.com/playlistbridge/playlistbridge/internal/shared"
	"github.com/playlistbridge/playlistbridge/internal/store"
	"github.com/playlistbridge/playlistbridge/internal/tasks"
	"github.com/playlistbridge/playlistbridge/internal/tokens"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config   *shared.Config
	db       *sql.DB
	store    store.Store
	managers map[string]*tokens.Manager
	clients  map[string]services.PlaylistClient
	engine   *tasks.Engine
	logger   *log.Logger
	output   io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config   *shared.Config
	DB       *sql.DB
	Store    store.Store
	Managers map[string]*tokens.Manager
	Clients  map[string]services.PlaylistClient
	Engine   *tasks.Engine
	Logger   *log.Logger
	Output   io.Writer
}

// NewRunner creates a new Runner with the provided configuration.
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Managers == nil {
		opts.Managers = map[string]*tokens.Manager{}
	}
	if opts.Clients == nil {
		opts.Clients = map[string]services.PlaylistClient{}
	}
	if opts.Engine == nil {
		opts.Engine = tasks.NewEngine(tasks.NewRatePacer(opts.Config.Migration.SearchesPerSecond), opts.Logger)
	}

	return &Runner{
		config:   opts.Config,
		db:       opts.DB,
		store:    opts.Store,
		managers: opts.Managers,
		clients:  opts.Clients,
		engine:   opts.Engine,
		logger:   opts.Logger,
		output:   opts.Output,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, usersCommand, playlistsCommand, migrateCommand, serveCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// resolveManager returns the token manager for a platform name.
func (r *Runner) resolveManager(platform string) (*tokens.Manager, error) {
	manager, ok := r.managers[platform]
	if !ok {
		return nil, fmt.Errorf("%w: no %s credentials configured, check config.toml", shared.ErrMissingCredentials, platform)
	}
	return manager, nil
}

// resolveClient returns the playlist client for a platform name.
func (r *Runner) resolveClient(platform string) (services.PlaylistClient, error) {
	client, ok := r.clients[platform]
	if !ok {
		return nil, fmt.Errorf("%w: %q (must be %q or %q)", shared.ErrInvalidPlatform, platform, services.PlatformSpotify, services.PlatformYouTube)
	}
	return client, nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
