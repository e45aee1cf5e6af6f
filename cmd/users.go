package main

import (
	"context"
	"fmt"

	"github.com/playlistbridge/playlistbridge/internal/models"
	"github.com/playlistbridge/playlistbridge/internal/repositories"
	"github.com/playlistbridge/playlistbridge/internal/shared"
	"github.com/urfave/cli/v3"
)

// usersCommand manages local user records.
func usersCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "users",
		Usage: "Manage local users",
		Commands: []*cli.Command{
			{
				Name:  "add",
				Usage: "Register a local user",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "email",
						Usage:    "User email address",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "name",
						Usage:    "Display name",
						Required: true,
					},
				},
				Action: r.UserAdd,
			},
			{
				Name:   "list",
				Usage:  "List registered users",
				Action: r.UserList,
			},
		},
	}
}

// UserAdd registers a local user record.
func (r *Runner) UserAdd(ctx context.Context, cmd *cli.Command) error {
	if r.db == nil {
		return fmt.Errorf("%w: database unavailable, run 'playlistbridge setup' first", shared.ErrMissingConfig)
	}

	user := models.NewUser(0, cmd.String("email"), cmd.String("name"))
	if err := repositories.NewUserRepository(r.db).Create(user); err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	r.logger.Info("user created", "id", user.ID(), "email", user.Email())
	r.writePlain("✓ User created\n")
	r.writePlain("ID: %s\n", user.ID())
	r.writePlain("Use it with: playlistbridge auth login --user %s\n", user.ID())

	return nil
}

// UserList lists registered users.
func (r *Runner) UserList(ctx context.Context, cmd *cli.Command) error {
	if r.db == nil {
		return fmt.Errorf("%w: database unavailable, run 'playlistbridge setup' first", shared.ErrMissingConfig)
	}

	users, err := repositories.NewUserRepository(r.db).List(nil)
	if err != nil {
		return fmt.Errorf("failed to list users: %w", err)
	}

	if len(users) == 0 {
		return r.writePlain("No users registered\n")
	}

	r.writePlainHeader(fmt.Sprintf("Users (%d)", len(users)))
	for _, user := range users {
		r.writePlain("%s  %s <%s>\n", user.ID(), user.Name(), user.Email())
	}

	return nil
}
