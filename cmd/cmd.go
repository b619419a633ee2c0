// submodule cmd contains command definitions
package main

import (
	"time"

	"github.com/urfave/cli/v3"
)

// tuiCommand returns the top-level TUI command for the interactive panel.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"panel", "ui"},
		Usage:   "Launch the interactive artist panel",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "simulate",
				Usage: "Run syncs against a scripted local sequence instead of the server",
			},
			&cli.StringFlag{
				Name:  "log-file",
				Usage: "Where to write logs while the TUI owns the terminal",
				Value: "./tmp/smartlist-tui.log",
			},
		},
		Action: r.TUI,
	}
}

// syncCommand runs a headless sync session.
func syncCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "sync",
		Usage: "Sync every saved artist and print each status change",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "simulate",
				Usage: "Use a scripted local sequence instead of the server's stream",
			},
			&cli.StringSliceFlag{
				Name:    "artist",
				Aliases: []string{"a"},
				Usage:   "Artist ID to sync (simulate only; defaults to the saved artists)",
			},
			&cli.StringSliceFlag{
				Name:  "fail",
				Usage: "Artist ID the simulation should fail (simulate only)",
			},
			&cli.DurationFlag{
				Name:  "delay",
				Usage: "Per-artist delay for the simulation (defaults to panel.simulate_delay)",
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "Give up on the session after this long",
				Value: 5 * time.Minute,
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Print the session result as JSON instead of a summary",
			},
		},
		Action: r.Sync,
	}
}

// artistsCommand handles artist listing and bulk saves.
func artistsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "artists",
		Usage: "List and save artists",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List followed artists and whether they are saved",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "filter",
						Aliases: []string{"f"},
						Usage:   "Fuzzy filter on artist name",
					},
					&cli.StringFlag{
						Name:  "format",
						Usage: "Output format: text, csv, json or markdown",
						Value: "text",
					},
					&cli.BoolFlag{
						Name:  "saved",
						Usage: "Only show saved artists",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Write to a file instead of stdout",
					},
				},
				Action: r.ArtistsList,
			},
			{
				Name:  "save",
				Usage: "Add and remove saved artists in one commit",
				Flags: []cli.Flag{
					&cli.StringSliceFlag{
						Name:  "on",
						Usage: "Artist ID to save",
					},
					&cli.StringSliceFlag{
						Name:  "off",
						Usage: "Artist ID to remove",
					},
				},
				Action: r.ArtistsSave,
			},
		},
	}
}

// serveCommand runs the persistence and sync service.
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the artist persistence and sync service",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "addr",
				Usage: "Listen address (defaults to server.host:server.port)",
			},
		},
		Action: r.Serve,
	}
}

// setupCommand handles setup operations for the database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "database",
				Usage:  "Create the config file if needed, then initialize the database and run migrations",
				Action: r.SetupDatabase,
			},
		},
	}
}

// authCommand handles authentication operations
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage authentication",
		Commands: []*cli.Command{
			{
				Name:   "spotify",
				Usage:  "Authenticate with Spotify using OAuth2",
				Action: r.SpotifyAuth,
			},
		},
	}
}
