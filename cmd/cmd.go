// submodule cmd contains command definitions
package main

import (
	"fmt"
	"strings"

	"github.com/desertthunder/songrec/internal/publish"
	"github.com/urfave/cli/v3"
)

// batchFlags are shared by every recommend subcommand.
func batchFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "publish",
			Aliases: []string{"p"},
			Usage:   fmt.Sprintf("Publish the batch as a playlist (%s)", strings.Join(publish.Platforms, ", ")),
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Write the batch to a .csv, .md, .txt or .json file",
		},
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Output raw JSON",
		},
	}
}

// recommendCommand runs one engine non-interactively
func recommendCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "recommend",
		Aliases: []string{"rec"},
		Usage:   "Generate a recommendation batch",
		Commands: []*cli.Command{
			{
				Name:  "genre",
				Usage: "Tracks from a genre and its similar tags",
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:     "seed",
						Aliases:  []string{"s"},
						Usage:    "Genre tag to start from",
						Required: true,
					},
					&cli.IntFlag{
						Name:    "limit",
						Aliases: []string{"l"},
						Usage:   "Number of tracks to collect (defaults to recommend.genre_limit)",
					},
				}, batchFlags()...),
				Action: r.RecommendGenre,
			},
			{
				Name:  "user",
				Usage: "Tracks from your top artists",
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:  "time-range",
						Usage: "Listening window: short_term, medium_term or long_term",
					},
					&cli.IntFlag{
						Name:  "artists",
						Usage: "Number of top artists to sample",
					},
				}, batchFlags()...),
				Action: r.RecommendUser,
			},
			{
				Name:   "seasonal",
				Usage:  "Tracks for the current season and time of day",
				Flags:  batchFlags(),
				Action: r.RecommendSeasonal,
			},
			{
				Name:   "weather",
				Usage:  "Tracks for the weather where you are",
				Flags:  batchFlags(),
				Action: r.RecommendWeather,
			},
		},
	}
}

// albumsCommand handles saved album operations
func albumsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "albums",
		Usage: "Saved album operations",
		Commands: []*cli.Command{
			{
				Name:  "random",
				Usage: "Pick a random album from your library",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "cover",
						Usage: "Save the cover image to this path",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.AlbumsRandom,
			},
		},
	}
}

// authCommand handles platform authorization
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Authorize songrec with Spotify and YouTube",
		Commands: []*cli.Command{
			{
				Name:   "spotify",
				Usage:  "Authorize with Spotify using OAuth2",
				Action: r.AuthSpotify,
			},
			{
				Name:   "youtube",
				Usage:  "Authorize with YouTube using OAuth2",
				Action: r.AuthYouTube,
			},
			{
				Name:  "status",
				Usage: "Show saved tokens and test the Spotify session",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.AuthStatus,
			},
		},
	}
}

// setupCommand handles first-run setup
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Create the config file and history database",
		Commands: []*cli.Command{
			{
				Name:   "config",
				Usage:  "Write a config file from the bundled template",
				Action: r.SetupConfig,
			},
			{
				Name:  "database",
				Usage: "Initialize the history database and run migrations",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "rollback",
						Usage: "Roll back the latest applied migration instead",
					},
				},
				Action: r.SetupDatabase,
			},
		},
	}
}

// historyCommand handles recorded runs
func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Browse recorded recommendation runs",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List recorded runs",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "engine",
						Usage: "Only show runs from this engine",
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of runs to show",
						Value: 20,
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.HistoryList,
			},
			{
				Name:  "show",
				Usage: "Show a run and where it was published",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "run", UsageText: "run id or sequence number"},
				},
				Action: r.HistoryShow,
			},
			{
				Name:  "delete",
				Usage: "Delete a run",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "run", UsageText: "run id or sequence number"},
				},
				Action: r.HistoryDelete,
			},
		},
	}
}

// interactiveCommand launches the terminal driver
func interactiveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "interactive",
		Aliases: []string{"i"},
		Usage:   "Choose engines and publish playlists from a terminal UI",
		Action:  r.Interactive,
	}
}

// interactiveFlags live on the root command, which runs the driver when no subcommand is given.
func interactiveFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "log-file",
			Usage: "Where logs go while the UI owns the terminal",
			Value: "~/.songrec/interactive.log",
		},
	}
}
