// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// setupCommand handles configuration and database setup.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "config",
				Usage:  "Write config.toml from the built-in example",
				Action: r.SetupConfig,
			},
			{
				Name:   "database",
				Usage:  "Initialize database and run migrations",
				Action: r.SetupDatabase,
			},
			{
				Name:   "rollback",
				Usage:  "Revert the most recent database migration",
				Action: r.SetupRollback,
			},
		},
	}
}

// catalogCommand handles the catalog store and its API.
func catalogCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "catalog",
		Aliases: []string{"cat"},
		Usage:   "Import the track catalog and serve the catalog API",
		Commands: []*cli.Command{
			{
				Name:  "import",
				Usage: "Replace the stored catalog with a CSV file",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "csv",
						Usage:    "Path to the catalog CSV",
						Required: true,
					},
				},
				Action: r.CatalogImport,
			},
			{
				Name:  "serve",
				Usage: "Serve the catalog API",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "host",
						Usage: "Listen host (default: server.host)",
					},
					&cli.IntFlag{
						Name:  "port",
						Usage: "Listen port (default: server.port)",
					},
				},
				Action: r.CatalogServe,
			},
			{
				Name:  "history",
				Usage: "List previous imports",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.CatalogHistory,
			},
		},
	}
}

func selectionFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "genre",
			Aliases: []string{"g"},
			Usage:   "Only tracks of this genre (case-insensitive)",
			Value:   "Todos",
		},
		&cli.StringFlag{
			Name:    "artist",
			Aliases: []string{"a"},
			Usage:   "Only tracks by this artist (case-insensitive)",
			Value:   "Todos",
		},
	}
}

// dashCommand handles the dashboard views.
func dashCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "dash",
		Aliases: []string{"dashboard"},
		Usage:   "Fetch a snapshot from the catalog API and show the dashboard",
		Commands: []*cli.Command{
			{
				Name:  "show",
				Usage: "Print Top-N charts and the bounded track table",
				Flags: append(selectionFlags(),
					&cli.IntFlag{
						Name:  "top",
						Usage: "Buckets per chart (default: dashboard.top_n)",
					},
					&cli.BoolFlag{
						Name:  "local",
						Usage: "Rank counts taken from the fetched tracks instead of the catalog",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
						Value: true,
					},
				),
				Action: r.DashShow,
			},
			{
				Name:  "export",
				Usage: "Export the bounded filtered view",
				Flags: append(selectionFlags(),
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "csv, markdown or txt",
						Value:   "csv",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file path (default: tracks.{ext})",
					},
				),
				Action: r.DashExport,
			},
			{
				Name:  "web",
				Usage: "Serve the browser dashboard",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "host",
						Usage: "Listen host (default: server.host)",
					},
					&cli.IntFlag{
						Name:  "port",
						Usage: "Listen port",
						Value: 8080,
					},
					&cli.BoolFlag{
						Name:  "open",
						Usage: "Open the dashboard in a browser",
					},
				},
				Action: r.DashWeb,
			},
		},
	}
}

// apiCommand handles direct catalog API calls
func apiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "api",
		Usage: "Direct calls to the catalog API",
		Commands: []*cli.Command{
			{
				Name:  "get",
				Usage: "Direct GET to the catalog API, prints raw JSON",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "path",
					},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
						Value: true,
					},
				},
				Action: r.APIGet,
			},
			{
				Name:   "health",
				Usage:  "Check the catalog API and print its row count and columns",
				Action: r.APIHealth,
			},
			{
				Name:  "correlation",
				Usage: "Print the Pearson correlation matrix of the numeric columns",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.APICorrelation,
			},
		},
	}
}

// tuiCommand returns the top-level TUI command for the interactive dashboard.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch the interactive terminal dashboard",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "log-file",
				Usage: "Where TUI logs are written",
				Value: "./tmp/songdash-tui.log",
			},
		},
		Action: r.TUI,
	}
}
