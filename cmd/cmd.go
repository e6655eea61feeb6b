// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "config.toml",
	}
}

// setupCommand initializes the local database
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Initialize database and run migrations",
		Flags: []cli.Flag{
			configFlag(),
			&cli.BoolFlag{
				Name:  "rollback",
				Usage: "Roll back the most recent migration instead",
			},
		},
		Action: r.Setup,
	}
}

// importCommand submits import jobs to the catalog server
func importCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "import",
		Aliases: []string{"imp"},
		Usage:   "Start catalog import jobs",
		Commands: []*cli.Command{
			{
				Name:  "plex",
				Usage: "Import from the linked Plex library",
				Flags: []cli.Flag{
					configFlag(),
					&cli.StringFlag{
						Name:  "section",
						Usage: "Plex library section to import",
					},
					&cli.BoolFlag{
						Name:  "wait",
						Usage: "Stay attached until the job settles",
					},
				},
				Action: r.ImportPlex,
			},
			{
				Name:  "csv",
				Usage: "Import from a CSV export file",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "file",
					},
				},
				Flags: []cli.Flag{
					configFlag(),
					&cli.StringFlag{
						Name:    "dialect",
						Aliases: []string{"d"},
						Usage:   "CSV dialect: generic, delicious, or calibre (auto-detected when omitted)",
					},
					&cli.BoolFlag{
						Name:  "wait",
						Usage: "Stay attached until the job settles",
					},
				},
				Action: r.ImportCSV,
			},
		},
	}
}

// jobsCommand inspects and manages the import job ledger
func jobsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "jobs",
		Usage: "Inspect import jobs",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List tracked import jobs, newest first",
				Flags: []cli.Flag{
					configFlag(),
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
					},
				},
				Action: r.JobsList,
			},
			{
				Name:  "dismiss",
				Usage: "Remove a settled job from the ledger",
				Flags: []cli.Flag{
					configFlag(),
					&cli.IntFlag{
						Name:     "id",
						Usage:    "Job ID to dismiss",
						Required: true,
					},
				},
				Action: r.JobsDismiss,
			},
			{
				Name:  "watch",
				Usage: "Run a headless watcher that polls and refreshes the ledger",
				Flags: []cli.Flag{
					configFlag(),
				},
				Action: r.JobsWatch,
			},
		},
	}
}

// shelfCommand browses and exports the local catalog cache
func shelfCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "shelf",
		Usage: "Browse the comic collection",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List comics sorted by series and issue",
				Flags: []cli.Flag{
					configFlag(),
					&cli.StringFlag{
						Name:  "series",
						Usage: "Filter to one series",
					},
					&cli.BoolFlag{
						Name:  "cached",
						Usage: "Read from the local cache without contacting the server",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
					},
				},
				Action: r.ShelfList,
			},
			{
				Name:  "export",
				Usage: "Export the shelf to a file",
				Flags: []cli.Flag{
					configFlag(),
					&cli.StringFlag{
						Name:  "series",
						Usage: "Filter to one series",
					},
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Export format: csv, json, markdown, or text",
						Value:   "csv",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file path (extension added from format)",
					},
				},
				Action: r.ShelfExport,
			},
		},
	}
}

// tuiCommand launches the interactive shelf
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "tui",
		Usage: "Open the interactive shelf with live import status",
		Flags: []cli.Flag{
			configFlag(),
		},
		Action: r.TUI,
	}
}
