package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/robertmeta/links-cli/links"
	"github.com/robertmeta/links-cli/sources"
	"github.com/robertmeta/links-cli/store"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

const (
	ExitSuccess      = 0
	ExitGeneralError = 1
	ExitUsageError   = 2
	ExitDataError    = 3
)

func main() {
	app := &cli.App{
		Name:    "links-cli",
		Usage:   "Aggregate RSS/Atom feeds into paginated link pages",
		Version: "0.1.0",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Enable debug logging",
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "update",
				Usage: "Fetch all feeds and regenerate the link pages",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "feeds",
						Aliases: []string{"f"},
						Value:   "feeds.json",
						Usage:   "Feed list file (.json, .yaml or .opml)",
						EnvVars: []string{"LINKS_CLI_FEEDS"},
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Value:   "content/links",
						Usage:   "Output directory for generated pages",
						EnvVars: []string{"LINKS_CLI_OUTPUT"},
					},
					&cli.StringFlag{
						Name:  "templates",
						Usage: "Directory with page template overrides",
					},
					&cli.IntFlag{
						Name:  "page-size",
						Value: 30,
						Usage: "Links per page",
					},
					&cli.IntFlag{
						Name:  "concurrency",
						Value: 20,
						Usage: "Maximum parallel feed fetches",
					},
					&cli.DurationFlag{
						Name:  "timeout",
						Value: 10 * time.Second,
						Usage: "Per-feed fetch timeout",
					},
					&cli.StringFlag{
						Name:    "archive",
						Usage:   "SQLite database to archive run results (disabled if empty)",
						EnvVars: []string{"LINKS_CLI_ARCHIVE"},
					},
				},
				Action: update,
			},
			{
				Name:  "sources",
				Usage: "Print the configured feed URLs",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "feeds",
						Aliases: []string{"f"},
						Value:   "feeds.json",
						Usage:   "Feed list file (.json, .yaml or .opml)",
						EnvVars: []string{"LINKS_CLI_FEEDS"},
					},
				},
				Action: listSources,
			},
			{
				Name:  "history",
				Usage: "List archived runs",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "archive",
						Usage:    "SQLite archive database",
						Required: true,
						EnvVars:  []string{"LINKS_CLI_ARCHIVE"},
					},
					&cli.IntFlag{
						Name:    "limit",
						Aliases: []string{"l"},
						Value:   20,
						Usage:   "Maximum number of runs to return",
					},
				},
				Action: listHistory,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(ExitGeneralError)
	}
}

func newLogger(c *cli.Context) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if c.Bool("verbose") {
		cfg = zap.NewDevelopmentConfig()
	}
	// stdout stays JSON-only for scripting; diagnostics go to stderr.
	cfg.OutputPaths = []string{"stderr"}
	return cfg.Build()
}

func outputJSON(v interface{}) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func update(c *cli.Context) error {
	logger, err := newLogger(c)
	if err != nil {
		return cli.Exit(err.Error(), ExitGeneralError)
	}
	defer logger.Sync()

	urls, err := sources.Load(c.String("feeds"))
	if err != nil {
		return cli.Exit(err.Error(), ExitDataError)
	}

	var archive *store.Store
	if dbPath := c.String("archive"); dbPath != "" {
		archive, err = store.New(dbPath)
		if err != nil {
			return cli.Exit(fmt.Sprintf("Failed to open archive: %v", err), ExitDataError)
		}
		defer archive.Close()
	}

	pipeline, err := links.New(links.Config{
		Sources:      urls,
		OutputDir:    c.String("output"),
		TemplatesDir: c.String("templates"),
		PageSize:     c.Int("page-size"),
		Concurrency:  c.Int("concurrency"),
		Timeout:      c.Duration("timeout"),
	}, archive, logger)
	if err != nil {
		return cli.Exit(err.Error(), ExitGeneralError)
	}

	summary, err := pipeline.Run(c.Context)
	if err != nil {
		return cli.Exit(fmt.Sprintf("Update failed: %v", err), ExitGeneralError)
	}

	return outputJSON(summary)
}

func listSources(c *cli.Context) error {
	urls, err := sources.Load(c.String("feeds"))
	if err != nil {
		return cli.Exit(err.Error(), ExitDataError)
	}

	return outputJSON(map[string]interface{}{
		"count":   len(urls),
		"sources": urls,
	})
}

func listHistory(c *cli.Context) error {
	s, err := store.New(c.String("archive"))
	if err != nil {
		return cli.Exit(fmt.Sprintf("Failed to open archive: %v", err), ExitDataError)
	}
	defer s.Close()

	runs, err := s.GetRuns(c.Int("limit"))
	if err != nil {
		return cli.Exit(fmt.Sprintf("Failed to get runs: %v", err), ExitDataError)
	}

	return outputJSON(map[string]interface{}{
		"count": len(runs),
		"runs":  runs,
	})
}
