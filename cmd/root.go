package cmd

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/ajurgis/repotally/config"
	"github.com/ajurgis/repotally/internal/output"
)

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:    "repotally",
		Usage:   "Commit range resolution and contributor statistics for Git repositories",
		Version: "1.0.0",
		Commands: []*cli.Command{
			LogCmd(),
			AuthorsCmd(),
			StatsCmd(),
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Enable debug logging",
			},
		},
	}
}

// Common flags shared across commands
func commonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "repo",
			Aliases: []string{"r"},
			Usage:   "Path to Git repository",
		},
		&cli.StringFlag{
			Name:    "backend",
			Aliases: []string{"b"},
			Usage:   "History backend (gitlocal, gitcli, github)",
		},
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to configuration file",
		},
		&cli.BoolFlag{
			Name:  "detail-stats",
			Usage: "Fetch per-commit file lists and line counts",
		},
		&cli.BoolFlag{
			Name:  "no-cache",
			Usage: "Disable the persistent commit cache",
		},
		&cli.StringFlag{
			Name:  "cache-dir",
			Usage: "Commit cache directory (default: per-repo dir under the user cache dir)",
		},
		&cli.StringSliceFlag{
			Name:  "include",
			Usage: "Glob patterns to include (can be specified multiple times)",
		},
		&cli.StringSliceFlag{
			Name:  "exclude",
			Usage: "Glob patterns to exclude (can be specified multiple times)",
		},
		&cli.StringFlag{
			Name:    "format",
			Aliases: []string{"f"},
			Usage:   "Output format (console, json, csv, markdown)",
			Value:   "console",
		},
		&cli.IntFlag{
			Name:    "top",
			Aliases: []string{"n"},
			Usage:   "Number of top results to show (0: unlimited)",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output file path (default: stdout)",
		},
		&cli.BoolFlag{
			Name:  "verbose",
			Usage: "Enable debug logging",
		},
	}
}

// getOutputFormat parses the output format flag.
func getOutputFormat(s string) output.OutputFormat {
	switch s {
	case "json":
		return output.FormatJSON
	case "csv":
		return output.FormatCSV
	case "markdown", "md":
		return output.FormatMarkdown
	default:
		return output.FormatConsole
	}
}

// loadConfig loads configuration from file or defaults, applying CLI overrides.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if repo := c.String("repo"); repo != "" {
		cfg.Repo = repo
	}
	if backend := c.String("backend"); backend != "" {
		cfg.Backend = backend
	}
	if c.Bool("detail-stats") {
		cfg.DetailStats = true
	}
	if c.Bool("no-cache") {
		cfg.Cache.Enabled = false
	}
	if dir := c.String("cache-dir"); dir != "" {
		cfg.Cache.Dir = dir
	}
	if includes := c.StringSlice("include"); len(includes) > 0 {
		cfg.Filters.Include = includes
	}
	if excludes := c.StringSlice("exclude"); len(excludes) > 0 {
		cfg.Filters.Exclude = excludes
	}
	if c.IsSet("format") {
		cfg.Output.Format = c.String("format")
	}
	if c.IsSet("top") {
		cfg.Output.Top = c.Int("top")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Run executes the CLI application.
func Run() {
	if err := App().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
