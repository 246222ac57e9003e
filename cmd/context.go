package cmd

import (
	"fmt"
	"log/slog"

	"github.com/urfave/cli/v2"

	"github.com/ajurgis/repotally/config"
	"github.com/ajurgis/repotally/internal/history"
	"github.com/ajurgis/repotally/internal/output"
	"github.com/ajurgis/repotally/internal/store"
	"github.com/ajurgis/repotally/internal/vcs"
	"github.com/ajurgis/repotally/internal/vcs/gitcli"
	"github.com/ajurgis/repotally/internal/vcs/github"
	"github.com/ajurgis/repotally/internal/vcs/gitlocal"
)

// CommandContext holds common state for command execution.
// It encapsulates the shared setup logic across all commands.
type CommandContext struct {
	Config    *config.Config
	RepoPath  string
	RangeExpr string
	Repo      *history.Repository

	cache *store.Store
}

// NewCommandContext creates a context from CLI flags.
// It loads configuration, builds the backend adapter, opens the commit
// cache and replays it into a fresh repository handle.
func NewCommandContext(c *cli.Context) (*CommandContext, error) {
	return newCommandContext(c, false)
}

// NewDetailCommandContext is NewCommandContext with per-commit statistics
// forced on, for commands that cannot run without line counts.
func NewDetailCommandContext(c *cli.Context) (*CommandContext, error) {
	return newCommandContext(c, true)
}

func newCommandContext(c *cli.Context, forceDetail bool) (*CommandContext, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, err
	}
	if forceDetail {
		cfg.DetailStats = true
	}

	adapter, repoPath, err := buildAdapter(cfg)
	if err != nil {
		return nil, err
	}

	var cache *store.Store
	if cfg.Cache.Enabled {
		dir := cfg.Cache.Dir
		if dir == "" {
			dir, err = store.DefaultDir(repoPath)
			if err != nil {
				return nil, fmt.Errorf("resolving cache directory: %w", err)
			}
		}
		cache, err = store.Open(store.Config{Path: dir})
		if err != nil {
			return nil, fmt.Errorf("opening commit cache: %w", err)
		}
	}

	opts := history.Options{Logger: slog.Default()}
	if cache != nil {
		opts.Store = cache
	}
	repo := history.NewRepository(repoPath, adapter, opts)

	if cache != nil {
		if _, err := repo.Preload(c.Context); err != nil {
			cache.Close()
			return nil, fmt.Errorf("replaying commit cache: %w", err)
		}
	}

	rangeExpr := c.Args().First()
	if rangeExpr == "" {
		rangeExpr = "HEAD"
	}

	return &CommandContext{
		Config:    cfg,
		RepoPath:  repoPath,
		RangeExpr: rangeExpr,
		Repo:      repo,
		cache:     cache,
	}, nil
}

// buildAdapter constructs the history backend named by the configuration.
// The returned path identifies the repository in reports and cache keys.
func buildAdapter(cfg *config.Config) (vcs.Adapter, string, error) {
	switch cfg.Backend {
	case config.BackendGitLocal:
		adapter, err := gitlocal.Open(gitlocal.Options{
			Path:        cfg.Repo,
			DetailStats: cfg.DetailStats,
		})
		if err != nil {
			return nil, "", fmt.Errorf("failed to open repository: %w", err)
		}
		return adapter, cfg.Repo, nil

	case config.BackendGitCLI:
		return gitcli.New(cfg.Repo, cfg.DetailStats), cfg.Repo, nil

	case config.BackendGitHub:
		adapter := github.New(github.Options{
			Owner:       cfg.GitHub.Owner,
			Repo:        cfg.GitHub.Repo,
			Token:       cfg.GitHub.Token,
			BaseURL:     cfg.GitHub.BaseURL,
			DetailStats: cfg.DetailStats,
			Logger:      slog.Default(),
		})
		return adapter, cfg.GitHub.Owner + "/" + cfg.GitHub.Repo, nil

	default:
		return nil, "", fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}

// Close releases the commit cache, if one was opened.
func (ctx *CommandContext) Close() error {
	if ctx.cache != nil {
		return ctx.cache.Close()
	}
	return nil
}

// OutputOptions creates OutputOptions from the loaded configuration and CLI flags.
func (ctx *CommandContext) OutputOptions(c *cli.Context) output.OutputOptions {
	return output.OutputOptions{
		Format:     getOutputFormat(ctx.Config.Output.Format),
		Top:        ctx.Config.Output.Top,
		OutputPath: c.String("output"),
	}
}
