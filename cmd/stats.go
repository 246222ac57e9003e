package cmd

import (
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/ajurgis/repotally/internal/output"
	"github.com/ajurgis/repotally/internal/stats"
)

// StatsCmd returns the stats command.
func StatsCmd() *cli.Command {
	return &cli.Command{
		Name:      "stats",
		Aliases:   []string{"s"},
		Usage:     "Aggregate per-file and per-author activity over a commit range",
		ArgsUsage: "[range]",
		Flags:     commonFlags(),
		Action:    statsAction,
	}
}

func statsAction(c *cli.Context) error {
	ctx, err := NewDetailCommandContext(c)
	if err != nil {
		return err
	}
	defer ctx.Close()

	report, err := stats.Collect(c.Context, ctx.Repo, ctx.RangeExpr, stats.Options{
		Include: ctx.Config.Filters.Include,
		Exclude: ctx.Config.Filters.Exclude,
	})
	if err != nil {
		return fmt.Errorf("collecting statistics for %q: %w", ctx.RangeExpr, err)
	}

	statsReport := &output.StatsReport{
		RepoPath:    ctx.RepoPath,
		Range:       ctx.RangeExpr,
		GeneratedAt: time.Now(),
		Stats:       report,
	}

	opts := ctx.OutputOptions(c)
	return output.NewStatsReportWriter(opts.Format).Write(statsReport, opts)
}
