package cmd

import (
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/ajurgis/repotally/internal/output"
)

// LogCmd returns the log command.
func LogCmd() *cli.Command {
	return &cli.Command{
		Name:      "log",
		Aliases:   []string{"l"},
		Usage:     "Resolve a commit range and list its commits newest-first",
		ArgsUsage: "[range]",
		Flags:     commonFlags(),
		Action:    logAction,
	}
}

func logAction(c *cli.Context) error {
	ctx, err := NewCommandContext(c)
	if err != nil {
		return err
	}
	defer ctx.Close()

	commits, err := ctx.Repo.Resolve(c.Context, ctx.RangeExpr)
	if err != nil {
		return fmt.Errorf("resolving %q: %w", ctx.RangeExpr, err)
	}

	report := &output.LogReport{
		RepoPath:    ctx.RepoPath,
		Range:       ctx.RangeExpr,
		GeneratedAt: time.Now(),
		Commits:     commits,
	}

	opts := ctx.OutputOptions(c)
	return output.NewLogReportWriter(opts.Format).Write(report, opts)
}
