package cmd

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/ajurgis/repotally/internal/history"
	"github.com/ajurgis/repotally/internal/output"
)

// AuthorsCmd returns the authors command.
func AuthorsCmd() *cli.Command {
	flags := append(commonFlags(),
		&cli.StringFlag{
			Name:  "by",
			Usage: "Ranking criterion (commits, modifications)",
			Value: "commits",
		},
		&cli.BoolFlag{
			Name:  "committers",
			Usage: "Rank committer identities instead of author identities",
		},
	)

	return &cli.Command{
		Name:      "authors",
		Aliases:   []string{"a"},
		Usage:     "Rank contributors over a commit range",
		ArgsUsage: "[range]",
		Flags:     flags,
		Action:    authorsAction,
	}
}

func authorsAction(c *cli.Context) error {
	newContext := NewCommandContext
	if c.String("by") == "modifications" {
		newContext = NewDetailCommandContext
	}
	ctx, err := newContext(c)
	if err != nil {
		return err
	}
	defer ctx.Close()

	ranking := c.String("by")
	top := ctx.Config.Output.Top
	if top <= 0 {
		top = math.MaxInt
	}

	var items []history.AuthorRank
	switch ranking {
	case "commits":
		if c.Bool("committers") {
			items, err = committerRanks(c, ctx, top)
		} else {
			items, err = ctx.Repo.TopAuthors(c.Context, ctx.RangeExpr, top)
		}
	case "modifications":
		items, err = ctx.Repo.SignificantAuthors(c.Context, ctx.RangeExpr, top)
	default:
		return fmt.Errorf("unknown ranking criterion %q", ranking)
	}
	if err != nil {
		return fmt.Errorf("ranking contributors for %q: %w", ctx.RangeExpr, err)
	}

	report := &output.AuthorsReport{
		RepoPath:    ctx.RepoPath,
		Range:       ctx.RangeExpr,
		GeneratedAt: time.Now(),
		Ranking:     ranking,
		Items:       items,
	}

	opts := ctx.OutputOptions(c)
	return output.NewAuthorsReportWriter(opts.Format).Write(report, opts)
}

// committerRanks ranks committer identities by the number of commits they
// committed inside the range.
func committerRanks(c *cli.Context, ctx *CommandContext, top int) ([]history.AuthorRank, error) {
	commits, err := ctx.Repo.Resolve(c.Context, ctx.RangeExpr)
	if err != nil {
		return nil, err
	}

	counts := make(map[*history.Actor]int)
	var order []*history.Actor
	for _, commit := range commits {
		if commit.Committer == nil {
			continue
		}
		if _, seen := counts[commit.Committer]; !seen {
			order = append(order, commit.Committer)
		}
		counts[commit.Committer]++
	}

	items := make([]history.AuthorRank, 0, len(order))
	for _, actor := range order {
		items = append(items, history.AuthorRank{Actor: actor, Commits: counts[actor]})
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Commits != items[j].Commits {
			return items[i].Commits > items[j].Commits
		}
		return items[i].Actor.ID < items[j].Actor.ID
	})

	if top < len(items) {
		items = items[:top]
	}
	return items, nil
}
