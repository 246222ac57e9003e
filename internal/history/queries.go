package history

import (
	"context"
	"fmt"
	"sort"

	"github.com/ajurgis/repotally/internal/vcs"
)

// AuthorRank ties an actor to its activity totals over one resolved range.
type AuthorRank struct {
	Actor     *Actor
	Commits   int
	Additions int
	Deletions int
}

// Modifications returns total lines changed by the actor in the range.
func (ar AuthorRank) Modifications() int {
	return ar.Additions + ar.Deletions
}

// Authors returns the distinct authors observed in the range, ordered by
// first appearance newest-first.
func (repo *Repository) Authors(ctx context.Context, expr string) ([]*Actor, error) {
	commits, err := repo.Resolve(ctx, expr)
	if err != nil {
		return nil, err
	}
	return collectActors(commits, func(c *Commit) *Actor { return c.Author }), nil
}

// Committers returns the distinct committers observed in the range, ordered
// by first appearance newest-first.
func (repo *Repository) Committers(ctx context.Context, expr string) ([]*Actor, error) {
	commits, err := repo.Resolve(ctx, expr)
	if err != nil {
		return nil, err
	}
	return collectActors(commits, func(c *Commit) *Actor { return c.Committer }), nil
}

// TopAuthors ranks the range's authors by commit count, descending, ties
// broken by actor id. A count larger than the number of distinct authors is
// clamped silently.
func (repo *Repository) TopAuthors(ctx context.Context, expr string, count int) ([]AuthorRank, error) {
	commits, err := repo.Resolve(ctx, expr)
	if err != nil {
		return nil, err
	}
	ranks := rankAuthors(commits)
	sort.Slice(ranks, func(i, j int) bool {
		if ranks[i].Commits != ranks[j].Commits {
			return ranks[i].Commits > ranks[j].Commits
		}
		return ranks[i].Actor.ID < ranks[j].Actor.ID
	})
	return ranks[:clampCount(count, len(ranks))], nil
}

// SignificantAuthors ranks the range's authors by total lines modified,
// descending, ties broken by actor id. It requires an adapter that delivers
// line statistics and fails before any cache or fetch work otherwise.
func (repo *Repository) SignificantAuthors(ctx context.Context, expr string, count int) ([]AuthorRank, error) {
	if !repo.adapter.SupportsLineStats() {
		return nil, fmt.Errorf("ranking authors by modifications: %w", vcs.ErrUnsupportedOperation)
	}
	commits, err := repo.Resolve(ctx, expr)
	if err != nil {
		return nil, err
	}
	ranks := rankAuthors(commits)
	sort.Slice(ranks, func(i, j int) bool {
		if m, n := ranks[i].Modifications(), ranks[j].Modifications(); m != n {
			return m > n
		}
		return ranks[i].Actor.ID < ranks[j].Actor.ID
	})
	return ranks[:clampCount(count, len(ranks))], nil
}

// TopCommits ranks the range's commits by total lines modified, descending,
// ties broken by commit id. It requires an adapter that delivers line
// statistics and fails before any cache or fetch work otherwise.
func (repo *Repository) TopCommits(ctx context.Context, expr string, count int) ([]*Commit, error) {
	if !repo.adapter.SupportsLineStats() {
		return nil, fmt.Errorf("ranking commits by modifications: %w", vcs.ErrUnsupportedOperation)
	}
	commits, err := repo.Resolve(ctx, expr)
	if err != nil {
		return nil, err
	}
	ranked := make([]*Commit, len(commits))
	copy(ranked, commits)
	sort.Slice(ranked, func(i, j int) bool {
		if m, n := ranked[i].Modifications(), ranked[j].Modifications(); m != n {
			return m > n
		}
		return ranked[i].ID < ranked[j].ID
	})
	return ranked[:clampCount(count, len(ranked))], nil
}

func collectActors(commits []*Commit, pick func(*Commit) *Actor) []*Actor {
	seen := make(map[string]struct{}, len(commits))
	out := make([]*Actor, 0, len(commits))
	for _, c := range commits {
		a := pick(c)
		if a == nil {
			continue
		}
		if _, ok := seen[a.ID]; ok {
			continue
		}
		seen[a.ID] = struct{}{}
		out = append(out, a)
	}
	return out
}

func rankAuthors(commits []*Commit) []AuthorRank {
	byID := make(map[string]*AuthorRank)
	order := make([]string, 0, len(commits))
	for _, c := range commits {
		if c.Author == nil {
			continue
		}
		rank, ok := byID[c.Author.ID]
		if !ok {
			rank = &AuthorRank{Actor: c.Author}
			byID[c.Author.ID] = rank
			order = append(order, c.Author.ID)
		}
		rank.Commits++
		if c.Stats != nil {
			rank.Additions += c.Stats.Additions
			rank.Deletions += c.Stats.Deletions
		}
	}
	out := make([]AuthorRank, 0, len(order))
	for _, id := range order {
		out = append(out, *byID[id])
	}
	return out
}

func clampCount(count, available int) int {
	if count < 0 {
		return 0
	}
	if count > available {
		return available
	}
	return count
}
