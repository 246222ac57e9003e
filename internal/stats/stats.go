// Package stats aggregates file-level and contributor-level statistics over a
// resolved commit range.
package stats

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/ajurgis/repotally/internal/history"
	"github.com/ajurgis/repotally/internal/vcs"
)

// Options controls which paths enter the aggregation.
type Options struct {
	Include []string // doublestar globs; empty means everything
	Exclude []string // doublestar globs checked first
}

// FileActivity is the aggregated change history of one path in the range.
// Zero timestamps mean the event was not observed inside the range.
type FileActivity struct {
	Path           string
	Added          int // times the path was added
	Modified       int // times the path was modified
	Deleted        int // times the path was deleted
	FirstAddedAt   time.Time
	LastModifiedAt time.Time
	DeletedAt      time.Time
}

// Changes returns the total change count for the path.
func (f *FileActivity) Changes() int {
	return f.Added + f.Modified + f.Deleted
}

// AuthorActivity is one contributor's share of the range.
type AuthorActivity struct {
	Actor         *history.Actor
	Commits       int
	Additions     int
	Deletions     int
	FirstCommitAt time.Time
	LastCommitAt  time.Time
}

// Report is the result of one statistics collection.
type Report struct {
	Commits   int
	Additions int
	Deletions int
	Files     []*FileActivity  // sorted by path
	Authors   []AuthorActivity // sorted by commit count, descending
}

// Share returns the fraction of the range's commits authored by a.
func (r *Report) Share(a AuthorActivity) float64 {
	if r.Commits == 0 {
		return 0
	}
	return float64(a.Commits) / float64(r.Commits)
}

// Collect resolves expr against repo and aggregates its statistics. It fails
// with ErrUnsupportedOperation before any cache or fetch work when the
// backing adapter does not deliver line statistics.
func Collect(ctx context.Context, repo *history.Repository, expr string, opts Options) (*Report, error) {
	if !repo.SupportsLineStats() {
		return nil, fmt.Errorf("collecting statistics: %w", vcs.ErrUnsupportedOperation)
	}

	commits, err := repo.Resolve(ctx, expr)
	if err != nil {
		return nil, err
	}

	report := &Report{Commits: len(commits)}
	files := make(map[string]*FileActivity)
	authors := make(map[string]*AuthorActivity)
	order := make([]string, 0, len(commits))

	// Walk oldest first so the add/modify/delete lifecycle of each path is
	// observed in chronological order.
	for i := len(commits) - 1; i >= 0; i-- {
		c := commits[i]
		if c.Stats != nil {
			report.Additions += c.Stats.Additions
			report.Deletions += c.Stats.Deletions
			applyCommit(files, c, opts)
		}
		if c.Author != nil {
			a, ok := authors[c.Author.ID]
			if !ok {
				a = &AuthorActivity{Actor: c.Author, FirstCommitAt: c.AuthoredAt}
				authors[c.Author.ID] = a
				order = append(order, c.Author.ID)
			}
			a.Commits++
			if c.AuthoredAt.Before(a.FirstCommitAt) {
				a.FirstCommitAt = c.AuthoredAt
			}
			if c.AuthoredAt.After(a.LastCommitAt) {
				a.LastCommitAt = c.AuthoredAt
			}
			if c.Stats != nil {
				a.Additions += c.Stats.Additions
				a.Deletions += c.Stats.Deletions
			}
		}
	}

	report.Files = make([]*FileActivity, 0, len(files))
	for _, f := range files {
		report.Files = append(report.Files, f)
	}
	sort.Slice(report.Files, func(i, j int) bool {
		return report.Files[i].Path < report.Files[j].Path
	})

	report.Authors = make([]AuthorActivity, 0, len(order))
	for _, id := range order {
		report.Authors = append(report.Authors, *authors[id])
	}
	sort.Slice(report.Authors, func(i, j int) bool {
		if report.Authors[i].Commits != report.Authors[j].Commits {
			return report.Authors[i].Commits > report.Authors[j].Commits
		}
		return report.Authors[i].Actor.ID < report.Authors[j].Actor.ID
	})

	return report, nil
}

func applyCommit(files map[string]*FileActivity, c *history.Commit, opts Options) {
	record := func(path string) *FileActivity {
		f, ok := files[path]
		if !ok {
			f = &FileActivity{Path: path}
			files[path] = f
		}
		return f
	}

	for _, path := range c.Stats.Added {
		if !matchesFilters(path, opts) {
			continue
		}
		f := record(path)
		f.Added++
		if f.FirstAddedAt.IsZero() || c.AuthoredAt.Before(f.FirstAddedAt) {
			f.FirstAddedAt = c.AuthoredAt
		}
		if c.AuthoredAt.After(f.LastModifiedAt) {
			f.LastModifiedAt = c.AuthoredAt
		}
		// A re-added path is alive again.
		f.DeletedAt = time.Time{}
	}
	for _, path := range c.Stats.Modified {
		if !matchesFilters(path, opts) {
			continue
		}
		f := record(path)
		f.Modified++
		if c.AuthoredAt.After(f.LastModifiedAt) {
			f.LastModifiedAt = c.AuthoredAt
		}
	}
	for _, path := range c.Stats.Deleted {
		if !matchesFilters(path, opts) {
			continue
		}
		f := record(path)
		f.Deleted++
		if c.AuthoredAt.After(f.DeletedAt) {
			f.DeletedAt = c.AuthoredAt
		}
	}
}

// matchesFilters checks a path against the include/exclude globs. Excludes
// win; an empty include list accepts everything.
func matchesFilters(path string, opts Options) bool {
	path = strings.ReplaceAll(path, "\\", "/")

	for _, pattern := range opts.Exclude {
		if matched, _ := doublestar.Match(pattern, path); matched {
			return false
		}
	}
	if len(opts.Include) == 0 {
		return true
	}
	for _, pattern := range opts.Include {
		if matched, _ := doublestar.Match(pattern, path); matched {
			return true
		}
	}
	return false
}
