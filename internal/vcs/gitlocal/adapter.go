// Package gitlocal implements the VCS adapter over a local repository using
// go-git. Ranges are served by walking the object graph in process, so no git
// binary is required.
package gitlocal

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/utils/merkletrie"

	"github.com/ajurgis/repotally/internal/vcs"
)

// Options configures a local go-git adapter.
type Options struct {
	// Path is the repository location on disk.
	Path string

	// DetailStats enables per-commit patch statistics. Computing patches
	// costs one tree diff per commit, so it is off by default.
	DetailStats bool
}

// Adapter reads commit history from a local repository through go-git.
type Adapter struct {
	repo *git.Repository
	opts Options
}

// Open opens the repository at opts.Path.
func Open(opts Options) (*Adapter, error) {
	repo, err := git.PlainOpen(opts.Path)
	if err != nil {
		return nil, fmt.Errorf("opening repository %s: %w", opts.Path, err)
	}
	return &Adapter{repo: repo, opts: opts}, nil
}

// ResolveRef resolves a branch, tag, or revision expression to a commit id.
func (a *Adapter) ResolveRef(ctx context.Context, name string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	hash, err := a.repo.ResolveRevision(plumbing.Revision(name))
	if err != nil {
		return "", fmt.Errorf("resolving %q: %w", name, vcs.ErrUnknownReference)
	}
	return hash.String(), nil
}

// FetchRange returns the commits reachable from r.End and not from r.Start,
// newest first. A start commit that does not exist in the repository is
// treated as history ending at the root, with a nil boundary.
func (a *Adapter) FetchRange(ctx context.Context, r vcs.Range) (*vcs.RawCommit, []vcs.RawCommit, error) {
	end, err := a.repo.CommitObject(plumbing.NewHash(r.End))
	if err != nil {
		return nil, nil, fmt.Errorf("loading %s: %w", r.End, vcs.ErrUnknownReference)
	}

	excluded, startKnown, err := a.excludedSet(r.Start)
	if err != nil {
		return nil, nil, err
	}

	iter, err := a.repo.Log(&git.LogOptions{From: end.Hash, Order: git.LogOrderCommitterTime})
	if err != nil {
		return nil, nil, fmt.Errorf("walking history from %s: %w", r.End, err)
	}
	defer iter.Close()

	var (
		boundary *vcs.RawCommit
		raws     []vcs.RawCommit
	)
	err = iter.ForEach(func(c *object.Commit) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		id := c.Hash.String()
		if startKnown && id == r.Start {
			raw, err := a.rawCommit(ctx, c)
			if err != nil {
				return err
			}
			boundary = &raw
			return nil
		}
		if _, ok := excluded[id]; ok {
			return nil
		}
		raw, err := a.rawCommit(ctx, c)
		if err != nil {
			return err
		}
		raws = append(raws, raw)
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return boundary, raws, nil
}

// SupportsLineStats reports whether fetched commits carry patch statistics.
func (a *Adapter) SupportsLineStats() bool {
	return a.opts.DetailStats
}

// excludedSet returns the ids reachable from start. A start that is not an
// object in the repository yields an empty set: the fetch then runs to the
// root, which is how a deleted or foreign boundary behaves.
func (a *Adapter) excludedSet(start string) (map[string]struct{}, bool, error) {
	if start == vcs.RootSentinel {
		return nil, false, nil
	}
	c, err := a.repo.CommitObject(plumbing.NewHash(start))
	if err != nil {
		if errors.Is(err, plumbing.ErrObjectNotFound) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("loading %s: %w", start, err)
	}

	excluded := make(map[string]struct{})
	iter := object.NewCommitPreorderIter(c, nil, nil)
	defer iter.Close()
	err = iter.ForEach(func(c *object.Commit) error {
		if c.Hash.String() == start {
			// The boundary itself is reported, not excluded.
			return nil
		}
		excluded[c.Hash.String()] = struct{}{}
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return excluded, true, nil
}

func (a *Adapter) rawCommit(ctx context.Context, c *object.Commit) (vcs.RawCommit, error) {
	parents := make([]string, 0, c.NumParents())
	for _, h := range c.ParentHashes {
		parents = append(parents, h.String())
	}

	raw := vcs.RawCommit{
		ID:            c.Hash.String(),
		ParentIDs:     parents,
		AuthorID:      strings.ToLower(c.Author.Email),
		AuthorName:    c.Author.Name,
		CommitterID:   strings.ToLower(c.Committer.Email),
		CommitterName: c.Committer.Name,
		AuthoredAt:    c.Author.When,
	}

	if a.opts.DetailStats {
		stats, err := a.commitStats(ctx, c)
		if err != nil {
			return vcs.RawCommit{}, fmt.Errorf("stats for %s: %w", raw.ID, err)
		}
		raw.Stats = stats
	}
	return raw, nil
}

// commitStats diffs the commit against its first parent (or the empty tree
// for the root) and classifies each file patch.
func (a *Adapter) commitStats(ctx context.Context, c *object.Commit) (*vcs.ChangeStats, error) {
	tree, err := c.Tree()
	if err != nil {
		return nil, err
	}

	var parentTree *object.Tree
	if c.NumParents() > 0 {
		parent, err := c.Parent(0)
		if err != nil {
			return nil, err
		}
		parentTree, err = parent.Tree()
		if err != nil {
			return nil, err
		}
	}

	changes, err := object.DiffTreeWithOptions(ctx, parentTree, tree, object.DefaultDiffTreeOptions)
	if err != nil {
		return nil, err
	}

	stats := &vcs.ChangeStats{}
	for _, change := range changes {
		action, err := change.Action()
		if err != nil {
			return nil, err
		}
		switch action {
		case merkletrie.Insert:
			stats.Added = append(stats.Added, change.To.Name)
		case merkletrie.Delete:
			stats.Deleted = append(stats.Deleted, change.From.Name)
		default:
			stats.Modified = append(stats.Modified, change.To.Name)
		}

		patch, err := change.PatchContext(ctx)
		if err != nil {
			return nil, err
		}
		for _, filePatch := range patch.FilePatches() {
			for _, chunk := range filePatch.Chunks() {
				lines := strings.Count(chunk.Content(), "\n")
				switch chunk.Type() {
				case 1: // Add
					stats.Additions += lines
				case 2: // Delete
					stats.Deletions += lines
				}
			}
		}
	}
	return stats, nil
}

// Compile-time interface conformance check.
var _ vcs.Adapter = (*Adapter)(nil)
