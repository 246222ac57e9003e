package history

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/ajurgis/repotally/internal/vcs"
)

// CommitStore persists raw commit records between runs. Losing a store is
// always safe: it is a warm-start cache replayed through the builder, never
// a source of truth.
type CommitStore interface {
	PutCommits(raws []vcs.RawCommit) error
	AllCommits() ([]vcs.RawCommit, error)
}

// Options configures optional Repository collaborators.
type Options struct {
	Store  CommitStore
	Logger *slog.Logger
}

// Repository owns the partially materialized view of one repository's commit
// history. It resolves range queries against its caches first and fetches
// only the missing segments from the adapter. Caches grow for the lifetime
// of the handle and entries are never evicted.
type Repository struct {
	path    string
	adapter vcs.Adapter
	store   CommitStore
	log     *slog.Logger

	mu         sync.Mutex
	commits    map[string]*Commit
	authors    map[string]*Actor
	committers map[string]*Actor
	pending    map[string][]string

	fetchCalls int
	cacheHits  int
}

// NewRepository creates a Repository handle for the given location backed by
// the adapter.
func NewRepository(path string, adapter vcs.Adapter, opts Options) *Repository {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		path:       path,
		adapter:    adapter,
		store:      opts.Store,
		log:        logger,
		commits:    make(map[string]*Commit),
		authors:    make(map[string]*Actor),
		committers: make(map[string]*Actor),
		pending:    make(map[string][]string),
	}
}

// Path returns the repository location the handle was created for.
func (repo *Repository) Path() string {
	return repo.path
}

// SupportsLineStats reports whether the backing adapter delivers per-commit
// file and line statistics.
func (repo *Repository) SupportsLineStats() bool {
	return repo.adapter.SupportsLineStats()
}

// Metrics is a point-in-time snapshot of cache effectiveness counters.
type Metrics struct {
	FetchCalls       int
	CacheHits        int
	CachedCommits    int
	CachedAuthors    int
	CachedCommitters int
}

// Metrics returns current cache counters.
func (repo *Repository) Metrics() Metrics {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	return Metrics{
		FetchCalls:       repo.fetchCalls,
		CacheHits:        repo.cacheHits,
		CachedCommits:    len(repo.commits),
		CachedAuthors:    len(repo.authors),
		CachedCommitters: len(repo.committers),
	}
}

// Preload replays every stored raw commit record through the builder,
// warming the caches from a previous run. It returns the number of replayed
// records.
func (repo *Repository) Preload(ctx context.Context) (int, error) {
	if repo.store == nil {
		return 0, nil
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	raws, err := repo.store.AllCommits()
	if err != nil {
		return 0, fmt.Errorf("loading stored commits: %w", err)
	}
	repo.mu.Lock()
	repo.buildCommits(raws)
	repo.mu.Unlock()
	repo.log.Debug("warm start", "path", repo.path, "commits", len(raws))
	return len(raws), nil
}

// Resolve parses and resolves a range expression, then materializes the
// commits it covers, newest first.
func (repo *Repository) Resolve(ctx context.Context, expr string) ([]*Commit, error) {
	r, err := repo.CanonicalRange(ctx, expr)
	if err != nil {
		return nil, err
	}
	return repo.ResolveRange(ctx, r)
}

// ResolveAll resolves several range expressions concurrently against the
// shared caches. The first failure cancels the remaining resolutions.
func (repo *Repository) ResolveAll(ctx context.Context, exprs []string) ([][]*Commit, error) {
	g, ctx := errgroup.WithContext(ctx)
	results := make([][]*Commit, len(exprs))
	for i, expr := range exprs {
		g.Go(func() error {
			commits, err := repo.Resolve(ctx, expr)
			if err != nil {
				return fmt.Errorf("resolving %q: %w", expr, err)
			}
			results[i] = commits
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// ResolveRange materializes the commits covered by a canonical range, newest
// first, end inclusive and start excluded. Cached coverage is reused and
// only the remaining gaps are fetched; commits built along the way stay
// cached even when the overall call fails later.
func (repo *Repository) ResolveRange(ctx context.Context, r vcs.Range) ([]*Commit, error) {
	repo.mu.Lock()
	walked, state := repo.walkRange(r)
	if state != walkNone {
		repo.cacheHits++
	}
	repo.mu.Unlock()
	repo.log.Debug("cache walk", "range", r.String(), "covered", len(walked))

	switch state {
	case walkComplete:
		return walked, nil

	case walkNone:
		return repo.fetchSegment(ctx, r)

	case walkToBoundary:
		out := removeCommit(walked, r.Start)
		if len(out) == 0 {
			// Degenerate range whose start and end coincide.
			return out, nil
		}
		if oldest := out[len(out)-1]; !oldest.HasParent(r.Start) {
			segment, err := repo.fetchSegment(ctx, vcs.Range{Start: r.Start, End: oldest.ID})
			if err != nil {
				return nil, err
			}
			out = mergeCommits(out, segment)
		}
		return out, nil

	case walkTailOpen:
		if r.FromRoot() {
			oldest := walked[len(walked)-1]
			if oldest.IsRoot() {
				return walked, nil
			}
			segment, err := repo.fetchSegment(ctx, vcs.Range{Start: vcs.RootSentinel, End: oldest.ID})
			if err != nil {
				return nil, err
			}
			return mergeCommits(walked, segment), nil
		}

		// The oldest walked entry borders the gap; it is dropped here and
		// comes back as the inclusive head of the tail fetch.
		oldest := walked[len(walked)-1]
		out := walked[:len(walked)-1]
		if len(out) == 0 {
			return repo.fetchSegment(ctx, r)
		}
		segment, err := repo.fetchSegment(ctx, vcs.Range{Start: r.Start, End: oldest.ID})
		if err != nil {
			return nil, err
		}
		return mergeCommits(out, segment), nil

	default: // walkHeadOpen
		out := removeCommit(walked, r.Start)
		if len(out) == 0 {
			return repo.fetchSegment(ctx, r)
		}
		if newest := out[0]; newest.ID != r.End {
			segment, err := repo.fetchSegment(ctx, vcs.Range{Start: newest.ID, End: r.End})
			if err != nil {
				return nil, err
			}
			out = mergeCommits(segment, out)
		}
		if oldest := out[len(out)-1]; !oldest.HasParent(r.Start) {
			segment, err := repo.fetchSegment(ctx, vcs.Range{Start: r.Start, End: oldest.ID})
			if err != nil {
				return nil, err
			}
			out = mergeCommits(out, segment)
		}
		return out, nil
	}
}

// fetchSegment fetches one gap, builds everything returned, and hands back
// the built commits excluding the boundary record. The boundary, when
// present, is still built so future walks recognize the range edge.
func (repo *Repository) fetchSegment(ctx context.Context, r vcs.Range) ([]*Commit, error) {
	boundary, raws, err := repo.fetchGap(ctx, r)
	if err != nil {
		return nil, err
	}
	batch := raws
	if boundary != nil {
		batch = append(batch, *boundary)
	}

	repo.mu.Lock()
	built := repo.buildCommits(batch)
	repo.mu.Unlock()
	repo.persist(batch)

	if boundary != nil {
		built = built[:len(built)-1]
	}
	return built, nil
}

// fetchGap is the call-through to the adapter for one missing segment.
func (repo *Repository) fetchGap(ctx context.Context, r vcs.Range) (*vcs.RawCommit, []vcs.RawCommit, error) {
	repo.mu.Lock()
	repo.fetchCalls++
	repo.mu.Unlock()
	repo.log.Debug("fetching gap", "range", r.String())

	boundary, raws, err := repo.adapter.FetchRange(ctx, r)
	if err != nil {
		return nil, nil, fmt.Errorf("fetching range %s: %w", r.String(), err)
	}
	return boundary, raws, nil
}

func (repo *Repository) persist(raws []vcs.RawCommit) {
	if repo.store == nil || len(raws) == 0 {
		return
	}
	if err := repo.store.PutCommits(raws); err != nil {
		repo.log.Warn("persisting commits", "path", repo.path, "error", err)
	}
}

// removeCommit returns commits without the entry whose id matches.
func removeCommit(commits []*Commit, id string) []*Commit {
	out := make([]*Commit, 0, len(commits))
	for _, c := range commits {
		if c.ID != id {
			out = append(out, c)
		}
	}
	return out
}

// mergeCommits appends the entries of tail that head does not already
// contain, preserving order.
func mergeCommits(head, tail []*Commit) []*Commit {
	known := make(map[string]struct{}, len(head))
	for _, c := range head {
		known[c.ID] = struct{}{}
	}
	out := head
	for _, c := range tail {
		if _, ok := known[c.ID]; ok {
			continue
		}
		known[c.ID] = struct{}{}
		out = append(out, c)
	}
	return out
}
