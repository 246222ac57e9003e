package history

import "github.com/ajurgis/repotally/internal/vcs"

// walkState classifies a cache walk result for the merger.
type walkState int

const (
	// walkNone means no usable cache coverage: neither endpoint is cached,
	// or the walk was discarded after meeting the start boundary inside a
	// multi-parent fan-out.
	walkNone walkState = iota

	// walkComplete means a from-root walk covered every reachable commit
	// down to the roots; nothing is missing.
	walkComplete

	// walkToBoundary means a downward walk reached the exclusive start
	// through fully cached ancestry; the boundary commit is included in the
	// sequence and must be trimmed by the merger.
	walkToBoundary

	// walkTailOpen means a downward walk ran out of cached parents before
	// reaching the start; the oldest entries border a gap.
	walkTailOpen

	// walkHeadOpen means an upward walk from a cached start ran out of
	// cached children before reaching the end; the newest entry borders a
	// gap and the start commit sits at the tail of the sequence.
	walkHeadOpen
)

// walkRange satisfies as much of r as the commit cache allows, returning a
// newest-first run of cached commits and the state describing its coverage.
// Callers must hold repo.mu.
func (repo *Repository) walkRange(r vcs.Range) ([]*Commit, walkState) {
	if end, ok := repo.commits[r.End]; ok {
		return repo.walkDown(end, r.Start)
	}
	if !r.FromRoot() {
		if start, ok := repo.commits[r.Start]; ok {
			return repo.walkUp(start, r.End)
		}
	}
	return nil, walkNone
}

// walkDown walks parent edges from end, newest first, stopping each branch
// at the exclusive start or at the first uncached parent. A start discovered
// among the parents of a multi-parent fan-out discards the whole walk: such
// coverage is unusable and forces a re-fetch.
func (repo *Repository) walkDown(end *Commit, start string) ([]*Commit, walkState) {
	var (
		result  []*Commit
		stack   = []*Commit{end}
		visited = make(map[string]struct{})
		reached bool
		open    bool
	)

	for len(stack) > 0 {
		c := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, ok := visited[c.ID]; ok {
			continue
		}
		visited[c.ID] = struct{}{}
		result = append(result, c)

		if start != vcs.RootSentinel && c.ID == start {
			reached = true
			continue
		}

		parents := repo.cachedParents(c)
		if start != vcs.RootSentinel && len(parents) > 1 {
			for _, p := range parents {
				if p.ID == start {
					return nil, walkNone
				}
			}
		}
		if len(parents) < len(c.Parents) {
			open = true
		}
		for i := len(parents) - 1; i >= 0; i-- {
			stack = append(stack, parents[i])
		}
	}

	switch {
	case start == vcs.RootSentinel && !open:
		return result, walkComplete
	case start == vcs.RootSentinel:
		return result, walkTailOpen
	case reached && !open:
		return result, walkToBoundary
	case reached:
		// Boundary reached on one branch while another borders a gap; the
		// partial coverage cannot be repaired by a single tail fetch.
		return nil, walkNone
	default:
		return result, walkTailOpen
	}
}

// walkUp follows the single chain of cached children from start toward end,
// returning it newest first with start at the tail. The walk stops where the
// chain ends or forks. A cached child matching end yields just that commit,
// discarding everything accumulated so far.
func (repo *Repository) walkUp(start *Commit, end string) ([]*Commit, walkState) {
	chain := []*Commit{start}
	visited := map[string]struct{}{start.ID: {}}

	current := start
	for {
		children := repo.cachedChildren(current)
		if len(children) != 1 {
			break
		}
		child := children[0]
		if _, ok := visited[child.ID]; ok {
			break
		}
		if child.ID == end {
			return []*Commit{child}, walkToBoundary
		}
		visited[child.ID] = struct{}{}
		chain = append(chain, child)
		current = child
	}

	// Reverse into newest-first order.
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain, walkHeadOpen
}

// cachedParents returns the cached subset of c's parents in recorded order.
func (repo *Repository) cachedParents(c *Commit) []*Commit {
	out := make([]*Commit, 0, len(c.Parents))
	for _, id := range c.Parents {
		if p, ok := repo.commits[id]; ok {
			out = append(out, p)
		}
	}
	return out
}

// cachedChildren returns the cached subset of c's children in recorded order.
func (repo *Repository) cachedChildren(c *Commit) []*Commit {
	out := make([]*Commit, 0, len(c.Children))
	for _, id := range c.Children {
		if ch, ok := repo.commits[id]; ok {
			out = append(out, ch)
		}
	}
	return out
}
