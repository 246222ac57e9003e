package vcs

import "time"

// RootSentinel marks a Range whose start extends to the beginning of
// history. It is the empty string, so the zero Range start already means
// "from the root".
const RootSentinel = ""

// Range identifies a contiguous span of history. End is inclusive and names
// a commit; Start is exclusive and may be RootSentinel to include the root
// of history.
type Range struct {
	Start string
	End   string
}

// FromRoot reports whether the range extends to the beginning of history.
func (r Range) FromRoot() bool {
	return r.Start == RootSentinel
}

// String renders the range in "start..end" form, with an empty start for
// ranges from the root.
func (r Range) String() string {
	return r.Start + ".." + r.End
}

// RawCommit is a single commit record as delivered by an adapter, before
// materialization into the history cache.
type RawCommit struct {
	ID            string
	ParentIDs     []string
	AuthorID      string
	AuthorName    string
	CommitterID   string
	CommitterName string
	AuthoredAt    time.Time
	Stats         *ChangeStats // nil when the backend supplied none
}

// ChangeStats carries per-commit file and line statistics. A nil Stats on a
// RawCommit means the backend supplied none, which is distinct from a commit
// that changed nothing.
type ChangeStats struct {
	Added     []string
	Modified  []string
	Deleted   []string
	Additions int
	Deletions int
}

// Modifications returns total lines changed (additions + deletions).
func (s *ChangeStats) Modifications() int {
	if s == nil {
		return 0
	}
	return s.Additions + s.Deletions
}

// Paths returns every path touched by the commit, added then modified then
// deleted.
func (s *ChangeStats) Paths() []string {
	if s == nil {
		return nil
	}
	paths := make([]string, 0, len(s.Added)+len(s.Modified)+len(s.Deleted))
	paths = append(paths, s.Added...)
	paths = append(paths, s.Modified...)
	paths = append(paths, s.Deleted...)
	return paths
}
