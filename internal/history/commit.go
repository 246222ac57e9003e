package history

import (
	"time"

	"github.com/ajurgis/repotally/internal/vcs"
)

// Commit is a cached, materialized revision. Parents records the full parent
// id list exactly as the backend reported it, even when a parent has not been
// fetched yet. Children only ever names cached commits and grows as later
// queries materialize descendants.
type Commit struct {
	ID         string
	Parents    []string
	Children   []string
	Author     *Actor
	Committer  *Actor
	AuthoredAt time.Time
	Stats      *vcs.ChangeStats
}

// HasParent reports whether id is recorded as a parent of c.
func (c *Commit) HasParent(id string) bool {
	for _, p := range c.Parents {
		if p == id {
			return true
		}
	}
	return false
}

// IsRoot reports whether the commit has no recorded parents.
func (c *Commit) IsRoot() bool {
	return len(c.Parents) == 0
}

// Modifications returns total lines changed, zero when the backend supplied
// no statistics.
func (c *Commit) Modifications() int {
	return c.Stats.Modifications()
}

// Actor is a contributor identity observed as author or committer. One
// instance exists per identity; the author and committer caches share it.
type Actor struct {
	ID        string
	Name      string
	Authored  map[string]struct{}
	Committed map[string]struct{}
}

func newActor(id, name string) *Actor {
	return &Actor{
		ID:        id,
		Name:      name,
		Authored:  make(map[string]struct{}),
		Committed: make(map[string]struct{}),
	}
}

// AuthoredCount returns how many distinct commits the actor authored.
func (a *Actor) AuthoredCount() int {
	return len(a.Authored)
}

// CommittedCount returns how many distinct commits the actor committed.
func (a *Actor) CommittedCount() int {
	return len(a.Committed)
}

// appendID appends id to ids unless it is already present, preserving order.
func appendID(ids []string, id string) []string {
	for _, v := range ids {
		if v == id {
			return ids
		}
	}
	return append(ids, id)
}
