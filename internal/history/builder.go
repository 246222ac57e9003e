package history

import "github.com/ajurgis/repotally/internal/vcs"

// buildCommits materializes raw records into cached commits, in input order.
// Building is the only path that mutates the commit and actor caches, and it
// is idempotent: a record whose id is already cached merges into the existing
// instance instead of replacing it. Callers must hold repo.mu.
func (repo *Repository) buildCommits(raws []vcs.RawCommit) []*Commit {
	built := make([]*Commit, 0, len(raws))
	for i := range raws {
		built = append(built, repo.buildCommit(&raws[i]))
	}
	return built
}

func (repo *Repository) buildCommit(raw *vcs.RawCommit) *Commit {
	c, ok := repo.commits[raw.ID]
	if !ok {
		c = &Commit{ID: raw.ID, AuthoredAt: raw.AuthoredAt}
		repo.commits[raw.ID] = c
	}

	// Parent ids are recorded exactly as reported, including parents that
	// are not cached yet. Re-observations only ever extend the set.
	for _, p := range raw.ParentIDs {
		c.Parents = appendID(c.Parents, p)
	}
	if c.Stats == nil {
		c.Stats = raw.Stats
	}

	author := repo.internActor(raw.AuthorID, raw.AuthorName)
	repo.authors[author.ID] = author
	author.Authored[c.ID] = struct{}{}
	c.Author = author

	committer := repo.internActor(raw.CommitterID, raw.CommitterName)
	repo.committers[committer.ID] = committer
	committer.Committed[c.ID] = struct{}{}
	c.Committer = committer

	// Wire child edges for every cached parent; parents not cached yet get
	// a pending link that attaches when they materialize.
	for _, p := range raw.ParentIDs {
		if parent, ok := repo.commits[p]; ok {
			parent.Children = appendID(parent.Children, c.ID)
		} else {
			repo.pending[p] = appendID(repo.pending[p], c.ID)
		}
	}
	if waiting, ok := repo.pending[c.ID]; ok {
		for _, childID := range waiting {
			c.Children = appendID(c.Children, childID)
		}
		delete(repo.pending, c.ID)
	}

	return c
}

// internActor resolves an identity to its singleton Actor, creating it on
// first sight. The author and committer caches share instances, and the
// first observed display name wins.
func (repo *Repository) internActor(id, name string) *Actor {
	if a, ok := repo.authors[id]; ok {
		return a
	}
	if a, ok := repo.committers[id]; ok {
		return a
	}
	return newActor(id, name)
}
