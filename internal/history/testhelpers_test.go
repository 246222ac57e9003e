package history

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/ajurgis/repotally/internal/vcs"
)

var testEpoch = time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)

// rawCommit builds a minimal raw record authored and committed by the same
// identity.
func rawCommit(id string, parents []string, author string) vcs.RawCommit {
	return vcs.RawCommit{
		ID:            id,
		ParentIDs:     parents,
		AuthorID:      strings.ToLower(author) + "@example.com",
		AuthorName:    author,
		CommitterID:   strings.ToLower(author) + "@example.com",
		CommitterName: author,
		AuthoredAt:    testEpoch,
	}
}

// linearHistory returns cN..c1 newest first, c1 being the root, all authored
// by Alice.
func linearHistory(n int) []vcs.RawCommit {
	raws := make([]vcs.RawCommit, 0, n)
	for i := n; i >= 1; i-- {
		var parents []string
		if i > 1 {
			parents = []string{fmt.Sprintf("c%d", i-1)}
		}
		raw := rawCommit(fmt.Sprintf("c%d", i), parents, "Alice")
		raw.AuthoredAt = testEpoch.Add(time.Duration(i) * time.Hour)
		raws = append(raws, raw)
	}
	return raws
}

func newTestRepository(history []vcs.RawCommit, refs map[string]string) (*Repository, *vcs.MockAdapter) {
	adapter := vcs.NewMockAdapter(history, refs)
	return NewRepository("testrepo", adapter, Options{}), adapter
}

func commitIDs(commits []*Commit) []string {
	ids := make([]string, 0, len(commits))
	for _, c := range commits {
		ids = append(ids, c.ID)
	}
	return ids
}

func assertIDs(t *testing.T, commits []*Commit, expected ...string) {
	t.Helper()
	got := commitIDs(commits)
	if len(got) != len(expected) {
		t.Fatalf("result ids = %v, expected %v", got, expected)
	}
	for i := range got {
		if got[i] != expected[i] {
			t.Fatalf("result ids = %v, expected %v", got, expected)
		}
	}
}

// seedCache builds raw records straight into the caches, bypassing the
// merger. Tests use it to set up partially covered histories.
func seedCache(repo *Repository, raws ...vcs.RawCommit) {
	repo.mu.Lock()
	repo.buildCommits(raws)
	repo.mu.Unlock()
}
