package gitlocal

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/ajurgis/repotally/internal/vcs"
)

// createTestRepo creates a temporary repository and returns its path together
// with the worktree-backed handle used to add commits.
func createTestRepo(t *testing.T) (string, *git.Repository) {
	t.Helper()
	tmpDir := t.TempDir()
	repo, err := git.PlainInit(tmpDir, false)
	if err != nil {
		t.Fatalf("Failed to initialize git repo: %v", err)
	}
	return tmpDir, repo
}

// addCommitToRepo writes the named files and commits them, returning the new
// commit id.
func addCommitToRepo(t *testing.T, repo *git.Repository, message string, filenames []string, commitTime time.Time) string {
	t.Helper()
	w, err := repo.Worktree()
	if err != nil {
		t.Fatalf("Failed to get worktree: %v", err)
	}

	for _, filename := range filenames {
		filePath := filepath.Join(w.Filesystem.Root(), filename)
		if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
			t.Fatalf("Failed to create dir: %v", err)
		}
		content := fmt.Sprintf("Content for %s at %s\n", filename, commitTime.String())
		if err := os.WriteFile(filePath, []byte(content), 0644); err != nil {
			t.Fatalf("Failed to write file: %v", err)
		}
		if _, err := w.Add(filename); err != nil {
			t.Fatalf("Failed to add file: %v", err)
		}
	}

	hash, err := w.Commit(message, &git.CommitOptions{
		Author: &object.Signature{
			Name:  "Test Author",
			Email: "test@example.com",
			When:  commitTime,
		},
	})
	if err != nil {
		t.Fatalf("Failed to commit: %v", err)
	}
	return hash.String()
}

func threeCommitRepo(t *testing.T) (string, []string) {
	t.Helper()
	path, repo := createTestRepo(t)
	base := time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)
	ids := []string{
		addCommitToRepo(t, repo, "first", []string{"a.txt"}, base),
		addCommitToRepo(t, repo, "second", []string{"b.txt"}, base.Add(time.Hour)),
		addCommitToRepo(t, repo, "third", []string{"a.txt", "c.txt"}, base.Add(2*time.Hour)),
	}
	return path, ids
}

func TestResolveRefHead(t *testing.T) {
	path, ids := threeCommitRepo(t)
	adapter, err := Open(Options{Path: path})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	got, err := adapter.ResolveRef(context.Background(), "HEAD")
	if err != nil {
		t.Fatalf("ResolveRef: %v", err)
	}
	if got != ids[2] {
		t.Errorf("ResolveRef(HEAD) = %s, expected %s", got, ids[2])
	}
}

func TestResolveRefUnknown(t *testing.T) {
	path, _ := threeCommitRepo(t)
	adapter, err := Open(Options{Path: path})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	_, err = adapter.ResolveRef(context.Background(), "no-such-branch")
	if !errors.Is(err, vcs.ErrUnknownReference) {
		t.Errorf("ResolveRef(unknown) error = %v, expected ErrUnknownReference", err)
	}
}

func TestFetchRangeFromRoot(t *testing.T) {
	path, ids := threeCommitRepo(t)
	adapter, err := Open(Options{Path: path})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	boundary, raws, err := adapter.FetchRange(context.Background(), vcs.Range{End: ids[2]})
	if err != nil {
		t.Fatalf("FetchRange: %v", err)
	}
	if boundary != nil {
		t.Errorf("boundary = %v, expected nil for a from-root range", boundary)
	}
	if len(raws) != 3 {
		t.Fatalf("fetched %d commits, expected 3", len(raws))
	}
	for i, want := range []string{ids[2], ids[1], ids[0]} {
		if raws[i].ID != want {
			t.Errorf("raws[%d].ID = %s, expected %s", i, raws[i].ID, want)
		}
	}
	if len(raws[0].ParentIDs) != 1 || raws[0].ParentIDs[0] != ids[1] {
		t.Errorf("newest parents = %v, expected [%s]", raws[0].ParentIDs, ids[1])
	}
	if len(raws[2].ParentIDs) != 0 {
		t.Errorf("root parents = %v, expected none", raws[2].ParentIDs)
	}
	if raws[0].AuthorID != "test@example.com" {
		t.Errorf("AuthorID = %s, expected test@example.com", raws[0].AuthorID)
	}
	if raws[0].Stats != nil {
		t.Errorf("Stats = %v, expected nil without DetailStats", raws[0].Stats)
	}
}

func TestFetchRangeWithBoundary(t *testing.T) {
	path, ids := threeCommitRepo(t)
	adapter, err := Open(Options{Path: path})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	boundary, raws, err := adapter.FetchRange(context.Background(), vcs.Range{Start: ids[0], End: ids[2]})
	if err != nil {
		t.Fatalf("FetchRange: %v", err)
	}
	if boundary == nil || boundary.ID != ids[0] {
		t.Fatalf("boundary = %v, expected %s", boundary, ids[0])
	}
	if len(raws) != 2 {
		t.Fatalf("fetched %d commits, expected 2", len(raws))
	}
	if raws[0].ID != ids[2] || raws[1].ID != ids[1] {
		t.Errorf("fetched ids = [%s %s], expected [%s %s]", raws[0].ID, raws[1].ID, ids[2], ids[1])
	}
}

func TestFetchRangeMissingStartRunsToRoot(t *testing.T) {
	path, ids := threeCommitRepo(t)
	adapter, err := Open(Options{Path: path})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	missing := "0123456789abcdef0123456789abcdef01234567"
	boundary, raws, err := adapter.FetchRange(context.Background(), vcs.Range{Start: missing, End: ids[2]})
	if err != nil {
		t.Fatalf("FetchRange: %v", err)
	}
	if boundary != nil {
		t.Errorf("boundary = %v, expected nil when the start does not exist", boundary)
	}
	if len(raws) != 3 {
		t.Errorf("fetched %d commits, expected full history of 3", len(raws))
	}
}

func TestFetchRangeDetailStats(t *testing.T) {
	path, ids := threeCommitRepo(t)
	adapter, err := Open(Options{Path: path, DetailStats: true})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if !adapter.SupportsLineStats() {
		t.Fatal("SupportsLineStats = false, expected true with DetailStats")
	}

	_, raws, err := adapter.FetchRange(context.Background(), vcs.Range{Start: ids[1], End: ids[2]})
	if err != nil {
		t.Fatalf("FetchRange: %v", err)
	}
	if len(raws) != 1 {
		t.Fatalf("fetched %d commits, expected 1", len(raws))
	}
	stats := raws[0].Stats
	if stats == nil {
		t.Fatal("Stats = nil, expected patch statistics")
	}
	// The third commit rewrites a.txt and adds c.txt.
	if len(stats.Added) != 1 || stats.Added[0] != "c.txt" {
		t.Errorf("Added = %v, expected [c.txt]", stats.Added)
	}
	if len(stats.Modified) != 1 || stats.Modified[0] != "a.txt" {
		t.Errorf("Modified = %v, expected [a.txt]", stats.Modified)
	}
	if stats.Additions == 0 {
		t.Errorf("Additions = 0, expected positive line count")
	}
}

func TestOpenMissingRepository(t *testing.T) {
	if _, err := Open(Options{Path: t.TempDir()}); err == nil {
		t.Fatal("Open on an empty directory succeeded, expected error")
	}
}
