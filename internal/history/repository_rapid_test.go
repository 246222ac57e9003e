package history

import (
	"context"
	"fmt"
	"testing"

	"pgregory.net/rapid"

	"github.com/ajurgis/repotally/internal/vcs"
)

// --- Generators ---

func genLinearHistory() *rapid.Generator[[]vcs.RawCommit] {
	return rapid.Custom(func(t *rapid.T) []vcs.RawCommit {
		n := rapid.IntRange(1, 25).Draw(t, "length")
		raws := make([]vcs.RawCommit, 0, n)
		for i := n; i >= 1; i-- {
			var parents []string
			if i > 1 {
				parents = []string{fmt.Sprintf("c%d", i-1)}
			}
			author := fmt.Sprintf("dev%d", rapid.IntRange(0, 3).Draw(t, fmt.Sprintf("author%d", i)))
			raws = append(raws, rawCommit(fmt.Sprintf("c%d", i), parents, author))
		}
		return raws
	})
}

func drawRangeExpr(t *rapid.T, historyLen int, label string) (string, int, int) {
	startIdx := rapid.IntRange(0, historyLen-1).Draw(t, label+"Start")
	endIdx := rapid.IntRange(startIdx+1, historyLen).Draw(t, label+"End")
	if startIdx == 0 {
		return fmt.Sprintf("..c%d", endIdx), startIdx, endIdx
	}
	return fmt.Sprintf("c%d..c%d", startIdx, endIdx), startIdx, endIdx
}

// --- Property Tests ---

// Any sequence of range queries over a linear history yields exactly the
// commits between the endpoints, newest first, regardless of what earlier
// queries left in the cache.
func TestRapidResolve_ExactRanges(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		history := genLinearHistory().Draw(t, "history")
		n := len(history)
		repo, _ := newTestRepository(history, map[string]string{"master": fmt.Sprintf("c%d", n)})
		ctx := context.Background()

		queries := rapid.IntRange(1, 6).Draw(t, "queries")
		for q := 0; q < queries; q++ {
			expr, startIdx, endIdx := drawRangeExpr(t, n, fmt.Sprintf("q%d", q))

			commits, err := repo.Resolve(ctx, expr)
			if err != nil {
				t.Fatalf("Resolve(%s): %v", expr, err)
			}

			got := commitIDs(commits)
			if len(got) != endIdx-startIdx {
				t.Fatalf("Resolve(%s) returned %v, expected %d commits", expr, got, endIdx-startIdx)
			}
			for i, id := range got {
				if expected := fmt.Sprintf("c%d", endIdx-i); id != expected {
					t.Fatalf("Resolve(%s)[%d] = %s, expected %s (full result %v)", expr, i, id, expected, got)
				}
			}
		}
	})
}

func TestRapidResolve_NoDuplicatesNoBoundary(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		history := genLinearHistory().Draw(t, "history")
		n := len(history)
		repo, _ := newTestRepository(history, nil)
		ctx := context.Background()

		queries := rapid.IntRange(1, 5).Draw(t, "queries")
		for q := 0; q < queries; q++ {
			expr, startIdx, _ := drawRangeExpr(t, n, fmt.Sprintf("q%d", q))

			commits, err := repo.Resolve(ctx, expr)
			if err != nil {
				t.Fatalf("Resolve(%s): %v", expr, err)
			}

			seen := make(map[string]struct{}, len(commits))
			for _, c := range commits {
				if _, dup := seen[c.ID]; dup {
					t.Fatalf("Resolve(%s) returned %s twice", expr, c.ID)
				}
				seen[c.ID] = struct{}{}
			}
			if startIdx > 0 {
				if _, ok := seen[fmt.Sprintf("c%d", startIdx)]; ok {
					t.Fatalf("Resolve(%s) includes its exclusive boundary", expr)
				}
			}
		}
	})
}

func TestRapidResolve_WarmRepeatIsFree(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		history := genLinearHistory().Draw(t, "history")
		n := len(history)
		repo, adapter := newTestRepository(history, nil)
		ctx := context.Background()

		expr, _, _ := drawRangeExpr(t, n, "range")

		first, err := repo.Resolve(ctx, expr)
		if err != nil {
			t.Fatalf("first Resolve(%s): %v", expr, err)
		}
		fetchesAfterFirst := adapter.FetchRangeCalls

		second, err := repo.Resolve(ctx, expr)
		if err != nil {
			t.Fatalf("second Resolve(%s): %v", expr, err)
		}

		if adapter.FetchRangeCalls != fetchesAfterFirst {
			t.Fatalf("second Resolve(%s) issued %d extra fetches",
				expr, adapter.FetchRangeCalls-fetchesAfterFirst)
		}
		firstIDs, secondIDs := commitIDs(first), commitIDs(second)
		if len(firstIDs) != len(secondIDs) {
			t.Fatalf("repeat Resolve(%s) = %v, first call %v", expr, secondIDs, firstIDs)
		}
		for i := range firstIDs {
			if firstIDs[i] != secondIDs[i] {
				t.Fatalf("repeat Resolve(%s) = %v, first call %v", expr, secondIDs, firstIDs)
			}
		}
	})
}

func TestRapidResolve_CachesOnlyGrow(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		history := genLinearHistory().Draw(t, "history")
		n := len(history)
		repo, _ := newTestRepository(history, nil)
		ctx := context.Background()

		prev := Metrics{}
		queries := rapid.IntRange(1, 6).Draw(t, "queries")
		for q := 0; q < queries; q++ {
			expr, _, _ := drawRangeExpr(t, n, fmt.Sprintf("q%d", q))
			if _, err := repo.Resolve(ctx, expr); err != nil {
				t.Fatalf("Resolve(%s): %v", expr, err)
			}

			m := repo.Metrics()
			if m.CachedCommits < prev.CachedCommits || m.CachedAuthors < prev.CachedAuthors || m.CachedCommitters < prev.CachedCommitters {
				t.Fatalf("cache shrank after Resolve(%s): %+v -> %+v", expr, prev, m)
			}
			prev = m
		}
	})
}
