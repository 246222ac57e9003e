package history

import (
	"context"
	"fmt"
	"strings"

	"github.com/ajurgis/repotally/internal/vcs"
)

// ParseRangeExpr splits a range expression into its start and end reference
// names. A bare reference means "from the beginning of history up to the
// reference". In the "start..end" form an empty start keeps the same meaning
// and an empty end defaults to "HEAD". Three-dot expressions are rejected:
// merge-base semantics are not part of range resolution.
func ParseRangeExpr(expr string) (startRef, endRef string, err error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return "", "", fmt.Errorf("empty range expression")
	}

	if strings.Contains(expr, "...") {
		return "", "", fmt.Errorf("invalid range %q: three-dot syntax is not supported", expr)
	}

	idx := strings.Index(expr, "..")
	if idx == -1 {
		return "", expr, nil
	}

	startRef = expr[:idx]
	endRef = expr[idx+2:]
	if endRef == "" {
		endRef = "HEAD"
	}
	return startRef, endRef, nil
}

// CanonicalRange parses expr and resolves both endpoints to backend-native
// ids. Resolution always precedes any cache or fetch work, so everything
// downstream operates on canonical ids only.
func (repo *Repository) CanonicalRange(ctx context.Context, expr string) (vcs.Range, error) {
	startRef, endRef, err := ParseRangeExpr(expr)
	if err != nil {
		return vcs.Range{}, err
	}

	end, err := repo.adapter.ResolveRef(ctx, endRef)
	if err != nil {
		return vcs.Range{}, fmt.Errorf("resolving %q: %w", endRef, err)
	}

	start := vcs.RootSentinel
	if startRef != "" {
		start, err = repo.adapter.ResolveRef(ctx, startRef)
		if err != nil {
			return vcs.Range{}, fmt.Errorf("resolving %q: %w", startRef, err)
		}
	}

	return vcs.Range{Start: start, End: end}, nil
}
