package history

import (
	"context"
	"errors"
	"testing"

	"github.com/ajurgis/repotally/internal/vcs"
)

func TestParseRangeExpr(t *testing.T) {
	tests := []struct {
		name          string
		expr          string
		expectedStart string
		expectedEnd   string
		wantErr       bool
	}{
		{name: "bare reference", expr: "master", expectedStart: "", expectedEnd: "master"},
		{name: "two endpoints", expr: "v1.0..v2.0", expectedStart: "v1.0", expectedEnd: "v2.0"},
		{name: "empty start", expr: "..master", expectedStart: "", expectedEnd: "master"},
		{name: "empty end defaults to HEAD", expr: "v1.0..", expectedStart: "v1.0", expectedEnd: "HEAD"},
		{name: "surrounding whitespace", expr: "  main  ", expectedStart: "", expectedEnd: "main"},
		{name: "empty expression", expr: "", wantErr: true},
		{name: "blank expression", expr: "   ", wantErr: true},
		{name: "three-dot rejected", expr: "a...b", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end, err := ParseRangeExpr(tt.expr)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseRangeExpr(%q) = (%q, %q), expected error", tt.expr, start, end)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseRangeExpr(%q): %v", tt.expr, err)
			}
			if start != tt.expectedStart || end != tt.expectedEnd {
				t.Errorf("ParseRangeExpr(%q) = (%q, %q), expected (%q, %q)",
					tt.expr, start, end, tt.expectedStart, tt.expectedEnd)
			}
		})
	}
}

func TestCanonicalRange(t *testing.T) {
	repo, adapter := newTestRepository(linearHistory(5), map[string]string{
		"master": "c5",
		"v1.0":   "c2",
	})
	ctx := context.Background()

	r, err := repo.CanonicalRange(ctx, "master")
	if err != nil {
		t.Fatalf("CanonicalRange(master): %v", err)
	}
	if !r.FromRoot() || r.End != "c5" {
		t.Errorf("range = %s, expected ..c5", r.String())
	}

	r, err = repo.CanonicalRange(ctx, "v1.0..master")
	if err != nil {
		t.Fatalf("CanonicalRange(v1.0..master): %v", err)
	}
	if r.Start != "c2" || r.End != "c5" {
		t.Errorf("range = %s, expected c2..c5", r.String())
	}

	// Canonical ids pass through resolution unchanged.
	r, err = repo.CanonicalRange(ctx, "c1..c4")
	if err != nil {
		t.Fatalf("CanonicalRange(c1..c4): %v", err)
	}
	if r.Start != "c1" || r.End != "c4" {
		t.Errorf("range = %s, expected c1..c4", r.String())
	}

	if _, err := repo.CanonicalRange(ctx, "ghost"); !errors.Is(err, vcs.ErrUnknownReference) {
		t.Errorf("CanonicalRange(ghost) error = %v, expected ErrUnknownReference", err)
	}
	if adapter.FetchRangeCalls != 0 {
		t.Errorf("FetchRangeCalls = %d, expected 0 (resolution never fetches)", adapter.FetchRangeCalls)
	}
}
