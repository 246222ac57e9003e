package vcs

import (
	"context"
	"fmt"
)

// MockAdapter is a test double for Adapter. It serves ranges out of a
// preloaded history and records every backend call, so tests can assert how
// many fetches a resolution needed and which spans were requested.
type MockAdapter struct {
	History   []RawCommit       // full history, newest first
	Refs      map[string]string // ref name -> commit id
	LineStats bool

	ResolveErr error // returned by ResolveRef when set
	FetchErr   error // returned by FetchRange when set

	ResolveRefCalls int
	FetchRangeCalls int
	FetchedRanges   []Range
}

// NewMockAdapter creates a MockAdapter over the given history, newest first.
func NewMockAdapter(history []RawCommit, refs map[string]string) *MockAdapter {
	return &MockAdapter{History: history, Refs: refs}
}

// ResolveRef resolves a ref from the Refs table, accepting preloaded commit
// ids as already canonical.
func (m *MockAdapter) ResolveRef(_ context.Context, name string) (string, error) {
	m.ResolveRefCalls++
	if m.ResolveErr != nil {
		return "", m.ResolveErr
	}
	if id, ok := m.Refs[name]; ok {
		return id, nil
	}
	for _, c := range m.History {
		if c.ID == name {
			return name, nil
		}
	}
	return "", fmt.Errorf("resolve %q: %w", name, ErrUnknownReference)
}

// FetchRange serves commits reachable from r.End and not from r.Start, in
// preloaded order. The start record is the boundary when the walk saw it; a
// start that is absent from the history behaves like a deleted commit, so
// everything reachable from the end comes back with no boundary.
func (m *MockAdapter) FetchRange(ctx context.Context, r Range) (*RawCommit, []RawCommit, error) {
	m.FetchRangeCalls++
	m.FetchedRanges = append(m.FetchedRanges, r)
	if m.FetchErr != nil {
		return nil, nil, m.FetchErr
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	index := make(map[string]*RawCommit, len(m.History))
	for i := range m.History {
		index[m.History[i].ID] = &m.History[i]
	}
	if _, ok := index[r.End]; !ok {
		return nil, nil, fmt.Errorf("fetch %q: %w", r.End, ErrUnknownReference)
	}

	reach := m.reachable(index, r.End)

	var boundary *RawCommit
	excluded := map[string]struct{}{}
	if !r.FromRoot() {
		if start, ok := index[r.Start]; ok {
			if _, seen := reach[r.Start]; seen {
				b := *start
				boundary = &b
				excluded = m.reachable(index, r.Start)
			}
		}
	}

	var out []RawCommit
	for _, c := range m.History {
		if _, ok := reach[c.ID]; !ok {
			continue
		}
		if _, ok := excluded[c.ID]; ok {
			continue
		}
		out = append(out, c)
	}
	return boundary, out, nil
}

// SupportsLineStats reports the configured capability.
func (m *MockAdapter) SupportsLineStats() bool {
	return m.LineStats
}

func (m *MockAdapter) reachable(index map[string]*RawCommit, from string) map[string]struct{} {
	seen := map[string]struct{}{}
	stack := []string{from}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, ok := seen[id]; ok {
			continue
		}
		c, ok := index[id]
		if !ok {
			continue
		}
		seen[id] = struct{}{}
		stack = append(stack, c.ParentIDs...)
	}
	return seen
}

// Compile-time interface conformance check.
var _ Adapter = (*MockAdapter)(nil)
