package vcs

import (
	"context"
	"errors"
)

// ErrUnknownReference is returned by ResolveRef when a reference name does
// not exist in the backend.
var ErrUnknownReference = errors.New("unknown reference")

// ErrUnsupportedOperation is returned for queries that need a capability the
// adapter does not provide, such as line statistics.
var ErrUnsupportedOperation = errors.New("unsupported operation")

// Adapter defines the backend access layer for a single repository.
// This abstraction allows for easier testing and alternative backends.
type Adapter interface {
	// ResolveRef resolves a reference name (branch, tag, or backend-native
	// id) to a canonical commit id. Unknown names yield ErrUnknownReference.
	ResolveRef(ctx context.Context, name string) (string, error)

	// FetchRange returns the commits in r ordered newest first, end
	// inclusive and start exclusive. When the fetch reaches the exclusive
	// start, its record is returned as the boundary. A nil boundary with a
	// nil error means history ended before the start was seen; callers
	// treat that as a range extending to the root, never as a failure.
	FetchRange(ctx context.Context, r Range) (*RawCommit, []RawCommit, error)

	// SupportsLineStats reports whether fetched commits carry ChangeStats.
	SupportsLineStats() bool
}
