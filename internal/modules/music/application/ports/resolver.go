package ports

import (
	"context"
	"time"
)

// ResolvedTrack is a playable track descriptor produced by a Resolver.
// Requester metadata is attached by the caller, not the resolver.
type ResolvedTrack struct {
	ID            string
	StreamLocator string
	Title         string
	ThumbnailURL  string
	Duration      time.Duration
	PageURL       string
}

// Resolver turns a search string or URL into playable track descriptors.
// Resolution is network-bound and may take seconds; callers must not hold a
// guild lock across a Resolve call. A playlist cap is enforced by the caller.
type Resolver interface {
	Resolve(ctx context.Context, query string) ([]ResolvedTrack, error)
}
