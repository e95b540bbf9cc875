package domain

import "context"

// StatsProvider fetches a user's current lifetime totals from the upstream
// judge. Implementations return ErrNotFound for unknown usernames and
// ErrUpstreamUnavailable for any other failure.
type StatsProvider interface {
	FetchCounts(ctx context.Context, username string) (Counts, error)
}
