package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fardannozami/leetcode-tracker/internal/domain"
)

// fetchCounts bounds a provider call by timeout. Errors are normalised so that
// callers only see domain.ErrNotFound or domain.ErrUpstreamUnavailable.
func fetchCounts(ctx context.Context, p domain.StatsProvider, timeout time.Duration, username string) (domain.Counts, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	counts, err := p.FetchCounts(ctx, username)
	if err == nil {
		return counts, nil
	}
	if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrUpstreamUnavailable) {
		return domain.Counts{}, err
	}
	return domain.Counts{}, fmt.Errorf("%w: %v", domain.ErrUpstreamUnavailable, err)
}
