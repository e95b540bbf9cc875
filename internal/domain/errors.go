package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrNotFound            = errors.New("not found")
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	ErrRateLimited         = errors.New("rate limited")
	ErrValidation          = errors.New("validation error")
	ErrConflict            = errors.New("conflict")
	ErrEditWindowExpired   = errors.New("edit window expired")
)

// RateLimitError is returned while a refresh ban is active.
type RateLimitError struct {
	Until time.Time
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("refresh banned until %s", e.Until.UTC().Format(time.RFC3339))
}

func (e *RateLimitError) Is(target error) bool {
	return target == ErrRateLimited
}

// RetryAfter returns the remaining wait relative to now, rounded up to a whole
// minute.
func (e *RateLimitError) RetryAfter(now time.Time) time.Duration {
	left := e.Until.Sub(now)
	if left <= 0 {
		return 0
	}
	minutes := (left + time.Minute - 1) / time.Minute
	return minutes * time.Minute
}
