package domain

import (
	"context"
	"time"
)

// RefreshBan blocks manual refreshes of one username from one client IP.
type RefreshBan struct {
	IP        string    `json:"ip" db:"ip"`
	Username  string    `json:"username" db:"username"`
	ExpiresAt time.Time `json:"expires_at" db:"expires_at"`
}

type BanRepository interface {
	// ActiveBan returns the ban with the latest expiry strictly after now, or nil.
	ActiveBan(ctx context.Context, ip, username string, now time.Time) (*RefreshBan, error)
	// Create stores the ban, keeping the later expiry if one already exists.
	Create(ctx context.Context, ban *RefreshBan) error
	PruneExpired(ctx context.Context, now time.Time) (int64, error)
	DeleteByUsername(ctx context.Context, username string) error
}
