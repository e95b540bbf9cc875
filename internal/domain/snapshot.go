package domain

import (
	"context"
	"time"
)

// Snapshot is an immutable point-in-time reading of a user's lifetime totals.
type Snapshot struct {
	ID        int64     `json:"id" db:"id"`
	UserID    string    `json:"user_id" db:"user_id"`
	Timestamp time.Time `json:"timestamp" db:"timestamp"`
	Counts
}

// SnapshotRepository is an append-only store. Reads are ordered newest first.
type SnapshotRepository interface {
	Append(ctx context.Context, snapshot *Snapshot) error
	LatestN(ctx context.Context, userID string, n int) ([]*Snapshot, error)
	ListByUser(ctx context.Context, userID string) ([]*Snapshot, error)
}
