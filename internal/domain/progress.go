package domain

import (
	"context"
	"time"
)

// DailyProgress is the incremental count attributed to one user for one
// calendar day in the reference timezone.
type DailyProgress struct {
	UserID    string    `json:"user_id" db:"user_id"`
	Date      string    `json:"date" db:"date"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	Counts
}

// DailyStanding is a day's progress joined with the owning user.
type DailyStanding struct {
	User     *User
	Progress Counts
}

type ProgressRepository interface {
	Get(ctx context.Context, userID, date string) (*DailyProgress, error)
	// Upsert overwrites the counts of an existing (user, date) row.
	Upsert(ctx context.Context, progress *DailyProgress) error
	ListByDay(ctx context.Context, date string) ([]*DailyStanding, error)
}
