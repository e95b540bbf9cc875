package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/fardannozami/leetcode-tracker/internal/calendar"
	"github.com/fardannozami/leetcode-tracker/internal/domain"
)

const rollingWindow = 24 * time.Hour

// RollingDelta is the change over roughly the last 24 hours. HasData is false
// when the user has no snapshots at all.
type RollingDelta struct {
	Delta    domain.Delta
	Latest   *domain.Snapshot
	Baseline *domain.Snapshot
	HasData  bool
}

type CountsView struct {
	Easy   int `json:"easy"`
	Medium int `json:"medium"`
	Hard   int `json:"hard"`
	Total  int `json:"total"`
}

type StatsUser struct {
	DisplayName string  `json:"displayName"`
	Username    *string `json:"username,omitempty"`
}

type StatsView struct {
	User        StatsUser  `json:"user"`
	Lifetime    CountsView `json:"lifetime"`
	Past24h     CountsView `json:"past24h"`
	LastUpdated time.Time  `json:"lastUpdated"`
}

type GetStatsUsecase struct {
	users     domain.UserRepository
	snapshots domain.SnapshotRepository
	cal       *calendar.Calendar
}

func NewGetStatsUsecase(users domain.UserRepository, snapshots domain.SnapshotRepository, cal *calendar.Calendar) *GetStatsUsecase {
	return &GetStatsUsecase{users: users, snapshots: snapshots, cal: cal}
}

// Execute returns lifetime totals and the rolling 24h delta for username.
func (uc *GetStatsUsecase) Execute(ctx context.Context, username string) (*StatsView, error) {
	user, err := uc.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("user %q: %w", username, domain.ErrNotFound)
	}

	rolling, err := uc.Rolling24hDelta(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if !rolling.HasData {
		return nil, fmt.Errorf("stats for %q: %w", username, domain.ErrNotFound)
	}

	latest := rolling.Latest
	return &StatsView{
		User: StatsUser{
			DisplayName: user.DisplayName,
			Username:    user.PublicUsername(),
		},
		Lifetime: CountsView{
			Easy:   latest.Easy,
			Medium: latest.Medium,
			Hard:   latest.Hard,
			Total:  latest.Total(),
		},
		Past24h: CountsView{
			Easy:   rolling.Delta.Easy,
			Medium: rolling.Delta.Medium,
			Hard:   rolling.Delta.Hard,
			Total:  rolling.Delta.Total(),
		},
		LastUpdated: latest.Timestamp,
	}, nil
}

// Rolling24hDelta compares the latest snapshot with the newest one taken at
// least 24h ago, falling back to the oldest snapshot. The result is not
// clamped, so upstream corrections show up as negative values.
func (uc *GetStatsUsecase) Rolling24hDelta(ctx context.Context, userID string) (RollingDelta, error) {
	snapshots, err := uc.snapshots.ListByUser(ctx, userID)
	if err != nil {
		return RollingDelta{}, fmt.Errorf("load snapshots: %w", err)
	}
	if len(snapshots) == 0 {
		return RollingDelta{}, nil
	}

	latest := snapshots[0]
	cutoff := uc.cal.Now().Add(-rollingWindow)

	baseline := snapshots[len(snapshots)-1]
	for _, s := range snapshots {
		if !s.Timestamp.After(cutoff) {
			baseline = s
			break
		}
	}

	return RollingDelta{
		Delta:    latest.DeltaSince(baseline.Counts),
		Latest:   latest,
		Baseline: baseline,
		HasData:  true,
	}, nil
}
