package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/fardannozami/leetcode-tracker/internal/calendar"
	"github.com/fardannozami/leetcode-tracker/internal/domain"
)

type RefreshOutcome string

const (
	RefreshUpdated   RefreshOutcome = "updated"
	RefreshUnchanged RefreshOutcome = "unchanged"
)

// RefreshResult is returned when the gate let the refresh through. For
// RefreshUnchanged, BanExpiresAt is when the next refresh will be accepted.
type RefreshResult struct {
	Outcome      RefreshOutcome `json:"outcome"`
	Counts       domain.Counts  `json:"stats"`
	BanExpiresAt *time.Time     `json:"banExpiresAt,omitempty"`
}

type RefreshConfig struct {
	BanDuration  time.Duration
	FetchTimeout time.Duration
}

// RefreshStatsUsecase is the refresh gate: a manual refresh that finds no new
// progress bans the (ip, username) pair for BanDuration.
type RefreshStatsUsecase struct {
	users     domain.UserRepository
	snapshots domain.SnapshotRepository
	bans      domain.BanRepository
	provider  domain.StatsProvider
	cal       *calendar.Calendar
	userLocks *KeyedMutex
	banLocks  *KeyedMutex
	cfg       RefreshConfig
	log       zerolog.Logger
}

func NewRefreshStatsUsecase(
	users domain.UserRepository,
	snapshots domain.SnapshotRepository,
	bans domain.BanRepository,
	provider domain.StatsProvider,
	cal *calendar.Calendar,
	userLocks *KeyedMutex,
	cfg RefreshConfig,
	log zerolog.Logger,
) *RefreshStatsUsecase {
	if cfg.BanDuration <= 0 {
		cfg.BanDuration = 5 * time.Minute
	}
	return &RefreshStatsUsecase{
		users:     users,
		snapshots: snapshots,
		bans:      bans,
		provider:  provider,
		cal:       cal,
		userLocks: userLocks,
		banLocks:  NewKeyedMutex(),
		cfg:       cfg,
		log:       log,
	}
}

// Execute checks the ban ledger and, when allowed, fetches fresh counts. An
// active ban yields a *domain.RateLimitError without contacting the provider.
func (uc *RefreshStatsUsecase) Execute(ctx context.Context, ip, username string) (*RefreshResult, error) {
	unlockBan := uc.banLocks.Lock(ip + "|" + username)
	defer unlockBan()

	now := uc.cal.Now()

	ban, err := uc.bans.ActiveBan(ctx, ip, username, now)
	if err != nil {
		return nil, fmt.Errorf("check refresh ban: %w", err)
	}
	if ban != nil {
		refreshOutcomesTotal.WithLabelValues("banned").Inc()
		return nil, &domain.RateLimitError{Until: ban.ExpiresAt}
	}

	user, err := uc.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("user %q: %w", username, domain.ErrNotFound)
	}

	if latest, err := uc.snapshots.LatestN(ctx, user.ID, 1); err != nil {
		return nil, fmt.Errorf("load latest snapshot: %w", err)
	} else if len(latest) == 0 {
		return nil, fmt.Errorf("stats for %q: %w", username, domain.ErrNotFound)
	}

	current, err := fetchCounts(ctx, uc.provider, uc.cfg.FetchTimeout, username)
	if err != nil {
		refreshOutcomesTotal.WithLabelValues("upstream_error").Inc()
		return nil, fmt.Errorf("%w: fetch %q: %v", domain.ErrUpstreamUnavailable, username, err)
	}

	unlockUser := uc.userLocks.Lock(user.ID)
	defer unlockUser()

	// Re-read under the user lock: a batch update may have appended meanwhile.
	latest, err := uc.snapshots.LatestN(ctx, user.ID, 1)
	if err != nil {
		return nil, fmt.Errorf("load latest snapshot: %w", err)
	}
	if len(latest) == 0 {
		return nil, fmt.Errorf("stats for %q: %w", username, domain.ErrNotFound)
	}

	if !current.Equal(latest[0].Counts) {
		s := &domain.Snapshot{UserID: user.ID, Timestamp: uc.cal.Now(), Counts: current}
		if err := uc.snapshots.Append(ctx, s); err != nil {
			return nil, fmt.Errorf("append snapshot: %w", err)
		}
		snapshotsAppendedTotal.WithLabelValues("refresh").Inc()
		refreshOutcomesTotal.WithLabelValues(string(RefreshUpdated)).Inc()
		uc.log.Info().Str("username", username).Interface("stats", current).Msg("stats refreshed")
		return &RefreshResult{Outcome: RefreshUpdated, Counts: current}, nil
	}

	expiresAt := now.Add(uc.cfg.BanDuration)
	if err := uc.bans.Create(ctx, &domain.RefreshBan{IP: ip, Username: username, ExpiresAt: expiresAt}); err != nil {
		return nil, fmt.Errorf("create refresh ban: %w", err)
	}
	refreshOutcomesTotal.WithLabelValues(string(RefreshUnchanged)).Inc()
	uc.log.Info().Str("username", username).Str("ip", ip).Time("ban_expires_at", expiresAt).Msg("stats unchanged, refresh banned")
	return &RefreshResult{Outcome: RefreshUnchanged, Counts: current, BanExpiresAt: &expiresAt}, nil
}
