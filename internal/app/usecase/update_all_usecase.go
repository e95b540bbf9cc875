package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/fardannozami/leetcode-tracker/internal/calendar"
	"github.com/fardannozami/leetcode-tracker/internal/domain"
)

type UpdateAllConfig struct {
	// Delay between users keeps the provider call rate low.
	Delay time.Duration
	// StaleAfter forces a snapshot even without changes once the latest one is
	// older than this, so every user gets a baseline for the new day.
	StaleAfter   time.Duration
	FetchTimeout time.Duration
}

type UpdateReport struct {
	TotalUsers   int         `json:"totalUsers"`
	SuccessCount int         `json:"successCount"`
	ErrorCount   int         `json:"errorCount"`
	Appended     int         `json:"appended"`
	Progress     BatchReport `json:"progress"`
	Timestamp    time.Time   `json:"timestamp"`
}

// UpdateAllUsecase is the scheduled job: sample every user from the provider,
// then recompute today's buckets.
type UpdateAllUsecase struct {
	users     domain.UserRepository
	snapshots domain.SnapshotRepository
	provider  domain.StatsProvider
	recompute *RecomputeProgressUsecase
	cal       *calendar.Calendar
	locks     *KeyedMutex
	cfg       UpdateAllConfig
	sleep     func(ctx context.Context, d time.Duration) error
	log       zerolog.Logger
}

func NewUpdateAllUsecase(
	users domain.UserRepository,
	snapshots domain.SnapshotRepository,
	provider domain.StatsProvider,
	recompute *RecomputeProgressUsecase,
	cal *calendar.Calendar,
	locks *KeyedMutex,
	cfg UpdateAllConfig,
	log zerolog.Logger,
) *UpdateAllUsecase {
	if cfg.StaleAfter <= 0 {
		cfg.StaleAfter = 23 * time.Hour
	}
	return &UpdateAllUsecase{
		users:     users,
		snapshots: snapshots,
		provider:  provider,
		recompute: recompute,
		cal:       cal,
		locks:     locks,
		cfg:       cfg,
		sleep:     sleepCtx,
		log:       log,
	}
}

func (uc *UpdateAllUsecase) Execute(ctx context.Context) (*UpdateReport, error) {
	users, err := uc.users.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	report := &UpdateReport{TotalUsers: len(users)}
	uc.log.Info().Int("users", len(users)).Msg("starting daily update")

	for i, u := range users {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if i > 0 && uc.cfg.Delay > 0 {
			if err := uc.sleep(ctx, uc.cfg.Delay); err != nil {
				return report, err
			}
		}

		appended, err := uc.updateUser(ctx, u)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return report, ctxErr
			}
			report.ErrorCount++
			stage := "store"
			if errors.Is(err, domain.ErrUpstreamUnavailable) || errors.Is(err, domain.ErrNotFound) {
				stage = "fetch"
			}
			batchFailuresTotal.WithLabelValues(stage).Inc()
			uc.log.Error().Err(err).Str("username", u.Username).Msg("failed to update user")
			continue
		}
		report.SuccessCount++
		if appended {
			report.Appended++
		}
	}

	uc.log.Info().
		Int("success", report.SuccessCount).
		Int("errors", report.ErrorCount).
		Int("appended", report.Appended).
		Msg("daily update completed")

	progress, err := uc.recompute.RecomputeAll(ctx)
	if err != nil {
		uc.log.Error().Err(err).Msg("error calculating daily progress")
	}
	report.Progress = progress
	report.Timestamp = uc.cal.Now()
	return report, nil
}

func (uc *UpdateAllUsecase) updateUser(ctx context.Context, u *domain.User) (bool, error) {
	current, err := fetchCounts(ctx, uc.provider, uc.cfg.FetchTimeout, u.Username)
	if err != nil {
		return false, err
	}

	unlock := uc.locks.Lock(u.ID)
	defer unlock()

	latest, err := uc.snapshots.LatestN(ctx, u.ID, 1)
	if err != nil {
		return false, fmt.Errorf("load latest snapshot: %w", err)
	}

	now := uc.cal.Now()
	shouldAppend := len(latest) == 0 ||
		!current.Equal(latest[0].Counts) ||
		now.Sub(latest[0].Timestamp) > uc.cfg.StaleAfter
	if !shouldAppend {
		uc.log.Debug().Str("username", u.Username).Msg("no update needed")
		return false, nil
	}

	if err := uc.snapshots.Append(ctx, &domain.Snapshot{UserID: u.ID, Timestamp: now, Counts: current}); err != nil {
		return false, fmt.Errorf("append snapshot: %w", err)
	}
	snapshotsAppendedTotal.WithLabelValues("batch").Inc()
	return true, nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
