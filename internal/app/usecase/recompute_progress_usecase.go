package usecase

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/fardannozami/leetcode-tracker/internal/calendar"
	"github.com/fardannozami/leetcode-tracker/internal/domain"
)

// RecomputeProgressUsecase turns the two most recent snapshots of a user into
// the incremental counts for today's day bucket.
type RecomputeProgressUsecase struct {
	users     domain.UserRepository
	snapshots domain.SnapshotRepository
	progress  domain.ProgressRepository
	cal       *calendar.Calendar
	locks     *KeyedMutex
	log       zerolog.Logger
}

func NewRecomputeProgressUsecase(
	users domain.UserRepository,
	snapshots domain.SnapshotRepository,
	progress domain.ProgressRepository,
	cal *calendar.Calendar,
	locks *KeyedMutex,
	log zerolog.Logger,
) *RecomputeProgressUsecase {
	return &RecomputeProgressUsecase{
		users:     users,
		snapshots: snapshots,
		progress:  progress,
		cal:       cal,
		locks:     locks,
		log:       log,
	}
}

// BatchReport summarises a run over every user.
type BatchReport struct {
	Total     int `json:"total"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}

// RecomputeToday upserts today's bucket for userID. With one snapshot its full
// counts are attributed to today; with none nothing is written.
func (uc *RecomputeProgressUsecase) RecomputeToday(ctx context.Context, userID string) error {
	unlock := uc.locks.Lock(userID)
	defer unlock()

	latest, err := uc.snapshots.LatestN(ctx, userID, 2)
	if err != nil {
		return fmt.Errorf("load latest snapshots: %w", err)
	}
	if len(latest) == 0 {
		return nil
	}

	increment := latest[0].Counts
	if len(latest) > 1 {
		increment = latest[0].IncrementSince(latest[1].Counts)
	}

	p := &domain.DailyProgress{
		UserID:    userID,
		Date:      uc.cal.Today(),
		CreatedAt: uc.cal.Now(),
		Counts:    increment,
	}
	if err := uc.progress.Upsert(ctx, p); err != nil {
		return fmt.Errorf("upsert daily progress: %w", err)
	}
	return nil
}

// RecomputeAll runs RecomputeToday for every user. A failing user is logged
// and counted; only a failure to list users or a cancelled ctx stops the run.
func (uc *RecomputeProgressUsecase) RecomputeAll(ctx context.Context) (BatchReport, error) {
	var report BatchReport

	users, err := uc.users.All(ctx)
	if err != nil {
		return report, fmt.Errorf("list users: %w", err)
	}
	report.Total = len(users)

	for _, u := range users {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if err := uc.RecomputeToday(ctx, u.ID); err != nil {
			report.Failed++
			batchFailuresTotal.WithLabelValues("progress").Inc()
			uc.log.Error().Err(err).Str("user_id", u.ID).Str("username", u.Username).Msg("daily progress calculation failed")
			continue
		}
		report.Succeeded++
	}

	uc.log.Info().
		Int("total", report.Total).
		Int("succeeded", report.Succeeded).
		Int("failed", report.Failed).
		Str("date", uc.cal.Today()).
		Msg("daily progress calculated")
	return report, nil
}
