// Package scheduler runs the tracker's background jobs: the daily batch update
// at reference-zone midnight and the periodic refresh-ban sweep.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/fardannozami/leetcode-tracker/internal/app/usecase"
	"github.com/fardannozami/leetcode-tracker/internal/calendar"
)

type DailyUpdater interface {
	Execute(ctx context.Context) (*usecase.UpdateReport, error)
}

type BanPruner interface {
	PruneExpired(ctx context.Context, now time.Time) (int64, error)
}

// Notifier publishes the leaderboard after each daily run. Optional.
type Notifier interface {
	Announce(ctx context.Context, text string) error
}

type Config struct {
	Daily         bool
	SweepInterval time.Duration
}

type Scheduler struct {
	updater     DailyUpdater
	leaderboard usecase.LeaderboardQuery
	bans        BanPruner
	notifier    Notifier
	cal         *calendar.Calendar
	cfg         Config
	log         zerolog.Logger

	after func(d time.Duration) <-chan time.Time
}

func New(
	updater DailyUpdater,
	leaderboard usecase.LeaderboardQuery,
	bans BanPruner,
	notifier Notifier,
	cal *calendar.Calendar,
	cfg Config,
	log zerolog.Logger,
) *Scheduler {
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = time.Hour
	}
	return &Scheduler{
		updater:     updater,
		leaderboard: leaderboard,
		bans:        bans,
		notifier:    notifier,
		cal:         cal,
		cfg:         cfg,
		log:         log.With().Str("component", "scheduler").Logger(),
		after:       time.After,
	}
}

// Run blocks until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	var wg sync.WaitGroup

	if s.cfg.Daily {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.dailyLoop(ctx)
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		s.sweepLoop(ctx)
	}()

	wg.Wait()
	return ctx.Err()
}

func (s *Scheduler) dailyLoop(ctx context.Context) {
	for {
		now := s.cal.Now()
		next := s.cal.NextMidnight(now)
		s.log.Info().Time("next_run", next).Msg("daily update scheduled")

		select {
		case <-ctx.Done():
			return
		case <-s.after(next.Sub(now)):
			if err := s.RunDaily(ctx); err != nil {
				s.log.Error().Err(err).Msg("daily run failed")
			}
		}
	}
}

func (s *Scheduler) sweepLoop(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.SweepBans(ctx); err != nil {
				s.log.Error().Err(err).Msg("ban sweep failed")
			}
		}
	}
}

// RunDaily updates every user and, when a notifier is set, announces today's
// leaderboard.
func (s *Scheduler) RunDaily(ctx context.Context) error {
	report, err := s.updater.Execute(ctx)
	if err != nil {
		return err
	}
	s.log.Info().
		Int("users", report.TotalUsers).
		Int("success", report.SuccessCount).
		Int("errors", report.ErrorCount).
		Msg("daily update finished")

	if s.notifier == nil {
		return nil
	}
	day := s.cal.Today()
	entries, err := s.leaderboard.Execute(ctx, day)
	if err != nil {
		return err
	}
	return s.notifier.Announce(ctx, usecase.FormatLeaderboard(day, entries))
}

func (s *Scheduler) SweepBans(ctx context.Context) (int64, error) {
	n, err := s.bans.PruneExpired(ctx, s.cal.Now())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.log.Info().Int64("pruned", n).Msg("expired refresh bans removed")
	}
	return n, nil
}
