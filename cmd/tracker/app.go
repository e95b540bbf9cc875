package main

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/fardannozami/leetcode-tracker/internal/app/usecase"
	"github.com/fardannozami/leetcode-tracker/internal/calendar"
	"github.com/fardannozami/leetcode-tracker/internal/config"
	"github.com/fardannozami/leetcode-tracker/internal/infra/leetcode"
	"github.com/fardannozami/leetcode-tracker/internal/infra/sqlite"
	"github.com/fardannozami/leetcode-tracker/internal/logger"
)

// app holds every wired dependency shared by the subcommands.
type app struct {
	cfg *config.Config
	log zerolog.Logger
	db  *sql.DB
	cal *calendar.Calendar

	bans *sqlite.BanRepository

	register    *usecase.RegisterUserUsecase
	accounts    *usecase.AccountUsecase
	stats       *usecase.GetStatsUsecase
	refresh     *usecase.RefreshStatsUsecase
	leaderboard *usecase.GetLeaderboardUsecase
	updateAll   *usecase.UpdateAllUsecase
	messages    *usecase.HandleMessageUsecase
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	log := logger.New("leetcode-tracker", cfg.LogLevel)

	cal, err := calendar.NewReference(nil)
	if err != nil {
		return nil, err
	}

	db, err := sqlite.Open(cfg.SQLitePath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := sqlite.InitTables(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init tables: %w", err)
	}

	users := sqlite.NewUserRepository(db)
	snapshots := sqlite.NewSnapshotRepository(db)
	progress := sqlite.NewProgressRepository(db)
	bans := sqlite.NewBanRepository(db)
	provider := leetcode.NewClient(cfg.ProviderURL, cfg.ProviderTimeout, cfg.ProviderRetries)

	userLocks := usecase.NewKeyedMutex()
	recompute := usecase.NewRecomputeProgressUsecase(users, snapshots, progress, cal, userLocks, log)
	stats := usecase.NewGetStatsUsecase(users, snapshots, cal)
	leaderboard := usecase.NewGetLeaderboardUsecase(progress, cal)

	a := &app{
		cfg:         cfg,
		log:         log,
		db:          db,
		cal:         cal,
		bans:        bans,
		register:    usecase.NewRegisterUserUsecase(users, snapshots, provider, cal, cfg.ProviderTimeout, log),
		accounts:    usecase.NewAccountUsecase(users, bans, cal, cfg.EditWindow, log),
		stats:       stats,
		leaderboard: leaderboard,
		refresh: usecase.NewRefreshStatsUsecase(users, snapshots, bans, provider, cal, userLocks, usecase.RefreshConfig{
			BanDuration:  cfg.BanDuration,
			FetchTimeout: cfg.ProviderTimeout,
		}, log),
		updateAll: usecase.NewUpdateAllUsecase(users, snapshots, provider, recompute, cal, userLocks, usecase.UpdateAllConfig{
			Delay:        cfg.BatchDelay,
			StaleAfter:   cfg.StaleAfter,
			FetchTimeout: cfg.ProviderTimeout,
		}, log),
		messages: usecase.NewHandleMessageUsecase(leaderboard, stats, cal.ResolveDay),
	}
	return a, nil
}

func (a *app) Close() error {
	return a.db.Close()
}
