package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fardannozami/leetcode-tracker/internal/domain"
)

type LeaderboardQuery interface {
	Execute(ctx context.Context, day string) ([]domain.LeaderboardEntry, error)
}

type StatsQuery interface {
	Execute(ctx context.Context, username string) (*StatsView, error)
}

// HandleMessageUsecase answers chat commands:
//
//	#leaderboard [YYYY-MM-DD|yesterday]
//	#stats <username>
type HandleMessageUsecase struct {
	leaderboard LeaderboardQuery
	stats       StatsQuery
	resolveDay  func(string) (string, error)
}

func NewHandleMessageUsecase(leaderboard LeaderboardQuery, stats StatsQuery, resolveDay func(string) (string, error)) *HandleMessageUsecase {
	return &HandleMessageUsecase{leaderboard: leaderboard, stats: stats, resolveDay: resolveDay}
}

// Execute returns the reply for msg, or "" when msg is not a command.
func (uc *HandleMessageUsecase) Execute(ctx context.Context, msg string) (string, error) {
	fields := strings.Fields(msg)
	if len(fields) == 0 {
		return "", nil
	}

	switch strings.ToLower(fields[0]) {
	case "#leaderboard":
		day := ""
		if len(fields) > 1 {
			day = fields[1]
		}
		return uc.handleLeaderboard(ctx, day)
	case "#stats":
		if len(fields) < 2 {
			return "Usage: #stats <leetcode username>", nil
		}
		return uc.handleStats(ctx, fields[1])
	}
	return "", nil
}

func (uc *HandleMessageUsecase) handleLeaderboard(ctx context.Context, day string) (string, error) {
	entries, err := uc.leaderboard.Execute(ctx, day)
	if errors.Is(err, domain.ErrValidation) {
		return "Invalid date, use YYYY-MM-DD.", nil
	}
	if err != nil {
		return "", err
	}
	if key, err := uc.resolveDay(day); err == nil {
		day = key
	}
	return FormatLeaderboard(day, entries), nil
}

func (uc *HandleMessageUsecase) handleStats(ctx context.Context, username string) (string, error) {
	view, err := uc.stats.Execute(ctx, username)
	if errors.Is(err, domain.ErrNotFound) {
		return fmt.Sprintf("No stats found for %s.", username), nil
	}
	if err != nil {
		return "", err
	}

	sb := strings.Builder{}
	sb.WriteString(fmt.Sprintf("📊 %s\n", view.User.DisplayName))
	sb.WriteString(fmt.Sprintf("Total: %d (E%d/M%d/H%d)\n", view.Lifetime.Total, view.Lifetime.Easy, view.Lifetime.Medium, view.Lifetime.Hard))
	sb.WriteString(fmt.Sprintf("Last 24h: %+d (E%+d/M%+d/H%+d)", view.Past24h.Total, view.Past24h.Easy, view.Past24h.Medium, view.Past24h.Hard))
	return sb.String(), nil
}
