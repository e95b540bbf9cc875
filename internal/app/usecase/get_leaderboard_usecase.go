package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/fardannozami/leetcode-tracker/internal/calendar"
	"github.com/fardannozami/leetcode-tracker/internal/domain"
)

type GetLeaderboardUsecase struct {
	progress domain.ProgressRepository
	cal      *calendar.Calendar
}

func NewGetLeaderboardUsecase(progress domain.ProgressRepository, cal *calendar.Calendar) *GetLeaderboardUsecase {
	return &GetLeaderboardUsecase{progress: progress, cal: cal}
}

// Execute ranks every user's progress for day (YYYY-MM-DD, "today" or
// "yesterday"). An empty day means today: the midnight batch records the day
// that just ended into the new day's bucket.
func (uc *GetLeaderboardUsecase) Execute(ctx context.Context, day string) ([]domain.LeaderboardEntry, error) {
	key, err := uc.cal.ResolveDay(day)
	if err != nil {
		return nil, fmt.Errorf("%w: day must be YYYY-MM-DD, got %q", domain.ErrValidation, day)
	}

	standings, err := uc.progress.ListByDay(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("load daily progress: %w", err)
	}
	return Rank(standings), nil
}

// Rank drops users without progress, sorts by score, then total problems, then
// user id, and assigns sequential ranks starting at 1.
func Rank(standings []*domain.DailyStanding) []domain.LeaderboardEntry {
	entries := make([]domain.LeaderboardEntry, 0, len(standings))
	for _, s := range standings {
		total := s.Progress.Total()
		if total == 0 {
			continue
		}
		entries = append(entries, domain.LeaderboardEntry{
			UserID:      s.User.ID,
			DisplayName: s.User.DisplayName,
			Username:    s.User.PublicUsername(),
			Easy:        s.Progress.Easy,
			Medium:      s.Progress.Medium,
			Hard:        s.Progress.Hard,
			Total:       total,
			Score:       s.Progress.Score(),
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.Total != b.Total {
			return a.Total > b.Total
		}
		return a.UserID < b.UserID
	})

	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}

// FormatLeaderboard renders entries as a chat message.
func FormatLeaderboard(day string, entries []domain.LeaderboardEntry) string {
	sb := strings.Builder{}
	sb.WriteString(fmt.Sprintf("LeetCode Leaderboard (%s)\n", day))
	sb.WriteString("Score: 2×Easy + 3×Medium + 4×Hard\n\n")

	if len(entries) == 0 {
		sb.WriteString("No problems solved yet. Be the first! 💪")
		return sb.String()
	}

	for _, e := range entries {
		name := e.DisplayName
		if e.Username != nil {
			name = fmt.Sprintf("%s (@%s)", e.DisplayName, *e.Username)
		}
		sb.WriteString(fmt.Sprintf("%d. %s - %d pts (E%d/M%d/H%d)\n", e.Rank, name, e.Score, e.Easy, e.Medium, e.Hard))
	}
	sb.WriteString("\nKeep grinding 🔥")
	return sb.String()
}
