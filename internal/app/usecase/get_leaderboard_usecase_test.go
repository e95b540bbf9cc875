package usecase_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fardannozami/leetcode-tracker/internal/app/usecase"
	"github.com/fardannozami/leetcode-tracker/internal/domain"
)

// =============================================================================
// LEADERBOARD RANKING TESTS
// =============================================================================
//
// Ranking Rules:
// 1. Score = 2×easy + 3×medium + 4×hard
// 2. Sort by score desc, then total desc, then user id asc
// 3. Ranks are sequential (1, 2, 3, ...) even when scores tie
// 4. Users with no problems that day are left out
// 5. Username only for public users
//
// =============================================================================

func standing(id, name string, public bool, easy, medium, hard int) *domain.DailyStanding {
	return &domain.DailyStanding{
		User:     &domain.User{ID: id, Username: name, DisplayName: name, IsPublic: public},
		Progress: domain.Counts{Easy: easy, Medium: medium, Hard: hard},
	}
}

func TestRank_TieBreakByTotal(t *testing.T) {
	entries := usecase.Rank([]*domain.DailyStanding{
		standing("a", "A", true, 4, 0, 3),  // score 20, total 7
		standing("b", "B", true, 10, 0, 0), // score 20, total 10
		standing("c", "C", true, 0, 5, 0),  // score 15, total 5
	})

	require.Len(t, entries, 3)
	assert.Equal(t, "B", entries[0].DisplayName)
	assert.Equal(t, 1, entries[0].Rank)
	assert.Equal(t, "A", entries[1].DisplayName)
	assert.Equal(t, 2, entries[1].Rank)
	assert.Equal(t, "C", entries[2].DisplayName)
	assert.Equal(t, 3, entries[2].Rank)
	assert.Equal(t, 20, entries[0].Score)
	assert.Equal(t, 10, entries[0].Total)
}

func TestRank_SequentialRanksOnEqualScores(t *testing.T) {
	entries := usecase.Rank([]*domain.DailyStanding{
		standing("a", "A", true, 5, 0, 0),  // 10
		standing("b", "B", true, 0, 0, 5),  // 20
		standing("c", "C", true, 10, 0, 0), // 20, higher total
		standing("d", "D", true, 0, 0, 1),  // 4
	})

	var ranks []int
	var names []string
	for _, e := range entries {
		ranks = append(ranks, e.Rank)
		names = append(names, e.DisplayName)
	}
	assert.Equal(t, []int{1, 2, 3, 4}, ranks)
	assert.Equal(t, []string{"C", "B", "A", "D"}, names)
}

func TestRank_FullTieOrderedByUserID(t *testing.T) {
	entries := usecase.Rank([]*domain.DailyStanding{
		standing("u2", "Second", true, 1, 1, 1),
		standing("u1", "First", true, 1, 1, 1),
	})

	require.Len(t, entries, 2)
	assert.Equal(t, "First", entries[0].DisplayName)
	assert.Equal(t, "Second", entries[1].DisplayName)
}

func TestRank_ExcludesZeroTotal(t *testing.T) {
	entries := usecase.Rank([]*domain.DailyStanding{
		standing("a", "A", true, 0, 0, 0),
		standing("b", "B", true, 0, 1, 0),
	})

	require.Len(t, entries, 1)
	assert.Equal(t, "B", entries[0].DisplayName)
	assert.Equal(t, 1, entries[0].Rank)
}

func TestRank_UsernameOnlyForPublicUsers(t *testing.T) {
	entries := usecase.Rank([]*domain.DailyStanding{
		standing("a", "public", true, 2, 0, 0),
		standing("b", "private", false, 1, 0, 0),
	})
	require.Len(t, entries, 2)

	require.NotNil(t, entries[0].Username)
	assert.Equal(t, "public", *entries[0].Username)
	assert.Nil(t, entries[1].Username)

	raw, err := json.Marshal(entries[1])
	require.NoError(t, err)
	var fields map[string]any
	require.NoError(t, json.Unmarshal(raw, &fields))
	assert.NotContains(t, fields, "username")
	assert.NotContains(t, fields, "UserID")
}

func TestLeaderboard_DayParameter(t *testing.T) {
	cal, _ := newTestCalendar(t, 2024, time.March, 20, 15, 0, 0)
	users := newMemUsers(&domain.User{ID: "u1", Username: "alice", DisplayName: "Alice"})
	progress := newMemProgress(users)
	ctx := context.Background()
	require.NoError(t, progress.Upsert(ctx, &domain.DailyProgress{UserID: "u1", Date: "2024-03-19", Counts: domain.Counts{Easy: 1}}))
	uc := usecase.NewGetLeaderboardUsecase(progress, cal)

	entries, err := uc.Execute(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, entries, "default day is today")

	entries, err = uc.Execute(ctx, "2024-03-19")
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	entries, err = uc.Execute(ctx, "yesterday")
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	_, err = uc.Execute(ctx, "19-03-2024")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestFormatLeaderboard(t *testing.T) {
	entries := usecase.Rank([]*domain.DailyStanding{
		standing("a", "alice", true, 1, 1, 0),
		standing("b", "bob", false, 0, 0, 1),
	})

	msg := usecase.FormatLeaderboard("2024-03-20", entries)
	assert.Contains(t, msg, "LeetCode Leaderboard (2024-03-20)")
	assert.Contains(t, msg, "1. alice (@alice) - 5 pts (E1/M1/H0)")
	assert.Contains(t, msg, "2. bob - 4 pts (E0/M0/H1)")
	assert.NotContains(t, msg, "@bob")

	empty := usecase.FormatLeaderboard("2024-03-20", nil)
	assert.Contains(t, empty, "No problems solved yet")
}
