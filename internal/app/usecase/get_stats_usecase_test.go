package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fardannozami/leetcode-tracker/internal/app/usecase"
	"github.com/fardannozami/leetcode-tracker/internal/domain"
)

// =============================================================================
// ROLLING 24H DELTA TESTS
// =============================================================================
//
// Baseline = newest snapshot at least 24h old, else the oldest snapshot.
// Unlike daily progress, the delta is NOT clamped.
//
// =============================================================================

func newStatsFixture(t *testing.T, users ...*domain.User) (*usecase.GetStatsUsecase, *memSnapshots, *fakeClock) {
	cal, clock := newTestCalendar(t, 2024, time.March, 20, 15, 0, 0)
	snapshots := newMemSnapshots()
	return usecase.NewGetStatsUsecase(newMemUsers(users...), snapshots, cal), snapshots, clock
}

func TestRolling_UsesNewestSnapshotOlderThan24h(t *testing.T) {
	uc, snapshots, clock := newStatsFixture(t)
	now := clock.Now()
	snapshots.add("u1", now.Add(-30*time.Hour), 1, 1, 1)
	snapshots.add("u1", now.Add(-25*time.Hour), 10, 5, 2)
	snapshots.add("u1", now.Add(-2*time.Hour), 11, 5, 2)
	snapshots.add("u1", now.Add(-time.Hour), 12, 6, 3)

	rolling, err := uc.Rolling24hDelta(context.Background(), "u1")
	require.NoError(t, err)
	assert.True(t, rolling.HasData)
	assert.Equal(t, domain.Delta{Easy: 2, Medium: 1, Hard: 1}, rolling.Delta)
	assert.Equal(t, 4, rolling.Delta.Total())
}

func TestRolling_FallsBackToOldest(t *testing.T) {
	uc, snapshots, clock := newStatsFixture(t)
	now := clock.Now()
	snapshots.add("u1", now.Add(-5*time.Hour), 4, 0, 0)
	snapshots.add("u1", now.Add(-3*time.Hour), 5, 0, 0)
	snapshots.add("u1", now.Add(-time.Hour), 9, 0, 0)

	rolling, err := uc.Rolling24hDelta(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 5, rolling.Delta.Easy)
}

func TestRolling_RegressionIsNotClamped(t *testing.T) {
	uc, snapshots, clock := newStatsFixture(t)
	now := clock.Now()
	snapshots.add("u1", now.Add(-25*time.Hour), 10, 0, 0)
	snapshots.add("u1", now.Add(-time.Hour), 7, 0, 0)

	rolling, err := uc.Rolling24hDelta(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, -3, rolling.Delta.Easy)
	assert.Equal(t, -3, rolling.Delta.Total())
}

func TestRolling_NoSnapshots(t *testing.T) {
	uc, _, _ := newStatsFixture(t)

	rolling, err := uc.Rolling24hDelta(context.Background(), "u1")
	require.NoError(t, err)
	assert.False(t, rolling.HasData)
	assert.Equal(t, domain.Delta{}, rolling.Delta)
}

func TestStats_View(t *testing.T) {
	uc, snapshots, clock := newStatsFixture(t,
		&domain.User{ID: "u1", Username: "alice", DisplayName: "Alice", IsPublic: true},
		&domain.User{ID: "u2", Username: "bob", DisplayName: "Bob"},
	)
	now := clock.Now()
	snapshots.add("u1", now.Add(-26*time.Hour), 10, 5, 2)
	snapshots.add("u1", now.Add(-time.Hour), 12, 5, 3)
	snapshots.add("u2", now.Add(-time.Hour), 1, 0, 0)
	ctx := context.Background()

	view, err := uc.Execute(ctx, "alice")
	require.NoError(t, err)
	require.NotNil(t, view.User.Username)
	assert.Equal(t, "alice", *view.User.Username)
	assert.Equal(t, usecase.CountsView{Easy: 12, Medium: 5, Hard: 3, Total: 20}, view.Lifetime)
	assert.Equal(t, usecase.CountsView{Easy: 2, Medium: 0, Hard: 1, Total: 3}, view.Past24h)
	assert.True(t, view.LastUpdated.Equal(now.Add(-time.Hour)))

	view, err = uc.Execute(ctx, "bob")
	require.NoError(t, err)
	assert.Nil(t, view.User.Username, "private users must not expose their username")
}

func TestStats_NotFound(t *testing.T) {
	uc, _, _ := newStatsFixture(t, &domain.User{ID: "u1", Username: "alice"})

	_, err := uc.Execute(context.Background(), "ghost")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = uc.Execute(context.Background(), "alice")
	assert.ErrorIs(t, err, domain.ErrNotFound, "a user without snapshots has no stats yet")
}
