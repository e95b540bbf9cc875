package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fardannozami/leetcode-tracker/internal/app/usecase"
	"github.com/fardannozami/leetcode-tracker/internal/calendar"
	"github.com/fardannozami/leetcode-tracker/internal/domain"
)

// =============================================================================
// DAILY UPDATE TESTS
// =============================================================================
//
// A snapshot is appended when:
// - the user has none yet
// - any count changed
// - the latest one is older than StaleAfter (23h)
// Provider failures are counted and skipped. Daily progress is recomputed
// for everyone afterwards.
//
// =============================================================================

type updateAllFixture struct {
	users     *memUsers
	cal       *calendar.Calendar
	snapshots *memSnapshots
	progress  *memProgress
	provider  *fakeProvider
	clock     *fakeClock
	uc        *usecase.UpdateAllUsecase
}

func newUpdateAllFixture(t *testing.T, users ...*domain.User) *updateAllFixture {
	cal, clock := newTestCalendar(t, 2024, time.March, 20, 0, 0, 5)
	userRepo := newMemUsers(users...)
	f := &updateAllFixture{
		users:     userRepo,
		cal:       cal,
		snapshots: newMemSnapshots(),
		provider:  newFakeProvider(),
		clock:     clock,
	}
	f.progress = newMemProgress(userRepo)
	locks := usecase.NewKeyedMutex()
	recompute := usecase.NewRecomputeProgressUsecase(userRepo, f.snapshots, f.progress, cal, locks, nopLog)
	f.uc = usecase.NewUpdateAllUsecase(userRepo, f.snapshots, f.provider, recompute, cal, locks,
		usecase.UpdateAllConfig{StaleAfter: 23 * time.Hour, FetchTimeout: time.Second}, nopLog)
	return f
}

func TestUpdateAll_AppendRules(t *testing.T) {
	f := newUpdateAllFixture(t,
		&domain.User{ID: "u1", Username: "fresh"},
		&domain.User{ID: "u2", Username: "changed"},
		&domain.User{ID: "u3", Username: "same"},
		&domain.User{ID: "u4", Username: "stale"},
	)
	now := f.clock.Now()
	f.snapshots.add("u2", now.Add(-time.Hour), 1, 0, 0)
	f.snapshots.add("u3", now.Add(-time.Hour), 3, 0, 0)
	f.snapshots.add("u4", now.Add(-24*time.Hour), 4, 0, 0)

	f.provider.set("fresh", 1, 1, 1)
	f.provider.set("changed", 2, 0, 0)
	f.provider.set("same", 3, 0, 0)
	f.provider.set("stale", 4, 0, 0)

	report, err := f.uc.Execute(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 4, report.TotalUsers)
	assert.Equal(t, 4, report.SuccessCount)
	assert.Equal(t, 0, report.ErrorCount)
	assert.Equal(t, 3, report.Appended)
	assert.Equal(t, 1, f.snapshots.count("u1"))
	assert.Equal(t, 2, f.snapshots.count("u2"))
	assert.Equal(t, 1, f.snapshots.count("u3"))
	assert.Equal(t, 2, f.snapshots.count("u4"))
	assert.Equal(t, usecase.BatchReport{Total: 4, Succeeded: 4, Failed: 0}, report.Progress)

	p, err := f.progress.Get(context.Background(), "u2", "2024-03-20")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, 1, p.Easy)
}

func TestUpdateAll_ProviderFailureIsIsolated(t *testing.T) {
	f := newUpdateAllFixture(t,
		&domain.User{ID: "u1", Username: "broken"},
		&domain.User{ID: "u2", Username: "gone"},
		&domain.User{ID: "u3", Username: "ok"},
	)
	f.provider.errs["broken"] = errors.New("timeout")
	f.provider.set("ok", 5, 0, 0)

	report, err := f.uc.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.SuccessCount)
	assert.Equal(t, 2, report.ErrorCount)
	assert.Equal(t, 1, f.snapshots.count("u3"))
	assert.Equal(t, 0, f.snapshots.count("u1"))
}

func TestUpdateAll_SlowProviderTimesOut(t *testing.T) {
	f := newUpdateAllFixture(t, &domain.User{ID: "u1", Username: "slow"})
	locks := usecase.NewKeyedMutex()
	recompute := usecase.NewRecomputeProgressUsecase(f.users, f.snapshots, f.progress, f.cal, locks, nopLog)
	uc := usecase.NewUpdateAllUsecase(f.users, f.snapshots, blockingProvider{}, recompute, f.cal, locks,
		usecase.UpdateAllConfig{FetchTimeout: 20 * time.Millisecond}, nopLog)

	report, err := uc.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.ErrorCount)
}

func TestUpdateAll_CancelledContextStops(t *testing.T) {
	f := newUpdateAllFixture(t, &domain.User{ID: "u1", Username: "a"}, &domain.User{ID: "u2", Username: "b"})
	f.provider.set("a", 1, 0, 0)
	f.provider.set("b", 1, 0, 0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.uc.Execute(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

type blockingProvider struct{}

func (blockingProvider) FetchCounts(ctx context.Context, username string) (domain.Counts, error) {
	<-ctx.Done()
	return domain.Counts{}, ctx.Err()
}
