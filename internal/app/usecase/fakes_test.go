package usecase_test

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/fardannozami/leetcode-tracker/internal/calendar"
	"github.com/fardannozami/leetcode-tracker/internal/domain"
)

// =============================================================================
// IN-MEMORY FAKES
// =============================================================================
//
// Hand-written repositories shared by the usecase tests. They mirror the
// ordering guarantees of the SQLite implementation: snapshots newest first,
// users and standings by id.
//
// =============================================================================

var errStorage = errors.New("storage down")

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func laZone(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(calendar.ReferenceZone)
	if err != nil {
		t.Fatalf("load zone: %v", err)
	}
	return loc
}

// newTestCalendar returns a reference calendar frozen at the given LA wall time.
func newTestCalendar(t *testing.T, year int, month time.Month, day, hour, min, sec int) (*calendar.Calendar, *fakeClock) {
	t.Helper()
	clock := &fakeClock{t: time.Date(year, month, day, hour, min, sec, 0, laZone(t))}
	return calendar.New(laZone(t), clock.Now), clock
}

var nopLog = zerolog.Nop()

type memUsers struct {
	mu    sync.Mutex
	users map[string]*domain.User
}

func newMemUsers(users ...*domain.User) *memUsers {
	m := &memUsers{users: make(map[string]*domain.User)}
	for _, u := range users {
		m.users[u.ID] = u
	}
	return m
}

func (m *memUsers) Create(ctx context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == user.Username {
			return domain.ErrConflict
		}
	}
	cp := *user
	m.users[user.ID] = &cp
	return nil
}

func (m *memUsers) Update(ctx context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[user.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *user
	m.users[user.ID] = &cp
	return nil
}

func (m *memUsers) Delete(ctx context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.users, userID)
	return nil
}

func (m *memUsers) GetByID(ctx context.Context, userID string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[userID]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (m *memUsers) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memUsers) All(ctx context.Context) ([]*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*domain.User
	for _, u := range m.users {
		cp := *u
		result = append(result, &cp)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

type memSnapshots struct {
	mu        sync.Mutex
	nextID    int64
	snapshots []*domain.Snapshot
	// failFor makes reads for these user ids return errStorage.
	failFor map[string]bool
	// failAppends makes every Append return errStorage.
	failAppends bool
}

func newMemSnapshots() *memSnapshots {
	return &memSnapshots{failFor: make(map[string]bool)}
}

func (m *memSnapshots) add(userID string, ts time.Time, easy, medium, hard int) {
	_ = m.Append(context.Background(), &domain.Snapshot{
		UserID:    userID,
		Timestamp: ts,
		Counts:    domain.Counts{Easy: easy, Medium: medium, Hard: hard},
	})
}

func (m *memSnapshots) Append(ctx context.Context, s *domain.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAppends {
		return errStorage
	}
	m.nextID++
	s.ID = m.nextID
	cp := *s
	m.snapshots = append(m.snapshots, &cp)
	return nil
}

func (m *memSnapshots) ListByUser(ctx context.Context, userID string) ([]*domain.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failFor[userID] {
		return nil, errStorage
	}
	var result []*domain.Snapshot
	for _, s := range m.snapshots {
		if s.UserID == userID {
			cp := *s
			result = append(result, &cp)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].Timestamp.Equal(result[j].Timestamp) {
			return result[i].Timestamp.After(result[j].Timestamp)
		}
		return result[i].ID > result[j].ID
	})
	return result, nil
}

func (m *memSnapshots) LatestN(ctx context.Context, userID string, n int) ([]*domain.Snapshot, error) {
	all, err := m.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(all) > n {
		all = all[:n]
	}
	return all, nil
}

func (m *memSnapshots) count(userID string) int {
	all, _ := m.ListByUser(context.Background(), userID)
	return len(all)
}

type memProgress struct {
	mu    sync.Mutex
	users *memUsers
	rows  map[string]*domain.DailyProgress
}

func newMemProgress(users *memUsers) *memProgress {
	return &memProgress{users: users, rows: make(map[string]*domain.DailyProgress)}
}

func (m *memProgress) Get(ctx context.Context, userID, date string) (*domain.DailyProgress, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.rows[userID+"|"+date]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, nil
}

func (m *memProgress) Upsert(ctx context.Context, p *domain.DailyProgress) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	if existing, ok := m.rows[p.UserID+"|"+p.Date]; ok {
		cp.CreatedAt = existing.CreatedAt
	}
	m.rows[p.UserID+"|"+p.Date] = &cp
	return nil
}

func (m *memProgress) ListByDay(ctx context.Context, date string) ([]*domain.DailyStanding, error) {
	users, _ := m.users.All(ctx)
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*domain.DailyStanding
	for _, u := range users {
		if p, ok := m.rows[u.ID+"|"+date]; ok {
			result = append(result, &domain.DailyStanding{User: u, Progress: p.Counts})
		}
	}
	return result, nil
}

type memBans struct {
	mu   sync.Mutex
	bans []*domain.RefreshBan
}

func (m *memBans) ActiveBan(ctx context.Context, ip, username string, now time.Time) (*domain.RefreshBan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var best *domain.RefreshBan
	for _, b := range m.bans {
		if b.IP == ip && b.Username == username && b.ExpiresAt.After(now) {
			if best == nil || b.ExpiresAt.After(best.ExpiresAt) {
				cp := *b
				best = &cp
			}
		}
	}
	return best, nil
}

func (m *memBans) Create(ctx context.Context, ban *domain.RefreshBan) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *ban
	m.bans = append(m.bans, &cp)
	return nil
}

func (m *memBans) PruneExpired(ctx context.Context, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var kept []*domain.RefreshBan
	for _, b := range m.bans {
		if b.ExpiresAt.After(now) {
			kept = append(kept, b)
		}
	}
	n := int64(len(m.bans) - len(kept))
	m.bans = kept
	return n, nil
}

func (m *memBans) DeleteByUsername(ctx context.Context, username string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	var kept []*domain.RefreshBan
	for _, b := range m.bans {
		if b.Username != username {
			kept = append(kept, b)
		}
	}
	m.bans = kept
	return nil
}

func (m *memBans) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.bans)
}

type fakeProvider struct {
	mu     sync.Mutex
	counts map[string]domain.Counts
	errs   map[string]error
	calls  int
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{counts: make(map[string]domain.Counts), errs: make(map[string]error)}
}

func (p *fakeProvider) set(username string, easy, medium, hard int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.counts[username] = domain.Counts{Easy: easy, Medium: medium, Hard: hard}
}

func (p *fakeProvider) FetchCounts(ctx context.Context, username string) (domain.Counts, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if err, ok := p.errs[username]; ok {
		return domain.Counts{}, err
	}
	c, ok := p.counts[username]
	if !ok {
		return domain.Counts{}, domain.ErrNotFound
	}
	return c, nil
}

func (p *fakeProvider) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

func strPtr(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }
