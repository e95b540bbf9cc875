package sqlite

import (
	"context"
	"database/sql"

	"github.com/fardannozami/leetcode-tracker/internal/domain"
)

type SnapshotRepository struct {
	db *sql.DB
}

func NewSnapshotRepository(db *sql.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

func (r *SnapshotRepository) Append(ctx context.Context, s *domain.Snapshot) error {
	query := `INSERT INTO stats (user_id, timestamp, easy, medium, hard) VALUES (?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, query, s.UserID, toUnix(s.Timestamp), s.Easy, s.Medium, s.Hard)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = id
	return nil
}

// LatestN returns at most n snapshots, newest first. Snapshots sharing a
// timestamp are ordered by insertion.
func (r *SnapshotRepository) LatestN(ctx context.Context, userID string, n int) ([]*domain.Snapshot, error) {
	query := `SELECT id, user_id, timestamp, easy, medium, hard FROM stats
		WHERE user_id = ? ORDER BY timestamp DESC, id DESC LIMIT ?`
	return r.list(ctx, query, userID, n)
}

func (r *SnapshotRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Snapshot, error) {
	query := `SELECT id, user_id, timestamp, easy, medium, hard FROM stats
		WHERE user_id = ? ORDER BY timestamp DESC, id DESC`
	return r.list(ctx, query, userID)
}

func (r *SnapshotRepository) list(ctx context.Context, query string, args ...any) ([]*domain.Snapshot, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var snapshots []*domain.Snapshot
	for rows.Next() {
		var (
			s  domain.Snapshot
			ts int64
		)
		if err := rows.Scan(&s.ID, &s.UserID, &ts, &s.Easy, &s.Medium, &s.Hard); err != nil {
			return nil, err
		}
		s.Timestamp = fromUnix(ts)
		snapshots = append(snapshots, &s)
	}
	return snapshots, rows.Err()
}
