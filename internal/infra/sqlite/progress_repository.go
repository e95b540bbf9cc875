package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/fardannozami/leetcode-tracker/internal/domain"
)

type ProgressRepository struct {
	db *sql.DB
}

func NewProgressRepository(db *sql.DB) *ProgressRepository {
	return &ProgressRepository{db: db}
}

func (r *ProgressRepository) Get(ctx context.Context, userID, date string) (*domain.DailyProgress, error) {
	query := `SELECT user_id, date, easy, medium, hard, created_at FROM daily_progress WHERE user_id = ? AND date = ?`
	row := r.db.QueryRowContext(ctx, query, userID, date)

	var (
		p         domain.DailyProgress
		createdAt int64
	)
	err := row.Scan(&p.UserID, &p.Date, &p.Easy, &p.Medium, &p.Hard, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	p.CreatedAt = fromUnix(createdAt)
	return &p, nil
}

// Upsert writes the day's counts. An existing row keeps its created_at and has
// its counts replaced, never summed.
func (r *ProgressRepository) Upsert(ctx context.Context, p *domain.DailyProgress) error {
	query := `
		INSERT INTO daily_progress (user_id, date, easy, medium, hard, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, date) DO UPDATE SET
			easy = excluded.easy,
			medium = excluded.medium,
			hard = excluded.hard
	`
	_, err := r.db.ExecContext(ctx, query, p.UserID, p.Date, p.Easy, p.Medium, p.Hard, toUnix(p.CreatedAt))
	return err
}

// ListByDay returns every user's progress for date, ordered by user id.
func (r *ProgressRepository) ListByDay(ctx context.Context, date string) ([]*domain.DailyStanding, error) {
	query := `
		SELECT u.id, u.username, u.display_name, u.is_public, u.first_submission_at, u.created_at,
			p.easy, p.medium, p.hard
		FROM daily_progress p
		INNER JOIN users u ON u.id = p.user_id
		WHERE p.date = ?
		ORDER BY u.id ASC
	`
	rows, err := r.db.QueryContext(ctx, query, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var standings []*domain.DailyStanding
	for rows.Next() {
		var (
			u         domain.User
			firstSub  sql.NullInt64
			createdAt int64
			c         domain.Counts
		)
		if err := rows.Scan(&u.ID, &u.Username, &u.DisplayName, &u.IsPublic, &firstSub, &createdAt, &c.Easy, &c.Medium, &c.Hard); err != nil {
			return nil, err
		}
		if firstSub.Valid {
			t := fromUnix(firstSub.Int64)
			u.FirstSubmissionAt = &t
		}
		u.CreatedAt = fromUnix(createdAt)
		standings = append(standings, &domain.DailyStanding{User: &u, Progress: c})
	}
	return standings, rows.Err()
}
