package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/fardannozami/leetcode-tracker/internal/domain"
)

type BanRepository struct {
	db *sql.DB
}

func NewBanRepository(db *sql.DB) *BanRepository {
	return &BanRepository{db: db}
}

func (r *BanRepository) ActiveBan(ctx context.Context, ip, username string, now time.Time) (*domain.RefreshBan, error) {
	query := `SELECT ip, username, expires_at FROM refresh_bans
		WHERE ip = ? AND username = ? AND expires_at > ?
		ORDER BY expires_at DESC LIMIT 1`
	row := r.db.QueryRowContext(ctx, query, ip, username, toUnix(now))

	var (
		ban       domain.RefreshBan
		expiresAt int64
	)
	err := row.Scan(&ban.IP, &ban.Username, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	ban.ExpiresAt = fromUnix(expiresAt)
	return &ban, nil
}

// Create keeps a single row per (ip, username). A shorter ban never replaces a
// longer one.
func (r *BanRepository) Create(ctx context.Context, ban *domain.RefreshBan) error {
	query := `
		INSERT INTO refresh_bans (ip, username, expires_at)
		VALUES (?, ?, ?)
		ON CONFLICT(ip, username) DO UPDATE SET
			expires_at = MAX(refresh_bans.expires_at, excluded.expires_at)
	`
	_, err := r.db.ExecContext(ctx, query, ban.IP, ban.Username, toUnix(ban.ExpiresAt))
	return err
}

func (r *BanRepository) PruneExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM refresh_bans WHERE expires_at <= ?`, toUnix(now))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *BanRepository) DeleteByUsername(ctx context.Context, username string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM refresh_bans WHERE username = ?`, username)
	return err
}
