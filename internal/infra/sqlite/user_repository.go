package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fardannozami/leetcode-tracker/internal/domain"
)

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, username, display_name, is_public, first_submission_at, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*domain.User, error) {
	var (
		u         domain.User
		firstSub  sql.NullInt64
		createdAt int64
	)
	if err := row.Scan(&u.ID, &u.Username, &u.DisplayName, &u.IsPublic, &firstSub, &createdAt); err != nil {
		return nil, err
	}
	if firstSub.Valid {
		t := fromUnix(firstSub.Int64)
		u.FirstSubmissionAt = &t
	}
	u.CreatedAt = fromUnix(createdAt)
	return &u, nil
}

func nullableUnix(u *domain.User) sql.NullInt64 {
	if u.FirstSubmissionAt == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: toUnix(*u.FirstSubmissionAt), Valid: true}
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	query := `INSERT INTO users (` + userColumns + `) VALUES (?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query, user.ID, user.Username, user.DisplayName, user.IsPublic, nullableUnix(user), toUnix(user.CreatedAt))
	if isUniqueViolation(err) {
		return fmt.Errorf("username %q: %w", user.Username, domain.ErrConflict)
	}
	return err
}

func (r *UserRepository) Update(ctx context.Context, user *domain.User) error {
	query := `UPDATE users SET display_name = ?, is_public = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query, user.DisplayName, user.IsPublic, user.ID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete removes the user together with its snapshots and daily progress.
func (r *UserRepository) Delete(ctx context.Context, userID string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, stmt := range []string{
		`DELETE FROM stats WHERE user_id = ?`,
		`DELETE FROM daily_progress WHERE user_id = ?`,
		`DELETE FROM users WHERE id = ?`,
	} {
		if _, err := tx.ExecContext(ctx, stmt, userID); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (r *UserRepository) GetByID(ctx context.Context, userID string) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, userID)
	return r.one(row)
}

// GetByUsername returns nil, nil when the username is unknown.
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE username = ?`, username)
	return r.one(row)
}

func (r *UserRepository) one(row *sql.Row) (*domain.User, error) {
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (r *UserRepository) All(ctx context.Context) ([]*domain.User, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}
