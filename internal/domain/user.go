package domain

import (
	"context"
	"time"
)

type User struct {
	ID                string     `json:"id" db:"id"`
	Username          string     `json:"username" db:"username"`
	DisplayName       string     `json:"display_name" db:"display_name"`
	IsPublic          bool       `json:"is_public" db:"is_public"`
	FirstSubmissionAt *time.Time `json:"first_submission_at,omitempty" db:"first_submission_at"`
	CreatedAt         time.Time  `json:"created_at" db:"created_at"`
}

// WithinEditWindow reports whether the account may still be edited or deleted.
// Accounts without a first submission are never editable.
func (u *User) WithinEditWindow(now time.Time, window time.Duration) bool {
	if u.FirstSubmissionAt == nil {
		return false
	}
	return u.FirstSubmissionAt.After(now.Add(-window))
}

// PublicUsername returns the username only when the account is public.
func (u *User) PublicUsername() *string {
	if !u.IsPublic {
		return nil
	}
	name := u.Username
	return &name
}

type UserRepository interface {
	Create(ctx context.Context, user *User) error
	Update(ctx context.Context, user *User) error
	Delete(ctx context.Context, userID string) error
	GetByID(ctx context.Context, userID string) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	All(ctx context.Context) ([]*User, error)
}
