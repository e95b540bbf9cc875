package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/fardannozami/leetcode-tracker/internal/calendar"
	"github.com/fardannozami/leetcode-tracker/internal/domain"
)

// UpdateAccountInput changes display name and visibility. Nil fields are kept.
type UpdateAccountInput struct {
	Username    string  `json:"username"`
	DisplayName *string `json:"display_name,omitempty"`
	IsPublic    *bool   `json:"is_public,omitempty"`
}

// AccountUsecase edits or deletes an account while it is still inside the
// edit window that opens at its first submission.
type AccountUsecase struct {
	users  domain.UserRepository
	bans   domain.BanRepository
	cal    *calendar.Calendar
	window time.Duration
	log    zerolog.Logger
}

func NewAccountUsecase(users domain.UserRepository, bans domain.BanRepository, cal *calendar.Calendar, window time.Duration, log zerolog.Logger) *AccountUsecase {
	if window <= 0 {
		window = 5 * time.Minute
	}
	return &AccountUsecase{users: users, bans: bans, cal: cal, window: window, log: log}
}

func (uc *AccountUsecase) editable(ctx context.Context, username string) (*domain.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, fmt.Errorf("%w: leetcode username is required", domain.ErrValidation)
	}

	user, err := uc.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("user %q: %w", username, domain.ErrNotFound)
	}
	if !user.WithinEditWindow(uc.cal.Now(), uc.window) {
		return nil, fmt.Errorf("%w: accounts can only be changed within %s of signing up", domain.ErrEditWindowExpired, uc.window)
	}
	return user, nil
}

func (uc *AccountUsecase) Update(ctx context.Context, in UpdateAccountInput) (*domain.User, error) {
	user, err := uc.editable(ctx, in.Username)
	if err != nil {
		return nil, err
	}

	if in.DisplayName != nil {
		name := strings.TrimSpace(*in.DisplayName)
		if name == "" || utf8.RuneCountInString(name) > maxDisplayNameLen {
			return nil, fmt.Errorf("%w: name must be 1 to %d characters", domain.ErrValidation, maxDisplayNameLen)
		}
		user.DisplayName = name
	}
	if in.IsPublic != nil {
		user.IsPublic = *in.IsPublic
	}

	if err := uc.users.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	uc.log.Info().Str("user_id", user.ID).Msg("account updated")
	return user, nil
}

// Delete removes the user with all snapshots, day buckets and refresh bans.
func (uc *AccountUsecase) Delete(ctx context.Context, username string) error {
	user, err := uc.editable(ctx, username)
	if err != nil {
		return err
	}

	if err := uc.users.Delete(ctx, user.ID); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if err := uc.bans.DeleteByUsername(ctx, user.Username); err != nil {
		return fmt.Errorf("delete refresh bans: %w", err)
	}
	uc.log.Info().Str("user_id", user.ID).Str("username", user.Username).Msg("account deleted")
	return nil
}
