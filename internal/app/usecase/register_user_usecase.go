package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/fardannozami/leetcode-tracker/internal/calendar"
	"github.com/fardannozami/leetcode-tracker/internal/domain"
)

const (
	maxUsernameLen    = 50
	maxDisplayNameLen = 100
)

type RegisterUserInput struct {
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	IsPublic    bool   `json:"is_public"`
}

func (in *RegisterUserInput) normalize() error {
	in.Username = strings.TrimSpace(in.Username)
	in.DisplayName = strings.TrimSpace(in.DisplayName)

	switch {
	case in.Username == "" || in.DisplayName == "":
		return fmt.Errorf("%w: name and leetcode username are required", domain.ErrValidation)
	case utf8.RuneCountInString(in.Username) > maxUsernameLen:
		return fmt.Errorf("%w: leetcode username must be at most %d characters", domain.ErrValidation, maxUsernameLen)
	case utf8.RuneCountInString(in.DisplayName) > maxDisplayNameLen:
		return fmt.Errorf("%w: name must be at most %d characters", domain.ErrValidation, maxDisplayNameLen)
	}
	return nil
}

// RegisterUserUsecase signs a user up after checking the username exists
// upstream, and stores their first snapshot.
type RegisterUserUsecase struct {
	users        domain.UserRepository
	snapshots    domain.SnapshotRepository
	provider     domain.StatsProvider
	cal          *calendar.Calendar
	fetchTimeout time.Duration
	newID        func() string
	log          zerolog.Logger
}

func NewRegisterUserUsecase(
	users domain.UserRepository,
	snapshots domain.SnapshotRepository,
	provider domain.StatsProvider,
	cal *calendar.Calendar,
	fetchTimeout time.Duration,
	log zerolog.Logger,
) *RegisterUserUsecase {
	return &RegisterUserUsecase{
		users:        users,
		snapshots:    snapshots,
		provider:     provider,
		cal:          cal,
		fetchTimeout: fetchTimeout,
		newID:        uuid.NewString,
		log:          log,
	}
}

func (uc *RegisterUserUsecase) Execute(ctx context.Context, in RegisterUserInput) (*domain.User, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}

	existing, err := uc.users.GetByUsername(ctx, in.Username)
	if err != nil {
		return nil, fmt.Errorf("check username: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: leetcode username %q is already registered", domain.ErrConflict, in.Username)
	}

	counts, err := fetchCounts(ctx, uc.provider, uc.fetchTimeout, in.Username)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("%w: leetcode user %q does not exist", domain.ErrValidation, in.Username)
	}
	if err != nil {
		return nil, err
	}

	now := uc.cal.Now()
	user := &domain.User{
		ID:                uc.newID(),
		Username:          in.Username,
		DisplayName:       in.DisplayName,
		IsPublic:          in.IsPublic,
		FirstSubmissionAt: &now,
		CreatedAt:         now,
	}
	if err := uc.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	// A user without a snapshot could never be refreshed, so undo the create.
	if err := uc.snapshots.Append(ctx, &domain.Snapshot{UserID: user.ID, Timestamp: now, Counts: counts}); err != nil {
		if delErr := uc.users.Delete(context.WithoutCancel(ctx), user.ID); delErr != nil {
			uc.log.Error().Err(delErr).Str("user_id", user.ID).Msg("rollback of registered user failed")
		}
		return nil, fmt.Errorf("append initial snapshot: %w", err)
	}
	snapshotsAppendedTotal.WithLabelValues("signup").Inc()

	uc.log.Info().Str("user_id", user.ID).Str("username", user.Username).Msg("user registered")
	return user, nil
}
