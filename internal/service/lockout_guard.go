package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Juliodvp29/task-management-api/internal/domain/interfaces"
	"github.com/Juliodvp29/task-management-api/internal/domain/models"
	"github.com/Juliodvp29/task-management-api/internal/utils/metrics"
)

// LockoutGuard tracks consecutive failed logins per user and enforces the
// temporary lockout window. It is the only writer of login_attempts and
// locked_until. The state machine per user is
// Unlocked(attempts 0..max-1) -> Locked(until) -> Unlocked(0).
type LockoutGuard struct {
	users        interfaces.UserRepository
	counters     interfaces.CounterStore
	maxAttempts  int
	lockDuration time.Duration
	logger       *zap.Logger
	now          func() time.Time
}

func NewLockoutGuard(
	users interfaces.UserRepository,
	counters interfaces.CounterStore,
	maxAttempts int,
	lockDuration time.Duration,
	logger *zap.Logger,
) *LockoutGuard {
	return &LockoutGuard{
		users:        users,
		counters:     counters,
		maxAttempts:  maxAttempts,
		lockDuration: lockDuration,
		logger:       logger,
		now:          time.Now,
	}
}

// IsLocked reports whether the lockout window is still open. A lock whose
// deadline has passed is treated as cleared without a storage write; the
// next successful login erases it.
func (g *LockoutGuard) IsLocked(user *models.User) bool {
	return user.LockedUntil != nil && user.LockedUntil.After(g.now())
}

// RegisterFailure records one failed password check. The returned flag is
// true when this failure tripped the threshold and the account is now
// locked. The new attempt count is read back from the increment statement
// itself, never from the stale user row.
func (g *LockoutGuard) RegisterFailure(ctx context.Context, user *models.User) (bool, error) {
	attempts, err := g.users.IncrementLoginAttempts(ctx, user.ID)
	if err != nil {
		return false, fmt.Errorf("failed to record login failure: %w", err)
	}

	counterKey := fmt.Sprintf("login_failures:%d", user.ID)
	if _, cErr := g.counters.Increment(ctx, counterKey, g.lockDuration); cErr != nil {
		g.logger.Warn("failed to mirror attempt counter",
			zap.Int64("user_id", user.ID), zap.Error(cErr))
	}

	if attempts < g.maxAttempts {
		return false, nil
	}

	until := g.now().Add(g.lockDuration)
	if err := g.users.SetLockout(ctx, user.ID, until); err != nil {
		return false, fmt.Errorf("failed to lock account: %w", err)
	}
	if cErr := g.counters.Reset(ctx, counterKey); cErr != nil {
		g.logger.Warn("failed to reset attempt counter",
			zap.Int64("user_id", user.ID), zap.Error(cErr))
	}

	metrics.AccountLockoutsTotal.Inc()
	g.logger.Warn("account locked after repeated failures",
		zap.Int64("user_id", user.ID),
		zap.Int("attempts", attempts),
		zap.Time("locked_until", until),
	)
	return true, nil
}

// RegisterSuccess resets the attempt counter, clears any expired lock and
// stamps last_login.
func (g *LockoutGuard) RegisterSuccess(ctx context.Context, user *models.User) error {
	if err := g.users.ResetLoginState(ctx, user.ID, g.now()); err != nil {
		return fmt.Errorf("failed to reset login state: %w", err)
	}
	counterKey := fmt.Sprintf("login_failures:%d", user.ID)
	if cErr := g.counters.Reset(ctx, counterKey); cErr != nil {
		g.logger.Warn("failed to reset attempt counter",
			zap.Int64("user_id", user.ID), zap.Error(cErr))
	}
	return nil
}

// LockDuration exposes the configured window for event payloads.
func (g *LockoutGuard) LockDuration() time.Duration { return g.lockDuration }
