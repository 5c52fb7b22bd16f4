// Package lockout throttles repeated failed logins per username. It counts
// failures in a sliding window and hard-locks the username once the window's
// budget is spent; a successful login clears the slate.
package lockout

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	dErrors "gatehouse/pkg/domain-errors"
)

// Policy is the lockout tuning.
type Policy struct {
	// MaxFailures within Window triggers the lock.
	MaxFailures int
	Window      time.Duration
	// LockFor is how long the username stays locked.
	LockFor time.Duration
}

// DefaultPolicy is 5 failures per 15 minutes, locking for 15 minutes.
func DefaultPolicy() Policy {
	return Policy{MaxFailures: 5, Window: 15 * time.Minute, LockFor: 15 * time.Minute}
}

// Store counts failures and holds locks. Implementations expire both on
// their own; the service never reads raw timestamps back.
type Store interface {
	// IncrFailures bumps the in-window failure count and returns it. The
	// first failure starts the window.
	IncrFailures(ctx context.Context, key string, window time.Duration) (int, error)
	Lock(ctx context.Context, key string, lockFor time.Duration) error
	// IsLocked reports the lock state and, when locked, the remaining time.
	IsLocked(ctx context.Context, key string) (bool, time.Duration, error)
	Clear(ctx context.Context, key string) error
}

// Service implements the login guard over a Store.
type Service struct {
	store  Store
	policy Policy
	logger *slog.Logger
}

func New(store Store, policy Policy, logger *slog.Logger) *Service {
	return &Service{store: store, policy: policy, logger: logger}
}

// Check rejects while the username is locked. Store failures fail open: a
// broken throttle must not take logins down with it.
func (s *Service) Check(ctx context.Context, username string) error {
	locked, remaining, err := s.store.IsLocked(ctx, username)
	if err != nil {
		s.logger.WarnContext(ctx, "lockout check failed, allowing", "error", err)
		return nil
	}
	if locked {
		return dErrors.New(dErrors.CodeLoginLocked,
			fmt.Sprintf("Too many failed login attempts, try again in %d seconds", int(remaining.Seconds())))
	}
	return nil
}

// RecordFailure counts a failed attempt and locks once the budget is spent.
func (s *Service) RecordFailure(ctx context.Context, username string) error {
	count, err := s.store.IncrFailures(ctx, username, s.policy.Window)
	if err != nil {
		return fmt.Errorf("record login failure: %w", err)
	}
	if count >= s.policy.MaxFailures {
		if err := s.store.Lock(ctx, username, s.policy.LockFor); err != nil {
			return fmt.Errorf("apply login lock: %w", err)
		}
		s.logger.InfoContext(ctx, "login locked", "username", username, "failures", count)
	}
	return nil
}

// Clear wipes the failure count and any lock after a successful login.
func (s *Service) Clear(ctx context.Context, username string) error {
	return s.store.Clear(ctx, username)
}
