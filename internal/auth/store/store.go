// Package store persists user credential records. It is pure I/O: uniqueness
// is enforced by the backing store and surfaced as sentinel.ErrConflict, and
// all flow decisions live in the service layer.
package store

import (
	"context"
	"time"

	"gatehouse/internal/auth/models"
)

// UserStore is the persistence contract the credential lifecycle relies on.
type UserStore interface {
	// Create persists a new user and assigns its ID. Returns
	// sentinel.ErrConflict when the email is already taken.
	Create(ctx context.Context, user *models.User) error

	// FindByID returns sentinel.ErrNotFound when no user exists.
	FindByID(ctx context.Context, id int64) (*models.User, error)

	// FindByEmail returns sentinel.ErrNotFound when no user exists.
	FindByEmail(ctx context.Context, email string) (*models.User, error)

	// FindByResetToken returns sentinel.ErrNotFound when no user carries the
	// token. Expiry is NOT checked here; the service compares against
	// request time.
	FindByResetToken(ctx context.Context, token string) (*models.User, error)

	// UpdatePassword stores a new hash+salt pair and clears the reset token
	// and its expiry in the same write. Single-use tokens depend on this
	// being one atomic update.
	UpdatePassword(ctx context.Context, id int64, hash, salt string) error

	// SetResetToken overwrites any prior token; last write wins.
	SetResetToken(ctx context.Context, id int64, token string, expiresAt time.Time) error
}
