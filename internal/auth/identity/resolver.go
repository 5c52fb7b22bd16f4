// Package identity turns a decoded session into the minimal current-user
// projection the rest of the system is allowed to see.
package identity

import (
	"context"
	"errors"
	"fmt"

	"gatehouse/internal/auth/models"
	"gatehouse/internal/auth/store"
	"gatehouse/pkg/domain"
	"gatehouse/pkg/platform/sentinel"
)

// Resolver fetches the user a session points at and projects the safe
// fields. The projection never includes the password hash, salt, or reset
// token; anything returned here is echoed back to the calling client.
type Resolver struct {
	users        store.UserStore
	includeEmail bool
	includeRoles bool
}

// Option configures which explicitly-safe fields the deployment exposes
// beyond the identifier.
type Option func(*Resolver)

// WithEmail includes the email in the projection.
func WithEmail() Option {
	return func(r *Resolver) { r.includeEmail = true }
}

// WithRoles includes the role assignment in the projection. Role-gated
// fields need this; without it every role check sees an absent role value.
func WithRoles() Option {
	return func(r *Resolver) { r.includeRoles = true }
}

func NewResolver(users store.UserStore, opts ...Option) *Resolver {
	r := &Resolver{users: users}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve maps a decoded session to a current-user identity.
//
// A nil or malformed session is an infrastructure bug, not a legitimate
// unauthenticated caller: the transport only hands over sessions its codec
// verified, so anything else fails loudly with a plain error.
//
// A well-formed session whose user no longer exists yields (nil, nil): the
// caller is treated as unauthenticated, distinguishable from the error case.
func (r *Resolver) Resolve(ctx context.Context, sess *models.Session) (*domain.CurrentUser, error) {
	if sess == nil || sess.UserID <= 0 {
		return nil, fmt.Errorf("invalid session")
	}

	user, err := r.users.FindByID(ctx, sess.UserID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("resolve current user: %w", err)
	}

	cu := &domain.CurrentUser{ID: user.ID}
	if r.includeEmail {
		cu.Email = user.Email
	}
	if r.includeRoles {
		cu.Roles = user.Roles
	}
	return cu, nil
}
