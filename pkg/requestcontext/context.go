// Package requestcontext provides HTTP-independent context accessors for
// request-scoped values.
//
// This package defines context keys and getter/setter functions for values
// that are typically set by middleware but consumed by services. By keeping
// this package free of net/http dependencies, services can import only what
// they need without pulling in HTTP-related code.
//
// The resolved current user lives here rather than in ambient package state:
// it is set once per request after session resolution and read by the access
// guard and role predicate within that same request, then discarded with the
// context.
package requestcontext

import (
	"context"
	"time"

	"gatehouse/pkg/domain"
)

// Context key types (unexported for encapsulation).
type (
	currentUserKey struct{}
	requestIDKey   struct{}
	requestTimeKey struct{}
)

// Exported context keys for tests that need context.WithValue directly.
var (
	ContextKeyCurrentUser = currentUserKey{}
	ContextKeyRequestID   = requestIDKey{}
	ContextKeyRequestTime = requestTimeKey{}
)

// CurrentUser retrieves the resolved current user from the context.
// Returns nil when the request is unauthenticated or resolution was never
// attempted.
func CurrentUser(ctx context.Context) *domain.CurrentUser {
	if cu, ok := ctx.Value(ContextKeyCurrentUser).(*domain.CurrentUser); ok {
		return cu
	}
	return nil
}

// WithCurrentUser injects the resolved current user into the context.
func WithCurrentUser(ctx context.Context, cu *domain.CurrentUser) context.Context {
	return context.WithValue(ctx, ContextKeyCurrentUser, cu)
}

// RequestID retrieves the request ID from the context.
func RequestID(ctx context.Context) string {
	if reqID, ok := ctx.Value(ContextKeyRequestID).(string); ok {
		return reqID
	}
	return ""
}

// WithRequestID injects a request ID into the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, requestID)
}

// Now retrieves the request-scoped time from context. Token expiry checks
// compare against this single instant so one request sees one "now".
// Falls back to time.Now() for non-HTTP contexts (workers, CLI, tests).
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(ContextKeyRequestTime).(time.Time); ok {
		return t
	}
	return time.Now()
}

// WithTime injects a specific time into a context. Useful for service unit
// tests that don't run the full HTTP middleware chain.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, ContextKeyRequestTime, t)
}
