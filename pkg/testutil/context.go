package testutil

import (
	"net/http"
	"testing"

	"gatehouse/pkg/domain"
	"gatehouse/pkg/requestcontext"
)

// WithCurrentUser adds a resolved current user to the request context.
// This simulates what the session middleware would do for authenticated
// requests.
func WithCurrentUser(req *http.Request, cu *domain.CurrentUser) *http.Request {
	ctx := requestcontext.WithCurrentUser(req.Context(), cu)
	return req.WithContext(ctx)
}

// WithRequestID adds a request ID to the request context.
func WithRequestID(req *http.Request, requestID string) *http.Request {
	ctx := requestcontext.WithRequestID(req.Context(), requestID)
	return req.WithContext(ctx)
}

// Given, When, and Then wrap t.Run with a spoken-language prefix so the
// credential lifecycle tests read as scenarios in `go test -v` output.
func Given(t *testing.T, desc string, fn func(t *testing.T)) {
	t.Helper()
	t.Run("Given "+desc, fn)
}

func When(t *testing.T, desc string, fn func(t *testing.T)) {
	t.Helper()
	t.Run("When "+desc, fn)
}

func Then(t *testing.T, desc string, fn func(t *testing.T)) {
	t.Helper()
	t.Run("Then "+desc, fn)
}
