package httptransport

import (
	"log/slog"
	"net/http"

	"gatehouse/internal/auth/identity"
	"gatehouse/internal/auth/session"
	"gatehouse/internal/platform/middleware"
	dErrors "gatehouse/pkg/domain-errors"
	"gatehouse/pkg/requestcontext"
)

// ResolveSession reads the session cookie, resolves the current user, and
// injects it into the request context.
//
// Codec failures (absent, tampered or expired cookie) pass through
// unauthenticated: the guard on each endpoint decides whether that matters.
// A resolver failure is different — it means a verified session could not be
// checked against the store — so it answers 503 rather than quietly
// downgrading an authenticated caller. A cookie pointing at a deleted user
// resolves to (nil, nil) and passes through unauthenticated.
func ResolveSession(codec *session.Codec, resolver *identity.Resolver, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			sess, err := codec.Read(r)
			if err != nil {
				logger.DebugContext(ctx, "session cookie rejected",
					"request_id", middleware.GetRequestID(ctx), "error", err)
				next.ServeHTTP(w, r)
				return
			}
			if sess == nil {
				next.ServeHTTP(w, r)
				return
			}
			cu, err := resolver.Resolve(ctx, sess)
			if err != nil {
				logger.ErrorContext(ctx, "session resolution failed",
					"request_id", middleware.GetRequestID(ctx), "error", err)
				WriteError(w, dErrors.Wrap(err, dErrors.CodeUnavailable, "could not resolve session"))
				return
			}
			if cu == nil {
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(requestcontext.WithCurrentUser(ctx, cu)))
		})
	}
}
