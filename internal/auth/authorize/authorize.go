// Package authorize holds the role membership predicate and the access guard
// invoked before protected operations resolve. The resolved identity is
// passed in explicitly; there is no ambient current user.
package authorize

import (
	"gatehouse/pkg/domain"
	dErrors "gatehouse/pkg/domain-errors"
)

// Default guard messages. Deliberately generic: they are surfaced to callers
// as-is and must not hint at internals.
const (
	authenticationMessage = "You don't have permission to do that."
	forbiddenMessage      = "You don't have access to do that."
)

// IsAuthenticated reports whether an identity was resolved for this request.
func IsAuthenticated(cu *domain.CurrentUser) bool {
	return cu != nil
}

// HasRole reports whether the current user satisfies the required role set.
// Both sides are independently one of {none, single, many}; the match is by
// shape:
//
//	required single / actual single  -> equality
//	required single / actual many    -> membership
//	required many   / actual many    -> any overlap
//	required many   / actual single  -> membership
//
// Anything else — an unauthenticated caller, or an absent actual role — is
// false.
func HasRole(cu *domain.CurrentUser, required domain.Roles) bool {
	if !IsAuthenticated(cu) {
		return false
	}

	actual := cu.Roles
	switch required.Kind() {
	case domain.RolesSingle:
		return actual.Contains(required.Single())
	case domain.RolesMany:
		for _, want := range required.Many() {
			if actual.Contains(want) {
				return true
			}
		}
	}
	return false
}

// RequireAuth fails unless the caller is authenticated and, when a role
// requirement is present, satisfies it. Authentication is the unconditional
// first gate: an unauthenticated caller always gets CodeUnauthorized, never
// CodeForbidden, regardless of the roles argument. When required is the
// none shape, authentication alone suffices and the predicate is skipped.
func RequireAuth(cu *domain.CurrentUser, required domain.Roles) error {
	if !IsAuthenticated(cu) {
		return dErrors.New(dErrors.CodeUnauthorized, authenticationMessage)
	}
	if !required.IsNone() && !HasRole(cu, required) {
		return dErrors.New(dErrors.CodeForbidden, forbiddenMessage)
	}
	return nil
}
