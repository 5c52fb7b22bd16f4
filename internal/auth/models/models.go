package models

import (
	"strings"
	"time"

	"gatehouse/pkg/domain"
)

// User is the persistent credential record. Email doubles as the login
// username and is unique; the store enforces the constraint and surfaces
// violations as sentinel.ErrConflict.
//
// HashedPassword, Salt, and the reset token fields must never leave the auth
// packages: the projection exposed to callers is domain.CurrentUser.
type User struct {
	ID                  int64
	Email               string
	Name                string
	HashedPassword      string
	Salt                string
	ResetToken          string
	ResetTokenExpiresAt *time.Time
	Roles               domain.Roles
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// Session is the decoded content of the session cookie: exactly one field,
// the authenticated user's identifier. It is not persisted server-side.
type Session struct {
	UserID int64
}

// Params is the flat string mapping each lifecycle flow consumes. Known keys
// are read by the flows; the remainder become signup user attributes.
type Params map[string]string

// Well-known parameter keys.
const (
	ParamUsername   = "username"
	ParamPassword   = "password"
	ParamResetToken = "resetToken"
)

// Username returns the username parameter with surrounding whitespace
// stripped, so " a@b.co " and "a@b.co" name the same account.
func (p Params) Username() string { return strings.TrimSpace(p[ParamUsername]) }

// Password returns the password parameter verbatim. Whitespace is
// significant in passwords.
func (p Params) Password() string { return p[ParamPassword] }

// ResetToken returns the reset token parameter.
func (p Params) ResetToken() string { return strings.TrimSpace(p[ParamResetToken]) }

// UserAttributes returns the parameters that are not consumed by the flow
// itself. Persisting them is the signup handler's decision.
func (p Params) UserAttributes() map[string]string {
	attrs := make(map[string]string)
	for k, v := range p {
		switch k {
		case ParamUsername, ParamPassword, ParamResetToken:
		default:
			attrs[k] = v
		}
	}
	return attrs
}

// SignupResult reports the outcome of a successful signup. User is non-nil
// when the configured handler elected to auto-login the new account;
// otherwise Message carries what the handler returned for display.
type SignupResult struct {
	User    *User
	Message string
}

// LoginResult reports a successful login together with the session policy
// the transport should mint the cookie with.
type LoginResult struct {
	User    *User
	Expires time.Duration
}

// ForgotPasswordResult carries whatever the configured delivery handler
// returned, passed through to the caller.
type ForgotPasswordResult struct {
	User    *User
	Payload any
}

// ResetPasswordResult reports a completed reset. AutoLogin mirrors the
// configured handler's decision.
type ResetPasswordResult struct {
	User      *User
	AutoLogin bool
	Expires   time.Duration
}
