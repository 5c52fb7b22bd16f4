package service

import (
	"context"
	"strings"
	"time"

	"gatehouse/internal/auth/models"
)

// SignupHandler is called after the duplicate-username check with the salted
// hash already computed. Returning a non-nil user auto-logs the caller in;
// returning (nil, message, nil) just informs them. The default handler
// persists {username, hashedPassword, salt} and returns the created user.
type SignupHandler func(ctx context.Context, input SignupInput) (*models.User, string, error)

// SignupInput is what a signup handler receives. UserAttributes carries any
// extra request parameters; persisting them is the handler's decision.
type SignupInput struct {
	Username       string
	HashedPassword string
	Salt           string
	UserAttributes map[string]string
}

// LoginHandler runs after the password matched but before the session is
// issued. Returning an error rejects the login for an arbitrary business
// rule (say, unverified email); the error message is surfaced to the caller.
type LoginHandler func(ctx context.Context, user *models.User) error

// ForgotPasswordHandler is called after the reset token was persisted, with
// the token set on the user. Deliver it out of band here; whatever it
// returns is passed back to the caller.
type ForgotPasswordHandler func(ctx context.Context, user *models.User) (any, error)

// ResetPasswordHandler runs after the password was updated and the token
// cleared. Returning true auto-logs the caller in.
type ResetPasswordHandler func(ctx context.Context, user *models.User) (bool, error)

// SignupErrors are the message templates for signup rejections. `${field}`
// and `${username}` are interpolated.
type SignupErrors struct {
	FieldMissing  string
	UsernameTaken string
}

// LoginErrors are the message templates for login rejections.
//
// The defaults reveal whether the username exists (distinct not-found and
// wrong-password texts). Deployments wanting to prevent username enumeration
// should set both to the same text; the error kinds stay distinct internally
// either way.
type LoginErrors struct {
	UsernameOrPasswordMissing string
	UsernameNotFound          string
	IncorrectPassword         string
}

// ForgotPasswordErrors are the message templates for forgot-password
// rejections; the same enumeration caveat as LoginErrors applies.
type ForgotPasswordErrors struct {
	UsernameRequired string
	UsernameNotFound string
}

// ResetPasswordErrors are the message templates for reset-password
// rejections.
type ResetPasswordErrors struct {
	ResetTokenRequired string
	ResetTokenInvalid  string
	ResetTokenExpired  string
	ReusedPassword     string
}

// SignupOptions configures the signup flow.
type SignupOptions struct {
	Handler SignupHandler
	// PasswordValidation may reject the plaintext before hashing. Its error
	// message is surfaced under the password-validation kind.
	PasswordValidation func(plaintext string) error
	Errors             SignupErrors
}

// LoginOptions configures the login flow.
type LoginOptions struct {
	Handler LoginHandler
	// Expires is the minted session lifetime. The default is ten years:
	// "remember me by default" is the product stance, overridable per
	// deployment.
	Expires time.Duration
	Errors  LoginErrors
}

// ForgotPasswordOptions configures the forgot-password flow.
type ForgotPasswordOptions struct {
	Handler ForgotPasswordHandler
	// Expires is the reset token lifetime, 24 hours by default.
	Expires time.Duration
	Errors  ForgotPasswordErrors
}

// ResetPasswordOptions configures the reset-password flow.
type ResetPasswordOptions struct {
	Handler ResetPasswordHandler
	// DisallowReusedPassword rejects resetting to the current password with
	// its own error kind. The zero value permits reuse, which is the
	// documented default.
	DisallowReusedPassword bool
	Errors                 ResetPasswordErrors
}

// Config is the full per-flow configuration set.
type Config struct {
	Signup         SignupOptions
	Login          LoginOptions
	ForgotPassword ForgotPasswordOptions
	ResetPassword  ResetPasswordOptions
}

// DefaultConfig returns the documented default policy and messages.
func DefaultConfig() Config {
	return Config{
		Signup: SignupOptions{
			Errors: SignupErrors{
				FieldMissing:  "${field} is required",
				UsernameTaken: "Username `${username}` already in use",
			},
		},
		Login: LoginOptions{
			Expires: 10 * 365 * 24 * time.Hour,
			Errors: LoginErrors{
				UsernameOrPasswordMissing: "Both username and password are required",
				UsernameNotFound:          "Username ${username} not found",
				IncorrectPassword:         "Incorrect password for ${username}",
			},
		},
		ForgotPassword: ForgotPasswordOptions{
			Expires: 24 * time.Hour,
			Errors: ForgotPasswordErrors{
				UsernameRequired: "Username is required",
				UsernameNotFound: "Username not found",
			},
		},
		ResetPassword: ResetPasswordOptions{
			Errors: ResetPasswordErrors{
				ResetTokenRequired: "resetToken is required",
				ResetTokenInvalid:  "resetToken is invalid",
				ResetTokenExpired:  "resetToken is expired",
				ReusedPassword:     "Must choose a new password",
			},
		},
	}
}

// interpolate fills ${name} placeholders in a message template.
func interpolate(template string, vars map[string]string) string {
	out := template
	for name, value := range vars {
		out = strings.ReplaceAll(out, "${"+name+"}", value)
	}
	return out
}
