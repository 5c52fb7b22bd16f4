// Package domainerrors defines coded errors shared between services and the
// HTTP transport. Services create them (or wrap sentinel errors into them),
// the transport maps codes onto statuses and stable JSON envelopes.
//
// Conventionally imported as dErrors.
package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code classifies an error for the caller. Codes are stable API surface;
// messages are deployment-configurable and may change.
type Code string

// Protocol codes raised by the access guard and transport.
const (
	CodeBadRequest   Code = "bad_request"
	CodeUnauthorized Code = "unauthorized"
	CodeForbidden    Code = "forbidden"
	CodeNotFound     Code = "not_found"
	CodeUnavailable  Code = "unavailable"
	CodeInternal     Code = "internal"
)

// Flow codes raised by the credential lifecycle handler. Every rejected
// precondition maps to exactly one of these; none of them leak store or
// driver internals.
const (
	CodeFieldMissing              Code = "field_missing"
	CodeUsernameTaken             Code = "username_taken"
	CodePasswordValidation        Code = "password_validation"
	CodeUsernameOrPasswordMissing Code = "username_or_password_missing"
	CodeUsernameRequired          Code = "username_required"
	CodeUsernameNotFound          Code = "username_not_found"
	CodeIncorrectPassword         Code = "incorrect_password"
	CodeLoginNotAllowed           Code = "login_not_allowed"
	CodeLoginLocked               Code = "login_locked"
	CodeResetTokenRequired        Code = "reset_token_required"
	CodeResetTokenInvalid         Code = "reset_token_invalid"
	CodeResetTokenExpired         Code = "reset_token_expired"
	CodeReusedPassword            Code = "reused_password"
)

// Error carries a classification code plus a human-readable message. The
// message is safe to surface to callers; wrapped causes are not.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// New creates a coded error.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches a code and caller-safe message to an underlying cause.
func Wrap(err error, code Code, message string) *Error {
	return &Error{Code: code, Message: message, cause: err}
}

// Is reports whether err (or anything it wraps) carries the given code.
func Is(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// CodeOf extracts the code from err, or CodeInternal when err is not coded.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// MessageOf extracts the caller-safe message, or a generic one for uncoded
// errors so internals never reach the wire.
func MessageOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Message
	}
	return "internal error"
}

// ToHTTPStatus maps a code onto an HTTP status. Flow rejections are client
// errors; only genuinely unexpected failures map to 500.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeUsernameTaken:
		return http.StatusConflict
	case CodeLoginLocked:
		return http.StatusTooManyRequests
	case CodeUnavailable:
		return http.StatusServiceUnavailable
	case CodeInternal:
		return http.StatusInternalServerError
	case CodeBadRequest, CodeFieldMissing, CodePasswordValidation,
		CodeUsernameOrPasswordMissing, CodeUsernameRequired,
		CodeUsernameNotFound, CodeIncorrectPassword, CodeLoginNotAllowed,
		CodeResetTokenRequired, CodeResetTokenInvalid,
		CodeResetTokenExpired, CodeReusedPassword:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
