package service

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"

	"gatehouse/internal/audit"
	"gatehouse/internal/auth/models"
	"gatehouse/internal/auth/password"
	dErrors "gatehouse/pkg/domain-errors"
	"gatehouse/pkg/platform/sentinel"
)

// Signup validates the username and password, hashes the password, and hands
// off to the signup handler. A returned user means the caller should be
// auto-logged in; otherwise Message carries the handler's informational text.
func (s *Service) Signup(ctx context.Context, params models.Params) (*models.SignupResult, error) {
	ctx, span := s.tracer.Start(ctx, "auth.signup")
	defer span.End()

	username := params.Username()
	plaintext := params.Password()
	if username == "" {
		return nil, s.signupFieldMissing("username")
	}
	if plaintext == "" {
		return nil, s.signupFieldMissing("password")
	}
	if validate := s.cfg.Signup.PasswordValidation; validate != nil {
		if err := validate(plaintext); err != nil {
			return nil, dErrors.New(dErrors.CodePasswordValidation, err.Error())
		}
	}

	if _, err := s.users.FindByEmail(ctx, username); err == nil {
		return nil, s.usernameTaken(username)
	} else if !errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "signup lookup failed")
	}

	hash, salt, err := password.Hash(plaintext)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "hash password")
	}

	user, message, err := s.cfg.Signup.Handler(ctx, SignupInput{
		Username:       username,
		HashedPassword: hash,
		Salt:           salt,
		UserAttributes: params.UserAttributes(),
	})
	if err != nil {
		// The duplicate pre-check races with concurrent signups; the store's
		// unique constraint is the authority.
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, s.usernameTaken(username)
		}
		var dErr *dErrors.Error
		if errors.As(err, &dErr) {
			return nil, dErr
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "signup handler failed")
	}

	span.SetAttributes(attribute.Bool("auth.auto_login", user != nil))
	if s.metrics != nil {
		s.metrics.SignupsTotal.Inc()
	}
	if user != nil {
		s.logger.InfoContext(ctx, "user signed up", "user_id", user.ID)
		s.emit(ctx, audit.NewEvent(audit.EventSignup, username, user.ID))
	} else {
		s.emit(ctx, audit.NewEvent(audit.EventSignup, username, 0))
	}
	return &models.SignupResult{User: user, Message: message}, nil
}

func (s *Service) signupFieldMissing(field string) error {
	return dErrors.New(dErrors.CodeFieldMissing,
		interpolate(s.cfg.Signup.Errors.FieldMissing, map[string]string{"field": field}))
}

func (s *Service) usernameTaken(username string) error {
	return dErrors.New(dErrors.CodeUsernameTaken,
		interpolate(s.cfg.Signup.Errors.UsernameTaken, map[string]string{"username": username}))
}
