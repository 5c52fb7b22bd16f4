package service

import (
	"context"
	"errors"

	"gatehouse/internal/audit"
	"gatehouse/internal/auth/models"
	"gatehouse/internal/auth/password"
	dErrors "gatehouse/pkg/domain-errors"
	"gatehouse/pkg/platform/sentinel"
)

// Login authenticates a username/password pair. On success it returns the
// user plus the configured session lifetime; the transport mints the cookie.
// The rejection kinds for unknown username and wrong password stay distinct
// even when a deployment configures identical messages for both.
func (s *Service) Login(ctx context.Context, params models.Params) (*models.LoginResult, error) {
	ctx, span := s.tracer.Start(ctx, "auth.login")
	defer span.End()

	username := params.Username()
	plaintext := params.Password()
	if username == "" || plaintext == "" {
		return nil, dErrors.New(dErrors.CodeUsernameOrPasswordMissing,
			s.cfg.Login.Errors.UsernameOrPasswordMissing)
	}

	if s.guard != nil {
		if err := s.guard.Check(ctx, username); err != nil {
			s.observeLogin("locked")
			return nil, err
		}
	}

	user, err := s.users.FindByEmail(ctx, username)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			s.recordFailure(ctx, username, "username_not_found")
			return nil, dErrors.New(dErrors.CodeUsernameNotFound,
				interpolate(s.cfg.Login.Errors.UsernameNotFound, map[string]string{"username": username}))
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "login lookup failed")
	}

	match, err := password.Verify(plaintext, user.Salt, user.HashedPassword)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "verify password")
	}
	if !match {
		s.recordFailure(ctx, username, "incorrect_password")
		return nil, dErrors.New(dErrors.CodeIncorrectPassword,
			interpolate(s.cfg.Login.Errors.IncorrectPassword, map[string]string{"username": username}))
	}

	if handler := s.cfg.Login.Handler; handler != nil {
		if err := handler(ctx, user); err != nil {
			s.observeLogin("rejected")
			var dErr *dErrors.Error
			if errors.As(err, &dErr) {
				return nil, dErr
			}
			return nil, dErrors.New(dErrors.CodeLoginNotAllowed, err.Error())
		}
	}

	if s.guard != nil {
		if err := s.guard.Clear(ctx, username); err != nil {
			s.logger.WarnContext(ctx, "lockout clear failed", "error", err)
		}
	}
	s.observeLogin("success")
	s.logger.InfoContext(ctx, "user logged in", "user_id", user.ID)
	s.emit(ctx, audit.NewEvent(audit.EventLogin, username, user.ID))
	return &models.LoginResult{User: user, Expires: s.cfg.Login.Expires}, nil
}

func (s *Service) recordFailure(ctx context.Context, username, outcome string) {
	s.observeLogin(outcome)
	if s.guard != nil {
		if err := s.guard.RecordFailure(ctx, username); err != nil {
			s.logger.WarnContext(ctx, "lockout record failed", "error", err)
		}
	}
	s.emit(ctx, audit.NewEvent(audit.EventLoginFailed, username, 0))
}

func (s *Service) observeLogin(outcome string) {
	if s.metrics != nil {
		s.metrics.ObserveLogin(outcome)
	}
}
