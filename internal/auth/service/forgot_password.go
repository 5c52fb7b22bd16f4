package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"gatehouse/internal/audit"
	"gatehouse/internal/auth/models"
	dErrors "gatehouse/pkg/domain-errors"
	"gatehouse/pkg/platform/sentinel"
	"gatehouse/pkg/requestcontext"
)

// ForgotPassword issues a single-use reset token for the named account and
// invokes the delivery handler with the token set on the user. Issuing again
// overwrites any earlier token: last write wins.
func (s *Service) ForgotPassword(ctx context.Context, params models.Params) (*models.ForgotPasswordResult, error) {
	ctx, span := s.tracer.Start(ctx, "auth.forgot_password")
	defer span.End()

	username := params.Username()
	if username == "" {
		return nil, dErrors.New(dErrors.CodeUsernameRequired,
			s.cfg.ForgotPassword.Errors.UsernameRequired)
	}

	user, err := s.users.FindByEmail(ctx, username)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeUsernameNotFound,
				interpolate(s.cfg.ForgotPassword.Errors.UsernameNotFound, map[string]string{"username": username}))
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "forgot-password lookup failed")
	}

	token := uuid.NewString()
	expiresAt := requestcontext.Now(ctx).Add(s.cfg.ForgotPassword.Expires)
	if err := s.users.SetResetToken(ctx, user.ID, token, expiresAt); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "persist reset token")
	}
	user.ResetToken = token
	user.ResetTokenExpiresAt = &expiresAt

	payload, err := s.cfg.ForgotPassword.Handler(ctx, user)
	if err != nil {
		var dErr *dErrors.Error
		if errors.As(err, &dErr) {
			return nil, dErr
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "forgot-password handler failed")
	}

	if s.metrics != nil {
		s.metrics.ResetRequestsTotal.Inc()
	}
	s.logger.InfoContext(ctx, "reset token issued", "user_id", user.ID)
	s.emit(ctx, audit.NewEvent(audit.EventForgotPassword, username, user.ID))
	return &models.ForgotPasswordResult{User: user, Payload: payload}, nil
}
