package service

import (
	"context"
	"crypto/subtle"
	"errors"

	"gatehouse/internal/audit"
	"gatehouse/internal/auth/models"
	"gatehouse/internal/auth/password"
	dErrors "gatehouse/pkg/domain-errors"
	"gatehouse/pkg/platform/sentinel"
	"gatehouse/pkg/requestcontext"
)

// ResetPassword redeems a reset token and replaces the account's password.
// Expiry is re-validated here, at redemption time; a token that was valid
// when issued can still be rejected. The store clears the token in the same
// update that writes the new password, so redemption is single-use.
func (s *Service) ResetPassword(ctx context.Context, params models.Params) (*models.ResetPasswordResult, error) {
	ctx, span := s.tracer.Start(ctx, "auth.reset_password")
	defer span.End()

	token := params.ResetToken()
	if token == "" {
		return nil, dErrors.New(dErrors.CodeResetTokenRequired,
			s.cfg.ResetPassword.Errors.ResetTokenRequired)
	}
	plaintext := params.Password()
	if plaintext == "" {
		return nil, s.signupFieldMissing("password")
	}

	user, err := s.users.FindByResetToken(ctx, token)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeResetTokenInvalid,
				s.cfg.ResetPassword.Errors.ResetTokenInvalid)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "reset-password lookup failed")
	}
	if user.ResetTokenExpiresAt == nil || requestcontext.Now(ctx).After(*user.ResetTokenExpiresAt) {
		return nil, dErrors.New(dErrors.CodeResetTokenExpired,
			s.cfg.ResetPassword.Errors.ResetTokenExpired)
	}

	if s.cfg.ResetPassword.DisallowReusedPassword {
		current, err := password.HashWithSalt(plaintext, user.Salt)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "hash password")
		}
		if subtle.ConstantTimeCompare([]byte(current), []byte(user.HashedPassword)) == 1 {
			return nil, dErrors.New(dErrors.CodeReusedPassword,
				s.cfg.ResetPassword.Errors.ReusedPassword)
		}
	}

	hash, salt, err := password.Hash(plaintext)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "hash password")
	}
	if err := s.users.UpdatePassword(ctx, user.ID, hash, salt); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "persist new password")
	}
	user.HashedPassword = hash
	user.Salt = salt
	user.ResetToken = ""
	user.ResetTokenExpiresAt = nil

	autoLogin := false
	if handler := s.cfg.ResetPassword.Handler; handler != nil {
		autoLogin, err = handler(ctx, user)
		if err != nil {
			var dErr *dErrors.Error
			if errors.As(err, &dErr) {
				return nil, dErr
			}
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "reset-password handler failed")
		}
	}

	if s.metrics != nil {
		s.metrics.PasswordResetsTotal.Inc()
	}
	s.logger.InfoContext(ctx, "password reset", "user_id", user.ID)
	s.emit(ctx, audit.NewEvent(audit.EventResetPassword, user.Email, user.ID))
	return &models.ResetPasswordResult{
		User:      user,
		AutoLogin: autoLogin,
		Expires:   s.cfg.Login.Expires,
	}, nil
}
