// Package service implements the credential lifecycle: signup, login,
// forgot-password and reset-password over flat string parameters. Each flow
// validates its inputs, applies the configured per-flow policy, and returns
// either a result or a coded rejection the transport can map to a status.
package service

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"gatehouse/internal/audit"
	"gatehouse/internal/auth/models"
	"gatehouse/internal/auth/store"
	"gatehouse/internal/platform/metrics"
)

// LoginGuard throttles repeated failed logins per username. Check returns a
// coded rejection while the username is locked out.
type LoginGuard interface {
	Check(ctx context.Context, username string) error
	RecordFailure(ctx context.Context, username string) error
	Clear(ctx context.Context, username string) error
}

// Auditor records lifecycle events. Emit failures never fail the flow.
type Auditor interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service runs the four credential flows against a user store.
type Service struct {
	users   store.UserStore
	cfg     Config
	logger  *slog.Logger
	metrics *metrics.Metrics
	guard   LoginGuard
	auditor Auditor
	tracer  trace.Tracer
}

// Option customizes a Service beyond its flow configuration.
type Option func(*Service)

// WithMetrics wires flow counters.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithLoginGuard wires failed-login throttling.
func WithLoginGuard(g LoginGuard) Option {
	return func(s *Service) { s.guard = g }
}

// WithAuditor wires lifecycle event publishing.
func WithAuditor(a Auditor) Option {
	return func(s *Service) { s.auditor = a }
}

// New builds a Service. Zero-valued Config fields fall back to the defaults
// from DefaultConfig, so callers only set what they change.
func New(users store.UserStore, cfg Config, logger *slog.Logger, opts ...Option) *Service {
	applyDefaults(&cfg)
	s := &Service{
		users:  users,
		cfg:    cfg,
		logger: logger,
		tracer: otel.Tracer("gatehouse/auth"),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.cfg.Signup.Handler == nil {
		s.cfg.Signup.Handler = s.defaultSignupHandler
	}
	if s.cfg.ForgotPassword.Handler == nil {
		s.cfg.ForgotPassword.Handler = defaultForgotPasswordHandler
	}
	return s
}

func applyDefaults(cfg *Config) {
	def := DefaultConfig()
	if cfg.Signup.Errors == (SignupErrors{}) {
		cfg.Signup.Errors = def.Signup.Errors
	}
	if cfg.Login.Errors == (LoginErrors{}) {
		cfg.Login.Errors = def.Login.Errors
	}
	if cfg.Login.Expires == 0 {
		cfg.Login.Expires = def.Login.Expires
	}
	if cfg.ForgotPassword.Errors == (ForgotPasswordErrors{}) {
		cfg.ForgotPassword.Errors = def.ForgotPassword.Errors
	}
	if cfg.ForgotPassword.Expires == 0 {
		cfg.ForgotPassword.Expires = def.ForgotPassword.Expires
	}
	if cfg.ResetPassword.Errors == (ResetPasswordErrors{}) {
		cfg.ResetPassword.Errors = def.ResetPassword.Errors
	}
}

// SessionExpires reports the configured login session lifetime, for minting
// cookies outside a login result (signup and reset auto-login).
func (s *Service) SessionExpires() time.Duration {
	return s.cfg.Login.Expires
}

// defaultSignupHandler persists exactly username, hash and salt, and returns
// the created user for auto-login. Extra attributes are intentionally
// dropped; a custom handler decides what else to keep.
func (s *Service) defaultSignupHandler(ctx context.Context, input SignupInput) (*models.User, string, error) {
	user := &models.User{
		Email:          input.Username,
		HashedPassword: input.HashedPassword,
		Salt:           input.Salt,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, "", err
	}
	return user, "", nil
}

// defaultForgotPasswordHandler hands the username back to the caller. Token
// delivery is deployment-specific, so the default delivers nothing.
func defaultForgotPasswordHandler(_ context.Context, user *models.User) (any, error) {
	return map[string]string{"email": user.Email}, nil
}

func (s *Service) emit(ctx context.Context, event audit.Event) {
	if s.auditor == nil {
		return
	}
	if err := s.auditor.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "audit emit failed", "event_type", event.Type, "error", err)
	}
}
