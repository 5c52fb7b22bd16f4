// Package httptransport is the thin HTTP layer: it decodes requests into
// flat parameters, delegates to the lifecycle service, and translates coded
// errors into the JSON envelope. No business rules live here.
package httptransport

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"gatehouse/internal/audit"
	"gatehouse/internal/auth/models"
	"gatehouse/internal/auth/service"
	"gatehouse/internal/auth/session"
	"gatehouse/internal/platform/middleware"
	dErrors "gatehouse/pkg/domain-errors"
	"gatehouse/pkg/requestcontext"
)

// AuthHandler serves the credential lifecycle endpoints.
type AuthHandler struct {
	svc     *service.Service
	codec   *session.Codec
	auditor service.Auditor
	logger  *slog.Logger
}

func NewAuthHandler(svc *service.Service, codec *session.Codec, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{svc: svc, codec: codec, logger: logger}
}

// WithAuditor wires logout auditing; the other flows audit inside the
// service.
func (h *AuthHandler) WithAuditor(a service.Auditor) *AuthHandler {
	h.auditor = a
	return h
}

// Register mounts the auth routes.
func (h *AuthHandler) Register(r chi.Router) {
	r.Post("/auth/signup", h.handleSignup)
	r.Post("/auth/login", h.handleLogin)
	r.Post("/auth/logout", h.handleLogout)
	r.Post("/auth/forgot-password", h.handleForgotPassword)
	r.Post("/auth/reset-password", h.handleResetPassword)
	r.Get("/auth/userinfo", h.handleUserInfo)
}

// decodeParams flattens a JSON object body into string parameters. Scalar
// non-strings are stringified; nested values are rejected, matching the
// flat-parameter contract of the flows.
func decodeParams(r *http.Request) (models.Params, error) {
	var raw map[string]any
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		return nil, dErrors.New(dErrors.CodeBadRequest, "invalid request body")
	}
	params := make(models.Params, len(raw))
	for key, value := range raw {
		switch v := value.(type) {
		case string:
			params[key] = v
		case nil:
			params[key] = ""
		case float64, bool:
			params[key] = fmt.Sprint(v)
		default:
			return nil, dErrors.New(dErrors.CodeBadRequest,
				fmt.Sprintf("parameter %q must be a scalar", key))
		}
	}
	return params, nil
}

type userResponse struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
}

func (h *AuthHandler) handleSignup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	params, err := decodeParams(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	result, err := h.svc.Signup(ctx, params)
	if err != nil {
		h.warn(ctx, "signup rejected", err)
		WriteError(w, err)
		return
	}

	if result.User == nil {
		WriteJSON(w, http.StatusCreated, map[string]string{"message": result.Message})
		return
	}
	h.setSession(ctx, w, result.User.ID)
	WriteJSON(w, http.StatusCreated, userResponse{ID: result.User.ID, Email: result.User.Email})
}

func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	params, err := decodeParams(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	result, err := h.svc.Login(ctx, params)
	if err != nil {
		h.warn(ctx, "login rejected", err)
		WriteError(w, err)
		return
	}

	cookie, err := h.codec.Mint(result.User.ID, result.Expires)
	if err != nil {
		h.logger.ErrorContext(ctx, "mint session cookie", "error", err)
		WriteError(w, dErrors.New(dErrors.CodeInternal, "could not establish session"))
		return
	}
	http.SetCookie(w, cookie)
	WriteJSON(w, http.StatusOK, userResponse{ID: result.User.ID, Email: result.User.Email})
}

func (h *AuthHandler) handleLogout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	http.SetCookie(w, h.codec.Clear())
	if cu := requestcontext.CurrentUser(ctx); cu != nil && h.auditor != nil {
		if err := h.auditor.Emit(ctx, audit.NewEvent(audit.EventLogout, cu.Email, cu.ID)); err != nil {
			h.logger.WarnContext(ctx, "audit emit failed", "error", err)
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandler) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	params, err := decodeParams(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	result, err := h.svc.ForgotPassword(ctx, params)
	if err != nil {
		h.warn(ctx, "forgot-password rejected", err)
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, result.Payload)
}

func (h *AuthHandler) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	params, err := decodeParams(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	result, err := h.svc.ResetPassword(ctx, params)
	if err != nil {
		h.warn(ctx, "reset-password rejected", err)
		WriteError(w, err)
		return
	}

	if result.AutoLogin {
		h.setSession(ctx, w, result.User.ID)
	}
	WriteJSON(w, http.StatusOK, userResponse{ID: result.User.ID, Email: result.User.Email})
}

// handleUserInfo echoes the resolved current user, or 401 when the request
// carries no valid session.
func (h *AuthHandler) handleUserInfo(w http.ResponseWriter, r *http.Request) {
	cu := requestcontext.CurrentUser(r.Context())
	if cu == nil {
		WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "You don't have permission to do that."))
		return
	}
	WriteJSON(w, http.StatusOK, cu)
}

func (h *AuthHandler) setSession(ctx context.Context, w http.ResponseWriter, userID int64) {
	cookie, err := h.codec.Mint(userID, h.svc.SessionExpires())
	if err != nil {
		h.logger.ErrorContext(ctx, "mint session cookie", "error", err)
		return
	}
	http.SetCookie(w, cookie)
}

func (h *AuthHandler) warn(ctx context.Context, msg string, err error) {
	h.logger.WarnContext(ctx, msg,
		"request_id", middleware.GetRequestID(ctx),
		"code", string(dErrors.CodeOf(err)),
	)
}
