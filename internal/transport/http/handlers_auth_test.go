package httptransport_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/suite"

	"gatehouse/internal/auth/identity"
	"gatehouse/internal/auth/models"
	"gatehouse/internal/auth/service"
	"gatehouse/internal/auth/session"
	"gatehouse/internal/auth/store"
	"gatehouse/internal/graphql"
	httptransport "gatehouse/internal/transport/http"
)

const handlerSchema = `
type Query {
  me: String @requireAuth
  status: String @skipAuth
}
`

type HandlerSuite struct {
	suite.Suite
	users      *store.InMemoryUserStore
	server     *httptest.Server
	resetToken string
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.users = store.NewInMemory()

	cfg := service.Config{}
	cfg.ForgotPassword.Handler = func(_ context.Context, u *models.User) (any, error) {
		s.resetToken = u.ResetToken
		return map[string]string{"email": u.Email}, nil
	}
	cfg.ResetPassword.Handler = func(context.Context, *models.User) (bool, error) {
		return true, nil
	}
	svc := service.New(s.users, cfg, logger)

	codec := session.NewCodec(session.Config{Secret: "test-secret", DevMode: true})
	resolver := identity.NewResolver(s.users, identity.WithEmail(), identity.WithRoles())

	engine, err := graphql.NewEngine(handlerSchema, logger)
	s.Require().NoError(err)
	s.Require().NoError(engine.Register("me", func(ctx context.Context, _ map[string]any) (any, error) {
		return "it's you", nil
	}))
	s.Require().NoError(engine.Register("status", func(context.Context, map[string]any) (any, error) {
		return "ok", nil
	}))

	router := httptransport.NewRouter(httptransport.RouterDeps{
		Auth:     httptransport.NewAuthHandler(svc, codec, logger),
		GraphQL:  httptransport.NewGraphQLHandler(engine, logger),
		Codec:    codec,
		Resolver: resolver,
		Logger:   logger,
	})
	s.server = httptest.NewServer(router)
	s.T().Cleanup(s.server.Close)
}

func (s *HandlerSuite) post(path string, body any, cookies ...*http.Cookie) *http.Response {
	s.T().Helper()
	payload, err := json.Marshal(body)
	s.Require().NoError(err)
	req, err := http.NewRequest(http.MethodPost, s.server.URL+path, bytes.NewReader(payload))
	s.Require().NoError(err)
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	resp, err := s.server.Client().Do(req)
	s.Require().NoError(err)
	s.T().Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func (s *HandlerSuite) get(path string, cookies ...*http.Cookie) *http.Response {
	s.T().Helper()
	req, err := http.NewRequest(http.MethodGet, s.server.URL+path, nil)
	s.Require().NoError(err)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	resp, err := s.server.Client().Do(req)
	s.Require().NoError(err)
	s.T().Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decodeBody[T any](s *HandlerSuite, resp *http.Response) T {
	s.T().Helper()
	var out T
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func sessionCookie(resp *http.Response) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == "session" {
			return c
		}
	}
	return nil
}

func (s *HandlerSuite) signup(email, password string) *http.Cookie {
	s.T().Helper()
	resp := s.post("/auth/signup", map[string]string{"username": email, "password": password})
	s.Require().Equal(http.StatusCreated, resp.StatusCode)
	cookie := sessionCookie(resp)
	s.Require().NotNil(cookie)
	return cookie
}

func (s *HandlerSuite) TestSignupSetsSessionCookie() {
	resp := s.post("/auth/signup", map[string]string{
		"username": "ana@example.com",
		"password": "her password",
	})
	s.Equal(http.StatusCreated, resp.StatusCode)

	cookie := sessionCookie(resp)
	s.Require().NotNil(cookie)
	s.True(cookie.HttpOnly)
	s.Equal("/", cookie.Path)
	s.Equal(http.SameSiteStrictMode, cookie.SameSite)
	s.False(cookie.Secure) // dev mode

	body := decodeBody[map[string]any](s, resp)
	s.Equal("ana@example.com", body["email"])
}

func (s *HandlerSuite) TestSignupDuplicateMapsToConflict() {
	s.signup("dup@example.com", "a password")
	resp := s.post("/auth/signup", map[string]string{
		"username": "dup@example.com",
		"password": "other password",
	})
	s.Equal(http.StatusConflict, resp.StatusCode)
	body := decodeBody[map[string]string](s, resp)
	s.Equal("username_taken", body["error"])
	s.Equal("Username `dup@example.com` already in use", body["message"])
}

func (s *HandlerSuite) TestLoginRoundtrip() {
	s.signup("ana@example.com", "her password")

	resp := s.post("/auth/login", map[string]string{
		"username": "ana@example.com",
		"password": "wrong",
	})
	s.Equal(http.StatusBadRequest, resp.StatusCode)
	s.Equal("incorrect_password", decodeBody[map[string]string](s, resp)["error"])

	resp = s.post("/auth/login", map[string]string{
		"username": "ana@example.com",
		"password": "her password",
	})
	s.Equal(http.StatusOK, resp.StatusCode)
	s.NotNil(sessionCookie(resp))
}

func (s *HandlerSuite) TestUserInfoRequiresSession() {
	resp := s.get("/auth/userinfo")
	s.Equal(http.StatusUnauthorized, resp.StatusCode)

	cookie := s.signup("ana@example.com", "her password")
	resp = s.get("/auth/userinfo", cookie)
	s.Equal(http.StatusOK, resp.StatusCode)
	body := decodeBody[map[string]any](s, resp)
	s.Equal("ana@example.com", body["email"])
}

func (s *HandlerSuite) TestUserInfoWithTamperedCookieIsUnauthorized() {
	cookie := s.signup("ana@example.com", "her password")
	cookie.Value += "tampered"
	resp := s.get("/auth/userinfo", cookie)
	s.Equal(http.StatusUnauthorized, resp.StatusCode)
}

func (s *HandlerSuite) TestLogoutClearsCookie() {
	cookie := s.signup("ana@example.com", "her password")
	resp := s.post("/auth/logout", map[string]string{}, cookie)
	s.Equal(http.StatusNoContent, resp.StatusCode)

	cleared := sessionCookie(resp)
	s.Require().NotNil(cleared)
	s.Empty(cleared.Value)
	s.Negative(cleared.MaxAge)
}

func (s *HandlerSuite) TestForgotThenResetPassword() {
	s.signup("kim@example.com", "old password")

	resp := s.post("/auth/forgot-password", map[string]string{"username": "kim@example.com"})
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Require().NotEmpty(s.resetToken)

	resp = s.post("/auth/reset-password", map[string]string{
		"resetToken": s.resetToken,
		"password":   "new password",
	})
	s.Equal(http.StatusOK, resp.StatusCode)
	// Handler opted into auto-login.
	s.NotNil(sessionCookie(resp))

	resp = s.post("/auth/login", map[string]string{
		"username": "kim@example.com",
		"password": "new password",
	})
	s.Equal(http.StatusOK, resp.StatusCode)
}

func (s *HandlerSuite) TestResetPasswordExpiredTokenEnvelope() {
	resp := s.post("/auth/reset-password", map[string]string{
		"resetToken": "never-issued",
		"password":   "whatever",
	})
	s.Equal(http.StatusBadRequest, resp.StatusCode)
	body := decodeBody[map[string]string](s, resp)
	s.Equal("reset_token_invalid", body["error"])
	s.Equal("resetToken is invalid", body["message"])
}

func (s *HandlerSuite) TestGraphQLGuardUsesSession() {
	resp := s.post("/graphql", graphql.Request{Query: `{ me }`})
	s.Equal(http.StatusOK, resp.StatusCode)
	body := decodeBody[graphql.Response](s, resp)
	s.Require().Len(body.Errors, 1)
	s.Equal("You don't have permission to do that.", body.Errors[0].Message)

	cookie := s.signup("ana@example.com", "her password")
	resp = s.post("/graphql", graphql.Request{Query: `{ me status }`}, cookie)
	body = decodeBody[graphql.Response](s, resp)
	s.Empty(body.Errors)
	s.Equal("it's you", body.Data["me"])
	s.Equal("ok", body.Data["status"])
}

func (s *HandlerSuite) TestMalformedBodyIsBadRequest() {
	req, err := http.NewRequest(http.MethodPost, s.server.URL+"/auth/login",
		bytes.NewReader([]byte("not json")))
	s.Require().NoError(err)
	resp, err := s.server.Client().Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()
	s.Equal(http.StatusBadRequest, resp.StatusCode)
}

func (s *HandlerSuite) TestHealthz() {
	resp := s.get("/healthz")
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Equal("ok", decodeBody[map[string]string](s, resp)["status"])
}

func (s *HandlerSuite) TestUnknownRouteReturnsEnvelope() {
	resp := s.get("/no-such-route")
	s.Equal(http.StatusNotFound, resp.StatusCode)
	body := decodeBody[map[string]string](s, resp)
	s.Equal("not_found", body["error"])
}

// outageStore simulates a store whose backing database is unreachable.
type outageStore struct {
	store.UserStore
}

func (outageStore) FindByID(context.Context, int64) (*models.User, error) {
	return nil, errors.New("dial tcp: connection refused")
}

func (s *HandlerSuite) TestSessionResolutionOutageAnswersUnavailable() {
	// A valid cookie minted against the same secret as the outage server.
	cookie := s.signup("ana@example.com", "her password")

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	codec := session.NewCodec(session.Config{Secret: "test-secret", DevMode: true})
	svc := service.New(s.users, service.Config{}, logger)
	router := httptransport.NewRouter(httptransport.RouterDeps{
		Auth:     httptransport.NewAuthHandler(svc, codec, logger),
		Codec:    codec,
		Resolver: identity.NewResolver(outageStore{s.users}, identity.WithEmail()),
		Logger:   logger,
	})
	server := httptest.NewServer(router)
	defer server.Close()

	req, err := http.NewRequest(http.MethodGet, server.URL+"/auth/userinfo", nil)
	s.Require().NoError(err)
	req.AddCookie(cookie)
	resp, err := server.Client().Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusServiceUnavailable, resp.StatusCode)
	body := decodeBody[map[string]string](s, resp)
	s.Equal("unavailable", body["error"])
}
