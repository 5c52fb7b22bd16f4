// Package session serializes the authenticated session to and from a signed,
// HttpOnly cookie. The cookie value is the sole persisted session
// representation; nothing is stored server-side.
package session

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"gatehouse/internal/auth/models"
	dErrors "gatehouse/pkg/domain-errors"
)

const issuer = "gatehouse"

// Codec mints and reads the session cookie. Cookie attributes are fixed at
// HttpOnly, Path=/, SameSite=Strict; Secure everywhere except local
// development.
type Codec struct {
	signingKey []byte
	cookieName string
	domain     string
	secure     bool
}

// Config for the codec; Secret is the only required field.
type Config struct {
	Secret       string
	CookieName   string
	CookieDomain string
	DevMode      bool
}

func NewCodec(cfg Config) *Codec {
	name := cfg.CookieName
	if name == "" {
		name = "session"
	}
	return &Codec{
		signingKey: []byte(cfg.Secret),
		cookieName: name,
		domain:     cfg.CookieDomain,
		secure:     !cfg.DevMode,
	}
}

type claims struct {
	jwt.RegisteredClaims
}

// Mint signs a session token for the user and wraps it in the cookie.
func (c *Codec) Mint(userID int64, expires time.Duration) (*http.Cookie, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expires)),
		},
	})
	signed, err := token.SignedString(c.signingKey)
	if err != nil {
		return nil, err
	}

	cookie := c.baseCookie()
	cookie.Value = signed
	cookie.Expires = now.Add(expires)
	cookie.MaxAge = int(expires.Seconds())
	return cookie, nil
}

// Read extracts and verifies the session from the request cookie.
// A missing cookie yields (nil, nil): the request is simply unauthenticated.
// A present but unverifiable or expired cookie yields CodeUnauthorized.
func (c *Codec) Read(r *http.Request) (*models.Session, error) {
	cookie, err := r.Cookie(c.cookieName)
	if err != nil {
		if errors.Is(err, http.ErrNoCookie) {
			return nil, nil
		}
		return nil, err
	}
	return c.Decode(cookie.Value)
}

// Decode verifies a raw session token value.
func (c *Codec) Decode(value string) (*models.Session, error) {
	parsed, err := jwt.ParseWithClaims(value, &claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return c.signingKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "session has expired")
		}
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid session")
	}
	cl, ok := parsed.Claims.(*claims)
	if !ok || !parsed.Valid {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid session")
	}
	userID, err := strconv.ParseInt(cl.Subject, 10, 64)
	if err != nil || userID <= 0 {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid session")
	}
	return &models.Session{UserID: userID}, nil
}

// Clear returns an expired cookie that removes the session client-side.
func (c *Codec) Clear() *http.Cookie {
	cookie := c.baseCookie()
	cookie.Value = ""
	cookie.Expires = time.Unix(0, 0)
	cookie.MaxAge = -1
	return cookie
}

func (c *Codec) baseCookie() *http.Cookie {
	return &http.Cookie{
		Name:     c.cookieName,
		Path:     "/",
		Domain:   c.domain,
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteStrictMode,
	}
}
