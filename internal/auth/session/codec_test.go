package session

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "gatehouse/pkg/domain-errors"
)

func newTestCodec() *Codec {
	return NewCodec(Config{Secret: "test-secret", DevMode: false})
}

func TestMintAndReadRoundTrip(t *testing.T) {
	codec := newTestCodec()

	cookie, err := codec.Mint(42, time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)

	sess, err := codec.Read(req)
	require.NoError(t, err)
	require.NotNil(t, sess)
	assert.Equal(t, int64(42), sess.UserID)
}

func TestCookieAttributes(t *testing.T) {
	codec := newTestCodec()
	cookie, err := codec.Mint(1, time.Hour)
	require.NoError(t, err)

	assert.Equal(t, "session", cookie.Name)
	assert.Equal(t, "/", cookie.Path)
	assert.True(t, cookie.HttpOnly)
	assert.True(t, cookie.Secure)
	assert.Equal(t, http.SameSiteStrictMode, cookie.SameSite)
}

func TestDevModeDisablesSecure(t *testing.T) {
	codec := NewCodec(Config{Secret: "test-secret", DevMode: true})
	cookie, err := codec.Mint(1, time.Hour)
	require.NoError(t, err)
	assert.False(t, cookie.Secure)
}

func TestMissingCookieIsUnauthenticatedNotError(t *testing.T) {
	codec := newTestCodec()
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	sess, err := codec.Read(req)
	require.NoError(t, err)
	assert.Nil(t, sess)
}

func TestTamperedTokenRejected(t *testing.T) {
	codec := newTestCodec()
	other := NewCodec(Config{Secret: "different-secret"})

	cookie, err := other.Mint(42, time.Hour)
	require.NoError(t, err)

	_, err = codec.Decode(cookie.Value)
	require.Error(t, err)
	assert.True(t, dErrors.Is(err, dErrors.CodeUnauthorized))
}

func TestExpiredTokenRejected(t *testing.T) {
	codec := newTestCodec()
	cookie, err := codec.Mint(42, -time.Minute)
	require.NoError(t, err)

	_, err = codec.Decode(cookie.Value)
	require.Error(t, err)
	assert.True(t, dErrors.Is(err, dErrors.CodeUnauthorized))
}

func TestClearCookieExpiresSession(t *testing.T) {
	codec := newTestCodec()
	cookie := codec.Clear()

	assert.Empty(t, cookie.Value)
	assert.Negative(t, cookie.MaxAge)
	assert.True(t, cookie.Expires.Before(time.Now()))
	assert.True(t, cookie.HttpOnly)
}
