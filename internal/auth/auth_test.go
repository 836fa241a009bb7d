package auth_test

import (
	"context"
	"io"
	"ms-engagement/internal/apperrors"
	"ms-engagement/internal/auth"
	"ms-engagement/internal/config"
	"ms-engagement/internal/logger"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret"

func newAuthenticator(t *testing.T) *auth.Authenticator {
	t.Helper()
	a, err := auth.NewAuthenticator(context.Background(), config.AuthConfig{
		JWTSecret:  secret,
		CookieName: "token",
		TokenTTL:   time.Hour,
	}, logger.NewLoggerWithWriter(io.Discard))
	require.NoError(t, err)
	return a
}

func echoUser() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(auth.UserID(r.Context())))
	})
}

func TestIssueAndParseToken(t *testing.T) {
	token, err := auth.IssueToken(secret, "user-1", time.Hour)
	require.NoError(t, err)

	sub, err := auth.ParseToken(secret, token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", sub)

	_, err = auth.ParseToken("other-secret", token)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestParseTokenExpired(t *testing.T) {
	token, err := auth.IssueToken(secret, "user-1", -time.Minute)
	require.NoError(t, err)

	_, err = auth.ParseToken(secret, token)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestIssueTokenWithoutSecret(t *testing.T) {
	_, err := auth.IssueToken("", "user-1", time.Hour)
	assert.Error(t, err)
}

func TestRequireAcceptsCookie(t *testing.T) {
	a := newAuthenticator(t)
	token, err := auth.IssueToken(secret, "user-42", time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: token})
	rec := httptest.NewRecorder()

	a.Require()(echoUser()).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-42", rec.Body.String())
}

func TestRequireAcceptsBearer(t *testing.T) {
	a := newAuthenticator(t)
	token, err := auth.IssueToken(secret, "user-7", time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	a.Require()(echoUser()).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-7", rec.Body.String())
}

func TestRequireRejectsMissingAndInvalidTokens(t *testing.T) {
	a := newAuthenticator(t)

	rec := httptest.NewRecorder()
	a.Require()(echoUser()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	rec = httptest.NewRecorder()
	a.Require()(echoUser()).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := auth.HashPassword("secret1")
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", hash)
	assert.True(t, auth.CheckPassword(hash, "secret1"))
	assert.False(t, auth.CheckPassword(hash, "wrong"))
}
