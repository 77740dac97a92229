package login_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"account_service/internal/auth"
	"account_service/internal/http_server/handlers/login"
	"account_service/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAuthenticator struct {
	user  models.User
	token string
	err   error
}

func (f *fakeAuthenticator) Login(_ context.Context, _, _ string) (models.User, string, error) {
	if f.err != nil {
		return models.User{}, "", f.err
	}
	return f.user, f.token, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func postAuth(t *testing.T, svc *fakeAuthenticator, body string) *httptest.ResponseRecorder {
	t.Helper()

	handler := login.New(testLogger(), validator.New(), svc)

	req := httptest.NewRequest(http.MethodPost, "/api/1.0/auth", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	return rec
}

func TestLoginReturnsUserAndToken(t *testing.T) {
	svc := &fakeAuthenticator{
		user:  models.User{ID: 4, Username: "user1"},
		token: "opaque-session-token",
	}

	rec := postAuth(t, svc, `{"email":"user1@mail.com","password":"P4ssword"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		ID       int64  `json:"id"`
		Username string `json:"username"`
		Token    string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	assert.Equal(t, int64(4), body.ID)
	assert.Equal(t, "user1", body.Username)
	assert.Equal(t, "opaque-session-token", body.Token)
}

func TestLoginBadCredentials(t *testing.T) {
	svc := &fakeAuthenticator{err: auth.ErrInvalidCredentials}

	rec := postAuth(t, svc, `{"email":"user1@mail.com","password":"wrong"}`)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	assert.Equal(t, "Incorrect Credentials.", body["message"])
	assert.Equal(t, "/api/1.0/auth", body["path"])
	assert.Contains(t, body, "timestamp")
}

func TestLoginMalformedEmailIsAuthenticationFailure(t *testing.T) {
	svc := &fakeAuthenticator{token: "never-issued"}

	rec := postAuth(t, svc, `{"email":"not-an-email","password":"P4ssword"}`)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Incorrect Credentials.", body["message"])
}

func TestLoginInactiveAccount(t *testing.T) {
	svc := &fakeAuthenticator{err: auth.ErrAccountInactive}

	rec := postAuth(t, svc, `{"email":"user1@mail.com","password":"P4ssword"}`)
	require.Equal(t, http.StatusForbidden, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Account is inactive.", body["message"])
}
