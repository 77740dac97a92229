package activate_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"account_service/internal/http_server/handlers/activate"
	"account_service/internal/user"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeActivator struct {
	err   error
	token string
}

func (f *fakeActivator) Activate(_ context.Context, token string) error {
	f.token = token
	return f.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func postToken(t *testing.T, svc *fakeActivator, token string) *httptest.ResponseRecorder {
	t.Helper()

	r := chi.NewRouter()
	r.Post("/api/1.0/users/token/{token}", activate.New(testLogger(), svc))

	req := httptest.NewRequest(http.MethodPost, "/api/1.0/users/token/"+token, nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	return rec
}

func TestActivateSuccess(t *testing.T) {
	svc := &fakeActivator{}

	rec := postToken(t, svc, "abcdef1234567890")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Account is activated.", body["message"])
	assert.Equal(t, "abcdef1234567890", svc.token)
}

func TestActivateInvalidToken(t *testing.T) {
	svc := &fakeActivator{err: user.ErrInvalidActivationToken}

	rec := postToken(t, svc, "stale")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "This account is either active or the token is invalid.", body["message"])
}
