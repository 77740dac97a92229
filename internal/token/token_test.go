package token

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"account_service/internal/models"
	"account_service/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const week = 7 * 24 * time.Hour

type fakeStorage struct {
	mu      sync.Mutex
	tokens  map[string]models.SessionToken
	saveErr error
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{tokens: make(map[string]models.SessionToken)}
}

func (f *fakeStorage) SaveToken(_ context.Context, tok string, userID int64, lastUsedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.saveErr != nil {
		return f.saveErr
	}
	if _, ok := f.tokens[tok]; ok {
		return storage.ErrTokenExists
	}

	f.tokens[tok] = models.SessionToken{Token: tok, UserID: userID, LastUsedAt: lastUsedAt}
	return nil
}

func (f *fakeStorage) Token(_ context.Context, tok string) (models.SessionToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	t, ok := f.tokens[tok]
	if !ok {
		return models.SessionToken{}, storage.ErrTokenNotFound
	}
	return t, nil
}

func (f *fakeStorage) TouchToken(_ context.Context, tok string, usedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	t, ok := f.tokens[tok]
	if !ok {
		return storage.ErrTokenNotFound
	}
	t.LastUsedAt = usedAt
	f.tokens[tok] = t
	return nil
}

func (f *fakeStorage) DeleteToken(_ context.Context, tok string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	delete(f.tokens, tok)
	return nil
}

func (f *fakeStorage) DeleteTokensByUser(_ context.Context, userID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for tok, t := range f.tokens {
		if t.UserID == userID {
			delete(f.tokens, tok)
		}
	}
	return nil
}

func (f *fakeStorage) DeleteExpiredTokens(_ context.Context, cutoff time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var removed int64
	for tok, t := range f.tokens {
		if !t.LastUsedAt.After(cutoff) {
			delete(f.tokens, tok)
			removed++
		}
	}
	return removed, nil
}

func (f *fakeStorage) seed(tok string, userID int64, lastUsedAt time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.tokens[tok] = models.SessionToken{Token: tok, UserID: userID, LastUsedAt: lastUsedAt}
}

func (f *fakeStorage) lastUsedAt(t *testing.T, tok string) time.Time {
	t.Helper()

	f.mu.Lock()
	defer f.mu.Unlock()

	st, ok := f.tokens[tok]
	require.True(t, ok, "token %q not in storage", tok)
	return st.LastUsedAt
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestService(store *fakeStorage) *Service {
	return New(testLogger(), store, week)
}

func TestCreateIssuesVerifiableToken(t *testing.T) {
	store := newFakeStorage()
	svc := newTestService(store)

	tok, err := svc.Create(context.Background(), 42)
	require.NoError(t, err)
	assert.Len(t, tok, 32)

	userID, err := svc.Verify(context.Background(), tok)
	require.NoError(t, err)
	assert.Equal(t, int64(42), userID)
}

func TestCreateFailsLoudlyOnCollision(t *testing.T) {
	store := newFakeStorage()
	store.saveErr = storage.ErrTokenExists
	svc := newTestService(store)

	_, err := svc.Create(context.Background(), 42)
	require.ErrorIs(t, err, storage.ErrTokenExists)
}

func TestVerifyUnknownToken(t *testing.T) {
	svc := newTestService(newFakeStorage())

	_, err := svc.Verify(context.Background(), "no-such-token")
	require.ErrorIs(t, err, ErrTokenNotFound)
}

func TestVerifyExpiredToken(t *testing.T) {
	store := newFakeStorage()
	svc := newTestService(store)

	now := time.Now()
	svc.now = func() time.Time { return now }

	store.seed("stale", 7, now.Add(-week-time.Millisecond))

	_, err := svc.Verify(context.Background(), "stale")
	require.ErrorIs(t, err, ErrTokenExpired)
}

func TestVerifyTokenAtExactTTL(t *testing.T) {
	store := newFakeStorage()
	svc := newTestService(store)

	now := time.Now()
	svc.now = func() time.Time { return now }

	store.seed("boundary", 7, now.Add(-week))

	_, err := svc.Verify(context.Background(), "boundary")
	require.ErrorIs(t, err, ErrTokenExpired)
}

func TestVerifySlidesExpirationWindow(t *testing.T) {
	store := newFakeStorage()
	svc := newTestService(store)

	issued := time.Now().Add(-6 * 24 * time.Hour)
	store.seed("young", 9, issued)

	before := time.Now()

	userID, err := svc.Verify(context.Background(), "young")
	require.NoError(t, err)
	assert.Equal(t, int64(9), userID)

	refreshed := store.lastUsedAt(t, "young")
	assert.False(t, refreshed.Before(before), "lastUsedAt was not refreshed")
}

func TestDeleteIsIdempotent(t *testing.T) {
	store := newFakeStorage()
	svc := newTestService(store)

	tok, err := svc.Create(context.Background(), 1)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), tok))
	require.NoError(t, svc.Delete(context.Background(), tok))

	_, err = svc.Verify(context.Background(), tok)
	require.ErrorIs(t, err, ErrTokenNotFound)
}

func TestDeleteAllForUser(t *testing.T) {
	store := newFakeStorage()
	svc := newTestService(store)

	first, err := svc.Create(context.Background(), 5)
	require.NoError(t, err)
	second, err := svc.Create(context.Background(), 5)
	require.NoError(t, err)
	other, err := svc.Create(context.Background(), 6)
	require.NoError(t, err)

	require.NoError(t, svc.DeleteAllForUser(context.Background(), 5))

	_, err = svc.Verify(context.Background(), first)
	assert.ErrorIs(t, err, ErrTokenNotFound)
	_, err = svc.Verify(context.Background(), second)
	assert.ErrorIs(t, err, ErrTokenNotFound)

	userID, err := svc.Verify(context.Background(), other)
	require.NoError(t, err)
	assert.Equal(t, int64(6), userID)
}

func TestSweepRemovesOnlyExpiredTokens(t *testing.T) {
	store := newFakeStorage()
	svc := newTestService(store)

	now := time.Now()
	store.seed("eight-days", 1, now.Add(-8*24*time.Hour))
	store.seed("one-day", 2, now.Add(-24*time.Hour))

	require.NoError(t, svc.SweepExpired(context.Background()))

	_, err := svc.Verify(context.Background(), "eight-days")
	assert.ErrorIs(t, err, ErrTokenNotFound)

	userID, err := svc.Verify(context.Background(), "one-day")
	require.NoError(t, err)
	assert.Equal(t, int64(2), userID)
}
