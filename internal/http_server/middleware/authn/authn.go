// Package authn resolves the request's bearer token into an authenticated
// principal. Authentication here is optional: any failure leaves the request
// without a principal and lets it continue, and the per-route authorization
// policy decides whether that is fatal.
package authn

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	sl "account_service/internal/lib/logger"
)

const bearerPrefix = "Bearer "

type TokenVerifier interface {
	Verify(ctx context.Context, token string) (int64, error)
}

type ctxKey struct{}

// New returns middleware that attaches the token's owning user id to the
// request context. Verification also slides the token's expiration window.
func New(log *slog.Logger, tokens TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tok, ok := BearerToken(r)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			userID, err := tokens.Verify(r.Context(), tok)
			if err != nil {
				log.Debug("bearer token rejected", sl.Err(err))
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
		})
	}
}

// BearerToken extracts the raw token from the Authorization header.
func BearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, bearerPrefix) {
		return "", false
	}

	tok := strings.TrimPrefix(header, bearerPrefix)
	if tok == "" {
		return "", false
	}

	return tok, true
}

// WithUserID marks the context as authenticated for the given user.
func WithUserID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, ctxKey{}, userID)
}

// UserID returns the authenticated principal, if the request has one.
func UserID(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(ctxKey{}).(int64)
	return id, ok
}
