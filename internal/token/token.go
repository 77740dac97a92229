// Package token implements the session token store: opaque bearer tokens
// with a sliding expiration window measured from last use.
package token

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"account_service/internal/lib/random"
	"account_service/internal/models"
	"account_service/internal/storage"
)

const tokenLength = 32

var (
	ErrTokenNotFound = errors.New("token not found")
	ErrTokenExpired  = errors.New("token expired")
)

type Storage interface {
	SaveToken(ctx context.Context, token string, userID int64, lastUsedAt time.Time) error
	Token(ctx context.Context, token string) (models.SessionToken, error)
	TouchToken(ctx context.Context, token string, usedAt time.Time) error
	DeleteToken(ctx context.Context, token string) error
	DeleteTokensByUser(ctx context.Context, userID int64) error
	DeleteExpiredTokens(ctx context.Context, cutoff time.Time) (int64, error)
}

type Service struct {
	log     *slog.Logger
	storage Storage
	ttl     time.Duration
	now     func() time.Time
}

func New(log *slog.Logger, storage Storage, ttl time.Duration) *Service {
	return &Service{
		log:     log,
		storage: storage,
		ttl:     ttl,
		now:     time.Now,
	}
}

// Create issues a new token for the user. Collisions are left to the entropy
// of the generator; a duplicate primary key surfaces as storage.ErrTokenExists.
func (s *Service) Create(ctx context.Context, userID int64) (string, error) {
	const op = "token.Create"

	tok, err := random.String(tokenLength)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	if err := s.storage.SaveToken(ctx, tok, userID, s.now()); err != nil {
		if errors.Is(err, storage.ErrTokenExists) {
			s.log.Error("generated token collided with an existing one",
				slog.String("op", op))
			return "", err
		}

		return "", fmt.Errorf("%s: %w", op, err)
	}

	return tok, nil
}

// Verify resolves a token to its owning user id. A token older than the TTL
// fails with ErrTokenExpired; an unknown one with ErrTokenNotFound. On success
// the last-used timestamp is refreshed before the result is reported, which
// slides the expiration window.
func (s *Service) Verify(ctx context.Context, tok string) (int64, error) {
	const op = "token.Verify"

	log := s.log.With(slog.String("op", op))

	t, err := s.storage.Token(ctx, tok)
	if err != nil {
		if errors.Is(err, storage.ErrTokenNotFound) {
			log.Warn("unknown token presented")
			return 0, ErrTokenNotFound
		}

		return 0, fmt.Errorf("%s: %w", op, err)
	}

	now := s.now()

	if now.Sub(t.LastUsedAt) >= s.ttl {
		log.Warn("expired token presented", slog.Int64("uid", t.UserID))
		return 0, ErrTokenExpired
	}

	if err := s.storage.TouchToken(ctx, tok, now); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return t.UserID, nil
}

// Delete revokes a single token. Deleting an absent token is not an error.
func (s *Service) Delete(ctx context.Context, tok string) error {
	const op = "token.Delete"

	if err := s.storage.DeleteToken(ctx, tok); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// DeleteAllForUser revokes every session the user owns.
func (s *Service) DeleteAllForUser(ctx context.Context, userID int64) error {
	const op = "token.DeleteAllForUser"

	if err := s.storage.DeleteTokensByUser(ctx, userID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// SweepExpired bulk-deletes every token past the TTL. "now" is snapshotted
// once, so a token touched after the cutoff survives a concurrent sweep.
func (s *Service) SweepExpired(ctx context.Context) error {
	const op = "token.SweepExpired"

	cutoff := s.now().Add(-s.ttl)

	removed, err := s.storage.DeleteExpiredTokens(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if removed > 0 {
		s.log.Info("expired tokens removed",
			slog.String("op", op),
			slog.Int64("count", removed),
		)
	}

	return nil
}
