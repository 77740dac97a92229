// Package auth verifies credentials at login and issues session tokens.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	sl "account_service/internal/lib/logger"
	"account_service/internal/models"
	"account_service/internal/storage"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountInactive    = errors.New("account is inactive")
)

type UserProvider interface {
	UserByEmail(ctx context.Context, email string) (models.User, error)
}

type SessionStore interface {
	Create(ctx context.Context, userID int64) (string, error)
	Delete(ctx context.Context, token string) error
}

type Auth struct {
	log         *slog.Logger
	usrProvider UserProvider
	sessions    SessionStore
}

func New(log *slog.Logger, userProvider UserProvider, sessions SessionStore) *Auth {
	return &Auth{
		log:         log,
		usrProvider: userProvider,
		sessions:    sessions,
	}
}

// Login checks the email/password pair and returns the user with a fresh
// session token. An unknown email and a wrong password both collapse into
// ErrInvalidCredentials so the response does not reveal which check failed;
// inactivity is reported separately, but only once credentials are confirmed.
func (a *Auth) Login(ctx context.Context, email, password string) (models.User, string, error) {
	const op = "auth.Login"

	log := a.log.With(slog.String("op", op))

	user, err := a.usrProvider.UserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			log.Warn("user not found")
			return models.User{}, "", ErrInvalidCredentials
		}

		log.Error("failed to get user", sl.Err(err))
		return models.User{}, "", fmt.Errorf("%s: %w", op, err)
	}

	if err := bcrypt.CompareHashAndPassword(user.PassHash, []byte(password)); err != nil {
		log.Info("invalid credentials", sl.Err(err))
		return models.User{}, "", ErrInvalidCredentials
	}

	if user.Inactive {
		log.Warn("inactive account login attempt", slog.Int64("uid", user.ID))
		return models.User{}, "", ErrAccountInactive
	}

	tok, err := a.sessions.Create(ctx, user.ID)
	if err != nil {
		log.Error("failed to create session token", sl.Err(err))
		return models.User{}, "", fmt.Errorf("%s: %w", op, err)
	}

	log.Info("user logged in successfully", slog.Int64("uid", user.ID))

	return user, tok, nil
}

// Logout revokes the presented session token. Unknown tokens are ignored, so
// logging out twice with the same token succeeds both times.
func (a *Auth) Logout(ctx context.Context, tok string) error {
	const op = "auth.Logout"

	log := a.log.With(slog.String("op", op))

	if err := a.sessions.Delete(ctx, tok); err != nil {
		log.Error("failed to delete session token", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	log.Info("logout successful")

	return nil
}
