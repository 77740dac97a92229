// Package user implements account lifecycle operations: registration with
// e-mail activation, listing, update, delete, and password reset.
package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	sl "account_service/internal/lib/logger"
	"account_service/internal/lib/random"
	"account_service/internal/models"
	"account_service/internal/storage"

	"golang.org/x/crypto/bcrypt"
)

// Activation and reset tokens are shorter than session tokens: they live on
// the user row and are consumed once.
const accountTokenLength = 16

var (
	ErrEmailTaken             = errors.New("email already in use")
	ErrEmailNotFound          = errors.New("email not found")
	ErrEmailDelivery          = errors.New("email delivery failed")
	ErrUserNotFound           = errors.New("user not found")
	ErrInvalidActivationToken = errors.New("invalid activation token")
	ErrInvalidResetToken      = errors.New("invalid password reset token")
)

type Storage interface {
	SaveUser(ctx context.Context, username, email string, passHash []byte, activationToken string, notify func(ctx context.Context) error) (int64, error)
	ActiveUserByID(ctx context.Context, id int64) (models.User, error)
	ActiveUsers(ctx context.Context, excludeID int64, limit, offset int) ([]models.User, int, error)
	UpdateUsername(ctx context.Context, id int64, username string) error
	DeleteUser(ctx context.Context, id int64) error
	ActivateUser(ctx context.Context, token string) error
	SetPasswordResetToken(ctx context.Context, email, token string) error
	ResetPassword(ctx context.Context, token string, passHash []byte) (int64, error)
}

type EmailSender interface {
	SendActivation(ctx context.Context, email, token string) error
	SendPasswordReset(ctx context.Context, email, token string) error
}

type SessionRevoker interface {
	DeleteAllForUser(ctx context.Context, userID int64) error
}

type Service struct {
	log      *slog.Logger
	storage  Storage
	email    EmailSender
	sessions SessionRevoker
}

func New(log *slog.Logger, storage Storage, email EmailSender, sessions SessionRevoker) *Service {
	return &Service{
		log:      log,
		storage:  storage,
		email:    email,
		sessions: sessions,
	}
}

// ListItem is the public projection of a user; the password hash and pending
// tokens never leave the service.
type ListItem struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type Page struct {
	Content    []ListItem `json:"content"`
	Page       int        `json:"page"`
	Size       int        `json:"size"`
	TotalPages int        `json:"totalPages"`
}

// Register creates an inactive account and hands the activation e-mail to the
// mail queue. Insert and hand-off share one transaction: if the e-mail cannot
// be published the user row is rolled back and ErrEmailDelivery is returned.
func (s *Service) Register(ctx context.Context, username, email, password string) error {
	const op = "user.Register"

	log := s.log.With(slog.String("op", op))

	passHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Error("failed to generate password hash", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	activationToken, err := random.String(accountTokenLength)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	notify := func(ctx context.Context) error {
		if err := s.email.SendActivation(ctx, email, activationToken); err != nil {
			log.Error("failed to hand off activation email", sl.Err(err))
			return fmt.Errorf("%w: %v", ErrEmailDelivery, err)
		}
		return nil
	}

	id, err := s.storage.SaveUser(ctx, username, email, passHash, activationToken, notify)
	if err != nil {
		if errors.Is(err, storage.ErrEmailTaken) {
			log.Warn("email already in use")
			return ErrEmailTaken
		}
		if errors.Is(err, ErrEmailDelivery) {
			return err
		}

		log.Error("failed to save user", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	log.Info("user registered", slog.Int64("uid", id))

	return nil
}

// Activate consumes an activation token, switching the account to active.
func (s *Service) Activate(ctx context.Context, token string) error {
	const op = "user.Activate"

	if err := s.storage.ActivateUser(ctx, token); err != nil {
		if errors.Is(err, storage.ErrTokenNotFound) {
			s.log.Warn("invalid activation token", slog.String("op", op))
			return ErrInvalidActivationToken
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("account activated", slog.String("op", op))

	return nil
}

// Users returns one page of active users. When principal is non-zero that
// user is left out of both the content and the total-count math, so a logged
// in caller never sees themselves in the listing.
func (s *Service) Users(ctx context.Context, page, size int, principal int64) (Page, error) {
	const op = "user.Users"

	users, total, err := s.storage.ActiveUsers(ctx, principal, size, page*size)
	if err != nil {
		return Page{}, fmt.Errorf("%s: %w", op, err)
	}

	content := make([]ListItem, 0, len(users))
	for _, u := range users {
		content = append(content, ListItem{ID: u.ID, Username: u.Username, Email: u.Email})
	}

	return Page{
		Content:    content,
		Page:       page,
		Size:       size,
		TotalPages: int(math.Ceil(float64(total) / float64(size))),
	}, nil
}

// User returns a single active user. Inactive and unknown ids both come back
// as ErrUserNotFound.
func (s *Service) User(ctx context.Context, id int64) (ListItem, error) {
	const op = "user.User"

	u, err := s.storage.ActiveUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return ListItem{}, ErrUserNotFound
		}

		return ListItem{}, fmt.Errorf("%s: %w", op, err)
	}

	return ListItem{ID: u.ID, Username: u.Username, Email: u.Email}, nil
}

func (s *Service) UpdateUsername(ctx context.Context, id int64, username string) error {
	const op = "user.UpdateUsername"

	if err := s.storage.UpdateUsername(ctx, id, username); err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return ErrUserNotFound
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("username updated", slog.String("op", op), slog.Int64("uid", id))

	return nil
}

// Delete removes the account. Session tokens cascade with the user row.
func (s *Service) Delete(ctx context.Context, id int64) error {
	const op = "user.Delete"

	if err := s.storage.DeleteUser(ctx, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("user deleted", slog.String("op", op), slog.Int64("uid", id))

	return nil
}

// PasswordResetRequest stores a single-use reset token on the user row and
// mails it out. A failed hand-off surfaces as ErrEmailDelivery so the caller
// can report the reset as undelivered.
func (s *Service) PasswordResetRequest(ctx context.Context, email string) error {
	const op = "user.PasswordResetRequest"

	log := s.log.With(slog.String("op", op))

	resetToken, err := random.String(accountTokenLength)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.storage.SetPasswordResetToken(ctx, email, resetToken); err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			log.Warn("password reset requested for unknown email")
			return ErrEmailNotFound
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.email.SendPasswordReset(ctx, email, resetToken); err != nil {
		log.Error("failed to hand off password reset email", sl.Err(err))
		return fmt.Errorf("%w: %v", ErrEmailDelivery, err)
	}

	log.Info("password reset email queued")

	return nil
}

// PasswordResetUpdate consumes a reset token and replaces the password. Every
// session the user holds is revoked, forcing a fresh login with the new
// password.
func (s *Service) PasswordResetUpdate(ctx context.Context, token, newPassword string) error {
	const op = "user.PasswordResetUpdate"

	log := s.log.With(slog.String("op", op))

	passHash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Error("failed to generate password hash", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	id, err := s.storage.ResetPassword(ctx, token, passHash)
	if err != nil {
		if errors.Is(err, storage.ErrTokenNotFound) {
			log.Warn("invalid password reset token")
			return ErrInvalidResetToken
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.sessions.DeleteAllForUser(ctx, id); err != nil {
		log.Error("failed to revoke sessions after password reset", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	log.Info("password updated", slog.Int64("uid", id))

	return nil
}
