// Package email composes account e-mails and hands them to the mail queue.
package email

import (
	"context"
	"fmt"
	"log/slog"

	"account_service/internal/models"
)

type Publisher interface {
	SendMessage(ctx context.Context, msg models.EmailMessage) error
}

type Service struct {
	log         *slog.Logger
	pub         Publisher
	frontendURL string
}

func New(log *slog.Logger, pub Publisher, frontendURL string) *Service {
	return &Service{
		log:         log,
		pub:         pub,
		frontendURL: frontendURL,
	}
}

func (s *Service) SendActivation(ctx context.Context, email, token string) error {
	const op = "email.SendActivation"

	msg := models.EmailMessage{
		Email:   email,
		Subject: "Account Activation",
		Link:    fmt.Sprintf("%s/#/login?token=%s", s.frontendURL, token),
	}

	if err := s.pub.SendMessage(ctx, msg); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("activation email queued", slog.String("op", op))

	return nil
}

func (s *Service) SendPasswordReset(ctx context.Context, email, token string) error {
	const op = "email.SendPasswordReset"

	msg := models.EmailMessage{
		Email:   email,
		Subject: "Password Reset",
		Link:    fmt.Sprintf("%s/#/password-reset?reset=%s", s.frontendURL, token),
	}

	if err := s.pub.SendMessage(ctx, msg); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("password reset email queued", slog.String("op", op))

	return nil
}
