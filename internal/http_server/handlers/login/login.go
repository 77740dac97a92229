package login

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"account_service/internal/auth"
	resp "account_service/internal/lib/api/response"
	sl "account_service/internal/lib/logger"
	"account_service/internal/models"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
)

type Request struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type Response struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Token    string `json:"token"`
}

type Authenticator interface {
	Login(ctx context.Context, email, password string) (models.User, string, error)
}

func New(
	log *slog.Logger,
	validate *validator.Validate,
	authService Authenticator,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.login.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req Request

		err := render.DecodeJSON(r.Body, &req)
		if err != nil {
			log.Error("Failed to decode request body", sl.Err(err))

			render.Status(r, http.StatusUnauthorized)
			render.JSON(w, r, resp.Error(r, "Incorrect Credentials."))

			return
		}

		log.Info("Request body decoded")

		// A malformed email never reaches the credential check, but it is
		// still reported as a generic authentication failure so the response
		// does not reveal which part was wrong.
		if err := validate.Struct(req); err != nil {
			log.Warn("Invalid login request", sl.Err(err))

			render.Status(r, http.StatusUnauthorized)
			render.JSON(w, r, resp.Error(r, "Incorrect Credentials."))

			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		usr, token, err := authService.Login(ctx, req.Email, req.Password)
		if err != nil {
			if errors.Is(err, auth.ErrInvalidCredentials) {
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, resp.Error(r, "Incorrect Credentials."))

				return
			}
			if errors.Is(err, auth.ErrAccountInactive) {
				render.Status(r, http.StatusForbidden)
				render.JSON(w, r, resp.Error(r, "Account is inactive."))

				return
			}

			log.Error("failed to login user", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error(r, "Internal server error"))

			return
		}

		log.Info("User logged in successfully")

		render.JSON(w, r, Response{
			ID:       usr.ID,
			Username: usr.Username,
			Token:    token,
		})
	}
}
