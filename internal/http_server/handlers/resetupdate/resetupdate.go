package resetupdate

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	resp "account_service/internal/lib/api/response"
	sl "account_service/internal/lib/logger"
	"account_service/internal/user"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
)

const notAuthorized = "You are not authorized to update your password. Please follow the password reset steps again."

type Request struct {
	Password           string `json:"password" validate:"required,min=6"`
	PasswordResetToken string `json:"passwordResetToken"`
}

type Response struct {
	Message string `json:"message"`
}

type PasswordResetter interface {
	PasswordResetUpdate(ctx context.Context, token, newPassword string) error
}

// New handles the second half of the reset flow. An unknown reset token is an
// authorization failure, not a 404: the response must not confirm whether any
// such token exists.
func New(
	log *slog.Logger,
	validate *validator.Validate,
	users PasswordResetter,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.resetupdate.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req Request

		err := render.DecodeJSON(r.Body, &req)
		if err != nil {
			log.Error("Failed to decode request body", sl.Err(err))

			render.Status(r, http.StatusForbidden)
			render.JSON(w, r, resp.Error(r, notAuthorized))

			return
		}

		log.Info("Request body decoded")

		if req.PasswordResetToken == "" {
			render.Status(r, http.StatusForbidden)
			render.JSON(w, r, resp.Error(r, notAuthorized))

			return
		}

		if err := validate.Struct(req); err != nil {
			validateErr := err.(validator.ValidationErrors)

			log.Error("Invalid request", sl.Err(err))

			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.ValidationError(r, validateErr))

			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		if err := users.PasswordResetUpdate(ctx, req.PasswordResetToken, req.Password); err != nil {
			if errors.Is(err, user.ErrInvalidResetToken) {
				render.Status(r, http.StatusForbidden)
				render.JSON(w, r, resp.Error(r, notAuthorized))

				return
			}

			log.Error("failed to update password", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error(r, "Internal server error"))

			return
		}

		log.Info("password updated")

		render.JSON(w, r, Response{Message: "Password updated."})
	}
}
