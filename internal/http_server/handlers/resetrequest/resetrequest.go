package resetrequest

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

type Request struct {
	Email string `json:"email" validate:"required,email"`
}

type Response struct {
	Message string `json:"message"`
}

type ResetRequester interface {
	PasswordResetRequest(ctx context.Context, email string) error
}

func New(
	log *slog.Logger,
	validate *validator.Validate,
	users ResetRequester,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.resetrequest.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req Request

		err := render.DecodeJSON(r.Body, &req)
		if err != nil {
			log.Error("Failed to decode request body", sl.Err(err))

			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.Error(r, "Failed to decode request"))

			return
		}

		log.Info("Request body decoded")

		if err := validate.Struct(req); err != nil {
			validateErr := err.(validator.ValidationErrors)

			log.Error("Invalid request", sl.Err(err))

			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.ValidationError(r, validateErr))

			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		if err := users.PasswordResetRequest(ctx, req.Email); err != nil {
			if errors.Is(err, user.ErrEmailNotFound) {
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, resp.Error(r, "E-mail not found."))

				return
			}
			if errors.Is(err, user.ErrEmailDelivery) {
				render.Status(r, http.StatusBadGateway)
				render.JSON(w, r, resp.Error(r, "E-mail failure."))

				return
			}

			log.Error("failed to request password reset", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error(r, "Internal server error"))

			return
		}

		log.Info("password reset requested")

		render.JSON(w, r, Response{Message: "Check your e-mail for resetting your password."})
	}
}
