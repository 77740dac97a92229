package update

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"account_service/internal/authz"
	"account_service/internal/http_server/middleware/authn"
	resp "account_service/internal/lib/api/response"
	sl "account_service/internal/lib/logger"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
)

type Request struct {
	Username string `json:"username" validate:"required"`
}

type Response struct {
	Message string `json:"message"`
}

type UsernameUpdater interface {
	UpdateUsername(ctx context.Context, id int64, username string) error
}

// New handles user updates. The authorization check runs before the body is
// even read: a caller who may not touch the target gets 403 regardless of
// what was sent.
func New(
	log *slog.Logger,
	validate *validator.Validate,
	users UsernameUpdater,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.update.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		targetID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			targetID = 0
		}

		principal, authenticated := authn.UserID(r.Context())

		if err := authz.CanUpdateUser(principal, authenticated, targetID); err != nil {
			log.Warn("unauthorized user update attempt", slog.Int64("target", targetID))

			render.Status(r, http.StatusForbidden)
			render.JSON(w, r, resp.Error(r, "You are not authorized to update user."))

			return
		}

		var req Request

		if err := render.DecodeJSON(r.Body, &req); err != nil {
			log.Error("Failed to decode request body", sl.Err(err))

			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.Error(r, "Failed to decode request"))

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

		if err := users.UpdateUsername(ctx, targetID, req.Username); err != nil {
			log.Error("failed to update user", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error(r, "Internal server error"))

			return
		}

		log.Info("user updated", slog.Int64("uid", targetID))

		render.JSON(w, r, Response{Message: "User updated."})
	}
}
