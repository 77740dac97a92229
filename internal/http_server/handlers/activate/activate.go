package activate

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	resp "account_service/internal/lib/api/response"
	sl "account_service/internal/lib/logger"
	"account_service/internal/user"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
)

type Response struct {
	Message string `json:"message"`
}

type AccountActivator interface {
	Activate(ctx context.Context, token string) error
}

func New(
	log *slog.Logger,
	users AccountActivator,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.activate.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		token := chi.URLParam(r, "token")

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		if err := users.Activate(ctx, token); err != nil {
			if errors.Is(err, user.ErrInvalidActivationToken) {
				log.Warn("invalid activation token")

				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, resp.Error(r, "This account is either active or the token is invalid."))

				return
			}

			log.Error("failed to activate account", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error(r, "Internal server error"))

			return
		}

		log.Info("account activated")

		render.JSON(w, r, Response{Message: "Account is activated."})
	}
}
