package logout

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"account_service/internal/http_server/middleware/authn"
	resp "account_service/internal/lib/api/response"
	sl "account_service/internal/lib/logger"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
)

type Response struct {
	Message string `json:"message"`
}

type SessionEnder interface {
	Logout(ctx context.Context, token string) error
}

// New handles logout. The endpoint always answers 200: revoking an unknown or
// already-revoked token is as good as revoking a live one.
func New(
	log *slog.Logger,
	authService SessionEnder,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.logout.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		tok, ok := authn.BearerToken(r)
		if !ok {
			render.JSON(w, r, Response{Message: "Logged out."})

			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		if err := authService.Logout(ctx, tok); err != nil {
			log.Error("failed to logout user", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error(r, "Internal server error"))

			return
		}

		log.Info("user logged out successfully")

		render.JSON(w, r, Response{Message: "Logged out."})
	}
}
