package deleteuser

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
)

type Response struct {
	Message string `json:"message"`
}

type UserDeleter interface {
	Delete(ctx context.Context, id int64) error
}

// New handles account self-deletion. Deleting the user also removes every
// session token it owns.
func New(
	log *slog.Logger,
	users UserDeleter,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.deleteuser.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		targetID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			targetID = 0
		}

		principal, authenticated := authn.UserID(r.Context())

		if err := authz.CanDeleteUser(principal, authenticated, targetID); err != nil {
			log.Warn("unauthorized user delete attempt", slog.Int64("target", targetID))

			render.Status(r, http.StatusForbidden)
			render.JSON(w, r, resp.Error(r, "You are not authorized to delete user."))

			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		if err := users.Delete(ctx, targetID); err != nil {
			log.Error("failed to delete user", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error(r, "Internal server error"))

			return
		}

		log.Info("user deleted", slog.Int64("uid", targetID))

		render.JSON(w, r, Response{Message: "User deleted."})
	}
}
