package list

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"account_service/internal/http_server/middleware/authn"
	resp "account_service/internal/lib/api/response"
	sl "account_service/internal/lib/logger"
	"account_service/internal/user"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
)

const (
	defaultPage = 0
	defaultSize = 10
	// The deployment treats 10 as both the default and the maximum page
	// size: anything outside (0, 10] falls back to 10.
	maxSize = 10
)

type UserLister interface {
	Users(ctx context.Context, page, size int, principal int64) (user.Page, error)
}

// New handles the paginated user listing. Listing requires no principal, but
// when one is present that user is excluded from the results and the count.
func New(
	log *slog.Logger,
	users UserLister,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.list.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		page := parsePage(r.URL.Query().Get("page"))
		size := parseSize(r.URL.Query().Get("size"))

		principal, _ := authn.UserID(r.Context())

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		result, err := users.Users(ctx, page, size, principal)
		if err != nil {
			log.Error("failed to list users", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error(r, "Internal server error"))

			return
		}

		render.JSON(w, r, result)
	}
}

func parsePage(raw string) int {
	page, err := strconv.Atoi(raw)
	if err != nil || page < 0 {
		return defaultPage
	}

	return page
}

func parseSize(raw string) int {
	size, err := strconv.Atoi(raw)
	if err != nil || size <= 0 || size > maxSize {
		return defaultSize
	}

	return size
}
