package logout

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"pulse-service/pkg/response"
	"pulse-service/pkg/sl"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
)

type SessionDeleter interface {
	Logout(ctx context.Context, token string) error
}

func New(log *slog.Logger, deleter SessionDeleter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.auth.logout.New"

		log = log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			log.Error("no session token on request")
			w.WriteHeader(http.StatusUnauthorized)
			render.JSON(w, r, response.Error(string(response.UNAUTHORIZED), "missing session token"))
			return
		}

		if err := deleter.Logout(r.Context(), strings.TrimSpace(token)); err != nil {
			log.Error("Failed to log out", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error(string(response.FAILED_REQUEST), "failed to log out"))
			return
		}

		log.Info("User logged out")

		render.JSON(w, r, response.Response{})
	}
}
