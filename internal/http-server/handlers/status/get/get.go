package get

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"pulse-service/api"
	"pulse-service/pkg/response"
	"pulse-service/pkg/sl"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
)

type StatusGetter interface {
	GetStatus(ctx context.Context, userID int64) (*api.StatusResponse, error)
}

type Response struct {
	response.Response
	Status *api.StatusResponse `json:"status,omitempty"`
}

func New(log *slog.Logger, getter StatusGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.status.get.New"

		log = log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		userIDStr := r.URL.Query().Get("user_id")
		if userIDStr == "" {
			log.Error("user_id is empty")
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "user_id is required"))
			return
		}

		userID, err := strconv.ParseInt(userIDStr, 10, 64)
		if err != nil {
			log.Error("invalid user_id", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "invalid user_id"))
			return
		}

		status, err := getter.GetStatus(r.Context(), userID)

		if errors.Is(err, response.ErrNotFound) {
			log.Error("status not found")
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error(string(response.NOT_FOUND), "resource not found"))
			return
		}

		if err != nil {
			log.Error("Failed to get status", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error(string(response.FAILED_REQUEST), "failed to get status"))
			return
		}

		render.JSON(w, r, Response{
			Status: status,
		})
	}
}
