package set

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"pulse-service/api"
	"pulse-service/pkg/middleware/mwAuth"
	"pulse-service/pkg/response"
	"pulse-service/pkg/sl"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
)

type StatusSetter interface {
	SetStatus(ctx context.Context, userID int64, req *api.StatusUpdateRequest) (*api.StatusResponse, error)
}

type Request struct {
	api.StatusUpdateRequest
}

type Response struct {
	response.Response
	Status *api.StatusResponse `json:"status,omitempty"`
}

func New(log *slog.Logger, setter StatusSetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.status.set.New"

		log = log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		userID, ok := mwAuth.UserID(r.Context())
		if !ok {
			log.Error("no session user on context")
			w.WriteHeader(http.StatusUnauthorized)
			render.JSON(w, r, response.Error(string(response.UNAUTHORIZED), "unauthorized"))
			return
		}

		var req Request

		if err := render.DecodeJSON(r.Body, &req); err != nil {
			log.Error("Failed to decode request body", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "failed to decode request"))
			return
		}

		log.Info("Request body decoded", slog.Any("request", req))

		status, err := setter.SetStatus(r.Context(), userID, &req.StatusUpdateRequest)

		if errors.Is(err, response.ErrBadRequest) {
			log.Error("invalid status update", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "invalid status update"))
			return
		}

		if err != nil {
			log.Error("Failed to set status", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error(string(response.FAILED_REQUEST), "failed to set status"))
			return
		}

		log.Info("Status updated", slog.Int64("user_id", userID), slog.String("status", status.Status))

		render.JSON(w, r, Response{
			Status: status,
		})
	}
}
