package create

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

type SyncCreator interface {
	CreateSync(ctx context.Context, callerID int64, req *api.SyncCreateRequest) (*api.SyncResponse, error)
}

type Request struct {
	api.SyncCreateRequest
}

type Response struct {
	response.Response
	Sync *api.SyncResponse `json:"sync,omitempty"`
}

func New(log *slog.Logger, creator SyncCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.syncs.create.New"

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

		if req.ToUserID == 0 {
			log.Error("to_user_id is empty")
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "to_user_id is required"))
			return
		}

		if req.MeetingTime == "" {
			log.Error("meeting_time is empty")
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "meeting_time is required"))
			return
		}

		sync, err := creator.CreateSync(r.Context(), userID, &req.SyncCreateRequest)

		if errors.Is(err, response.ErrNotFound) {
			log.Error("target user not found")
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error(string(response.NOT_FOUND), "resource not found"))
			return
		}

		if errors.Is(err, response.ErrBadRequest) {
			log.Error("invalid sync request", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "invalid sync request"))
			return
		}

		if err != nil {
			log.Error("Failed to create sync request", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error(string(response.FAILED_REQUEST), "failed to create sync request"))
			return
		}

		log.Info("Sync request created", slog.Int64("sync_id", sync.ID))

		w.WriteHeader(http.StatusCreated)
		render.JSON(w, r, Response{
			Sync: sync,
		})
	}
}
