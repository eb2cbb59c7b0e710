package respond

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"pulse-service/api"
	"pulse-service/pkg/middleware/mwAuth"
	"pulse-service/pkg/response"
	"pulse-service/pkg/sl"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

type SyncResponder interface {
	RespondSync(ctx context.Context, callerID, id int64, req *api.SyncRespondRequest) (*api.SyncResponse, error)
}

type Request struct {
	api.SyncRespondRequest
}

type Response struct {
	response.Response
	Sync *api.SyncResponse `json:"sync,omitempty"`
}

func New(log *slog.Logger, responder SyncResponder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.syncs.respond.New"

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

		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			log.Error("invalid sync id", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "invalid sync id"))
			return
		}

		var req Request

		if err := render.DecodeJSON(r.Body, &req); err != nil {
			log.Error("Failed to decode request body", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "failed to decode request"))
			return
		}

		sync, err := responder.RespondSync(r.Context(), userID, id, &req.SyncRespondRequest)

		if errors.Is(err, response.ErrLocked) {
			log.Error("sync request is locked")
			w.WriteHeader(http.StatusLocked)
			render.JSON(w, r, response.Error(string(response.LOCKED), "resource is locked"))
			return
		}

		if errors.Is(err, response.ErrNotFound) {
			log.Error("sync request not found")
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error(string(response.NOT_FOUND), "resource not found"))
			return
		}

		if errors.Is(err, response.ErrSyncExpired) {
			log.Error("sync request expired")
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error(string(response.SYNC_EXPIRED), "sync request expired"))
			return
		}

		if errors.Is(err, response.ErrConflict) {
			log.Error("sync request already answered")
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error(string(response.CONFLICT), "sync request already answered"))
			return
		}

		if errors.Is(err, response.ErrBadRequest) {
			log.Error("invalid respond request", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "status must be accepted or declined"))
			return
		}

		if err != nil {
			log.Error("Failed to respond to sync request", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error(string(response.FAILED_REQUEST), "failed to respond to sync request"))
			return
		}

		log.Info("Sync request answered", slog.Int64("sync_id", sync.ID), slog.String("status", sync.Status))

		render.JSON(w, r, Response{
			Sync: sync,
		})
	}
}
