package get

import (
	"context"
	"log/slog"
	"net/http"

	"pulse-service/api"
	"pulse-service/pkg/middleware/mwAuth"
	"pulse-service/pkg/response"
	"pulse-service/pkg/sl"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
)

type SyncLister interface {
	PendingSyncs(ctx context.Context, callerID int64) ([]*api.SyncResponse, error)
}

type Response struct {
	response.Response
	Syncs []api.SyncResponse `json:"syncs"`
}

func New(log *slog.Logger, lister SyncLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.syncs.get.New"

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

		syncs, err := lister.PendingSyncs(r.Context(), userID)
		if err != nil {
			log.Error("Failed to list sync requests", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error(string(response.FAILED_REQUEST), "failed to list sync requests"))
			return
		}

		log.Info("Sync requests retrieved", slog.Int("count", len(syncs)))

		result := make([]api.SyncResponse, len(syncs))
		for i, sync := range syncs {
			result[i] = *sync
		}

		render.JSON(w, r, Response{
			Syncs: result,
		})
	}
}
