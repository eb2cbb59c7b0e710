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

type TaskLister interface {
	ListTasks(ctx context.Context, callerID int64) ([]*api.TaskResponse, error)
}

type Response struct {
	response.Response
	Tasks []api.TaskResponse `json:"tasks"`
}

func New(log *slog.Logger, lister TaskLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.tasks.get.New"

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

		tasks, err := lister.ListTasks(r.Context(), userID)
		if err != nil {
			log.Error("Failed to list tasks", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error(string(response.FAILED_REQUEST), "failed to list tasks"))
			return
		}

		log.Info("Tasks retrieved", slog.Int("count", len(tasks)))

		result := make([]api.TaskResponse, len(tasks))
		for i, task := range tasks {
			result[i] = *task
		}

		render.JSON(w, r, Response{
			Tasks: result,
		})
	}
}
