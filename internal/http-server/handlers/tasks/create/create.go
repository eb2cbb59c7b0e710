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

type TaskCreator interface {
	CreateTask(ctx context.Context, callerID int64, req *api.TaskCreateRequest) (*api.TaskResponse, error)
}

type Request struct {
	api.TaskCreateRequest
}

type Response struct {
	response.Response
	Task *api.TaskResponse `json:"task,omitempty"`
}

func New(log *slog.Logger, creator TaskCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.tasks.create.New"

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

		if req.Title == "" {
			log.Error("title is empty")
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "title is required"))
			return
		}

		task, err := creator.CreateTask(r.Context(), userID, &req.TaskCreateRequest)

		if errors.Is(err, response.ErrBadRequest) {
			log.Error("invalid task request", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "invalid task request"))
			return
		}

		if err != nil {
			log.Error("Failed to create task", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error(string(response.FAILED_REQUEST), "failed to create task"))
			return
		}

		log.Info("Task created", slog.Int64("task_id", task.ID))

		w.WriteHeader(http.StatusCreated)
		render.JSON(w, r, Response{
			Task: task,
		})
	}
}
