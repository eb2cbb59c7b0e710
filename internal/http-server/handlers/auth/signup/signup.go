package signup

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"pulse-service/api"
	"pulse-service/pkg/response"
	"pulse-service/pkg/sl"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
)

type UserCreator interface {
	Signup(ctx context.Context, req *api.SignupRequest) (*api.UserResponse, error)
}

type Request struct {
	api.SignupRequest
}

type Response struct {
	response.Response
	User *api.UserResponse `json:"user,omitempty"`
}

func New(log *slog.Logger, creator UserCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.auth.signup.New"

		log = log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req Request

		if err := render.DecodeJSON(r.Body, &req); err != nil {
			log.Error("Failed to decode request body", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "failed to decode request"))
			return
		}

		if req.Email == "" {
			log.Error("email is empty")
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "email is required"))
			return
		}

		if req.Password == "" {
			log.Error("password is empty")
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "password is required"))
			return
		}

		user, err := creator.Signup(r.Context(), &req.SignupRequest)

		if errors.Is(err, response.ErrConflict) {
			log.Error("email already registered")
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error(string(response.CONFLICT), "email already registered"))
			return
		}

		if errors.Is(err, response.ErrBadRequest) {
			log.Error("invalid signup request", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "invalid signup request"))
			return
		}

		if err != nil {
			log.Error("Failed to sign up user", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error(string(response.FAILED_REQUEST), "failed to sign up"))
			return
		}

		log.Info("User signed up", slog.Int64("user_id", user.ID))

		w.WriteHeader(http.StatusCreated)
		render.JSON(w, r, Response{
			User: user,
		})
	}
}
