package login

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

type SessionCreator interface {
	Login(ctx context.Context, req *api.LoginRequest) (*api.LoginResponse, error)
}

type Request struct {
	api.LoginRequest
}

type Response struct {
	response.Response
	*api.LoginResponse
}

func New(log *slog.Logger, creator SessionCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.auth.login.New"

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

		if req.Email == "" || req.Password == "" {
			log.Error("missing credentials")
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "email and password are required"))
			return
		}

		session, err := creator.Login(r.Context(), &req.LoginRequest)

		if errors.Is(err, response.ErrUnauthorized) {
			log.Error("invalid credentials")
			w.WriteHeader(http.StatusUnauthorized)
			render.JSON(w, r, response.Error(string(response.UNAUTHORIZED), "invalid credentials"))
			return
		}

		if err != nil {
			log.Error("Failed to log in", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error(string(response.FAILED_REQUEST), "failed to log in"))
			return
		}

		log.Info("User logged in", slog.Int64("user_id", session.User.ID))

		render.JSON(w, r, Response{
			LoginResponse: session,
		})
	}
}
