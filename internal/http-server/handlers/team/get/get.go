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

type TeamGetter interface {
	Team(ctx context.Context, callerID int64) ([]*api.TeamMemberResponse, error)
}

type Response struct {
	response.Response
	Members []api.TeamMemberResponse `json:"members"`
}

func New(log *slog.Logger, getter TeamGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.team.get.New"

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

		members, err := getter.Team(r.Context(), userID)
		if err != nil {
			log.Error("Failed to get team", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error(string(response.FAILED_REQUEST), "failed to get team"))
			return
		}

		result := make([]api.TeamMemberResponse, len(members))
		for i, member := range members {
			result[i] = *member
		}

		render.JSON(w, r, Response{
			Members: result,
		})
	}
}
