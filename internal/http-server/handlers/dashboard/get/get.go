package get

import (
	"context"
	"log/slog"
	"net/http"

	"pulse-service/api"
	"pulse-service/internal/dashboard"
	"pulse-service/internal/issues"
	"pulse-service/pkg/response"
	"pulse-service/pkg/sl"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
)

type SnapshotProvider interface {
	Latest() dashboard.Snapshot
}

type IssueLister interface {
	List(ctx context.Context) ([]issues.Issue, error)
}

type StatusLister interface {
	Statuses(ctx context.Context) ([]*api.StatusResponse, error)
}

type Response struct {
	response.Response
	Snapshot dashboard.Snapshot   `json:"snapshot"`
	Statuses []api.StatusResponse `json:"statuses"`
	Issues   []issues.Issue       `json:"issues,omitempty"`
}

// New serves the read-only dashboard: the current coordination snapshot,
// both founders' published statuses and the cached issue panel. Side-panel
// failures degrade to an empty panel, never a failed page.
func New(log *slog.Logger, snapshots SnapshotProvider, issueLister IssueLister, statusLister StatusLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.dashboard.get.New"

		log = log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		resp := Response{
			Snapshot: snapshots.Latest(),
		}

		statuses, err := statusLister.Statuses(r.Context())
		if err != nil {
			log.Error("Failed to list statuses", sl.Err(err))
		} else {
			resp.Statuses = make([]api.StatusResponse, len(statuses))
			for i, status := range statuses {
				resp.Statuses[i] = *status
			}
		}

		issueList, err := issueLister.List(r.Context())
		if err != nil {
			log.Error("Failed to list issues", sl.Err(err))
		} else {
			resp.Issues = issueList
		}

		render.JSON(w, r, resp)
	}
}
