package respond_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"pulse-service/api"
	"pulse-service/internal/http-server/handlers/syncs/respond"
	"pulse-service/pkg/middleware/mwAuth"
	"pulse-service/pkg/response"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubResponder struct {
	err  error
	sync *api.SyncResponse
}

func (s *stubResponder) RespondSync(_ context.Context, callerID, id int64, req *api.SyncRespondRequest) (*api.SyncResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.sync != nil {
		return s.sync, nil
	}
	now := time.Date(2024, 11, 4, 10, 20, 0, 0, time.UTC)
	return &api.SyncResponse{
		ID:          id,
		FromUserID:  1,
		ToUserID:    callerID,
		Status:      req.Status,
		MeetingTime: now.Add(30 * time.Minute),
		CreatedAt:   now,
		RespondedAt: &now,
		ExpiresAt:   now.Add(15 * time.Minute),
	}, nil
}

func doRequest(t *testing.T, responder respond.SyncResponder, syncID, body string, userID int64) *httptest.ResponseRecorder {
	t.Helper()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	router := chi.NewRouter()
	router.Put("/syncs/{id}/respond", respond.New(log, responder))

	url := fmt.Sprintf("/syncs/%s/respond", syncID)
	req, err := http.NewRequest(http.MethodPut, url, bytes.NewReader([]byte(body)))
	require.NoError(t, err)

	if userID != 0 {
		req = req.WithContext(mwAuth.ContextWithUserID(req.Context(), userID))
	}

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	return rr
}

func TestRespondOK(t *testing.T) {
	rr := doRequest(t, &stubResponder{}, "42", `{"status": "accepted"}`, 2)

	require.Equal(t, http.StatusOK, rr.Code)

	var resp respond.Response
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.NotNil(t, resp.Sync)
	assert.Equal(t, int64(42), resp.Sync.ID)
	assert.Equal(t, "accepted", resp.Sync.Status)
	assert.Equal(t, int64(2), resp.Sync.ToUserID)
}

func TestRespondNoSession(t *testing.T) {
	rr := doRequest(t, &stubResponder{}, "42", `{"status": "accepted"}`, 0)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestRespondBadID(t *testing.T) {
	rr := doRequest(t, &stubResponder{}, "forty-two", `{"status": "accepted"}`, 2)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestRespondBadBody(t *testing.T) {
	rr := doRequest(t, &stubResponder{}, "42", `{"status":`, 2)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestRespondErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantErr  string
	}{
		{"locked", response.ErrLocked, http.StatusLocked, string(response.LOCKED)},
		{"not found", response.ErrNotFound, http.StatusNotFound, string(response.NOT_FOUND)},
		{"expired", response.ErrSyncExpired, http.StatusConflict, string(response.SYNC_EXPIRED)},
		{"already answered", response.ErrConflict, http.StatusConflict, string(response.CONFLICT)},
		{"bad status", response.ErrBadRequest, http.StatusBadRequest, string(response.BAD_REQUEST)},
		{"internal", io.ErrUnexpectedEOF, http.StatusInternalServerError, string(response.FAILED_REQUEST)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := doRequest(t, &stubResponder{err: fmt.Errorf("respond: %w", tt.err)}, "42", `{"status": "accepted"}`, 2)

			assert.Equal(t, tt.wantCode, rr.Code)

			var resp response.Response
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantErr, resp.Code)
		})
	}
}
