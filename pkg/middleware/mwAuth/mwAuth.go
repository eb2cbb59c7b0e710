package mwAuth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"pulse-service/pkg/response"
	"pulse-service/pkg/sl"

	"github.com/go-chi/render"
)

type ctxKey string

const userIDKey ctxKey = "user_id"

type SessionValidator interface {
	ValidateSession(ctx context.Context, token string) (int64, error)
}

// New returns a middleware that resolves the bearer token into a user id and
// stores it on the request context. Requests without a valid session get 401.
func New(log *slog.Logger, validator SessionValidator) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			token := extractToken(r)
			if token == "" {
				w.WriteHeader(http.StatusUnauthorized)
				render.JSON(w, r, response.Error(string(response.UNAUTHORIZED), "missing session token"))
				return
			}

			userID, err := validator.ValidateSession(r.Context(), token)
			if err != nil {
				if !errors.Is(err, response.ErrUnauthorized) {
					log.Error("Session validation failed", sl.Err(err))
				}
				w.WriteHeader(http.StatusUnauthorized)
				render.JSON(w, r, response.Error(string(response.UNAUTHORIZED), "invalid session token"))
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		}

		return http.HandlerFunc(fn)
	}
}

func extractToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if after, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(after)
	}

	return ""
}

// UserID returns the authenticated user id stored by the middleware.
func UserID(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(userIDKey).(int64)
	return id, ok
}

// ContextWithUserID is a test helper for handlers that read the session user.
func ContextWithUserID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, userIDKey, id)
}
