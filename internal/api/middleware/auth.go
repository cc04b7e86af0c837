package middleware

import (
	"context"
	"net/http"
	"strconv"

	"github.com/bookedbarber/booking-service/internal/api/handlers"
)

type contextKey string

// UserIDKey carries the authenticated user ID through the request context.
const UserIDKey contextKey = "userID"

// HeaderUserID is set by the API gateway after token validation.
const HeaderUserID = "X-User-ID"

// Auth requires a positive integer X-User-ID header and stores it in the
// request context.
func Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := r.Header.Get(HeaderUserID)
		if raw == "" {
			handlers.RespondUnauthorized(w, "missing "+HeaderUserID+" header")
			return
		}

		userID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || userID <= 0 {
			handlers.RespondUnauthorized(w, "invalid "+HeaderUserID+" header")
			return
		}

		ctx := context.WithValue(r.Context(), UserIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// UserIDFromContext returns the authenticated user ID, if any.
func UserIDFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(UserIDKey).(int64)
	return id, ok
}
