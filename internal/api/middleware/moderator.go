package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
)

const moderatorIDKey contextKey = "moderator_id"

// ModeratorIdentity extracts the acting moderator from the X-Moderator-ID
// header set by the authenticating gateway. Role and capability checks
// happen upstream; by the time a request reaches this service the header
// is the already-vetted principal. Requests without it are rejected.
func ModeratorIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(r.Header.Get("X-Moderator-ID"), 10, 64)
		if err != nil || id <= 0 {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "missing or invalid X-Moderator-ID header"})
			return
		}
		ctx := context.WithValue(r.Context(), moderatorIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetModeratorID retrieves the moderator ID stored by the middleware.
// Returns 0 if the middleware was not applied.
func GetModeratorID(ctx context.Context) int64 {
	v, _ := ctx.Value(moderatorIDKey).(int64)
	return v
}
