package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/seojin-dev/goboard/internal/logger"
)

const RequestIdKey key = 1

const requestIdHeader = "X-Request-Id"

// RequestId tags every request with an id, honoring one supplied by an
// upstream proxy, and echoes it back in the response headers. Downstream
// handlers that log via logger.FromContext get the id attached automatically.
func RequestId(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIdHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIdHeader, id)
		ctx := context.WithValue(r.Context(), RequestIdKey, id)
		ctx = logger.WithRequestId(ctx, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetRequestId returns the request id set by RequestId, or "" if absent.
func GetRequestId(r *http.Request) string {
	id, ok := r.Context().Value(RequestIdKey).(string)
	if !ok {
		return ""
	}
	return id
}
