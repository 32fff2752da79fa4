package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/canteenhub/canteen-backend/pkg/logger"
)

const headerRequestID = "X-Request-Id"

// RequestID tags each request with a correlation id. An inbound
// X-Request-Id from a proxy is reused; otherwise a fresh UUID is minted.
// The id is echoed back on the response and attached to the logger.
func RequestID(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(headerRequestID)
			if id == "" {
				id = uuid.NewString()
			}
			w.Header().Set(headerRequestID, id)

			ctx := r.Context()
			if logg != nil {
				ctx = logg.WithRequestID(ctx, id)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
