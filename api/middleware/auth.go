package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/canteenhub/canteen-backend/api/responses"
	"github.com/canteenhub/canteen-backend/pkg/config"
	pkgerrors "github.com/canteenhub/canteen-backend/pkg/errors"
	"github.com/canteenhub/canteen-backend/pkg/identity"
	"github.com/canteenhub/canteen-backend/pkg/logger"
)

// Auth validates a bearer session token and seeds the request context with
// the caller's identity id.
func Auth(cfg config.IdentityConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get("Authorization"))
			if raw == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			token := raw
			if strings.HasPrefix(strings.ToLower(token), "bearer ") {
				token = strings.TrimSpace(token[7:])
			}
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			identityID, err := identity.VerifySessionToken(cfg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}

			ctx := context.WithValue(r.Context(), ctxIdentityID, identityID)
			if logg != nil {
				ctx = logg.WithIdentityID(ctx, identityID)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
