package controllers

import (
	"net/http"

	"github.com/canteenhub/canteen-backend/api/middleware"
	"github.com/canteenhub/canteen-backend/api/responses"
	sessionsvc "github.com/canteenhub/canteen-backend/internal/session"
	pkgerrors "github.com/canteenhub/canteen-backend/pkg/errors"
	"github.com/canteenhub/canteen-backend/pkg/logger"
)

// ResolveSession ensures the caller has a local account and returns it.
func ResolveSession(svc sessionsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "session service unavailable"))
			return
		}

		resolved, err := svc.Resolve(r.Context(), middleware.IdentityIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, resolved)
	}
}

// SessionProfile returns the caller's account joined with identity profile data.
func SessionProfile(svc sessionsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "session service unavailable"))
			return
		}

		profile, err := svc.Profile(r.Context(), middleware.IdentityIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, profile)
	}
}
