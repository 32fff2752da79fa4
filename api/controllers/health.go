package controllers

import (
	"context"
	"net/http"

	"go.uber.org/multierr"

	"github.com/canteenhub/canteen-backend/api/responses"
	"github.com/canteenhub/canteen-backend/pkg/config"
	pkgerrors "github.com/canteenhub/canteen-backend/pkg/errors"
	"github.com/canteenhub/canteen-backend/pkg/logger"
)

type pinger interface {
	Ping(ctx context.Context) error
}

// ReadinessDeps enumerates the dependencies readiness probes must reach.
type ReadinessDeps struct {
	DB       pinger
	Redis    pinger
	Identity pinger
	Blob     pinger
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Canteen-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

func HealthReady(cfg *config.Config, deps ReadinessDeps, logg *logger.Logger) http.HandlerFunc {
	checks := []struct {
		name string
		dep  pinger
	}{
		{"db", deps.DB},
		{"redis", deps.Redis},
		{"identity", deps.Identity},
		{"blob", deps.Blob},
	}

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Canteen-Env", cfg.App.Env)

		var combined error
		statuses := make(map[string]string, len(checks))
		for _, check := range checks {
			if check.dep == nil {
				statuses[check.name] = "skipped"
				continue
			}
			if err := check.dep.Ping(r.Context()); err != nil {
				statuses[check.name] = "down"
				combined = multierr.Append(combined, err)
				continue
			}
			statuses[check.name] = "up"
		}

		if combined != nil {
			if logg != nil {
				logg.Error(r.Context(), "health.ready.failed", combined)
			}
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, combined, "dependencies unavailable"))
			return
		}

		responses.WriteSuccess(w, map[string]any{"status": "ready", "checks": statuses})
	}
}
