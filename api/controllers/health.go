package controllers

import (
	"context"
	"net/http"

	"github.com/simkidd/dwec-winery-storefront/api/responses"
	"github.com/simkidd/dwec-winery-storefront/pkg/config"
	pkgerrors "github.com/simkidd/dwec-winery-storefront/pkg/errors"
	"github.com/simkidd/dwec-winery-storefront/pkg/logger"
)

const envHeader = "X-DWEC-Env"

// Pinger is anything that can report liveness of a dependency.
type Pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady verifies the storefront's dependencies respond. Nil pingers
// are skipped, which is how optional dependencies opt out.
func HealthReady(cfg *config.Config, logg *logger.Logger, pingers map[string]Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)

		for name, pinger := range pingers {
			if pinger == nil {
				continue
			}
			if err := pinger.Ping(r.Context()); err != nil {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.Wrap(pkgerrors.CodeDependency, err, name+" unavailable"))
				return
			}
		}
		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
