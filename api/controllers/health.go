package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/mtaanigas/fulfillment-backend/api/responses"
	"github.com/mtaanigas/fulfillment-backend/pkg/config"
	pkgerrors "github.com/mtaanigas/fulfillment-backend/pkg/errors"
	"github.com/mtaanigas/fulfillment-backend/pkg/logger"
)

const readinessTimeout = 2 * time.Second

// Pinger is a dependency that can report its reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Mtaani-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings the database and Redis; any failure answers 500.
func HealthReady(cfg *config.Config, logg *logger.Logger, db Pinger, cache Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Mtaani-Env", cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		checks := []struct {
			name   string
			pinger Pinger
		}{
			{"database", db},
			{"redis", cache},
		}
		for _, check := range checks {
			if check.pinger == nil {
				continue
			}
			if err := check.pinger.Ping(ctx); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, check.name+" unavailable"))
				return
			}
		}

		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
