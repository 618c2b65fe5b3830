package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/iump/fruittree-backend/api/responses"
	"github.com/iump/fruittree-backend/pkg/config"
	pkgerrors "github.com/iump/fruittree-backend/pkg/errors"
	"github.com/iump/fruittree-backend/pkg/logger"
)

const readinessTimeout = 2 * time.Second

// Pinger is any dependency the readiness probe checks.
type Pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-FruitTree-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings the database and redis. Nil dependencies are skipped.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbP, redisP Pinger) http.HandlerFunc {
	checks := []struct {
		name string
		dep  Pinger
	}{
		{"database", dbP},
		{"redis", redisP},
	}
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-FruitTree-Env", cfg.App.Env)
		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		for _, c := range checks {
			if c.dep == nil {
				continue
			}
			if err := c.dep.Ping(ctx); err != nil {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.Wrap(pkgerrors.CodeDependency, err, c.name+" unavailable").
						WithDetails(map[string]any{"check": c.name}))
				return
			}
		}
		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
