package controllers

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.uber.org/multierr"

	"github.com/florista/bouquet-bff/api/responses"
	"github.com/florista/bouquet-bff/internal/backend"
	"github.com/florista/bouquet-bff/pkg/config"
	pkgerrors "github.com/florista/bouquet-bff/pkg/errors"
	"github.com/florista/bouquet-bff/pkg/logger"
	"github.com/florista/bouquet-bff/pkg/redis"
)

const readinessTimeout = 2 * time.Second

type breakerReporter interface {
	BreakerStates() map[backend.Service]gobreaker.State
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Bouquet-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady reports ready only when Redis answers and no upstream breaker
// is open.
func HealthReady(cfg *config.Config, logg *logger.Logger, redisClient redis.Pinger, breakers breakerReporter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Bouquet-Env", cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		checks := map[string]string{}
		var err error

		if redisClient == nil {
			err = multierr.Append(err, fmt.Errorf("redis: not configured"))
			checks["redis"] = "missing"
		} else if pingErr := redisClient.Ping(ctx); pingErr != nil {
			err = multierr.Append(err, fmt.Errorf("redis: %w", pingErr))
			checks["redis"] = "down"
		} else {
			checks["redis"] = "ok"
		}

		if breakers != nil {
			states := breakers.BreakerStates()
			services := make([]string, 0, len(states))
			for svc := range states {
				services = append(services, string(svc))
			}
			sort.Strings(services)
			for _, svc := range services {
				state := states[backend.Service(svc)]
				checks["backend."+svc] = state.String()
				if state == gobreaker.StateOpen {
					err = multierr.Append(err, fmt.Errorf("backend %s: circuit open", svc))
				}
			}
		}

		if err != nil {
			failures := make([]string, 0)
			for _, e := range multierr.Errors(err) {
				failures = append(failures, e.Error())
			}
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "not ready").
				WithDetails(map[string]any{"checks": checks, "failures": failures}))
			return
		}

		responses.WriteSuccess(w, map[string]any{"status": "ready", "checks": checks})
	}
}
