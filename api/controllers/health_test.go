package controllers

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/sony/gobreaker/v2"

	"github.com/florista/bouquet-bff/internal/backend"
	"github.com/florista/bouquet-bff/pkg/config"
	pkgerrors "github.com/florista/bouquet-bff/pkg/errors"
)

type stubPinger struct{ err error }

func (s stubPinger) Ping(context.Context) error { return s.err }

type stubBreakers map[backend.Service]gobreaker.State

func (s stubBreakers) BreakerStates() map[backend.Service]gobreaker.State { return s }

func TestHealthReady(t *testing.T) {
	cfg := &config.Config{App: config.AppConfig{Env: "test"}}
	closed := stubBreakers{backend.ServiceAuth: gobreaker.StateClosed, backend.ServiceOrder: gobreaker.StateHalfOpen}
	open := stubBreakers{backend.ServiceAuth: gobreaker.StateClosed, backend.ServicePayment: gobreaker.StateOpen}

	tests := []struct {
		name     string
		pinger   stubPinger
		breakers stubBreakers
		want     int
	}{
		{"all healthy", stubPinger{}, closed, http.StatusOK},
		{"redis down", stubPinger{err: errors.New("connection refused")}, closed, http.StatusServiceUnavailable},
		{"breaker open", stubPinger{}, open, http.StatusServiceUnavailable},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := serve(t, HealthReady(cfg, testLogger(), tc.pinger, tc.breakers), request{method: http.MethodGet, target: "/health/ready"})
			if rec.Code != tc.want {
				t.Fatalf("expected %d got %d body=%s", tc.want, rec.Code, rec.Body.String())
			}
			if tc.want == http.StatusOK {
				return
			}
			apiErr := decodeError(t, rec)
			if apiErr.Code != string(pkgerrors.CodeDependency) {
				t.Fatalf("expected dependency code got %s", apiErr.Code)
			}
			details, ok := apiErr.Details.(map[string]any)
			if !ok {
				t.Fatalf("expected readiness details, got %+v", apiErr.Details)
			}
			if _, ok := details["failures"]; !ok {
				t.Fatalf("expected failures in details")
			}
		})
	}
}

func TestHealthReadyWithoutRedis(t *testing.T) {
	cfg := &config.Config{App: config.AppConfig{Env: "test"}}
	rec := serve(t, HealthReady(cfg, testLogger(), nil, nil), request{method: http.MethodGet, target: "/health/ready"})
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 got %d", rec.Code)
	}
}
