package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// UpstreamMetrics records calls from the BFF to backend services.
type UpstreamMetrics struct {
	duration *prometheus.HistogramVec
	failures *prometheus.CounterVec
	fallover *prometheus.CounterVec
	breaker  *prometheus.GaugeVec
}

// NewUpstreamMetrics registers the upstream metrics on the provided registerer.
// A nil registerer yields a no-op recorder.
func NewUpstreamMetrics(reg prometheus.Registerer) *UpstreamMetrics {
	if reg == nil {
		return &UpstreamMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "upstream_request_duration_seconds",
		Help:    "Duration of backend requests in seconds, including candidate fallover.",
		Buckets: prometheus.DefBuckets,
	}, []string{"service", "outcome"})
	failures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "upstream_request_failures_total",
		Help: "Backend requests that ended in an error.",
	}, []string{"service", "code"})
	fallover := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "upstream_candidate_fallover_total",
		Help: "Times a request moved on to the next candidate base URL.",
	}, []string{"service"})
	breaker := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "upstream_breaker_state",
		Help: "Circuit breaker state per service (0 closed, 1 half-open, 2 open).",
	}, []string{"service"})
	reg.MustRegister(duration, failures, fallover, breaker)
	return &UpstreamMetrics{
		duration: duration,
		failures: failures,
		fallover: fallover,
		breaker:  breaker,
	}
}

// ObserveDuration records the duration of one logical backend call.
func (u *UpstreamMetrics) ObserveDuration(service, outcome string, duration time.Duration) {
	if u == nil || u.duration == nil {
		return
	}
	u.duration.WithLabelValues(normalizeLabel(service), normalizeLabel(outcome)).Observe(duration.Seconds())
}

// IncFailure counts a failed backend call by error code.
func (u *UpstreamMetrics) IncFailure(service, code string) {
	if u == nil || u.failures == nil {
		return
	}
	u.failures.WithLabelValues(normalizeLabel(service), normalizeLabel(code)).Inc()
}

// IncFallover counts a move to the next candidate URL.
func (u *UpstreamMetrics) IncFallover(service string) {
	if u == nil || u.fallover == nil {
		return
	}
	u.fallover.WithLabelValues(normalizeLabel(service)).Inc()
}

// SetBreakerState publishes the numeric breaker state.
func (u *UpstreamMetrics) SetBreakerState(service string, state int) {
	if u == nil || u.breaker == nil {
		return
	}
	u.breaker.WithLabelValues(normalizeLabel(service)).Set(float64(state))
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
