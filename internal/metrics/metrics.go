// Package metrics holds the service's Prometheus collectors on a private registry.
package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	decisions           *prometheus.CounterVec
	tripTransitions     *prometheus.CounterVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fleet_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fleet_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		decisions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "booking_decisions_total",
				Help: "Approval decisions by action and outcome",
			},
			[]string{"action", "outcome"},
		),
		tripTransitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "trip_transitions_total",
				Help: "Driver trip transitions by action and outcome",
			},
			[]string{"action", "outcome"},
		),
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.decisions,
		m.tripTransitions,
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveDecision counts one approve/deny outcome, e.g. ("approve", "ok") or ("deny", "past_date").
func (m *Metrics) ObserveDecision(action, outcome string) {
	m.decisions.WithLabelValues(action, outcome).Inc()
}

func (m *Metrics) ObserveTrip(action, outcome string) {
	m.tripTransitions.WithLabelValues(action, outcome).Inc()
}

func shouldSkip(path string) bool {
	for _, skip := range []string{"/metrics", "/healthz"} {
		if strings.HasPrefix(path, skip) {
			return true
		}
	}
	return false
}

// unmatchedRoute is the route label for requests no route matched.
const unmatchedRoute = "unmatched"

// Middleware records request count and latency labelled by chi route pattern.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if shouldSkip(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := unmatchedRoute
		if rc := chi.RouteContext(r.Context()); rc != nil {
			if p := rc.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		m.httpRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		m.httpRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
