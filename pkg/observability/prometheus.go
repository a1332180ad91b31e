package observability

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	errs "github.com/matzehuels/loadorder/pkg/errors"
)

// PrometheusHooks implements [SolverHooks], [CacheHooks] and [HTTPHooks]
// with Prometheus collectors.
type PrometheusHooks struct {
	solveTotal      *prometheus.CounterVec
	solveDuration   prometheus.Histogram
	solveModules    prometheus.Histogram
	cacheEvents     *prometheus.CounterVec
	cacheBytes      prometheus.Counter
	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
	httpInFlightOps prometheus.Gauge
}

var (
	_ SolverHooks = (*PrometheusHooks)(nil)
	_ CacheHooks  = (*PrometheusHooks)(nil)
	_ HTTPHooks   = (*PrometheusHooks)(nil)
)

// NewPrometheusHooks creates the collectors and registers them with reg.
// It panics if registration fails, like [prometheus.MustRegister].
func NewPrometheusHooks(reg prometheus.Registerer) *PrometheusHooks {
	h := &PrometheusHooks{
		solveTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "loadorder_solve_total",
				Help: "Number of load-order resolutions by outcome code.",
			},
			[]string{"outcome"},
		),
		solveDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "loadorder_solve_duration_seconds",
				Help:    "Time taken to resolve a load order.",
				Buckets: prometheus.DefBuckets,
			},
		),
		solveModules: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "loadorder_solve_modules",
				Help:    "Number of modules per resolution.",
				Buckets: prometheus.ExponentialBuckets(1, 2, 10),
			},
		),
		cacheEvents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "loadorder_cache_events_total",
				Help: "Plan cache lookups and writes by key type and event.",
			},
			[]string{"key_type", "event"},
		),
		cacheBytes: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "loadorder_cache_written_bytes_total",
				Help: "Bytes written to the plan cache.",
			},
		),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "loadorder_http_requests_total",
				Help: "HTTP API requests by method, route and status.",
			},
			[]string{"method", "route", "status"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "loadorder_http_request_duration_seconds",
				Help:    "HTTP API request latency.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		httpInFlightOps: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "loadorder_http_requests_in_flight",
				Help: "HTTP API requests currently being served.",
			},
		),
	}
	reg.MustRegister(
		h.solveTotal,
		h.solveDuration,
		h.solveModules,
		h.cacheEvents,
		h.cacheBytes,
		h.httpRequests,
		h.httpDuration,
		h.httpInFlightOps,
	)
	return h
}

// OnSolveStart records the module count of a resolution.
func (h *PrometheusHooks) OnSolveStart(_ context.Context, modules int) {
	h.solveModules.Observe(float64(modules))
}

// OnSolveComplete counts the outcome, labelled with the error code or "ok".
func (h *PrometheusHooks) OnSolveComplete(_ context.Context, _ int, duration time.Duration, err error) {
	h.solveDuration.Observe(duration.Seconds())
	h.solveTotal.WithLabelValues(Outcome(err)).Inc()
}

func (h *PrometheusHooks) OnCacheHit(_ context.Context, keyType string) {
	h.cacheEvents.WithLabelValues(keyType, "hit").Inc()
}

func (h *PrometheusHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.cacheEvents.WithLabelValues(keyType, "miss").Inc()
}

func (h *PrometheusHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.cacheEvents.WithLabelValues(keyType, "set").Inc()
	h.cacheBytes.Add(float64(size))
}

func (h *PrometheusHooks) OnRequest(context.Context, string, string) {
	h.httpInFlightOps.Inc()
}

func (h *PrometheusHooks) OnResponse(_ context.Context, method, route string, statusCode int, duration time.Duration) {
	h.httpInFlightOps.Dec()
	h.httpRequests.WithLabelValues(method, route, strconv.Itoa(statusCode)).Inc()
	h.httpDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// Outcome maps a resolution error to a metric label: "ok" for nil, the
// error code when one is present, "error" otherwise.
func Outcome(err error) string {
	if err == nil {
		return "ok"
	}
	if code := errs.GetCode(err); code != "" {
		return string(code)
	}
	return "error"
}
