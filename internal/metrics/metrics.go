// Package metrics holds the Prometheus collectors exposed on /metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	LeadsSaved = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "laura",
		Name:      "leads_saved_total",
		Help:      "Lead requests persisted from the booking wizard.",
	})

	LeadStoreErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "laura",
		Name:      "lead_store_errors_total",
		Help:      "Lead store operations that failed, by operation.",
	}, []string{"op"})

	LeadForwardFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "laura",
		Name:      "lead_forward_failures_total",
		Help:      "Best-effort lead forwards that failed, by forwarder.",
	}, []string{"forwarder"})

	WizardTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "laura",
		Name:      "wizard_transitions_total",
		Help:      "Wizard step transitions, by action and outcome.",
	}, []string{"action", "outcome"})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "laura",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by route pattern.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Middleware records request latency labelled with the chi route pattern so
// that ids in paths do not explode cardinality.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil {
			if p := rc.RoutePattern(); p != "" {
				route = p
			}
		}
		httpDuration.WithLabelValues(r.Method, route, strconv.Itoa(rec.status)).Observe(time.Since(start).Seconds())
	})
}

func Handler() http.Handler {
	return promhttp.Handler()
}
