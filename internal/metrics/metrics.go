package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTPRequestsTotal counts served requests by route and status code.
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sharebite_http_requests_total",
		Help: "Total number of HTTP requests by route, method and status",
	}, []string{"route", "method", "status"})

	// HTTPRequestDuration records request latency by route.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "sharebite_http_request_duration_seconds",
		Help:    "HTTP request latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "method"})

	// ClaimAttempts counts claim attempts by outcome (claimed, conflict,
	// forbidden, not_found, error).
	ClaimAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sharebite_claim_attempts_total",
		Help: "Total number of food claim attempts by outcome",
	}, []string{"outcome"})

	// FoodPostTransitions counts lifecycle transitions by event.
	FoodPostTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sharebite_food_post_transitions_total",
		Help: "Total number of food post lifecycle transitions by event",
	}, []string{"event"})

	// VerificationDecisions counts admin decisions by resulting status.
	VerificationDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sharebite_verification_decisions_total",
		Help: "Total number of organization verification decisions",
	}, []string{"status"})

	// ReportsSubmitted counts reports by type.
	ReportsSubmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sharebite_reports_submitted_total",
		Help: "Total number of reports submitted by type",
	}, []string{"type"})

	// JobRuns counts scheduled job executions by job and result.
	JobRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sharebite_job_runs_total",
		Help: "Total number of scheduled job runs by job and result",
	}, []string{"job", "result"})
)

// ObserveRequest records one served request.
func ObserveRequest(route, method, status string, start time.Time) {
	HTTPRequestsTotal.WithLabelValues(route, method, status).Inc()
	HTTPRequestDuration.WithLabelValues(route, method).Observe(time.Since(start).Seconds())
}

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
