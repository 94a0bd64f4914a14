// Package telemetry holds the Prometheus metrics and OpenTelemetry tracing
// setup shared by the service and the HTTP server.
package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Run outcomes used as the "outcome" label.
const (
	OutcomeSolved     = "solved"
	OutcomePartial    = "partial"
	OutcomeUnresolved = "unresolved"
	OutcomeError      = "error"
)

var (
	runsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "geosymbol_runs_total",
		Help: "Reasoning runs by outcome",
	}, []string{"outcome"})

	runDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "geosymbol_run_duration_seconds",
		Help:    "Wall time of one saturate-and-solve run",
		Buckets: prometheus.ExponentialBuckets(0.0001, 2, 14), // 0.1ms to ~1.6s
	})

	equationsProduced = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "geosymbol_run_equations",
		Help:    "Equations derived per run",
		Buckets: []float64{0, 1, 2, 5, 10, 20, 50, 100},
	})

	variablesResolved = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "geosymbol_run_resolved_variables",
		Help:    "Variables with a value at the end of a run",
		Buckets: []float64{0, 1, 2, 5, 10, 20, 50},
	})

	variablesUnresolved = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "geosymbol_run_unresolved_variables",
		Help:    "Variables mentioned by an equation but left without a value",
		Buckets: []float64{0, 1, 2, 5, 10, 20, 50},
	})

	ruleContributions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "geosymbol_rule_steps_total",
		Help: "Explanation steps contributed, by rule",
	}, []string{"rule"})

	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "geosymbol_http_requests_total",
		Help: "HTTP requests by route and status code",
	}, []string{"route", "status"})

	rateLimited = promauto.NewCounter(prometheus.CounterOpts{
		Name: "geosymbol_http_rate_limited_total",
		Help: "Requests rejected by the rate limiter",
	})
)

// RunStats is what one run reports to the metrics.
type RunStats struct {
	Equations int
	// Resolved counts values the solver derived; caller-seeded values are
	// not included.
	Resolved   int
	Unresolved int
	Duration   time.Duration
	// Rules lists the rule behind every explanation step.
	Rules []string
}

// Outcome classifies a successful run by what it left unresolved. A run
// that produced no equations inferred nothing and counts as unresolved.
func (s RunStats) Outcome() string {
	switch {
	case s.Equations == 0:
		return OutcomeUnresolved
	case s.Unresolved == 0:
		return OutcomeSolved
	case s.Resolved > 0:
		return OutcomePartial
	default:
		return OutcomeUnresolved
	}
}

// ObserveRun records a finished run.
func ObserveRun(s RunStats) {
	runsTotal.WithLabelValues(s.Outcome()).Inc()
	runDuration.Observe(s.Duration.Seconds())
	equationsProduced.Observe(float64(s.Equations))
	variablesResolved.Observe(float64(s.Resolved))
	variablesUnresolved.Observe(float64(s.Unresolved))
	for _, r := range s.Rules {
		ruleContributions.WithLabelValues(r).Inc()
	}
}

// ObserveFailure records a run that returned an error.
func ObserveFailure() {
	runsTotal.WithLabelValues(OutcomeError).Inc()
}

// ObserveRequest records one HTTP response.
func ObserveRequest(route string, status string) {
	httpRequests.WithLabelValues(route, status).Inc()
}

// ObserveRateLimited records a rejected request.
func ObserveRateLimited() {
	rateLimited.Inc()
}
