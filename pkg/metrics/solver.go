package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// SolverMetrics records outcomes of external VRP solver calls.
type SolverMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewSolverMetrics registers the solver metrics on the provided registerer.
func NewSolverMetrics(reg prometheus.Registerer) *SolverMetrics {
	if reg == nil {
		return &SolverMetrics{}
	}
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "solver_requests_total",
		Help: "Solver calls by waste category, vehicle profile, and outcome.",
	}, []string{"category", "profile", "outcome"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "solver_request_duration_seconds",
		Help:    "Duration of solver calls in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"category", "profile"})
	reg.MustRegister(requests, duration)
	return &SolverMetrics{
		requests: requests,
		duration: duration,
	}
}

// IncRequest increments the request counter for one solver call outcome.
func (s *SolverMetrics) IncRequest(category, profile, outcome string) {
	if s == nil || s.requests == nil {
		return
	}
	s.requests.WithLabelValues(normalizeLabel(category), normalizeLabel(profile), normalizeLabel(outcome)).Inc()
}

// ObserveDuration records the duration of one solver call.
func (s *SolverMetrics) ObserveDuration(category, profile string, duration time.Duration) {
	if s == nil || s.duration == nil {
		return
	}
	s.duration.WithLabelValues(normalizeLabel(category), normalizeLabel(profile)).Observe(duration.Seconds())
}
