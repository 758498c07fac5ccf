package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func TestSolverMetricsExportsCountersAndHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewSolverMetrics(reg)
	metrics.IncRequest("general", "driving-car", "success")
	metrics.IncRequest("general", "driving-hgv", "failure")
	metrics.ObserveDuration("general", "driving-car", 120*time.Millisecond)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounterValue(mfs, "solver_requests_total", "outcome", "success"); err != nil {
		t.Fatalf("fetch success: %v", err)
	} else if got != 1 {
		t.Fatalf("expected success=1, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "solver_requests_total", "outcome", "failure"); err != nil {
		t.Fatalf("fetch failure: %v", err)
	} else if got != 1 {
		t.Fatalf("expected failure=1, got %f", got)
	}

	if got, err := fetchHistogramSum(mfs, "solver_request_duration_seconds", "profile", "driving-car"); err != nil {
		t.Fatalf("fetch duration: %v", err)
	} else if got <= 0 {
		t.Fatalf("expected duration sum > 0, got %f", got)
	}
}

func TestSolverMetricsNilSafe(t *testing.T) {
	var metrics *SolverMetrics
	metrics.IncRequest("general", "driving-car", "success")
	metrics.ObserveDuration("general", "driving-car", time.Second)
}
