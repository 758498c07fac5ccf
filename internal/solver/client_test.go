package solver

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/ducvu/wasteflow-backend/pkg/config"
	pkgerrors "github.com/ducvu/wasteflow-backend/pkg/errors"
)

func TestClientSolveRequest(t *testing.T) {
	const expectedURL = "http://solver.test/solve"
	respBody := `{
		"routes":[{"vehicleId":"veh-1","steps":[{"id":"job-1","location":[10.1,106.6],"demand":2.5}],"distance":1234.5,"duration":600,"geometry":{"type":"LineString","coordinates":[[106.6,10.1],[106.7,10.2]]}}],
		"unassigned":[{"id":"job-2","location":[10.2,106.7],"demand":3}],
		"error":null
	}`

	var capturedURL string
	var capturedPayload map[string]any

	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		capturedURL = req.URL.String()
		bodyBytes, err := io.ReadAll(req.Body)
		if err != nil {
			t.Fatalf("read request body: %v", err)
		}
		if err := json.Unmarshal(bodyBytes, &capturedPayload); err != nil {
			t.Fatalf("unmarshal request body: %v", err)
		}
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(strings.NewReader(respBody)),
			Header:     http.Header{},
		}, nil
	})

	client, err := NewClient(
		config.SolverConfig{URL: "http://solver.test", Timeout: 5 * time.Second},
		WithHTTPClient(&http.Client{Transport: rt}),
	)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	result, err := client.Solve(context.Background(), Request{
		Vehicles: []Vehicle{{ID: "veh-1", Location: [2]float64{10.0, 106.5}, Capacity: 100, Profile: ProfileDrivingCar}},
		Jobs: []Job{
			{ID: "job-1", Location: [2]float64{10.1, 106.6}, Demand: 2.5},
			{ID: "job-2", Location: [2]float64{10.2, 106.7}, Demand: 3},
		},
		Profile:  ProfileDrivingCar,
		Category: "general",
	})
	if err != nil {
		t.Fatalf("solve: %v", err)
	}
	if capturedURL != expectedURL {
		t.Fatalf("unexpected URL %q", capturedURL)
	}
	if capturedPayload["profile"] != "driving-car" {
		t.Fatalf("unexpected profile %v", capturedPayload["profile"])
	}
	if _, hasCategory := capturedPayload["Category"]; hasCategory {
		t.Fatalf("category must not be serialized")
	}

	if len(result.Routes) != 1 {
		t.Fatalf("expected 1 route, got %d", len(result.Routes))
	}
	route := result.Routes[0]
	if route.VehicleID != "veh-1" || len(route.Steps) != 1 || route.Steps[0].ID != "job-1" {
		t.Fatalf("unexpected route %+v", route)
	}
	if route.Distance != 1234.5 || route.Duration != 600 {
		t.Fatalf("unexpected route totals %+v", route)
	}
	if route.Geometry.Type != "LineString" || len(route.Geometry.Coordinates) != 2 {
		t.Fatalf("unexpected geometry %+v", route.Geometry)
	}
	if len(result.Unassigned) != 1 || result.Unassigned[0].ID != "job-2" {
		t.Fatalf("unexpected unassigned %+v", result.Unassigned)
	}
}

func TestClientSolveErrorField(t *testing.T) {
	rt := respondWith(http.StatusOK, `{"routes":[],"unassigned":[],"error":"no solution"}`)
	client := mustClient(t, rt)

	_, err := client.Solve(context.Background(), Request{
		Jobs:    []Job{{ID: "job-1"}},
		Profile: ProfileDrivingCar,
	})
	assertSolverFailure(t, err, "no solution")
}

func TestClientSolveEmptyRoutesWithJobs(t *testing.T) {
	rt := respondWith(http.StatusOK, `{"routes":[],"unassigned":[],"error":null}`)
	client := mustClient(t, rt)

	_, err := client.Solve(context.Background(), Request{
		Jobs:    []Job{{ID: "job-1"}},
		Profile: ProfileDrivingCar,
	})
	assertSolverFailure(t, err, "")
}

func TestClientSolveEmptyRoutesWithoutJobsOK(t *testing.T) {
	rt := respondWith(http.StatusOK, `{"routes":[],"unassigned":[],"error":null}`)
	client := mustClient(t, rt)

	result, err := client.Solve(context.Background(), Request{Profile: ProfileDrivingCar})
	if err != nil {
		t.Fatalf("expected success for empty job list, got %v", err)
	}
	if len(result.Routes) != 0 {
		t.Fatalf("expected no routes, got %d", len(result.Routes))
	}
}

func TestClientSolveNonSuccessStatus(t *testing.T) {
	rt := respondWith(http.StatusBadGateway, `upstream exploded`)
	client := mustClient(t, rt)

	_, err := client.Solve(context.Background(), Request{
		Jobs:    []Job{{ID: "job-1"}},
		Profile: ProfileDrivingHGV,
	})
	assertSolverFailure(t, err, "")
}

func TestNewClientRequiresURL(t *testing.T) {
	if _, err := NewClient(config.SolverConfig{}); err == nil {
		t.Fatal("expected error for missing solver url")
	}
}

func mustClient(t *testing.T, rt http.RoundTripper) *Client {
	t.Helper()
	client, err := NewClient(
		config.SolverConfig{URL: "http://solver.test"},
		WithHTTPClient(&http.Client{Transport: rt}),
	)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client
}

func respondWith(status int, body string) roundTripFunc {
	return func(*http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: status,
			Body:       io.NopCloser(strings.NewReader(body)),
			Header:     http.Header{},
		}, nil
	}
}

func assertSolverFailure(t *testing.T, err error, wantMessage string) {
	t.Helper()
	if err == nil {
		t.Fatal("expected solver failure")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeSolverFailure {
		t.Fatalf("expected SOLVER_FAILURE, got %v", err)
	}
	if wantMessage != "" && typed.Message() != wantMessage {
		t.Fatalf("unexpected message %q", typed.Message())
	}
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}
