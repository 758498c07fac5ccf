package solver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ducvu/wasteflow-backend/pkg/config"
	pkgerrors "github.com/ducvu/wasteflow-backend/pkg/errors"
	"github.com/ducvu/wasteflow-backend/pkg/metrics"
)

const (
	solvePath                   = "/solve"
	defaultTimeout              = 30 * time.Second
	responseBodyReadLimit int64 = 4096
)

var errBaseURLRequired = errors.New("solver base url is required")

// Gateway is the solver surface consumed by the dispatch engine.
type Gateway interface {
	Solve(ctx context.Context, req Request) (*Result, error)
}

// Client calls the external VRP solver over HTTP.
type Client struct {
	httpClient *http.Client
	baseURL    string
	metrics    *metrics.SolverMetrics
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithMetrics attaches solver call metrics.
func WithMetrics(m *metrics.SolverMetrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// NewClient builds a solver client from configuration.
func NewClient(cfg config.SolverConfig, opts ...Option) (*Client, error) {
	baseURL := strings.TrimSpace(cfg.URL)
	if baseURL == "" {
		return nil, errBaseURLRequired
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	client := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}

	if client.httpClient == nil {
		client.httpClient = &http.Client{Timeout: timeout}
	}

	return client, nil
}

// Solve submits one sub-problem and validates the response shape. A transport
// error, non-2xx status, non-null error field, or an empty route list when
// jobs were supplied all count as hard failures for the sub-problem.
func (c *Client) Solve(ctx context.Context, req Request) (*Result, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeSolverFailure, "solver client not configured")
	}

	category := req.Category
	if category == "" {
		category = "unknown"
	}
	start := time.Now()
	result, err := c.solve(ctx, req)
	c.metrics.ObserveDuration(category, req.Profile.String(), time.Since(start))
	if err != nil {
		c.metrics.IncRequest(category, req.Profile.String(), "failure")
		return nil, err
	}
	c.metrics.IncRequest(category, req.Profile.String(), "success")
	return result, nil
}

func (c *Client) solve(ctx context.Context, req Request) (*Result, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeSolverFailure, err, "marshal solve request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+solvePath, bytes.NewReader(payload))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeSolverFailure, err, "build solve request")
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeSolverFailure, err, "execute solve request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
		return nil, pkgerrors.Wrap(pkgerrors.CodeSolverFailure,
			fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))),
			"solve request failed")
	}

	var wire Response
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeSolverFailure, err, "decode solve response")
	}

	if wire.Error != nil && strings.TrimSpace(*wire.Error) != "" {
		return nil, pkgerrors.New(pkgerrors.CodeSolverFailure, *wire.Error)
	}
	if len(wire.Routes) == 0 && len(req.Jobs) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeSolverFailure, "solver returned no routes for a non-empty job list")
	}

	return &Result{
		Routes:     wire.Routes,
		Unassigned: wire.Unassigned,
	}, nil
}
