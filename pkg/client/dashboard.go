package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/turtacn/ReviewPulse/internal/application/analytics"
	"github.com/turtacn/ReviewPulse/internal/interfaces/http/handlers"
)

// Request and response types shared with the server.
type (
	Query          = analytics.Query
	GroupSelection = analytics.GroupSelection
	DetailQuery    = analytics.DetailQuery
	RatingBound    = analytics.RatingBound
	QueryResult    = analytics.QueryResult
	GroupSummary   = analytics.GroupSummary
	Meta           = analytics.Meta

	LivenessResponse  = handlers.LivenessResponse
	ReadinessResponse = handlers.ReadinessResponse
)

const dashboardPath = "/api/v1/dashboard"

// DashboardClient calls the dashboard endpoints.
type DashboardClient struct {
	client *Client
}

// Query computes the dashboard for q.
func (d *DashboardClient) Query(ctx context.Context, q Query) (*QueryResult, error) {
	var res QueryResult
	if err := d.client.post(ctx, dashboardPath+"/query", q, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Validate checks q without computing.  A rejected query is an *APIError.
func (d *DashboardClient) Validate(ctx context.Context, q Query) error {
	return d.client.post(ctx, dashboardPath+"/validate", q, nil)
}

// Meta describes the dataset the server has loaded.
func (d *DashboardClient) Meta(ctx context.Context) (*Meta, error) {
	var m Meta
	if err := d.client.get(ctx, dashboardPath+"/meta", &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// HealthClient calls the probe endpoints.
type HealthClient struct {
	client *Client
}

// Liveness calls /healthz.
func (h *HealthClient) Liveness(ctx context.Context) (*LivenessResponse, error) {
	var res LivenessResponse
	if err := h.client.get(ctx, "/healthz", &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Readiness calls /readyz once.  A not-ready server is reported through the
// response, not as an error.
func (h *HealthClient) Readiness(ctx context.Context) (*ReadinessResponse, error) {
	resp, err := h.client.send(ctx, http.MethodGet, "/readyz", nil)
	if err != nil {
		return nil, err
	}
	if resp.status != http.StatusOK && resp.status != http.StatusServiceUnavailable {
		return nil, decodeAPIError(resp)
	}
	var res ReadinessResponse
	if err := json.Unmarshal(resp.body, &res); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return &res, nil
}

//Personal.AI order the ending
