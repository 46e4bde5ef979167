// Package clients holds the service clients the console uses to reach the
// upstream fleet API, plus the coordinator domain adapters built on them.
package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"patchdeck/httpclient"
	"patchdeck/types"
)

// FleetClient implements types.FleetService for one change domain of the
// upstream fleet API. The domain segment is "updates" or "upgrades"; both
// expose the same route shapes.
type FleetClient struct {
	BaseURL       string
	DomainSegment string
	ListClient    *httpclient.GenericClient[types.ListResponse]
	ExecClient    *httpclient.GenericClient[types.ExecuteResponse]
	ResultsClient *httpclient.GenericClient[types.ResultsResponse]
}

// NewFleetClient creates a client for one domain segment of the fleet API
func NewFleetClient(baseURL, domainSegment string) *FleetClient {
	return &FleetClient{
		BaseURL:       baseURL,
		DomainSegment: domainSegment,
		ListClient:    httpclient.NewDefaultGenericClient[types.ListResponse](),
		ExecClient:    httpclient.NewDefaultGenericClient[types.ExecuteResponse](),
		ResultsClient: httpclient.NewDefaultGenericClient[types.ResultsResponse](),
	}
}

// Summary fetches the overloaded results endpoint and reads its summary
// half
func (f *FleetClient) Summary(ctx context.Context) (types.Summary, error) {
	resp, err := f.ResultsClient.GenericCall(ctx, http.MethodGet, f.resultsURL(), nil)
	if err != nil {
		return types.Summary{}, fmt.Errorf("failed to fetch %s summary: %w", f.DomainSegment, err)
	}
	return resp.Summary, nil
}

// List fetches one catalog page with the given filters
func (f *FleetClient) List(ctx context.Context, filter types.ListFilter) (types.ListResponse, error) {
	resp, err := f.ListClient.GenericCall(ctx, http.MethodGet, f.listURL(filter), nil)
	if err != nil {
		return types.ListResponse{}, fmt.Errorf("failed to list %s: %w", f.DomainSegment, err)
	}
	return resp, nil
}

// Execute submits one host batch for asynchronous execution
func (f *FleetClient) Execute(ctx context.Context, req types.ExecuteRequest) (types.ExecuteResponse, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return types.ExecuteResponse{}, fmt.Errorf("failed to marshal execute request: %w", err)
	}

	resp, err := f.ExecClient.GenericCall(ctx, http.MethodPost, f.executeURL(), payload)
	if err != nil {
		return types.ExecuteResponse{}, fmt.Errorf("failed to execute %s batch: %w", f.DomainSegment, err)
	}
	return resp, nil
}

// Results fetches the overloaded results endpoint and reads its per-host
// half
func (f *FleetClient) Results(ctx context.Context) (types.ResultsSnapshot, error) {
	resp, err := f.ResultsClient.GenericCall(ctx, http.MethodGet, f.resultsURL(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s results: %w", f.DomainSegment, err)
	}
	if resp.Results == nil {
		return types.ResultsSnapshot{}, nil
	}
	return resp.Results, nil
}

func (f *FleetClient) listURL(filter types.ListFilter) string {
	values := url.Values{}
	if filter.Security {
		values.Set("security", "true")
	}
	if filter.System {
		values.Set("system", "true")
	}
	if filter.Manager != "" {
		values.Set("manager", filter.Manager)
	}
	if filter.HostID != "" {
		values.Set("host", filter.HostID)
	}
	if filter.Page > 0 {
		values.Set("page", strconv.Itoa(filter.Page))
	}
	if filter.PerPage > 0 {
		values.Set("perPage", strconv.Itoa(filter.PerPage))
	}

	base := fmt.Sprintf("%s/%s", f.BaseURL, f.DomainSegment)
	if encoded := values.Encode(); encoded != "" {
		return base + "?" + encoded
	}
	return base
}

func (f *FleetClient) executeURL() string {
	return fmt.Sprintf("%s/%s/execute", f.BaseURL, f.DomainSegment)
}

func (f *FleetClient) resultsURL() string {
	return fmt.Sprintf("%s/%s/results", f.BaseURL, f.DomainSegment)
}
