package types

// ListResponse represents one catalog page returned by the fleet API
type ListResponse struct {
	Status string     `json:"status"`
	Total  int        `json:"total"`
	Page   int        `json:"page"`
	Items  []WorkItem `json:"items"`
}

// ExecuteResponse represents the fleet API's answer to a submission call.
// Acceptance is call-level only; per-item outcomes arrive later through the
// results snapshot.
type ExecuteResponse struct {
	Status   string `json:"status"`
	Accepted int    `json:"accepted"`
}

// ResultsResponse represents the overloaded results/summary endpoint: a
// single payload carries both the aggregate counters and the per-host
// succeeded/failed arrays, and each consumer reads the half it needs.
type ResultsResponse struct {
	Status  string          `json:"status"`
	Summary Summary         `json:"summary"`
	Results ResultsSnapshot `json:"results"`
}
