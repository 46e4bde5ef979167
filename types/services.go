package types

import "context"

// FleetService is the client-side view of one change domain (package
// updates or OS upgrades) on the upstream fleet API. Both domains expose
// the same quartet of operations; upgrades simply carry no managers.
type FleetService interface {
	// Summary returns the aggregate counters for dashboard badges
	Summary(ctx context.Context) (Summary, error)

	// List returns one catalog page of pending items
	List(ctx context.Context, filter ListFilter) (ListResponse, error)

	// Execute submits one host batch for asynchronous execution. Only
	// call-level accept/reject is reported; per-item outcomes arrive via
	// Results.
	Execute(ctx context.Context, req ExecuteRequest) (ExecuteResponse, error)

	// Results returns the current snapshot of per-host outcomes
	Results(ctx context.Context) (ResultsSnapshot, error)
}
