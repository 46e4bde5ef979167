package types

// Summary represents the aggregate counts shown on the dashboard badges
type Summary struct {
	TotalItems       int `json:"totalItems"`
	SecurityItems    int `json:"securityItems"`
	SystemItems      int `json:"systemItems"`
	ApplicationItems int `json:"applicationItems"`
	AffectedHosts    int `json:"affectedHosts"`
}

// ListFilter holds the optional filters accepted by the catalog endpoints
type ListFilter struct {
	Security bool   `form:"security" json:"security,omitempty"`
	System   bool   `form:"system" json:"system,omitempty"`
	Manager  string `form:"manager" json:"manager,omitempty"`
	HostID   string `form:"host" json:"host,omitempty"`
	Page     int    `form:"page" json:"page,omitempty"`
	PerPage  int    `form:"perPage" json:"perPage,omitempty"`
}

// ExecuteRequest is the submission payload sent to the fleet API for one
// host batch. Managers is empty for OS upgrades.
type ExecuteRequest struct {
	HostIDs  []string `json:"hostIds"`
	Packages []string `json:"packages"`
	Managers []string `json:"managers,omitempty"`
}
