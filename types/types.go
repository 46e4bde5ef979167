package types

import "fmt"

// WorkItem represents one available change (package update or OS upgrade)
// discovered on one managed host. Items are fetched from the fleet API and
// are read-only from the coordinator's perspective; a catalog refresh
// replaces them wholesale.
type WorkItem struct {
	HostID           string `json:"hostId"`
	Package          string `json:"package"`
	Manager          string `json:"manager,omitempty"`
	CurrentVersion   string `json:"currentVersion,omitempty"`
	AvailableVersion string `json:"availableVersion"`
	IsSecurity       bool   `json:"isSecurity"`
	IsSystem         bool   `json:"isSystem"`
	RequiresReboot   bool   `json:"requiresReboot"`
}

// ItemKey is the stable identity of a WorkItem: two items with the same key
// are the same logical unit of work even across catalog refreshes. It is
// comparable and used directly as a map key.
type ItemKey struct {
	HostID  string `json:"hostId"`
	Package string `json:"package"`
	Manager string `json:"manager,omitempty"`
}

// KeyOf derives the ItemKey for a WorkItem
func KeyOf(item WorkItem) ItemKey {
	return ItemKey{
		HostID:  item.HostID,
		Package: item.Package,
		Manager: item.Manager,
	}
}

// String renders the key in hostId:package:manager form for logs
func (k ItemKey) String() string {
	return fmt.Sprintf("%s:%s:%s", k.HostID, k.Package, k.Manager)
}

// BatchItem is one (package, manager) pair inside a host batch
type BatchItem struct {
	Package string `json:"package"`
	Manager string `json:"manager,omitempty"`
}

// HostBatch groups selected items by target host for submission. It is
// recomputed fresh from the selection on every execute action and never
// persisted.
type HostBatch map[string][]BatchItem

// ItemResult identifies one item reported by the fleet API as succeeded or
// failed, along with the version that ended up installed when known.
type ItemResult struct {
	Package    string `json:"package"`
	Manager    string `json:"manager,omitempty"`
	NewVersion string `json:"newVersion,omitempty"`
}

// HostResult holds the reported outcomes for one host
type HostResult struct {
	Succeeded []ItemResult `json:"succeeded"`
	Failed    []ItemResult `json:"failed"`
}

// ResultsSnapshot is the fleet API's current view of execution outcomes,
// keyed by host. A snapshot may be empty or partial on any given poll;
// absence of an item simply means it has not been reported yet.
type ResultsSnapshot map[string]HostResult
