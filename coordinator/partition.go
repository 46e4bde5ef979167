package coordinator

import (
	"log"

	"patchdeck/types"
)

// partitionByHost resolves each selected key against the catalog snapshot
// and groups the resulting items by target host. Keys that no longer
// resolve (the catalog was refreshed since selection) are dropped from the
// batch instead of failing the whole submission.
func partitionByHost(keys []types.ItemKey, catalog map[types.ItemKey]types.WorkItem) types.HostBatch {
	batch := make(types.HostBatch)
	for _, key := range keys {
		item, ok := catalog[key]
		if !ok {
			log.Printf("Dropping stale selection %s: no longer in catalog", key)
			continue
		}
		batch[item.HostID] = append(batch[item.HostID], types.BatchItem{
			Package: item.Package,
			Manager: item.Manager,
		})
	}
	return batch
}

// distinctBatchItems returns the distinct package names and the distinct
// managers represented in one host's batch items, preserving first-seen
// order.
func distinctBatchItems(items []types.BatchItem) (packages []string, managers []string) {
	seenPkg := make(map[string]struct{})
	seenMgr := make(map[string]struct{})
	for _, it := range items {
		if _, ok := seenPkg[it.Package]; !ok {
			seenPkg[it.Package] = struct{}{}
			packages = append(packages, it.Package)
		}
		if it.Manager == "" {
			continue
		}
		if _, ok := seenMgr[it.Manager]; !ok {
			seenMgr[it.Manager] = struct{}{}
			managers = append(managers, it.Manager)
		}
	}
	return packages, managers
}
