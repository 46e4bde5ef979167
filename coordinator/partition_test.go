package coordinator

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"patchdeck/types"
)

func catalogOf(items ...types.WorkItem) map[types.ItemKey]types.WorkItem {
	catalog := make(map[types.ItemKey]types.WorkItem, len(items))
	for _, item := range items {
		catalog[types.KeyOf(item)] = item
	}
	return catalog
}

func TestPartitionByHost_GroupsByHost(t *testing.T) {
	catalog := catalogOf(
		types.WorkItem{HostID: "host1", Package: "curl", Manager: "apt"},
		types.WorkItem{HostID: "host1", Package: "vim", Manager: "apt"},
		types.WorkItem{HostID: "host2", Package: "vim", Manager: "dnf"},
		types.WorkItem{HostID: "host3", Package: "git", Manager: "apt"},
		types.WorkItem{HostID: "host3", Package: "tmux", Manager: "apt"},
	)

	keys := make([]types.ItemKey, 0, len(catalog))
	for key := range catalog {
		keys = append(keys, key)
	}

	batch := partitionByHost(keys, catalog)

	assert.Len(t, batch, 3, "Five items across three hosts should yield three batches")
	total := 0
	for _, items := range batch {
		total += len(items)
	}
	assert.Equal(t, 5, total, "Batch item counts should sum to the selection size")
	assert.Len(t, batch["host1"], 2)
	assert.Len(t, batch["host2"], 1)
	assert.Len(t, batch["host3"], 2)
}

func TestPartitionByHost_DropsStaleKeys(t *testing.T) {
	catalog := catalogOf(
		types.WorkItem{HostID: "host1", Package: "curl", Manager: "apt"},
	)

	keys := []types.ItemKey{
		{HostID: "host1", Package: "curl", Manager: "apt"},
		{HostID: "host1", Package: "gone", Manager: "apt"},
	}

	batch := partitionByHost(keys, catalog)

	assert.Len(t, batch, 1)
	assert.Len(t, batch["host1"], 1, "Stale key should be silently dropped, not fail the batch")
	assert.Equal(t, "curl", batch["host1"][0].Package)
}

func TestDistinctBatchItems(t *testing.T) {
	items := []types.BatchItem{
		{Package: "curl", Manager: "apt"},
		{Package: "vim", Manager: "apt"},
		{Package: "curl", Manager: "apt"},
	}

	packages, managers := distinctBatchItems(items)
	assert.Equal(t, []string{"curl", "vim"}, packages)
	assert.Equal(t, []string{"apt"}, managers)
}

func TestDistinctBatchItems_EmptyManagerOmitted(t *testing.T) {
	items := []types.BatchItem{
		{Package: "os-release"},
	}

	packages, managers := distinctBatchItems(items)
	assert.Equal(t, []string{"os-release"}, packages)
	assert.Empty(t, managers, "Upgrade items carry no manager")
}
