package coordinator

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"patchdeck/types"
)

func TestSelectionSet_ToggleAddsAndRemoves(t *testing.T) {
	set := NewSelectionSet()
	key := types.ItemKey{HostID: "host1", Package: "curl", Manager: "apt"}

	set.Toggle(key)
	assert.True(t, set.IsSelected(key), "Key should be selected after first toggle")
	assert.Equal(t, 1, set.Len())

	set.Toggle(key)
	assert.False(t, set.IsSelected(key), "Key should be deselected after second toggle")
	assert.Equal(t, 0, set.Len())
}

func TestSelectionSet_AddAllAndClear(t *testing.T) {
	set := NewSelectionSet()
	keys := []types.ItemKey{
		{HostID: "host1", Package: "curl", Manager: "apt"},
		{HostID: "host1", Package: "vim", Manager: "apt"},
		{HostID: "host2", Package: "vim", Manager: "dnf"},
	}

	set.AddAll(keys)
	assert.Equal(t, 3, set.Len(), "All keys should be selected")
	for _, key := range keys {
		assert.True(t, set.IsSelected(key))
	}

	set.Clear()
	assert.Equal(t, 0, set.Len(), "Clear should empty the selection")
}

func TestSelectionSet_AddAllDeduplicates(t *testing.T) {
	set := NewSelectionSet()
	key := types.ItemKey{HostID: "host1", Package: "curl", Manager: "apt"}

	set.AddAll([]types.ItemKey{key, key, key})
	assert.Equal(t, 1, set.Len(), "Duplicate keys should collapse to one entry")
}

func TestSelectionSet_KeysReturnsSnapshot(t *testing.T) {
	set := NewSelectionSet()
	key := types.ItemKey{HostID: "host1", Package: "curl", Manager: "apt"}
	set.Add(key)

	keys := set.Keys()
	assert.Len(t, keys, 1)

	// Mutating the set must not affect the returned snapshot
	set.Clear()
	assert.Len(t, keys, 1)
}
