package main

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"patchdeck/coordinator"
	"patchdeck/types"
)

func newTestStore(t *testing.T) *SubmissionStore {
	t.Helper()
	store, err := NewSubmissionStore(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSubmissionStore_RecordAndRecent(t *testing.T) {
	store := newTestStore(t)

	event := coordinator.Event{
		Type:   coordinator.EventBatchSubmitted,
		Domain: "updates",
		HostID: "host1",
		Keys: []types.ItemKey{
			{HostID: "host1", Package: "curl", Manager: "apt"},
			{HostID: "host1", Package: "vim", Manager: "apt"},
		},
		Accepted: true,
		Time:     time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	require.NoError(t, store.Record(event))

	records, err := store.Recent(10)
	require.NoError(t, err)
	require.Len(t, records, 1)

	rec := records[0]
	assert.Equal(t, "batch.submitted", rec.EventType)
	assert.Equal(t, "updates", rec.Domain)
	assert.Equal(t, "host1", rec.HostID)
	assert.Equal(t, []string{"host1:curl:apt", "host1:vim:apt"}, rec.Items)
	assert.True(t, rec.Accepted)
}

func TestSubmissionStore_RecentIsNewestFirstAndBounded(t *testing.T) {
	store := newTestStore(t)

	for i := 0; i < 5; i++ {
		require.NoError(t, store.Record(coordinator.Event{
			Type:   coordinator.EventBatchSubmitted,
			Domain: "updates",
			HostID: "host1",
			Time:   time.Now(),
		}))
	}
	require.NoError(t, store.Record(coordinator.Event{
		Type:   coordinator.EventItemsResolved,
		Domain: "upgrades",
		Time:   time.Now(),
	}))

	records, err := store.Recent(3)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "items.resolved", records[0].EventType, "Newest row comes first")
	assert.Greater(t, records[0].ID, records[1].ID)
}

func TestSubmissionStore_RejectsMalformedReplicaURL(t *testing.T) {
	_, err := NewSubmissionStore("a|b")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dbPath|primaryUrl|authToken")
}

func TestSubmissionStore_EmptyHistoryReturnsEmptySlice(t *testing.T) {
	store := newTestStore(t)

	records, err := store.Recent(10)
	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)
}
