package coordinator

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"patchdeck/types"
)

type submitCall struct {
	HostID   string
	Packages []string
	Managers []string
}

// fakeDomain records submissions and serves a canned results snapshot
type fakeDomain struct {
	mu          sync.Mutex
	rejectHosts map[string]bool
	snapshot    types.ResultsSnapshot
	fetchErr    error
	submits     []submitCall
	fetches     int
}

func (d *fakeDomain) Name() string { return "updates" }

func (d *fakeDomain) Submit(ctx context.Context, hostID string, packages, managers []string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.submits = append(d.submits, submitCall{HostID: hostID, Packages: packages, Managers: managers})
	if d.rejectHosts[hostID] {
		return errors.New("agent busy")
	}
	return nil
}

func (d *fakeDomain) FetchResults(ctx context.Context) (types.ResultsSnapshot, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.fetches++
	if d.fetchErr != nil {
		return nil, d.fetchErr
	}
	return d.snapshot, nil
}

func (d *fakeDomain) submitCalls() []submitCall {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]submitCall(nil), d.submits...)
}

func (d *fakeDomain) fetchCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.fetches
}

func (d *fakeDomain) setSnapshot(snapshot types.ResultsSnapshot) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.snapshot = snapshot
}

func testOptions(clock *fakeClock, onEvent func(Event)) Options {
	return Options{
		PollInterval:      10 * time.Second,
		SweepGrace:        5 * time.Second,
		StalePendingAfter: 30 * time.Minute,
		Clock:             clock,
		OnEvent:           onEvent,
	}
}

func seedCatalog(c *Coordinator) []types.WorkItem {
	items := []types.WorkItem{
		{HostID: "host1", Package: "curl", Manager: "apt", CurrentVersion: "8.4", AvailableVersion: "8.5"},
		{HostID: "host1", Package: "vim", Manager: "apt", CurrentVersion: "9.0", AvailableVersion: "9.1"},
		{HostID: "host2", Package: "openssl", Manager: "dnf", CurrentVersion: "3.0", AvailableVersion: "3.2", IsSecurity: true},
		{HostID: "host3", Package: "nginx", Manager: "apt", CurrentVersion: "1.24", AvailableVersion: "1.26"},
		{HostID: "host3", Package: "htop", Manager: "apt", CurrentVersion: "3.2", AvailableVersion: "3.3"},
	}
	c.SetCatalog(items)
	return items
}

func TestExecuteSelected_WritesPendingBeforeSubmitAndClearsSelection(t *testing.T) {
	clock := newFakeClock()
	domain := &fakeDomain{}
	c := New(domain, nil, testOptions(clock, nil))
	defer c.Close()

	items := seedCatalog(c)
	for _, item := range items {
		c.Toggle(types.KeyOf(item))
	}
	require.Equal(t, 5, c.SelectedCount())

	report := c.ExecuteSelected(context.Background())

	assert.Equal(t, 3, report.Hosts)
	assert.Equal(t, 5, report.Items)
	assert.Empty(t, report.RejectedHosts)
	assert.Equal(t, 0, c.SelectedCount(), "Submitted keys lose selection membership immediately")

	for _, item := range items {
		entry, ok := c.StatusFor(types.KeyOf(item))
		require.True(t, ok, "Every submitted key gets a ledger entry")
		assert.Equal(t, PhasePending, entry.Phase)
	}
	assert.Len(t, domain.submitCalls(), 3, "One submission per host")
}

func TestExecuteSelected_SubmitsOneHostAtATime(t *testing.T) {
	clock := newFakeClock()
	domain := &fakeDomain{}
	c := New(domain, nil, testOptions(clock, nil))
	defer c.Close()

	for _, item := range seedCatalog(c) {
		c.Toggle(types.KeyOf(item))
	}
	c.ExecuteSelected(context.Background())

	calls := domain.submitCalls()
	require.Len(t, calls, 3)
	seen := make(map[string]bool)
	for _, call := range calls {
		assert.False(t, seen[call.HostID], "Host %s submitted more than once", call.HostID)
		seen[call.HostID] = true
	}
	assert.True(t, seen["host1"] && seen["host2"] && seen["host3"])
}

func TestExecuteSelected_RejectedHostFailsLocallyWithoutAffectingOthers(t *testing.T) {
	clock := newFakeClock()
	domain := &fakeDomain{rejectHosts: map[string]bool{"host2": true}}
	c := New(domain, nil, testOptions(clock, nil))
	defer c.Close()

	items := seedCatalog(c)
	for _, item := range items {
		c.Toggle(types.KeyOf(item))
	}
	report := c.ExecuteSelected(context.Background())

	require.Equal(t, []string{"host2"}, report.RejectedHosts)

	entry, _ := c.StatusFor(types.ItemKey{HostID: "host2", Package: "openssl", Manager: "dnf"})
	assert.Equal(t, PhaseFailed, entry.Phase, "Rejected host's keys fail locally")

	entry, _ = c.StatusFor(types.ItemKey{HostID: "host1", Package: "curl", Manager: "apt"})
	assert.Equal(t, PhasePending, entry.Phase, "Other hosts stay pending")
	assert.True(t, c.Polling(), "Pending work on the other hosts keeps the poller alive")
}

func TestExecuteSelected_EmptySelectionIsNoOp(t *testing.T) {
	clock := newFakeClock()
	domain := &fakeDomain{}
	c := New(domain, nil, testOptions(clock, nil))
	defer c.Close()

	seedCatalog(c)
	report := c.ExecuteSelected(context.Background())

	assert.Equal(t, SubmissionReport{}, report)
	assert.Empty(t, domain.submitCalls())
	assert.False(t, c.Polling())
}

func TestPollOnce_MergesResultsAndStopsWhenNothingPending(t *testing.T) {
	clock := newFakeClock()
	domain := &fakeDomain{}
	c := New(domain, nil, testOptions(clock, nil))
	defer c.Close()

	c.SetCatalog([]types.WorkItem{
		{HostID: "host1", Package: "curl", Manager: "apt", CurrentVersion: "8.4", AvailableVersion: "8.5"},
	})
	key := types.ItemKey{HostID: "host1", Package: "curl", Manager: "apt"}
	c.Toggle(key)
	c.ExecuteSelected(context.Background())
	require.True(t, c.Polling())

	domain.setSnapshot(types.ResultsSnapshot{
		"host1": types.HostResult{
			Succeeded: []types.ItemResult{{Package: "curl", Manager: "apt", NewVersion: "8.5"}},
		},
	})
	c.pollOnce(context.Background())

	entry, ok := c.StatusFor(key)
	require.True(t, ok)
	assert.Equal(t, PhaseSuccess, entry.Phase)
	assert.Equal(t, "8.5", entry.ResolvedVersion)
	assert.False(t, c.Polling(), "Poller goes idle once nothing is pending")
}

func TestPollOnce_EmptyLedgerPerformsNoFetch(t *testing.T) {
	clock := newFakeClock()
	domain := &fakeDomain{}
	c := New(domain, nil, testOptions(clock, nil))
	defer c.Close()

	c.pollOnce(context.Background())

	assert.Equal(t, 0, domain.fetchCount())
}

func TestPollOnce_FetchErrorLeavesLedgerUntouched(t *testing.T) {
	clock := newFakeClock()
	domain := &fakeDomain{fetchErr: errors.New("fleet api unreachable")}
	c := New(domain, nil, testOptions(clock, nil))
	defer c.Close()

	c.SetCatalog([]types.WorkItem{
		{HostID: "host1", Package: "curl", Manager: "apt"},
	})
	key := types.ItemKey{HostID: "host1", Package: "curl", Manager: "apt"}
	c.Toggle(key)
	c.ExecuteSelected(context.Background())

	c.pollOnce(context.Background())

	entry, _ := c.StatusFor(key)
	assert.Equal(t, PhasePending, entry.Phase)
	assert.True(t, c.Polling(), "Fetch errors are retried on the next cycle")
}

func TestPollOnce_FailsEntriesPendingPastTheWindow(t *testing.T) {
	clock := newFakeClock()
	domain := &fakeDomain{snapshot: types.ResultsSnapshot{}}
	c := New(domain, nil, testOptions(clock, nil))
	defer c.Close()

	c.SetCatalog([]types.WorkItem{
		{HostID: "host1", Package: "curl", Manager: "apt"},
	})
	key := types.ItemKey{HostID: "host1", Package: "curl", Manager: "apt"}
	c.Toggle(key)
	c.ExecuteSelected(context.Background())

	clock.Advance(31 * time.Minute)
	c.pollOnce(context.Background())

	entry, _ := c.StatusFor(key)
	assert.Equal(t, PhaseFailed, entry.Phase, "Never-reported entry fails once it outlives the window")
	assert.False(t, c.Polling())
}

func TestPollOnce_SweepClearsSelectionAfterGraceButKeepsLedgerEntry(t *testing.T) {
	clock := newFakeClock()
	domain := &fakeDomain{}
	c := New(domain, nil, testOptions(clock, nil))
	defer c.Close()

	c.SetCatalog([]types.WorkItem{
		{HostID: "host1", Package: "curl", Manager: "apt", AvailableVersion: "8.5"},
	})
	key := types.ItemKey{HostID: "host1", Package: "curl", Manager: "apt"}
	c.Toggle(key)
	c.ExecuteSelected(context.Background())

	// User re-selects the row while it is still in flight
	c.Toggle(key)
	require.True(t, c.IsSelected(key))

	domain.setSnapshot(types.ResultsSnapshot{
		"host1": types.HostResult{
			Succeeded: []types.ItemResult{{Package: "curl", Manager: "apt", NewVersion: "8.5"}},
		},
	})
	c.pollOnce(context.Background())

	assert.True(t, c.IsSelected(key), "Selection survives until the grace window passes")

	clock.Advance(5 * time.Second)

	assert.False(t, c.IsSelected(key), "Sweep clears selection membership")
	entry, ok := c.StatusFor(key)
	require.True(t, ok, "Ledger entry outlives the sweep")
	assert.Equal(t, PhaseSuccess, entry.Phase)
}

func TestPollOnce_TriggersNotifierAndEmitsEventsOnResolution(t *testing.T) {
	clock := newFakeClock()
	domain := &fakeDomain{}
	var (
		eventsMu sync.Mutex
		events   []Event
	)
	notifier := NewSingleNotifier()
	triggers := 0
	notifier.Register(func() { triggers++ })

	c := New(domain, notifier, testOptions(clock, func(e Event) {
		eventsMu.Lock()
		events = append(events, e)
		eventsMu.Unlock()
	}))
	defer c.Close()

	c.SetCatalog([]types.WorkItem{
		{HostID: "host1", Package: "curl", Manager: "apt", AvailableVersion: "8.5"},
	})
	key := types.ItemKey{HostID: "host1", Package: "curl", Manager: "apt"}
	c.Toggle(key)
	c.ExecuteSelected(context.Background())

	domain.setSnapshot(types.ResultsSnapshot{
		"host1": types.HostResult{
			Succeeded: []types.ItemResult{{Package: "curl", Manager: "apt", NewVersion: "8.5"}},
		},
	})
	c.pollOnce(context.Background())

	assert.Equal(t, 1, triggers, "Resolution triggers exactly one refresh signal")

	eventsMu.Lock()
	defer eventsMu.Unlock()
	require.Len(t, events, 2)
	assert.Equal(t, EventBatchSubmitted, events[0].Type)
	assert.Equal(t, "host1", events[0].HostID)
	assert.True(t, events[0].Accepted)
	assert.Equal(t, EventItemsResolved, events[1].Type)
	assert.Equal(t, []types.ItemKey{key}, events[1].Keys)
}

func TestPoller_TickDrivenLifecycle(t *testing.T) {
	clock := newFakeClock()
	domain := &fakeDomain{}
	c := New(domain, nil, testOptions(clock, nil))
	defer c.Close()

	c.SetCatalog([]types.WorkItem{
		{HostID: "host1", Package: "curl", Manager: "apt", AvailableVersion: "8.5"},
	})
	key := types.ItemKey{HostID: "host1", Package: "curl", Manager: "apt"}
	c.Toggle(key)
	c.ExecuteSelected(context.Background())
	require.True(t, c.Polling())

	domain.setSnapshot(types.ResultsSnapshot{
		"host1": types.HostResult{
			Succeeded: []types.ItemResult{{Package: "curl", Manager: "apt", NewVersion: "8.5"}},
		},
	})
	require.Eventually(t, func() bool {
		clock.TickAll()
		return !c.Polling()
	}, time.Second, 5*time.Millisecond, "Ticks drive merge cycles until the entry resolves and the poller idles")

	entry, _ := c.StatusFor(key)
	assert.Equal(t, PhaseSuccess, entry.Phase)
}

func TestToggle_RejectsKeysNotInCatalog(t *testing.T) {
	clock := newFakeClock()
	c := New(&fakeDomain{}, nil, testOptions(clock, nil))
	defer c.Close()

	seedCatalog(c)
	c.Toggle(types.ItemKey{HostID: "ghost", Package: "curl", Manager: "apt"})

	assert.Equal(t, 0, c.SelectedCount())
}

func TestSetCatalog_RetiresResolvedEntriesForVanishedRows(t *testing.T) {
	clock := newFakeClock()
	domain := &fakeDomain{}
	c := New(domain, nil, testOptions(clock, nil))
	defer c.Close()

	c.SetCatalog([]types.WorkItem{
		{HostID: "host1", Package: "curl", Manager: "apt", AvailableVersion: "8.5"},
		{HostID: "host1", Package: "vim", Manager: "apt", AvailableVersion: "9.1"},
	})
	curl := types.ItemKey{HostID: "host1", Package: "curl", Manager: "apt"}
	c.Toggle(curl)
	c.ExecuteSelected(context.Background())

	domain.setSnapshot(types.ResultsSnapshot{
		"host1": types.HostResult{
			Succeeded: []types.ItemResult{{Package: "curl", Manager: "apt", NewVersion: "8.5"}},
		},
	})
	c.pollOnce(context.Background())

	// Fresh catalog no longer lists curl: the agent applied the update
	c.SetCatalog([]types.WorkItem{
		{HostID: "host1", Package: "vim", Manager: "apt", AvailableVersion: "9.1"},
	})

	_, ok := c.StatusFor(curl)
	assert.False(t, ok, "Resolved entry retires with its catalog row")
}

func TestClose_IsIdempotentAndStopsThePoller(t *testing.T) {
	clock := newFakeClock()
	domain := &fakeDomain{}
	c := New(domain, nil, testOptions(clock, nil))

	c.SetCatalog([]types.WorkItem{
		{HostID: "host1", Package: "curl", Manager: "apt"},
	})
	c.Toggle(types.ItemKey{HostID: "host1", Package: "curl", Manager: "apt"})
	c.ExecuteSelected(context.Background())
	require.True(t, c.Polling())

	c.Close()
	assert.False(t, c.Polling())
	assert.NotPanics(t, func() { c.Close() })
}
