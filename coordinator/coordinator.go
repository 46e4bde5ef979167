// Package coordinator implements the batch execution and status
// reconciliation logic shared by the package-update and OS-upgrade views:
// a user-editable selection over the current catalog, per-host sequential
// submission with optimistic status pre-writes, a status ledger reconciled
// against polled fleet results, and grace-delayed retirement of completed
// selections.
package coordinator

import (
	"context"
	"log"
	"sync"
	"time"

	"patchdeck/types"
)

// Domain abstracts the change domain a coordinator instance operates on.
// Package updates and OS upgrades share the coordinator; only submission
// and result fetching differ between them.
type Domain interface {
	// Name identifies the domain in logs and events
	Name() string
	// Submit issues one execution call for a single host batch
	Submit(ctx context.Context, hostID string, packages, managers []string) error
	// FetchResults returns the current authoritative outcome snapshot
	FetchResults(ctx context.Context) (types.ResultsSnapshot, error)
}

// EventType classifies coordinator audit events
type EventType string

const (
	// EventBatchSubmitted is emitted once per host submission attempt
	EventBatchSubmitted EventType = "batch.submitted"
	// EventItemsResolved is emitted after a merge cycle resolves entries
	EventItemsResolved EventType = "items.resolved"
)

// Event describes one observable coordinator action for audit sinks
type Event struct {
	Type     EventType       `json:"type"`
	Domain   string          `json:"domain"`
	HostID   string          `json:"hostId,omitempty"`
	Keys     []types.ItemKey `json:"keys"`
	Accepted bool            `json:"accepted"`
	Time     time.Time       `json:"time"`
}

// SubmissionReport summarizes one ExecuteSelected call
type SubmissionReport struct {
	Hosts         int      `json:"hosts"`
	Items         int      `json:"items"`
	RejectedHosts []string `json:"rejectedHosts,omitempty"`
}

// Options configures a coordinator instance
type Options struct {
	// PollInterval is the period of the result poller while work is in
	// flight
	PollInterval time.Duration
	// SweepGrace is how long a resolved entry keeps its selection
	// membership before the sweeper clears it
	SweepGrace time.Duration
	// StalePendingAfter bounds how long an entry may stay pending without
	// a report before it is failed locally
	StalePendingAfter time.Duration
	// Clock supplies time; defaults to the real clock
	Clock Clock
	// OnEvent receives audit events when set
	OnEvent func(Event)
}

func (o *Options) applyDefaults() {
	if o.PollInterval <= 0 {
		o.PollInterval = 10 * time.Second
	}
	if o.SweepGrace <= 0 {
		o.SweepGrace = 5 * time.Second
	}
	if o.StalePendingAfter <= 0 {
		o.StalePendingAfter = 30 * time.Minute
	}
	if o.Clock == nil {
		o.Clock = RealClock{}
	}
}

// Coordinator owns the selection, ledger, poller and sweeper for one change
// domain. One instance exists per hosting view; the injected
// RefreshNotifier is the only cross-view channel and carries no data, only
// a trigger signal.
type Coordinator struct {
	domain   Domain
	notifier RefreshNotifier
	opts     Options

	selection *SelectionSet
	ledger    *Ledger

	mu          sync.Mutex
	catalog     map[types.ItemKey]types.WorkItem
	polling     bool
	pollStop    chan struct{}
	pollBusy    bool
	sweepTimers map[int]Timer
	nextTimerID int
	closed      bool
}

// New creates a coordinator for the given domain. The notifier may be nil
// when no summary consumer exists (tests, tools).
func New(domain Domain, notifier RefreshNotifier, opts Options) *Coordinator {
	opts.applyDefaults()
	return &Coordinator{
		domain:      domain,
		notifier:    notifier,
		opts:        opts,
		selection:   NewSelectionSet(),
		ledger:      NewLedger(),
		catalog:     make(map[types.ItemKey]types.WorkItem),
		sweepTimers: make(map[int]Timer),
	}
}

// SetCatalog replaces the catalog snapshot wholesale and retires resolved
// ledger entries whose rows disappeared with it. The selection is left
// untouched; stale keys are dropped at partition time instead.
func (c *Coordinator) SetCatalog(items []types.WorkItem) {
	catalog := make(map[types.ItemKey]types.WorkItem, len(items))
	for _, item := range items {
		catalog[types.KeyOf(item)] = item
	}

	c.mu.Lock()
	c.catalog = catalog
	c.mu.Unlock()

	c.ledger.Retire(catalog)
}

// Toggle flips selection membership for the key. Adding requires the key
// to resolve to a live catalog item; removal is always allowed.
func (c *Coordinator) Toggle(key types.ItemKey) {
	if c.selection.IsSelected(key) {
		c.selection.Remove(key)
		return
	}

	c.mu.Lock()
	_, ok := c.catalog[key]
	c.mu.Unlock()
	if !ok {
		log.Printf("Ignoring selection of %s: not in catalog", key)
		return
	}
	c.selection.Add(key)
}

// SelectAll selects every item in the current catalog snapshot
func (c *Coordinator) SelectAll() {
	c.mu.Lock()
	keys := make([]types.ItemKey, 0, len(c.catalog))
	for key := range c.catalog {
		keys = append(keys, key)
	}
	c.mu.Unlock()
	c.selection.AddAll(keys)
}

// ClearSelection empties the selection
func (c *Coordinator) ClearSelection() {
	c.selection.Clear()
}

// IsSelected reports selection membership for the key
func (c *Coordinator) IsSelected(key types.ItemKey) bool {
	return c.selection.IsSelected(key)
}

// SelectedKeys returns a snapshot of the current selection
func (c *Coordinator) SelectedKeys() []types.ItemKey {
	return c.selection.Keys()
}

// SelectedCount returns the size of the current selection
func (c *Coordinator) SelectedCount() int {
	return c.selection.Len()
}

// StatusFor returns the ledger entry for a key, if any
func (c *Coordinator) StatusFor(key types.ItemKey) (StatusEntry, bool) {
	return c.ledger.StatusFor(key)
}

// Statuses returns a copy of all ledger entries
func (c *Coordinator) Statuses() map[types.ItemKey]StatusEntry {
	return c.ledger.Statuses()
}

// PendingCount returns the number of unresolved ledger entries
func (c *Coordinator) PendingCount() int {
	return c.ledger.PendingCount()
}

// Polling reports whether the result poller is currently running
func (c *Coordinator) Polling() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.polling
}

// ExecuteSelected partitions the current selection by host and submits one
// execution call per host, strictly sequentially. Before the first network
// call every key in the batch gets a pending ledger entry and loses its
// selection membership, so callers observe in-flight state immediately. A
// rejected host submission fails that host's still-pending keys locally
// and never affects other hosts.
func (c *Coordinator) ExecuteSelected(ctx context.Context) SubmissionReport {
	c.mu.Lock()
	batch := partitionByHost(c.selection.Keys(), c.catalog)
	now := c.opts.Clock.Now()
	keysByHost := make(map[string][]types.ItemKey, len(batch))
	itemCount := 0
	for hostID, items := range batch {
		for _, it := range items {
			key := types.ItemKey{HostID: hostID, Package: it.Package, Manager: it.Manager}
			c.ledger.SetPending(key, now)
			c.selection.Remove(key)
			keysByHost[hostID] = append(keysByHost[hostID], key)
			itemCount++
		}
	}
	c.mu.Unlock()

	report := SubmissionReport{Hosts: len(batch), Items: itemCount}
	if len(batch) == 0 {
		return report
	}

	for hostID, items := range batch {
		packages, managers := distinctBatchItems(items)
		err := c.domain.Submit(ctx, hostID, packages, managers)
		accepted := err == nil
		if err != nil {
			log.Printf("Submission to host %s rejected for %s: %v", hostID, c.domain.Name(), err)
			c.ledger.FailIfPending(keysByHost[hostID], c.opts.Clock.Now())
			report.RejectedHosts = append(report.RejectedHosts, hostID)
		} else {
			log.Printf("Submitted %d %s items to host %s", len(items), c.domain.Name(), hostID)
		}
		c.emit(Event{
			Type:     EventBatchSubmitted,
			Domain:   c.domain.Name(),
			HostID:   hostID,
			Keys:     keysByHost[hostID],
			Accepted: accepted,
			Time:     c.opts.Clock.Now(),
		})
	}

	c.ensurePolling()
	return report
}

// ensurePolling starts the poll loop if unresolved entries exist and it is
// not already running
func (c *Coordinator) ensurePolling() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.polling || c.ledger.PendingCount() == 0 {
		return
	}
	c.polling = true
	c.pollStop = make(chan struct{})
	go c.runPoller(c.pollStop)
	log.Printf("Result poller started for %s", c.domain.Name())
}

// stopPolling tears the poll loop down; safe to call when already idle
func (c *Coordinator) stopPolling() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopPollingLocked()
}

func (c *Coordinator) stopPollingLocked() {
	if !c.polling {
		return
	}
	c.polling = false
	close(c.pollStop)
	c.pollStop = nil
	log.Printf("Result poller stopped for %s", c.domain.Name())
}

// runPoller drives fetch-and-merge cycles on a fixed period until stopped.
// Ticks are serialized by construction: the next tick is not taken until
// the previous cycle returns.
func (c *Coordinator) runPoller(stop chan struct{}) {
	ticker := c.opts.Clock.NewTicker(c.opts.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C():
			c.pollOnce(context.Background())
		}
	}
}

// pollOnce performs one fetch-and-merge cycle. With an empty ledger it is a
// no-op that performs no fetch; a fetch error leaves the ledger untouched
// and is retried on the next tick.
func (c *Coordinator) pollOnce(ctx context.Context) {
	c.mu.Lock()
	if c.pollBusy {
		c.mu.Unlock()
		return
	}
	c.pollBusy = true
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		c.pollBusy = false
		c.mu.Unlock()
	}()

	if c.ledger.PendingCount() == 0 {
		c.stopPolling()
		return
	}

	snapshot, err := c.domain.FetchResults(ctx)
	if err != nil {
		log.Printf("Result fetch failed for %s, will retry next cycle: %v", c.domain.Name(), err)
		return
	}

	now := c.opts.Clock.Now()
	resolved, anyPending := c.ledger.Merge(snapshot, now)

	stale := c.ledger.FailStale(now.Add(-c.opts.StalePendingAfter), now)
	if len(stale) > 0 {
		log.Printf("Failing %d %s entries pending longer than %s", len(stale), c.domain.Name(), c.opts.StalePendingAfter)
		resolved = append(resolved, stale...)
		anyPending = c.ledger.PendingCount() > 0
	}

	if len(resolved) > 0 {
		c.scheduleSweep(resolved)
		c.emit(Event{
			Type:   EventItemsResolved,
			Domain: c.domain.Name(),
			Keys:   resolved,
			Time:   now,
		})
		if c.notifier != nil {
			c.notifier.Trigger()
		}
	}

	if !anyPending {
		c.stopPolling()
	}
}

// scheduleSweep clears selection membership for resolved keys after the
// grace window. Ledger entries are deliberately kept so the outcome stays
// visible until the catalog itself is refreshed.
func (c *Coordinator) scheduleSweep(keys []types.ItemKey) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	id := c.nextTimerID
	c.nextTimerID++
	c.sweepTimers[id] = c.opts.Clock.AfterFunc(c.opts.SweepGrace, func() {
		for _, key := range keys {
			c.selection.Remove(key)
		}
		c.mu.Lock()
		delete(c.sweepTimers, id)
		c.mu.Unlock()
	})
}

// emit forwards an event to the configured sink, if any
func (c *Coordinator) emit(event Event) {
	if c.opts.OnEvent != nil {
		c.opts.OnEvent(event)
	}
}

// Close stops the poller and any outstanding sweep timers. In-flight
// submissions are not cancelled; their outcomes reconcile on the next
// mount.
func (c *Coordinator) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	c.stopPollingLocked()
	for id, timer := range c.sweepTimers {
		timer.Stop()
		delete(c.sweepTimers, id)
	}
}
