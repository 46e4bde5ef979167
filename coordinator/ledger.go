package coordinator

import (
	"sync"
	"time"

	"patchdeck/types"
)

// Phase is the locally known execution state of one submitted item
type Phase string

const (
	// PhasePending means the item was submitted and no outcome has been
	// reported yet
	PhasePending Phase = "pending"
	// PhaseSuccess means the fleet API reported the item as succeeded
	PhaseSuccess Phase = "success"
	// PhaseFailed means the fleet API reported the item as failed, or the
	// submission for its host was rejected locally
	PhaseFailed Phase = "failed"
)

// StatusEntry records what this session knows about one submitted item.
// Entries are created only by submission, resolve at most once, and never
// revert from a resolved phase back to pending.
type StatusEntry struct {
	Phase           Phase     `json:"phase"`
	ResolvedVersion string    `json:"resolvedVersion,omitempty"`
	ObservedAt      time.Time `json:"observedAt"`
}

// Resolved reports whether the entry reached a terminal phase
func (e StatusEntry) Resolved() bool {
	return e.Phase == PhaseSuccess || e.Phase == PhaseFailed
}

// Ledger maps item keys to their execution status, independent of the
// catalog. The submission path writes the initial pending entries and local
// rejection failures; the merge step performs the only pending-to-resolved
// transitions; retirement happens on catalog refresh.
type Ledger struct {
	mu      sync.RWMutex
	entries map[types.ItemKey]StatusEntry
}

// NewLedger creates an empty ledger
func NewLedger() *Ledger {
	return &Ledger{
		entries: make(map[types.ItemKey]StatusEntry),
	}
}

// SetPending writes the optimistic pending entry for a key about to be
// submitted
func (l *Ledger) SetPending(key types.ItemKey, now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries[key] = StatusEntry{Phase: PhasePending, ObservedAt: now}
}

// FailIfPending transitions each given key to failed if it is still
// pending. Used when a host's submission call rejects: the remote agent
// never started that work, so the failure is terminal without a server
// round-trip. Keys already resolved by a faster poll are left alone.
func (l *Ledger) FailIfPending(keys []types.ItemKey, now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, key := range keys {
		entry, ok := l.entries[key]
		if !ok || entry.Phase != PhasePending {
			continue
		}
		entry.Phase = PhaseFailed
		entry.ObservedAt = now
		l.entries[key] = entry
	}
}

// Merge applies one authoritative results snapshot to the ledger. Keys the
// ledger has never seen are ignored so independent operator sessions cannot
// cross-talk; known keys are overwritten to their reported phase with the
// resolved version when present. The merge is monotonic and idempotent: a
// repeated snapshot only refreshes ObservedAt, which the sweeper uses as
// its clock. Returns the keys resolved by this call and whether any entry
// remains pending afterwards.
func (l *Ledger) Merge(snapshot types.ResultsSnapshot, now time.Time) (resolved []types.ItemKey, anyPending bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for hostID, result := range snapshot {
		for _, item := range result.Succeeded {
			if key, ok := l.applyResult(hostID, item, PhaseSuccess, now); ok {
				resolved = append(resolved, key)
			}
		}
		for _, item := range result.Failed {
			if key, ok := l.applyResult(hostID, item, PhaseFailed, now); ok {
				resolved = append(resolved, key)
			}
		}
	}

	for _, entry := range l.entries {
		if entry.Phase == PhasePending {
			anyPending = true
			break
		}
	}
	return resolved, anyPending
}

// applyResult merges a single reported item under the ledger lock. The
// returned bool is true only when the entry transitioned out of pending.
func (l *Ledger) applyResult(hostID string, item types.ItemResult, phase Phase, now time.Time) (types.ItemKey, bool) {
	key := types.ItemKey{HostID: hostID, Package: item.Package, Manager: item.Manager}
	entry, ok := l.entries[key]
	if !ok {
		// Not something this session submitted
		return key, false
	}

	wasPending := entry.Phase == PhasePending
	entry.Phase = phase
	if item.NewVersion != "" {
		entry.ResolvedVersion = item.NewVersion
	}
	entry.ObservedAt = now
	l.entries[key] = entry
	return key, wasPending
}

// FailStale transitions pending entries observed before the cutoff to
// failed. This is the bounded-retry policy for items the fleet API never
// reports: rather than staying pending forever they fail locally once they
// outlive the configured window. Returns the keys that were failed.
func (l *Ledger) FailStale(cutoff, now time.Time) []types.ItemKey {
	l.mu.Lock()
	defer l.mu.Unlock()

	var failed []types.ItemKey
	for key, entry := range l.entries {
		if entry.Phase != PhasePending || !entry.ObservedAt.Before(cutoff) {
			continue
		}
		entry.Phase = PhaseFailed
		entry.ObservedAt = now
		l.entries[key] = entry
		failed = append(failed, key)
	}
	return failed
}

// Retire removes resolved entries whose key no longer appears in the given
// catalog snapshot. Called when the hosting view swaps in a fresh catalog:
// a resolved row that disappeared from the catalog has been read its last.
// Pending entries are never retired here.
func (l *Ledger) Retire(catalog map[types.ItemKey]types.WorkItem) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for key, entry := range l.entries {
		if !entry.Resolved() {
			continue
		}
		if _, ok := catalog[key]; !ok {
			delete(l.entries, key)
		}
	}
}

// StatusFor returns the entry for a key, if any
func (l *Ledger) StatusFor(key types.ItemKey) (StatusEntry, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	entry, ok := l.entries[key]
	return entry, ok
}

// Statuses returns a copy of all entries
func (l *Ledger) Statuses() map[types.ItemKey]StatusEntry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make(map[types.ItemKey]StatusEntry, len(l.entries))
	for key, entry := range l.entries {
		out[key] = entry
	}
	return out
}

// PendingCount returns the number of unresolved entries
func (l *Ledger) PendingCount() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	count := 0
	for _, entry := range l.entries {
		if entry.Phase == PhasePending {
			count++
		}
	}
	return count
}

// Len returns the total number of entries
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}
