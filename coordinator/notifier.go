package coordinator

import "sync"

// RefreshNotifier lets the coordinator announce "shared summary data may be
// stale" to one interested consumer without that consumer running its own
// polling loop. It is deliberately not a general pub/sub bus: there is at
// most one live subscriber at a time.
type RefreshNotifier interface {
	// Register installs the callback, replacing any previous one
	Register(cb func())
	// Unregister clears the callback
	Unregister()
	// Trigger invokes the current callback, if any
	Trigger()
}

// SingleNotifier is the single-slot RefreshNotifier implementation.
// Register is last-writer-wins and Trigger is a no-op while nothing is
// registered.
type SingleNotifier struct {
	mu sync.Mutex
	cb func()
}

// NewSingleNotifier creates an empty notifier
func NewSingleNotifier() *SingleNotifier {
	return &SingleNotifier{}
}

// Register installs cb, replacing any previously registered callback
func (n *SingleNotifier) Register(cb func()) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.cb = cb
}

// Unregister clears the registered callback
func (n *SingleNotifier) Unregister() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.cb = nil
}

// Trigger invokes the registered callback outside the notifier lock so a
// callback may re-enter the notifier without deadlocking
func (n *SingleNotifier) Trigger() {
	n.mu.Lock()
	cb := n.cb
	n.mu.Unlock()

	if cb != nil {
		cb()
	}
}
