package coordinator

import "time"

// Clock abstracts the time source used by the coordinator so the poller and
// sweeper can be driven by a fake clock in tests.
type Clock interface {
	Now() time.Time
	NewTicker(d time.Duration) Ticker
	AfterFunc(d time.Duration, f func()) Timer
}

// Ticker is the subset of time.Ticker the poller needs
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// Timer is the subset of time.Timer the sweeper needs
type Timer interface {
	Stop() bool
}

// RealClock is the production Clock backed by the time package
type RealClock struct{}

// Now returns the current wall-clock time
func (RealClock) Now() time.Time {
	return time.Now()
}

// NewTicker creates a ticker with the given period
func (RealClock) NewTicker(d time.Duration) Ticker {
	return &realTicker{t: time.NewTicker(d)}
}

// AfterFunc schedules f to run after d
func (RealClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

type realTicker struct {
	t *time.Ticker
}

func (rt *realTicker) C() <-chan time.Time {
	return rt.t.C
}

func (rt *realTicker) Stop() {
	rt.t.Stop()
}
