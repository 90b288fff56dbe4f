package search

import (
	"sync"
	"time"
)

// DefaultQuiescence is how long input must stay quiet before it is applied
const DefaultQuiescence = 300 * time.Millisecond

// State is the debouncer's position in its two-state machine
type State int

const (
	// Idle means no update is pending
	Idle State = iota
	// Pending means a timer is armed
	Pending
)

func (s State) String() string {
	if s == Pending {
		return "pending"
	}
	return "idle"
}

// Timer is the part of *time.Timer the debouncer needs
type Timer interface {
	Stop() bool
}

// Clock schedules callbacks
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type realClock struct{}

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Debouncer runs an action once the trigger has been quiet for the
// quiescence interval. Each Trigger cancels whatever was pending.
type Debouncer struct {
	mu    sync.Mutex
	clock Clock
	wait  time.Duration
	timer Timer
	state State
	armed uint64
}

// NewDebouncer creates a debouncer using the wall clock
func NewDebouncer(wait time.Duration) *Debouncer {
	return NewDebouncerWithClock(wait, realClock{})
}

// NewDebouncerWithClock creates a debouncer driven by clock
func NewDebouncerWithClock(wait time.Duration, clock Clock) *Debouncer {
	return &Debouncer{clock: clock, wait: wait}
}

// Trigger arms the timer for fn, cancelling any pending action
func (d *Debouncer) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.armed++
	generation := d.armed
	d.state = Pending

	d.timer = d.clock.AfterFunc(d.wait, func() {
		d.mu.Lock()
		// a newer Trigger or Stop superseded this timer after it fired
		if generation != d.armed || d.state != Pending {
			d.mu.Unlock()
			return
		}
		d.state = Idle
		d.timer = nil
		d.mu.Unlock()

		fn()
	})
}

// Stop cancels any pending action and returns to Idle
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.state = Idle
}

// State reports whether an action is pending
func (d *Debouncer) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}
