package debounce

import (
	"sync"
	"time"
)

// DefaultQuiet matches the reference UI's 300ms typing pause.
const DefaultQuiet = 300 * time.Millisecond

// Dispatcher coalesces bursts of calls per key: every Call resets the key's
// quiet timer, and only the most recently scheduled function runs once the
// interval elapses with no further calls under that key. Distinct keys never
// interfere with each other. Safe for concurrent use.
//
// A function already mid-fire cannot be unscheduled; callers that need
// strict ordering across fires must layer their own tokens on top.
type Dispatcher struct {
	quiet time.Duration

	mu     sync.Mutex
	timers map[string]*time.Timer
}

// New constructs a Dispatcher with the given quiet interval.
func New(quiet time.Duration) *Dispatcher {
	return &Dispatcher{
		quiet:  quiet,
		timers: map[string]*time.Timer{},
	}
}

// Call schedules fn to run after the quiet interval, superseding any
// not-yet-fired call previously scheduled under the same key.
func (d *Dispatcher) Call(key string, fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if timer, ok := d.timers[key]; ok {
		timer.Stop()
	}
	var timer *time.Timer
	timer = time.AfterFunc(d.quiet, func() {
		d.mu.Lock()
		if d.timers[key] == timer {
			delete(d.timers, key)
		}
		d.mu.Unlock()
		fn()
	})
	d.timers[key] = timer
}

// Cancel drops the pending call for key, if any.
func (d *Dispatcher) Cancel(key string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if timer, ok := d.timers[key]; ok {
		timer.Stop()
		delete(d.timers, key)
	}
}

// CancelAll drops every pending call.
func (d *Dispatcher) CancelAll() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for key, timer := range d.timers {
		timer.Stop()
		delete(d.timers, key)
	}
}
