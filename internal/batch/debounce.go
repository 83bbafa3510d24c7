package batch

import (
	"sync"
	"time"
)

// Debouncer coalesces rapid reprocessing requests per image id: each
// Schedule overwrites any pending request for the same id, so a burst
// of slider changes runs the work once, with the latest parameters.
type Debouncer struct {
	delay time.Duration

	mu     sync.Mutex
	timers map[int]*time.Timer
}

// NewDebouncer creates a debouncer with the given settle delay.
func NewDebouncer(delay time.Duration) *Debouncer {
	return &Debouncer{
		delay:  delay,
		timers: make(map[int]*time.Timer),
	}
}

// Schedule queues fn to run after the settle delay, replacing any
// not-yet-fired request for the same id.
func (d *Debouncer) Schedule(id int, fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if t, ok := d.timers[id]; ok {
		t.Stop()
	}
	d.timers[id] = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		delete(d.timers, id)
		d.mu.Unlock()
		fn()
	})
}

// Cancel drops any pending request for id.
func (d *Debouncer) Cancel(id int) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if t, ok := d.timers[id]; ok {
		t.Stop()
		delete(d.timers, id)
	}
}

// CancelAll drops every pending request.
func (d *Debouncer) CancelAll() {
	d.mu.Lock()
	defer d.mu.Unlock()

	for id, t := range d.timers {
		t.Stop()
		delete(d.timers, id)
	}
}
