package listing

import (
	"sync"
	"time"
)

// DefaultDebounce is how long search text must stay unchanged before it is
// applied.
const DefaultDebounce = 300 * time.Millisecond

// debouncer runs only the last function handed to Trigger, once delay has
// passed without another Trigger.
type debouncer struct {
	mu         sync.Mutex
	delay      time.Duration
	timer      *time.Timer
	generation uint64
	stopped    bool
}

func newDebouncer(delay time.Duration) *debouncer {
	return &debouncer{delay: delay}
}

// Trigger schedules fn, replacing anything scheduled before.
func (d *debouncer) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}

	// A timer that already fired may still be waiting on mu; the generation
	// tells it it has been superseded
	d.generation++
	gen := d.generation

	d.timer = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		current := d.generation == gen && !d.stopped
		d.mu.Unlock()

		if current {
			fn()
		}
	})
}

// Stop cancels whatever is scheduled and ignores later Triggers.
func (d *debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	d.generation++
	if d.timer != nil {
		d.timer.Stop()
	}
}
