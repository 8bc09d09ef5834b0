package dispatch

import (
	"sync"
	"time"
)

// Debouncer coalesces bursts of values into a single delayed fire carrying
// the last value seen. Each Trigger re-arms the timer; the generation
// counter guards against a stale timer firing after a reset.
type Debouncer struct {
	mu         sync.Mutex
	delay      time.Duration
	timer      *time.Timer
	generation uint64
	lastValue  int
	fire       func(value int)
}

func NewDebouncer(delay time.Duration, fire func(value int)) *Debouncer {
	return &Debouncer{delay: delay, fire: fire}
}

// Trigger records the value and (re)arms the timer. Only the quiescent
// period's final value is ever fired.
func (d *Debouncer) Trigger(value int) {
	d.mu.Lock()
	d.generation++
	gen := d.generation
	d.lastValue = value
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		if d.generation != gen {
			// A newer Trigger re-armed; this timer is stale.
			d.mu.Unlock()
			return
		}
		v := d.lastValue
		d.timer = nil
		d.mu.Unlock()
		d.fire(v)
	})
	d.mu.Unlock()
}

// Stop cancels any pending fire. Must be called on logout so no callback
// lands on a dead session.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	d.generation++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.mu.Unlock()
}
