package scroller

import (
	"time"
)

// DebounceMode selects how repeated triggers of one event are coalesced.
type DebounceMode int

const (
	// Debounce delays the callback until the event has been quiet for the
	// delay, then runs the most recent callback once.
	Debounce DebounceMode = iota
	// Immediate runs the callback right away and drops further triggers
	// until the delay has passed.
	Immediate
)

type pendingEvent struct {
	timer Timer
	busy  bool // cooldown only, nothing to run on expiry
}

// Debouncer keeps at most one pending timer per event name. It must only
// be used from the control context.
type Debouncer struct {
	sched   Scheduler
	pending map[string]*pendingEvent
}

func NewDebouncer(sched Scheduler) *Debouncer {
	return &Debouncer{sched: sched, pending: make(map[string]*pendingEvent)}
}

// Trigger schedules fn for event name. The callback captures its own
// arguments, so the latest trigger's values are the ones used.
// It reports whether fn ran synchronously.
func (d *Debouncer) Trigger(name string, delay time.Duration, mode DebounceMode, fn func()) bool {
	if mode == Immediate {
		if _, ok := d.pending[name]; ok {
			return false
		}
		p := &pendingEvent{busy: true}
		d.pending[name] = p
		p.timer = d.sched.AfterFunc(delay, func() { d.fire(name, p, nil) })
		fn()
		return true
	}

	if old, ok := d.pending[name]; ok {
		old.timer.Stop()
	}
	p := &pendingEvent{}
	d.pending[name] = p
	p.timer = d.sched.AfterFunc(delay, func() { d.fire(name, p, fn) })
	return false
}

func (d *Debouncer) fire(name string, p *pendingEvent, fn func()) {
	// A stopped timer may still have been queued on the control context.
	if d.pending[name] != p {
		return
	}
	delete(d.pending, name)
	if fn != nil {
		fn()
	}
}

// Clear cancels a pending event without running it.
func (d *Debouncer) Clear(name string) {
	if p, ok := d.pending[name]; ok {
		p.timer.Stop()
		delete(d.pending, name)
	}
}

// Pending reports whether name has a timer scheduled.
func (d *Debouncer) Pending(name string) bool {
	_, ok := d.pending[name]
	return ok
}

// Stop cancels every pending event.
func (d *Debouncer) Stop() {
	for name := range d.pending {
		d.Clear(name)
	}
}
