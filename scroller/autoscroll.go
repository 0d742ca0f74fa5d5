package scroller

import (
	"log/slog"
	"time"
)

// centerEpsilon is how close, in pixels, an item centre has to be to the
// viewport centre to count as crossing it.
const centerEpsilon = 0.5

// CenterProbe reports the distance, within travel pixels ahead, to the next
// item whose centre crosses the viewport centre. skip is never reported.
type CenterProbe func(travel float32, skip *Item) (dist float32, it *Item, ok bool)

// AutoScroll drives a repeating timer that advances the scroll position.
// It is stopped or running; the speed survives stops so a toggle resumes at
// the speed last chosen.
type AutoScroll struct {
	sched Scheduler
	log   *slog.Logger

	seedInterval time.Duration
	factor       float64

	step     float32
	interval time.Duration

	running bool
	ticker  Timer

	pauseOnCenter bool
	pauseDuration time.Duration
	pauseTimer    Timer
	pauseSeq      uint64
	lingered      *Item

	onTick func(travel float32)
	probe  CenterProbe
}

// NewAutoScroll creates a stopped controller. onTick receives the pixels to
// travel in the growth direction; probe may be nil when pausing is disabled.
func NewAutoScroll(cfg Config, sched Scheduler, onTick func(float32), probe CenterProbe) *AutoScroll {
	return &AutoScroll{
		sched:         sched,
		log:           cfg.logger(),
		seedInterval:  cfg.AutoScrollInterval,
		factor:        cfg.AutoScrollFactor,
		step:          cfg.AutoScrollStep,
		interval:      cfg.AutoScrollInterval,
		pauseOnCenter: cfg.PauseOnCenter && probe != nil,
		pauseDuration: cfg.PauseDuration,
		onTick:        onTick,
		probe:         probe,
	}
}

func (a *AutoScroll) Running() bool { return a.running }

// Paused reports whether the controller is stopped waiting to resume after
// an item was centred.
func (a *AutoScroll) Paused() bool { return a.pauseTimer != nil }

// Speed returns the pixels travelled per tick and the tick interval.
func (a *AutoScroll) Speed() (step float32, interval time.Duration) {
	return a.step, a.interval
}

// Toggle starts or stops scrolling. Toggling while paused resumes at once.
func (a *AutoScroll) Toggle() {
	if a.running {
		a.stop()
		a.log.Debug("autoscroll: stopped")
		return
	}
	a.cancelPause()
	a.start()
	a.log.Debug("autoscroll: started", "step", a.step, "interval", a.interval)
}

// Faster shortens a stretched interval first, then grows the step.
func (a *AutoScroll) Faster() {
	if a.interval > a.seedInterval {
		a.interval = max(a.seedInterval, time.Duration(float64(a.interval)/a.factor))
	} else {
		a.step *= float32(a.factor)
	}
	a.speedChanged()
}

// Slower shrinks the step down to 1px, then stretches the interval.
func (a *AutoScroll) Slower() {
	if next := a.step / float32(a.factor); next >= 1 {
		a.step = next
	} else {
		a.interval = time.Duration(float64(a.interval) * a.factor)
	}
	a.speedChanged()
}

// Stop halts the controller and any pending resume.
func (a *AutoScroll) Stop() {
	a.cancelPause()
	a.stop()
}

func (a *AutoScroll) speedChanged() {
	a.log.Debug("autoscroll: speed", "step", a.step, "interval", a.interval)
	if a.running {
		a.stop()
		a.start()
	}
}

func (a *AutoScroll) start() {
	a.running = true
	a.ticker = a.sched.Every(a.interval, a.tick)
}

func (a *AutoScroll) stop() {
	a.running = false
	if a.ticker != nil {
		a.ticker.Stop()
		a.ticker = nil
	}
}

func (a *AutoScroll) cancelPause() {
	if a.pauseTimer != nil {
		a.pauseTimer.Stop()
		a.pauseTimer = nil
	}
}

func (a *AutoScroll) tick() {
	if !a.running {
		return
	}
	travel := a.step
	if a.pauseOnCenter {
		if dist, it, ok := a.probe(travel, a.lingered); ok {
			a.lingered = it
			a.onTick(dist)
			a.stop()
			a.log.Debug("autoscroll: pausing on item", "path", it.Path, "duration", a.pauseDuration)
			a.pauseSeq++
			seq := a.pauseSeq
			a.pauseTimer = a.sched.AfterFunc(a.pauseDuration, func() { a.resume(seq) })
			return
		}
	}
	a.onTick(travel)
}

func (a *AutoScroll) resume(seq uint64) {
	if a.pauseTimer == nil || seq != a.pauseSeq {
		return
	}
	a.pauseTimer = nil
	a.start()
}
