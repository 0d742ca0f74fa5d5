package scroller

import (
	"sync"
	"time"

	"fyne.io/fyne/v2"
)

// Timer is a cancellable scheduled callback. Stop reports whether the
// call stopped it; *time.Timer satisfies it.
type Timer interface {
	Stop() bool
}

// Scheduler is the single-threaded control context. Every callback it runs
// executes on that context, one at a time.
type Scheduler interface {
	// Do runs fn on the control context.
	Do(fn func())
	// AfterFunc runs fn on the control context once d has elapsed.
	AfterFunc(d time.Duration, fn func()) Timer
	// Every runs fn on the control context every d until stopped.
	Every(d time.Duration, fn func()) Timer
}

// FyneScheduler uses the fyne event loop as the control context.
type FyneScheduler struct{}

func (FyneScheduler) Do(fn func()) {
	fyne.Do(fn)
}

func (FyneScheduler) AfterFunc(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, func() { fyne.Do(fn) })
}

func (FyneScheduler) Every(d time.Duration, fn func()) Timer {
	t := &tickerTimer{
		ticker: time.NewTicker(d),
		stop:   make(chan struct{}),
	}
	ticker, stop := t.ticker, t.stop
	go func() {
		for {
			select {
			case <-ticker.C:
				fyne.Do(fn)
			case <-stop:
				return
			}
		}
	}()
	return t
}

type tickerTimer struct {
	ticker *time.Ticker
	stop   chan struct{}
	once   sync.Once
}

func (t *tickerTimer) Stop() bool {
	stopped := false
	t.once.Do(func() {
		t.ticker.Stop()
		close(t.stop)
		stopped = true
	})
	return stopped
}
