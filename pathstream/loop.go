package pathstream

import (
	"log/slog"
)

// Factory creates a fresh finite Source for every lap of a Loop.
type Factory func() Source

// Looped restarts a finite source forever by re-invoking its factory.
// A lap that yields nothing ends the stream, so an empty or one-shot
// source (stdin) cannot spin.
type Looped struct {
	factory Factory
	log     *slog.Logger

	cur  Source
	lap  int
	seen bool
}

// Loop returns a Source cycling through the laps produced by factory.
// Wrapping a Shuffle inside the factory reshuffles on every lap.
func Loop(factory Factory, log *slog.Logger) *Looped {
	if log == nil {
		log = slog.Default()
	}
	return &Looped{factory: factory, log: log}
}

func (l *Looped) Next() (string, bool) {
	for attempt := 0; attempt < 2; attempt++ {
		if l.cur == nil {
			l.cur = l.factory()
			l.lap++
			l.seen = false
			if l.lap > 1 {
				l.log.Debug("paths: restarting loop", "lap", l.lap)
			}
		}
		if p, ok := l.cur.Next(); ok {
			l.seen = true
			return p, true
		}
		if !l.seen {
			l.log.Warn("paths: loop lap produced no paths, stopping", "lap", l.lap)
			return "", false
		}
		l.cur = nil
	}
	return "", false
}

// Lap returns the number of the lap currently being read, starting at 1.
func (l *Looped) Lap() int { return l.lap }
