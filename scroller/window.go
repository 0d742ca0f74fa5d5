package scroller

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/alexballas/xscroller/pathstream"
)

var (
	errExhausted  = errors.New("path source exhausted")
	errSlotFailed = errors.New("admission attempts exhausted")
)

// Opener prepares a newly admitted item, e.g. by decoding it. An error
// counts against the slot's attempt budget and the next path is tried.
type Opener func(it *Item) error

// Change describes one admission/eviction cycle. Correction is the signed
// amount to add to the scroll offset so visible content stays in place.
type Change struct {
	Admitted   []*Item
	Evicted    []*Item
	Correction float32
}

// Window is the bounded, ordered set of materialized items, oldest first.
// It is not safe for concurrent use; all calls come from the control context.
type Window struct {
	items []*Item

	size      int
	threshold float64
	attempts  int
	spacing   float32
	axis      ScrollAxis

	source pathstream.Source
	open   Opener
	log    *slog.Logger

	seq       uint64
	exhausted bool
}

// NewWindow creates an empty window fed from src.
func NewWindow(cfg Config, src pathstream.Source, open Opener) *Window {
	return &Window{
		size:      cfg.QueueSize,
		threshold: cfg.PreloadThreshold,
		attempts:  cfg.Attempts,
		spacing:   cfg.Spacing,
		axis:      NewScrollAxis(cfg.Direction),
		source:    src,
		open:      open,
		log:       cfg.logger(),
	}
}

// Items returns the current items, oldest first. The slice must not be modified.
func (w *Window) Items() []*Item { return w.items }

func (w *Window) Len() int { return len(w.items) }

// Exhausted reports whether the last read from the source hit its end.
func (w *Window) Exhausted() bool { return w.exhausted }

func (w *Window) Contains(it *Item) bool {
	return w.index(it) >= 0
}

func (w *Window) index(it *Item) int {
	for i, cur := range w.items {
		if cur == it {
			return i
		}
	}
	return -1
}

// DisplayedFraction is the share of items that have a result applied.
func (w *Window) DisplayedFraction() float64 {
	if len(w.items) == 0 {
		return 1
	}
	n := 0
	for _, it := range w.items {
		if it.Displayed {
			n++
		}
	}
	return float64(n) / float64(len(w.items))
}

// ShouldAdmit is the admission test for a raw scroll offset pos within
// [0, max]. Admission waits for in-flight processing to mostly finish so the
// window never races ahead of what is shown.
func (w *Window) ShouldAdmit(pos, max float32) bool {
	if frac := w.DisplayedFraction(); frac < 1 && frac <= w.threshold {
		return false
	}
	if max < 0 {
		max = 0
	}
	return w.axis.Progress(pos, max) >= max*float32(w.threshold)
}

// Fill admits items until the window is full or the source ends. It gives
// up after as many failed slots as the window holds.
func (w *Window) Fill() []*Item {
	var admitted []*Item
	for failed := 0; len(w.items) < w.size && failed < w.size; {
		it, err := w.admit()
		if errors.Is(err, errExhausted) {
			break
		}
		if err != nil {
			failed++
			continue
		}
		w.items = append(w.items, it)
		admitted = append(admitted, it)
	}
	return admitted
}

// Cycle admits items until the window is back at its configured size, or
// one item past it when it is already full, then evicts the overflow from
// the oldest end. Evictions never outnumber admissions, so an ended source
// leaves the window as is and a window below size only grows.
func (w *Window) Cycle() Change {
	var ch Change
	for want := max(w.size-len(w.items), 1); want > 0; want-- {
		it, err := w.admit()
		if errors.Is(err, errExhausted) {
			break
		}
		if err != nil {
			continue
		}
		w.items = append(w.items, it)
		ch.Admitted = append(ch.Admitted, it)
	}

	evict := min(len(ch.Admitted), len(w.items)-w.size)
	for ; evict > 0; evict-- {
		it := w.items[0]
		w.items[0] = nil
		w.items = w.items[1:]
		ch.Evicted = append(ch.Evicted, it)
	}

	ch.Correction = w.correction(ch.Admitted, ch.Evicted)
	if len(ch.Admitted) > 0 || len(ch.Evicted) > 0 {
		w.log.Debug("window: cycle",
			"admitted", len(ch.Admitted), "evicted", len(ch.Evicted),
			"size", len(w.items), "correction", ch.Correction)
	}
	return ch
}

// correction computes the offset shift caused by items changing on the
// leading edge (offset 0). Forward layouts lose evicted items there;
// reversed layouts gain admitted ones. Admitted items with no extent yet are
// left unadjusted and get corrected once their first result is displayed.
func (w *Window) correction(admitted, evicted []*Item) float32 {
	var c float32
	if w.axis.Reversed {
		for _, it := range admitted {
			if it.Displayed {
				c += it.Extent + w.spacing
				it.ScrollAdjusted = true
			}
		}
		return c
	}

	for _, it := range admitted {
		it.ScrollAdjusted = true
	}
	for _, it := range evicted {
		if it.Displayed {
			c -= it.Extent + w.spacing
		}
	}
	return c
}

// Remove drops it from the window without a replacement.
func (w *Window) Remove(it *Item) bool {
	i := w.index(it)
	if i < 0 {
		return false
	}
	w.items = append(w.items[:i], w.items[i+1:]...)
	return true
}

// admit fills one slot, trying up to the attempt budget of paths.
func (w *Window) admit() (*Item, error) {
	for attempt := 1; attempt <= w.attempts; attempt++ {
		path, ok := w.source.Next()
		if !ok {
			if !w.exhausted {
				w.log.Debug("window: path source exhausted")
			}
			w.exhausted = true
			return nil, errExhausted
		}
		w.exhausted = false

		w.seq++
		it := newItem(path, w.seq)
		if w.open != nil {
			if err := w.openItem(it); err != nil {
				w.log.Warn("window: cannot open image", "path", path, "attempt", attempt, "error", err)
				continue
			}
		}
		w.log.Debug("window: admitting image", "path", path)
		return it, nil
	}

	w.log.Error("window: giving up on admission slot", "attempts", w.attempts)
	return nil, errSlotFailed
}

// openItem runs the opener; a panicking decoder counts as a failed attempt.
func (w *Window) openItem(it *Item) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %s: panic: %v", ErrDecodeFailure, it.Path, r)
		}
	}()
	return w.open(it)
}
