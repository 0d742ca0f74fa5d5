package scroller

import (
	"errors"
	"fmt"
	"image"
	"log/slog"

	"fyne.io/fyne/v2"

	"github.com/alexballas/xscroller/pathstream"
)

var (
	// ErrUnmatchedClick is returned when a click hits no displayed item.
	ErrUnmatchedClick = errors.New("no item under click")
	// ErrClickSuppressed is returned for clicks inside the cooldown of a previous one.
	ErrClickSuppressed = errors.New("click suppressed by cooldown")
)

// Viewport is what the scroller needs from the toolkit. Offsets and bounds
// are in content coordinates along the scroll axis.
type Viewport interface {
	Size() fyne.Size
	ScrollOffset() float32
	SetScrollOffset(off float32)
	ContentExtent() float32
	// ItemBounds returns where it was laid out, if it is laid out at all.
	ItemBounds(it *Item) (fyne.Position, fyne.Size, bool)
	AddItem(it *Item)
	RemoveItem(it *Item)
	UpdateItem(it *Item)
}

// Scroller is the sliding-window content manager. Every method must be
// called on the control context of its Scheduler.
type Scroller struct {
	cfg   Config
	axis  ScrollAxis
	sched Scheduler
	log   *slog.Logger

	window   *Window
	pipeline Pipeline
	debounce *Debouncer
	auto     *AutoScroll

	view Viewport
	size fyne.Size

	stop   chan struct{}
	closed bool
}

// New creates a scroller with the pipeline cfg.Workers selects.
func New(cfg Config, src pathstream.Source, sched Scheduler) (*Scroller, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Workers == 0 {
		return NewWithPipeline(cfg, src, sched, InlinePipeline{})
	}

	var cache *DiskCache
	if cfg.CacheDir != "" {
		c, err := NewDiskCache(cfg.CacheDir)
		if err != nil {
			cfg.logger().Warn("scroller: disk cache disabled", "dir", cfg.CacheDir, "error", err)
		} else {
			cache = c
			go cache.Cleanup()
		}
	}
	return NewWithPipeline(cfg, src, sched, NewPoolPipeline(cfg.Workers, cache, cfg.Logger))
}

// NewWithPipeline creates a scroller processing images through p.
func NewWithPipeline(cfg Config, src pathstream.Source, sched Scheduler, p Pipeline) (*Scroller, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := &Scroller{
		cfg:      cfg,
		axis:     NewScrollAxis(cfg.Direction),
		sched:    sched,
		log:      cfg.logger(),
		pipeline: p,
		debounce: NewDebouncer(sched),
		stop:     make(chan struct{}),
	}
	s.window = NewWindow(cfg, src, p.Open)
	s.auto = NewAutoScroll(cfg, sched, s.scrollBy, s.nextCenterCrossing)
	return s, nil
}

func (s *Scroller) Window() *Window         { return s.window }
func (s *Scroller) AutoScroll() *AutoScroll { return s.auto }
func (s *Scroller) Axis() ScrollAxis        { return s.axis }

// Start fills the window and shows the first items in view. Enough of them
// to cover BurstFactor viewports are processed before Start returns.
func (s *Scroller) Start(view Viewport) {
	s.view = view
	s.size = view.Size()

	admitted := s.window.Fill()
	for _, it := range admitted {
		view.AddItem(it)
	}
	s.burst(admitted)

	if s.axis.Reversed {
		view.SetScrollOffset(s.maxOffset())
	}
	s.log.Info("scroller: started", "items", s.window.Len(), "direction", s.cfg.Direction)

	if wake := s.pipeline.Wake(); wake != nil {
		stop := s.stop
		go func() {
			for {
				select {
				case <-wake:
					s.sched.Do(s.ApplyResults)
				case <-stop:
					return
				}
			}
		}()
	}

	if s.cfg.AutoScrollStart {
		s.auto.Toggle()
	}
	s.adjustAt(view.ScrollOffset())
}

// burst processes items synchronously until they cover BurstFactor
// viewports along the scroll axis and hands the rest to the pipeline.
func (s *Scroller) burst(items []*Item) {
	limit := s.cfg.BurstFactor * s.axis.Extent(s.size)
	var covered float32
	for _, it := range items {
		job := s.job(it)
		if covered >= limit {
			s.submit(job)
			continue
		}
		// laid out before the initial offset is chosen
		it.ScrollAdjusted = true
		s.applyResult(s.pipeline.Run(job))
		if it.Displayed {
			covered += it.Extent + s.cfg.Spacing
		}
	}
}

// OnScrollSignal reports a raw scroll offset from the toolkit.
func (s *Scroller) OnScrollSignal(pos float32) {
	s.debounce.Trigger(scrollEvent, s.cfg.ScrollDelay, Debounce, func() {
		s.adjustAt(pos)
	})
}

// OnResizeSignal reports a new viewport size.
func (s *Scroller) OnResizeSignal(size fyne.Size) {
	s.debounce.Trigger(resizeEvent, s.cfg.ResizeDelay, Debounce, func() {
		s.resize(size)
	})
}

// OnClickSignal resolves a click at pos, in content coordinates, to the
// displayed item under it.
func (s *Scroller) OnClickSignal(pos fyne.Position) (*Item, error) {
	var (
		hit *Item
		err error
	)
	ran := s.debounce.Trigger(clickEvent, s.cfg.ClickCooldown, Immediate, func() {
		hit, err = s.itemAt(pos)
	})
	if !ran {
		return nil, ErrClickSuppressed
	}
	return hit, err
}

// SetScrollAuto applies an auto-scroll action.
func (s *Scroller) SetScrollAuto(action AutoScrollAction) {
	switch action {
	case AutoScrollToggle:
		s.auto.Toggle()
	case AutoScrollFaster:
		s.auto.Faster()
	case AutoScrollSlower:
		s.auto.Slower()
	}
}

// ApplyResults drains the pipeline and applies every completed result.
func (s *Scroller) ApplyResults() {
	if s.closed {
		return
	}
	for _, res := range s.pipeline.Drain() {
		s.applyResult(res)
	}
}

// Close stops timers and workers. The scroller cannot be restarted.
func (s *Scroller) Close() {
	if s.closed {
		return
	}
	s.closed = true
	close(s.stop)
	s.auto.Stop()
	s.debounce.Stop()
	s.pipeline.Close()
}

func (s *Scroller) maxOffset() float32 {
	return max(0, s.view.ContentExtent()-s.axis.Extent(s.view.Size()))
}

// adjustAt runs the admission test for pos and applies any resulting cycle.
func (s *Scroller) adjustAt(pos float32) {
	if s.view == nil || s.closed {
		return
	}
	maxPos := s.view.ContentExtent() - s.axis.Extent(s.view.Size())
	if !s.window.ShouldAdmit(pos, maxPos) {
		return
	}

	ch := s.window.Cycle()
	for _, it := range ch.Evicted {
		s.view.RemoveItem(it)
		s.pipeline.Forget(it)
	}
	for _, it := range ch.Admitted {
		s.view.AddItem(it)
	}
	if ch.Correction != 0 {
		s.view.SetScrollOffset(max(0, s.view.ScrollOffset()+ch.Correction))
	}
	for _, it := range ch.Admitted {
		s.submit(s.job(it))
	}
}

func (s *Scroller) resize(size fyne.Size) {
	if s.view == nil || s.closed {
		return
	}
	old := s.size
	s.size = size
	if s.axis.Primary(old) != s.axis.Primary(size) {
		s.log.Debug("scroller: reprocessing for new size", "size", size)
		w, h := s.axis.TargetPixels(size)
		// failures evict, so iterate a copy
		items := append([]*Item(nil), s.window.Items()...)
		for _, it := range items {
			if it.needsProcessing(image.Pt(w, h)) {
				s.submit(s.job(it))
			}
		}
	}
	s.adjustAt(s.view.ScrollOffset())
}

// job stamps a new generation on it and snapshots the processing parameters.
func (s *Scroller) job(it *Item) Job {
	w, h := s.axis.TargetPixels(s.size)
	return Job{
		Item: it,
		Gen:  it.request(image.Pt(w, h)),
		Path: it.Path,
		Raw:  it.Raw,
		Params: Params{
			Width:      w,
			Height:     h,
			Algorithm:  s.cfg.Algorithm,
			Brightness: s.cfg.Brightness,
		},
	}
}

func (s *Scroller) submit(job Job) {
	if res, ok := s.pipeline.Submit(job); ok {
		s.applyResult(res)
	}
}

func (s *Scroller) applyResult(res Result) {
	it := res.Item
	if it == nil || !s.window.Contains(it) || res.Gen != it.gen {
		s.log.Debug("scroller: discarding stale result", "gen", res.Gen)
		return
	}
	if res.Err != nil {
		s.log.Warn("scroller: evicting image", "path", it.Path, "error", res.Err)
		s.evict(it)
		return
	}

	b := res.Image.Bounds()
	it.Image = res.Image
	it.ProcessedSize = fyne.NewSize(float32(b.Dx()), float32(b.Dy()))
	it.Extent = s.axis.Extent(it.ProcessedSize)
	it.Displayed = true
	s.view.UpdateItem(it)

	if s.axis.Reversed && !it.ScrollAdjusted {
		it.ScrollAdjusted = true
		s.view.SetScrollOffset(s.view.ScrollOffset() + it.Extent + s.cfg.Spacing)
	}
}

func (s *Scroller) evict(it *Item) {
	s.window.Remove(it)
	s.view.RemoveItem(it)
	s.pipeline.Forget(it)
}

func (s *Scroller) itemAt(pos fyne.Position) (*Item, error) {
	for _, it := range s.window.Items() {
		if !it.Displayed {
			continue
		}
		p, size, ok := s.view.ItemBounds(it)
		if !ok {
			continue
		}
		if pos.X >= p.X && pos.X < p.X+size.Width && pos.Y >= p.Y && pos.Y < p.Y+size.Height {
			s.log.Debug("scroller: click", "path", it.Path)
			if s.cfg.OnItemClick != nil {
				s.cfg.OnItemClick(it)
			}
			return it, nil
		}
	}
	s.log.Debug("scroller: click matched nothing", "x", pos.X, "y", pos.Y)
	return nil, fmt.Errorf("%w at (%g, %g)", ErrUnmatchedClick, pos.X, pos.Y)
}

// scrollBy moves the offset travel pixels in the growth direction and
// re-runs the admission test straight away.
func (s *Scroller) scrollBy(travel float32) {
	if s.view == nil || s.closed {
		return
	}
	off := s.view.ScrollOffset() + travel*s.axis.Forward()
	off = min(max(off, 0), s.maxOffset())
	s.view.SetScrollOffset(off)
	s.debounce.Clear(scrollEvent)
	s.adjustAt(off)
}

func (s *Scroller) nextCenterCrossing(travel float32, skip *Item) (float32, *Item, bool) {
	if s.view == nil {
		return 0, nil, false
	}
	center := s.view.ScrollOffset() + s.axis.Extent(s.view.Size())/2

	var hit *Item
	best := travel + 2*centerEpsilon
	for _, it := range s.window.Items() {
		if !it.Displayed || it == skip {
			continue
		}
		p, size, ok := s.view.ItemBounds(it)
		if !ok {
			continue
		}
		c := s.axis.Offset(p) + s.axis.Extent(size)/2
		dist := (c - center) * s.axis.Forward()
		if dist >= -centerEpsilon && dist <= travel+centerEpsilon && dist < best {
			best, hit = dist, it
		}
	}
	if hit == nil {
		return 0, nil, false
	}
	return max(best, 0), hit, true
}
