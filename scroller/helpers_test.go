package scroller

import (
	"fmt"
	"image"
	"io"
	"log/slog"
	"sort"
	"testing"
	"time"

	"fyne.io/fyne/v2"

	"github.com/alexballas/xscroller/pathstream"
)

var quietLog = slog.New(slog.NewTextHandler(io.Discard, nil))

// panicMagic starts files whose registered decoder panics.
const panicMagic = "XPANIC"

func init() {
	image.RegisterFormat("xpanic", panicMagic,
		func(io.Reader) (image.Image, error) { panic("decoder bug") },
		func(io.Reader) (image.Config, error) { panic("decoder bug") })
}

// manualScheduler runs everything on the test goroutine against a virtual clock.
type manualScheduler struct {
	now    time.Duration
	timers []*manualTimer
}

type manualTimer struct {
	at      time.Duration
	every   time.Duration
	fn      func()
	stopped bool
}

func (t *manualTimer) Stop() bool {
	was := !t.stopped
	t.stopped = true
	return was
}

func (s *manualScheduler) Do(fn func()) { fn() }

func (s *manualScheduler) AfterFunc(d time.Duration, fn func()) Timer {
	t := &manualTimer{at: s.now + d, fn: fn}
	s.timers = append(s.timers, t)
	return t
}

func (s *manualScheduler) Every(d time.Duration, fn func()) Timer {
	t := &manualTimer{at: s.now + d, every: d, fn: fn}
	s.timers = append(s.timers, t)
	return t
}

// Advance moves the clock forward by d, firing due timers in order.
func (s *manualScheduler) Advance(d time.Duration) {
	end := s.now + d
	for {
		live := s.timers[:0]
		for _, t := range s.timers {
			if !t.stopped {
				live = append(live, t)
			}
		}
		s.timers = live
		sort.SliceStable(s.timers, func(i, j int) bool { return s.timers[i].at < s.timers[j].at })
		if len(s.timers) == 0 || s.timers[0].at > end {
			break
		}
		t := s.timers[0]
		s.now = t.at
		if t.every > 0 {
			t.at += t.every
		} else {
			t.stopped = true
		}
		t.fn()
	}
	s.now = end
}

// active counts timers that have not fired or been stopped.
func (s *manualScheduler) active() int {
	n := 0
	for _, t := range s.timers {
		if !t.stopped {
			n++
		}
	}
	return n
}

// fakePipeline produces blank images whose height is looked up per path.
type fakePipeline struct {
	heights  map[string]int
	openFail map[string]bool
	runFail  map[string]bool
	async    bool

	queued    []Job
	opened    []string
	forgotten []*Item
}

func newFakePipeline() *fakePipeline {
	return &fakePipeline{
		heights:  map[string]int{},
		openFail: map[string]bool{},
		runFail:  map[string]bool{},
	}
}

func (f *fakePipeline) Open(it *Item) error {
	f.opened = append(f.opened, it.Path)
	if f.openFail[it.Path] {
		return fmt.Errorf("%w: %s is corrupt", ErrDecodeFailure, it.Path)
	}
	return nil
}

func (f *fakePipeline) Run(job Job) Result {
	res := Result{Item: job.Item, Gen: job.Gen}
	if f.runFail[job.Path] {
		res.Err = fmt.Errorf("%w: %s", ErrDecodeFailure, job.Path)
		return res
	}
	w := job.Params.Width
	if w <= 0 {
		w = 100
	}
	h := f.heights[job.Path]
	if h <= 0 {
		h = 100
	}
	res.Image = image.NewNRGBA(image.Rect(0, 0, w, h))
	return res
}

func (f *fakePipeline) Submit(job Job) (Result, bool) {
	if f.async {
		f.queued = append(f.queued, job)
		return Result{}, false
	}
	return f.Run(job), true
}

func (f *fakePipeline) Wake() <-chan struct{} { return nil }

func (f *fakePipeline) Drain() []Result {
	var out []Result
	for _, job := range f.queued {
		out = append(out, f.Run(job))
	}
	f.queued = nil
	return out
}

func (f *fakePipeline) Forget(it *Item) { f.forgotten = append(f.forgotten, it) }
func (f *fakePipeline) Close()          {}

// fakeView lays items out with the same geometry as ImageStrip.
type fakeView struct {
	axis    ScrollAxis
	spacing float32
	size    fyne.Size
	offset  float32
	items   func() []*Item

	added   []*Item
	removed []*Item
	updated int
}

func (v *fakeView) Size() fyne.Size             { return v.size }
func (v *fakeView) ScrollOffset() float32       { return v.offset }
func (v *fakeView) SetScrollOffset(off float32) { v.offset = off }
func (v *fakeView) AddItem(it *Item)            { v.added = append(v.added, it) }
func (v *fakeView) RemoveItem(it *Item)         { v.removed = append(v.removed, it) }
func (v *fakeView) UpdateItem(*Item)            { v.updated++ }

func (v *fakeView) ContentExtent() float32 {
	_, size := stripGeometry(v.axis, v.items(), v.spacing)
	return v.axis.Extent(size)
}

func (v *fakeView) ItemBounds(it *Item) (fyne.Position, fyne.Size, bool) {
	placed, _ := stripGeometry(v.axis, v.items(), v.spacing)
	for _, p := range placed {
		if p.item == it {
			return p.pos, p.size, true
		}
	}
	return fyne.Position{}, fyne.Size{}, false
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Logger = quietLog
	return cfg
}

// newTestScroller builds a started scroller over paths on a 100x150 viewport.
func newTestScroller(t testing.TB, cfg Config, p *fakePipeline, list ...string) (*Scroller, *fakeView, *manualScheduler) {
	t.Helper()
	sched := &manualScheduler{}
	s, err := NewWithPipeline(cfg, pathstream.FromSlice(list), sched, p)
	if err != nil {
		t.Fatal(err)
	}
	view := &fakeView{
		axis:    s.Axis(),
		spacing: cfg.Spacing,
		size:    fyne.NewSize(100, 150),
		items:   s.Window().Items,
	}
	s.Start(view)
	return s, view, sched
}

func paths(items []*Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Path
	}
	return out
}
