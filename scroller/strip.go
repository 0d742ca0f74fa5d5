package scroller

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

type placement struct {
	item *Item
	pos  fyne.Position
	size fyne.Size
}

// stripGeometry lays displayed items out along axis with spacing between
// them. Reversed axes put the newest item at offset 0. It also returns the
// size of the whole strip.
func stripGeometry(axis ScrollAxis, items []*Item, spacing float32) ([]placement, fyne.Size) {
	out := make([]placement, 0, len(items))
	var offset, primary float32
	for i := range items {
		it := items[i]
		if axis.Reversed {
			it = items[len(items)-1-i]
		}
		if !it.Displayed {
			continue
		}
		if len(out) > 0 {
			offset += spacing
		}
		out = append(out, placement{
			item: it,
			pos:  axis.Position(0, offset),
			size: it.ProcessedSize,
		})
		offset += it.Extent
		primary = max(primary, axis.Primary(it.ProcessedSize))
	}
	return out, axis.Size(primary, offset)
}

// ImageStrip shows a Scroller's window inside a scroll container. The
// scroller is started on the strip's first non-empty layout.
type ImageStrip struct {
	widget.BaseWidget

	core    *Scroller
	axis    ScrollAxis
	spacing float32

	content *stripContent
	scroll  *container.Scroll
	images  map[*Item]*canvas.Image

	started      bool
	lastSize     fyne.Size
	programmatic bool
}

// NewImageStrip wraps core in a widget. Closing the strip closes core.
func NewImageStrip(core *Scroller) *ImageStrip {
	s := &ImageStrip{
		core:    core,
		axis:    core.Axis(),
		spacing: core.cfg.Spacing,
		images:  make(map[*Item]*canvas.Image),
	}
	s.content = newStripContent(s)
	if s.axis.Vertical {
		s.scroll = container.NewVScroll(s.content)
	} else {
		s.scroll = container.NewHScroll(s.content)
	}
	s.scroll.OnScrolled = func(p fyne.Position) {
		if s.programmatic {
			return
		}
		s.core.OnScrollSignal(s.axis.Offset(p))
	}
	s.ExtendBaseWidget(s)
	return s
}

func (s *ImageStrip) Scroller() *Scroller { return s.core }

func (s *ImageStrip) Close() { s.core.Close() }

func (s *ImageStrip) CreateRenderer() fyne.WidgetRenderer {
	return &imageStripRenderer{s: s}
}

func (s *ImageStrip) ScrollOffset() float32 {
	return s.axis.Offset(s.scroll.Offset)
}

func (s *ImageStrip) SetScrollOffset(off float32) {
	s.scroll.Offset = s.axis.Position(0, off)
	s.programmatic = true
	s.scroll.Refresh()
	s.programmatic = false
}

func (s *ImageStrip) ContentExtent() float32 {
	return s.axis.Extent(s.content.MinSize())
}

func (s *ImageStrip) ItemBounds(it *Item) (fyne.Position, fyne.Size, bool) {
	img, ok := s.images[it]
	if !ok || !img.Visible() {
		return fyne.Position{}, fyne.Size{}, false
	}
	return img.Position(), img.Size(), true
}

func (s *ImageStrip) AddItem(it *Item) {
	img := canvas.NewImageFromImage(nil)
	img.FillMode = canvas.ImageFillContain
	img.ScaleMode = canvas.ImageScaleFastest
	img.Hide()
	s.images[it] = img
}

func (s *ImageStrip) RemoveItem(it *Item) {
	delete(s.images, it)
	s.content.Refresh()
}

func (s *ImageStrip) UpdateItem(it *Item) {
	img, ok := s.images[it]
	if !ok {
		return
	}
	img.Image = it.Image
	img.SetMinSize(it.ProcessedSize)
	img.Show()
	img.Refresh()
	s.content.Refresh()
	s.scroll.Refresh()
}

type imageStripRenderer struct {
	s *ImageStrip
}

func (r *imageStripRenderer) Layout(size fyne.Size) {
	r.s.scroll.Resize(size)
	if size.IsZero() {
		return
	}
	if !r.s.started {
		r.s.started = true
		r.s.lastSize = size
		r.s.core.Start(r.s)
		return
	}
	if size != r.s.lastSize {
		r.s.lastSize = size
		r.s.core.OnResizeSignal(size)
	}
}

func (r *imageStripRenderer) MinSize() fyne.Size {
	return fyne.NewSize(1, 1)
}

func (r *imageStripRenderer) Refresh() {
	r.s.scroll.Refresh()
}

func (r *imageStripRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.s.scroll}
}

func (r *imageStripRenderer) Destroy() {}

// stripContent holds the item images and turns taps into click signals.
type stripContent struct {
	widget.BaseWidget
	strip *ImageStrip
}

func newStripContent(strip *ImageStrip) *stripContent {
	c := &stripContent{strip: strip}
	c.ExtendBaseWidget(c)
	return c
}

func (c *stripContent) Tapped(e *fyne.PointEvent) {
	if _, err := c.strip.core.OnClickSignal(e.Position); err != nil {
		c.strip.core.log.Debug("strip: tap ignored", "error", err)
	}
}

func (c *stripContent) CreateRenderer() fyne.WidgetRenderer {
	return &stripContentRenderer{c: c}
}

type stripContentRenderer struct {
	c *stripContent
}

func (r *stripContentRenderer) geometry() ([]placement, fyne.Size) {
	s := r.c.strip
	return stripGeometry(s.axis, s.core.Window().Items(), s.spacing)
}

func (r *stripContentRenderer) Layout(fyne.Size) {
	placed, _ := r.geometry()
	for _, p := range placed {
		if img, ok := r.c.strip.images[p.item]; ok {
			img.Move(p.pos)
			img.Resize(p.size)
		}
	}
}

func (r *stripContentRenderer) MinSize() fyne.Size {
	_, size := r.geometry()
	return size
}

func (r *stripContentRenderer) Refresh() {
	r.Layout(r.c.Size())
	canvas.Refresh(r.c)
}

func (r *stripContentRenderer) Objects() []fyne.CanvasObject {
	items := r.c.strip.core.Window().Items()
	objs := make([]fyne.CanvasObject, 0, len(items))
	for _, it := range items {
		if img, ok := r.c.strip.images[it]; ok {
			objs = append(objs, img)
		}
	}
	return objs
}

func (r *stripContentRenderer) Destroy() {}
