package scroller

import (
	"fyne.io/fyne/v2"
)

// ScrollAxis maps generic geometry onto one of the four directions.
// "Primary" is the cross dimension images are fitted to (width for vertical
// strips), "scroll" the dimension content grows along. Reversed axes pack
// content from the trailing edge, so the newest item sits at offset 0.
type ScrollAxis struct {
	Direction Direction
	Reversed  bool
	Vertical  bool
}

// NewScrollAxis returns the axis for d.
func NewScrollAxis(d Direction) ScrollAxis {
	return ScrollAxis{
		Direction: d,
		Reversed:  d == DirectionUp || d == DirectionLeft,
		Vertical:  d == DirectionDown || d == DirectionUp,
	}
}

// Primary returns the cross-axis dimension of s.
func (a ScrollAxis) Primary(s fyne.Size) float32 {
	if a.Vertical {
		return s.Width
	}
	return s.Height
}

// Extent returns the scroll-axis dimension of s.
func (a ScrollAxis) Extent(s fyne.Size) float32 {
	if a.Vertical {
		return s.Height
	}
	return s.Width
}

// Offset returns the scroll-axis component of p.
func (a ScrollAxis) Offset(p fyne.Position) float32 {
	if a.Vertical {
		return p.Y
	}
	return p.X
}

// Size builds a size from its primary and scroll-axis parts.
func (a ScrollAxis) Size(primary, extent float32) fyne.Size {
	if a.Vertical {
		return fyne.NewSize(primary, extent)
	}
	return fyne.NewSize(extent, primary)
}

// Position builds a position from its primary and scroll-axis parts.
func (a ScrollAxis) Position(primary, offset float32) fyne.Position {
	if a.Vertical {
		return fyne.NewPos(primary, offset)
	}
	return fyne.NewPos(offset, primary)
}

// TargetPixels returns the width and height to request from the image
// pipeline for a viewport of size s; the scroll-axis side is left at 0 so
// the aspect ratio decides it.
func (a ScrollAxis) TargetPixels(s fyne.Size) (w, h int) {
	if a.Vertical {
		return int(s.Width), 0
	}
	return 0, int(s.Height)
}

// Progress converts a raw scroll offset into distance travelled in the
// growth direction.
func (a ScrollAxis) Progress(pos, max float32) float32 {
	if a.Reversed {
		return max - pos
	}
	return pos
}

// Forward returns the sign of travel in the growth direction.
func (a ScrollAxis) Forward() float32 {
	if a.Reversed {
		return -1
	}
	return 1
}
