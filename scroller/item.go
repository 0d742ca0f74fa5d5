package scroller

import (
	"image"
	"strconv"

	"fyne.io/fyne/v2"
	"github.com/google/uuid"
)

var itemNamespace = uuid.MustParse("5b0f2c1e-8d8a-4b77-9a55-7f0f3c2d9e41")

// Item is one image in the window. It is only ever read or written on the
// control context; workers receive a snapshot of what they need.
type Item struct {
	// ID is derived from the path and the admission sequence, so the same
	// path admitted twice by a looping source still gets distinct identities.
	ID   uuid.UUID
	Path string

	// Raw holds the decoded source image when the inline pipeline is used.
	Raw image.Image
	// Image is the last result applied to the item.
	Image image.Image

	// ProcessedSize is the size Image was rendered at; zero when unset.
	ProcessedSize fyne.Size
	// Extent is the item's size along the scroll axis, valid once Displayed.
	Extent float32

	Displayed      bool
	ScrollAdjusted bool

	gen       uint64
	requested image.Point
}

func newItem(path string, seq uint64) *Item {
	return &Item{
		ID:   uuid.NewSHA1(itemNamespace, []byte(path+"\x00"+strconv.FormatUint(seq, 10))),
		Path: path,
	}
}

// Generation returns the stamp of the latest processing request.
func (it *Item) Generation() uint64 { return it.gen }

// request records a new target size in pixels and returns the generation
// stamp the matching job must carry.
func (it *Item) request(target image.Point) uint64 {
	it.gen++
	it.requested = target
	return it.gen
}

// needsProcessing reports whether target differs from what was last requested.
func (it *Item) needsProcessing(target image.Point) bool {
	return it.gen == 0 || it.requested != target
}
