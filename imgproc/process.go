package imgproc

import (
	"errors"
	"fmt"
	"image"

	"github.com/nfnt/resize"
	"golang.org/x/image/draw"
)

// ErrColorspace is returned for images whose pixel layout has no RGB
// interpretation the brightness stage can work on.
var ErrColorspace = errors.New("unsupported image colorspace")

// TargetSize resolves the requested output size for a source of size src.
// A non-positive dimension is derived from the other one keeping the aspect
// ratio; when both are non-positive the source size is kept.
func TargetSize(src image.Point, w, h int) (int, int) {
	if src.X <= 0 || src.Y <= 0 {
		return 0, 0
	}
	switch {
	case w <= 0 && h <= 0:
		w, h = src.X, src.Y
	case w <= 0:
		w = int(float64(src.X) * float64(h) / float64(src.Y))
	case h <= 0:
		h = int(float64(src.Y) * float64(w) / float64(src.X))
	}
	return max(w, 1), max(h, 1)
}

// Scale returns a new w x h copy of img.
func Scale(img image.Image, w, h int, algo Algorithm) *image.NRGBA {
	if fn, ok := algo.resizeFunc(); ok {
		return toNRGBA(resize.Resize(uint(w), uint(h), img, fn))
	}

	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	algo.interpolator().Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return dst
}

// Process scales src to fit w x h (see TargetSize) and applies b. The
// brightness pass runs on whichever of the source and output has fewer
// pixels. src is never modified.
func Process(src image.Image, w, h int, algo Algorithm, b Brightness) (*image.NRGBA, error) {
	if b.K < 0 {
		return nil, fmt.Errorf("%w: %f", ErrNegativeBrightness, b.K)
	}
	if !supportedColorspace(src) {
		return nil, fmt.Errorf("%w: %T", ErrColorspace, src)
	}

	size := src.Bounds().Size()
	w, h = TargetSize(size, w, h)
	if w == 0 {
		return nil, fmt.Errorf("empty image %dx%d", size.X, size.Y)
	}
	rescale := w != size.X || h != size.Y

	if !rescale {
		out := toNRGBA(src)
		return out, ApplyBrightness(out, b)
	}

	if size.X*size.Y < w*h && !b.identity() {
		pre := toNRGBA(src)
		if err := ApplyBrightness(pre, b); err != nil {
			return nil, err
		}
		return Scale(pre, w, h, algo), nil
	}

	out := Scale(src, w, h, algo)
	return out, ApplyBrightness(out, b)
}

// ProcessFile decodes path and runs Process on it.
func ProcessFile(path string, w, h int, algo Algorithm, b Brightness) (*image.NRGBA, error) {
	img, err := Decode(path)
	if err != nil {
		return nil, err
	}
	return Process(img, w, h, algo, b)
}

func supportedColorspace(img image.Image) bool {
	switch img.(type) {
	case *image.RGBA, *image.RGBA64, *image.NRGBA, *image.NRGBA64,
		*image.Gray, *image.Gray16, *image.YCbCr, *image.NYCbCrA, *image.Paletted:
		return true
	}
	return false
}

func toNRGBA(img image.Image) *image.NRGBA {
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}
