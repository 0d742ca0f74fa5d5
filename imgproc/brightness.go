package imgproc

import (
	"errors"
	"image"
	"math"
)

var ErrNegativeBrightness = errors.New("brightness cannot be negative")

// AdaptiveDirection constrains the correction derived from an image's
// median luminance.
type AdaptiveDirection int

const (
	AdaptiveOff AdaptiveDirection = iota
	AdaptiveBoth
	AdaptiveBrighten
	AdaptiveDarken
)

// Brightness is a per-pixel perceived-brightness adjustment.
type Brightness struct {
	// K is a flat multiplier applied to every pixel's perceived brightness.
	K float64
	// Adaptive enables the median-luminance correction towards Target.
	Adaptive AdaptiveDirection
	// Target median brightness in [0, 1].
	Target float64
}

// DefaultBrightness leaves pixels untouched.
func DefaultBrightness() Brightness {
	return Brightness{K: 1, Target: 0.5}
}

func (b Brightness) identity() bool {
	return b.K == 1 && b.Adaptive == AdaptiveOff
}

// Coefficient returns the total multiplier for an image whose median
// perceived brightness is median (0-255).
func (b Brightness) Coefficient(median float64) float64 {
	k := b.K
	if b.Adaptive == AdaptiveOff {
		return k
	}
	if median < 1 {
		median = 1
	}
	c := b.Target * 255 / median
	switch b.Adaptive {
	case AdaptiveBrighten:
		c = math.Max(c, 1)
	case AdaptiveDarken:
		c = math.Min(c, 1)
	}
	return c * k
}

// ApplyBrightness scales the perceived brightness of img in place.
func ApplyBrightness(img *image.NRGBA, b Brightness) error {
	if b.K < 0 {
		return ErrNegativeBrightness
	}
	if b.identity() {
		return nil
	}

	k := b.Coefficient(MedianBrightness(img))
	if k == 1 {
		return nil
	}

	bounds := img.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		row := img.Pix[img.PixOffset(bounds.Min.X, y):img.PixOffset(bounds.Max.X, y)]
		for i := 0; i+4 <= len(row); i += 4 {
			h, s, p := rgbToHSP(float64(row[i]), float64(row[i+1]), float64(row[i+2]))
			r, g, bl := hspToRGB(h, s, p*k)
			row[i], row[i+1], row[i+2] = clamp8(r), clamp8(g), clamp8(bl)
		}
	}
	return nil
}

// MedianBrightness returns the median perceived brightness (0-255) of img.
func MedianBrightness(img *image.NRGBA) float64 {
	var hist [256]int
	total := 0
	bounds := img.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		row := img.Pix[img.PixOffset(bounds.Min.X, y):img.PixOffset(bounds.Max.X, y)]
		for i := 0; i+4 <= len(row); i += 4 {
			_, _, p := rgbToHSP(float64(row[i]), float64(row[i+1]), float64(row[i+2]))
			hist[clamp8(p)]++
			total++
		}
	}
	if total == 0 {
		return 0
	}

	half := (total + 1) / 2
	seen := 0
	for v, n := range hist {
		seen += n
		if seen >= half {
			return float64(v)
		}
	}
	return 255
}

func clamp8(v float64) uint8 {
	switch {
	case v <= 0 || math.IsNaN(v):
		return 0
	case v >= 255:
		return 255
	}
	return uint8(v + 0.5)
}

// HSP colour model, see http://alienryderflex.com/hsp.html.
const (
	pr = .299
	pg = .587
	pb = .114
)

func rgbToHSP(r, g, b float64) (h, s, p float64) {
	p = math.Sqrt(r*r*pr + g*g*pg + b*b*pb)
	if r == g && r == b {
		return 0, 0, p
	}

	switch {
	case r >= g && r >= b:
		if b >= g {
			h, s = 1-1./6*(b-g)/(r-g), 1-g/r
		} else {
			h, s = 1./6*(g-b)/(r-b), 1-b/r
		}
	case g >= r && g >= b:
		if r >= b {
			h, s = 2./6-1./6*(r-b)/(g-b), 1-b/g
		} else {
			h, s = 2./6+1./6*(b-r)/(g-r), 1-r/g
		}
	default:
		if g >= r {
			h, s = 4./6-1./6*(g-r)/(b-r), 1-r/b
		} else {
			h, s = 4./6+1./6*(r-g)/(b-g), 1-g/b
		}
	}
	return h, s, p
}

func hspToRGB(h, s, p float64) (r, g, b float64) {
	minOverMax := 1 - s

	if minOverMax > 0 {
		// Chromatic: solve for the smallest channel, derive the others.
		part := func(hh float64) float64 { return 1 + hh*(1/minOverMax-1) }
		switch {
		case h < 1./6:
			h = 6 * h
			x := part(h)
			b = p / math.Sqrt(pr/minOverMax/minOverMax+pg*x*x+pb)
			r = b / minOverMax
			g = b + h*(r-b)
		case h < 2./6:
			h = 6 * (-h + 2./6)
			x := part(h)
			b = p / math.Sqrt(pg/minOverMax/minOverMax+pr*x*x+pb)
			g = b / minOverMax
			r = b + h*(g-b)
		case h < 3./6:
			h = 6 * (h - 2./6)
			x := part(h)
			r = p / math.Sqrt(pg/minOverMax/minOverMax+pb*x*x+pr)
			g = r / minOverMax
			b = r + h*(g-r)
		case h < 4./6:
			h = 6 * (-h + 4./6)
			x := part(h)
			r = p / math.Sqrt(pb/minOverMax/minOverMax+pg*x*x+pr)
			b = r / minOverMax
			g = r + h*(b-r)
		case h < 5./6:
			h = 6 * (h - 4./6)
			x := part(h)
			g = p / math.Sqrt(pb/minOverMax/minOverMax+pr*x*x+pg)
			b = g / minOverMax
			r = g + h*(b-g)
		default:
			h = 6 * (-h + 1)
			x := part(h)
			g = p / math.Sqrt(pr/minOverMax/minOverMax+pb*x*x+pg)
			r = g / minOverMax
			b = g + h*(r-g)
		}
		return r, g, b
	}

	// Fully saturated: the smallest channel is zero.
	switch {
	case h < 1./6:
		h = 6 * h
		r = math.Sqrt(p * p / (pr + pg*h*h))
		g = r * h
	case h < 2./6:
		h = 6 * (-h + 2./6)
		g = math.Sqrt(p * p / (pg + pr*h*h))
		r = g * h
	case h < 3./6:
		h = 6 * (h - 2./6)
		g = math.Sqrt(p * p / (pg + pb*h*h))
		b = g * h
	case h < 4./6:
		h = 6 * (-h + 4./6)
		b = math.Sqrt(p * p / (pb + pg*h*h))
		g = b * h
	case h < 5./6:
		h = 6 * (h - 4./6)
		b = math.Sqrt(p * p / (pb + pr*h*h))
		r = b * h
	default:
		h = 6 * (-h + 1)
		r = math.Sqrt(p * p / (pr + pb*h*h))
		b = r * h
	}
	return r, g, b
}
