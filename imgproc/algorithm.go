package imgproc

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/nfnt/resize"
	"golang.org/x/image/draw"
)

// Algorithm selects the interpolation used when scaling. The numeric
// values are stable and safe to persist or pass across process boundaries;
// the first four match GDK's InterpType ids.
type Algorithm int

const (
	Nearest Algorithm = iota
	Tiles
	Bilinear
	Hyper
	Lanczos
	Mitchell
)

var algorithmNames = [...]string{
	Nearest:  "nearest",
	Tiles:    "tiles",
	Bilinear: "bilinear",
	Hyper:    "hyper",
	Lanczos:  "lanczos",
	Mitchell: "mitchell",
}

func (a Algorithm) String() string {
	if !a.Valid() {
		return "Algorithm(" + strconv.Itoa(int(a)) + ")"
	}
	return algorithmNames[a]
}

func (a Algorithm) Valid() bool {
	return a >= 0 && int(a) < len(algorithmNames)
}

// ParseAlgorithm accepts either an algorithm name or its numeric id.
func ParseAlgorithm(s string) (Algorithm, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if n, err := strconv.Atoi(s); err == nil {
		if a := Algorithm(n); a.Valid() {
			return a, nil
		}
		return 0, fmt.Errorf("unknown scaling algorithm id %d", n)
	}
	for i, name := range algorithmNames {
		if name == s {
			return Algorithm(i), nil
		}
	}
	return 0, fmt.Errorf("unknown scaling algorithm %q", s)
}

// AlgorithmNames lists the accepted names in id order.
func AlgorithmNames() []string {
	return append([]string(nil), algorithmNames[:]...)
}

func (a Algorithm) interpolator() draw.Interpolator {
	switch a {
	case Nearest:
		return draw.NearestNeighbor
	case Tiles:
		return draw.ApproxBiLinear
	case Hyper:
		return draw.CatmullRom
	default:
		return draw.BiLinear
	}
}

// resizeFunc returns the nfnt/resize kernel for the windowed-sinc family,
// which x/image/draw does not provide.
func (a Algorithm) resizeFunc() (resize.InterpolationFunction, bool) {
	switch a {
	case Lanczos:
		return resize.Lanczos3, true
	case Mitchell:
		return resize.MitchellNetravali, true
	}
	return 0, false
}
