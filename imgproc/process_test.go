package imgproc

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"testing"
)

func solid(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func TestTargetSize(t *testing.T) {
	src := image.Pt(400, 200)
	tests := []struct {
		w, h         int
		wantW, wantH int
	}{
		{0, 0, 400, 200},
		{200, 0, 200, 100},
		{0, 50, 100, 50},
		{-1, 100, 200, 100},
		{30, 40, 30, 40},
		{1, 0, 1, 1},
	}
	for _, tt := range tests {
		w, h := TargetSize(src, tt.w, tt.h)
		if w != tt.wantW || h != tt.wantH {
			t.Errorf("TargetSize(%v, %d, %d) = %dx%d, want %dx%d", src, tt.w, tt.h, w, h, tt.wantW, tt.wantH)
		}
	}
}

func TestParseAlgorithm(t *testing.T) {
	for i, name := range AlgorithmNames() {
		a, err := ParseAlgorithm(name)
		if err != nil || int(a) != i {
			t.Errorf("ParseAlgorithm(%q) = %v, %v", name, a, err)
		}
	}
	if a, err := ParseAlgorithm("2"); err != nil || a != Bilinear {
		t.Errorf("expected numeric id 2 to be bilinear, got %v, %v", a, err)
	}
	if _, err := ParseAlgorithm("9"); err == nil {
		t.Error("expected error for unknown id")
	}
	if _, err := ParseAlgorithm("fancy"); err == nil {
		t.Error("expected error for unknown name")
	}
	if Algorithm(42).String() != "Algorithm(42)" {
		t.Errorf("unexpected String for invalid algorithm: %s", Algorithm(42))
	}
}

func TestScale_AllAlgorithmsProduceRequestedSize(t *testing.T) {
	src := solid(64, 32, color.NRGBA{R: 200, G: 10, B: 10, A: 255})
	for i := range AlgorithmNames() {
		algo := Algorithm(i)
		out := Scale(src, 16, 8, algo)
		if out.Bounds().Dx() != 16 || out.Bounds().Dy() != 8 {
			t.Errorf("%s: got %v", algo, out.Bounds())
			continue
		}
		r, _, _, _ := out.At(8, 4).RGBA()
		if r>>8 < 150 {
			t.Errorf("%s: expected red center, got r=%d", algo, r>>8)
		}
	}
}

func TestHSPRoundTrip(t *testing.T) {
	colors := [][3]float64{
		{255, 0, 0}, {0, 255, 0}, {0, 0, 255}, {10, 200, 30}, {120, 120, 120},
		{250, 100, 180}, {30, 60, 90}, {90, 30, 60}, {1, 2, 3},
	}
	for _, c := range colors {
		h, s, p := rgbToHSP(c[0], c[1], c[2])
		r, g, b := hspToRGB(h, s, p)
		if math.Abs(r-c[0]) > 0.5 || math.Abs(g-c[1]) > 0.5 || math.Abs(b-c[2]) > 0.5 {
			t.Errorf("round trip of %v gave %.2f %.2f %.2f", c, r, g, b)
		}
	}
}

func TestApplyBrightness(t *testing.T) {
	img := solid(4, 4, color.NRGBA{R: 100, G: 100, B: 100, A: 128})
	if err := ApplyBrightness(img, Brightness{K: 1.5}); err != nil {
		t.Fatal(err)
	}
	c := img.NRGBAAt(1, 1)
	if c.R != 150 || c.G != 150 || c.B != 150 {
		t.Errorf("expected 150 gray, got %v", c)
	}
	if c.A != 128 {
		t.Errorf("alpha must be untouched, got %d", c.A)
	}

	if err := ApplyBrightness(img, Brightness{K: -1}); !errors.Is(err, ErrNegativeBrightness) {
		t.Errorf("expected ErrNegativeBrightness, got %v", err)
	}
}

func TestBrightnessCoefficient_AdaptiveDirections(t *testing.T) {
	dark, bright := 50.0, 200.0
	tests := []struct {
		name   string
		b      Brightness
		median float64
		want   float64
	}{
		{"off ignores median", Brightness{K: 2, Target: 0.5}, dark, 2},
		{"both brightens dark", Brightness{K: 1, Adaptive: AdaptiveBoth, Target: 0.5}, dark, 127.5 / 50},
		{"both darkens bright", Brightness{K: 1, Adaptive: AdaptiveBoth, Target: 0.5}, bright, 127.5 / 200},
		{"brighten-only keeps bright", Brightness{K: 1, Adaptive: AdaptiveBrighten, Target: 0.5}, bright, 1},
		{"darken-only keeps dark", Brightness{K: 1, Adaptive: AdaptiveDarken, Target: 0.5}, dark, 1},
		{"flat multiplier applied after", Brightness{K: 0.5, Adaptive: AdaptiveBrighten, Target: 0.5}, dark, 0.5 * 127.5 / 50},
	}
	for _, tt := range tests {
		got := tt.b.Coefficient(tt.median)
		if math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("%s: got %f, want %f", tt.name, got, tt.want)
		}
	}
}

func TestMedianBrightness(t *testing.T) {
	img := solid(3, 1, color.NRGBA{A: 255})
	img.SetNRGBA(1, 0, color.NRGBA{R: 90, G: 90, B: 90, A: 255})
	img.SetNRGBA(2, 0, color.NRGBA{R: 200, G: 200, B: 200, A: 255})
	if m := MedianBrightness(img); m != 90 {
		t.Errorf("expected median 90, got %f", m)
	}
}

func TestProcess_RejectsUnsupportedColorspace(t *testing.T) {
	cmyk := image.NewCMYK(image.Rect(0, 0, 4, 4))
	_, err := Process(cmyk, 2, 0, Bilinear, DefaultBrightness())
	if !errors.Is(err, ErrColorspace) {
		t.Fatalf("expected ErrColorspace, got %v", err)
	}
}

func TestProcess_DoesNotModifySource(t *testing.T) {
	src := solid(8, 8, color.NRGBA{R: 80, G: 80, B: 80, A: 255})
	out, err := Process(src, 8, 0, Nearest, Brightness{K: 2})
	if err != nil {
		t.Fatal(err)
	}
	if src.NRGBAAt(0, 0).R != 80 {
		t.Error("source pixels were modified")
	}
	if out.NRGBAAt(0, 0).R != 160 {
		t.Errorf("expected brightened output, got %v", out.NRGBAAt(0, 0))
	}

	up, err := Process(src, 16, 0, Nearest, Brightness{K: 2})
	if err != nil {
		t.Fatal(err)
	}
	if up.Bounds().Dx() != 16 || up.Bounds().Dy() != 16 || up.NRGBAAt(15, 15).R != 160 {
		t.Errorf("unexpected upscaled result %v %v", up.Bounds(), up.NRGBAAt(15, 15))
	}
}

func TestProcessFile(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "wide.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := png.Encode(f, solid(320, 180, color.NRGBA{G: 255, A: 255})); err != nil {
		t.Fatal(err)
	}
	f.Close()

	out, err := ProcessFile(path, 160, 0, Bilinear, DefaultBrightness())
	if err != nil {
		t.Fatal(err)
	}
	if out.Bounds().Dx() != 160 || out.Bounds().Dy() != 90 {
		t.Errorf("expected 160x90, got %v", out.Bounds())
	}

	junk := filepath.Join(tmpDir, "junk.jpg")
	_ = os.WriteFile(junk, []byte("not an image"), 0644)
	if _, err := ProcessFile(junk, 10, 10, Bilinear, DefaultBrightness()); err == nil {
		t.Error("expected decode error for junk file")
	}
}
