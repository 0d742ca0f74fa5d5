package scroller

import (
	"errors"
	"testing"
	"time"

	"fyne.io/fyne/v2/test"

	"github.com/alexballas/xscroller/imgproc"
)

func TestConfig_Validate(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config is invalid: %v", err)
	}

	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"direction", func(c *Config) { c.Direction = 7 }},
		{"queue size", func(c *Config) { c.QueueSize = 0 }},
		{"threshold zero", func(c *Config) { c.PreloadThreshold = 0 }},
		{"threshold above one", func(c *Config) { c.PreloadThreshold = 1.2 }},
		{"spacing", func(c *Config) { c.Spacing = -1 }},
		{"attempts", func(c *Config) { c.Attempts = 0 }},
		{"workers", func(c *Config) { c.Workers = -2 }},
		{"algorithm", func(c *Config) { c.Algorithm = 42 }},
		{"step", func(c *Config) { c.AutoScrollStep = 0 }},
		{"factor", func(c *Config) { c.AutoScrollFactor = 1 }},
		{"adaptive target above one", func(c *Config) { c.Brightness.Target = 7 }},
		{"adaptive target negative", func(c *Config) { c.Brightness.Target = -0.1 }},
	}
	for _, tt := range tests {
		cfg := DefaultConfig()
		tt.modify(&cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("%s: expected an error", tt.name)
		}
	}

	cfg := DefaultConfig()
	cfg.Brightness.K = -0.5
	if err := cfg.Validate(); !errors.Is(err, imgproc.ErrNegativeBrightness) {
		t.Errorf("negative brightness: err = %v", err)
	}
}

func TestConfig_Preferences(t *testing.T) {
	a := test.NewApp()
	prefs := a.Preferences()

	cfg := DefaultConfig()
	cfg.LoadPreferences(prefs)
	if cfg.AutoScrollStep != 8 || cfg.AutoScrollInterval != time.Second || cfg.Direction != DirectionDown {
		t.Fatalf("empty preferences changed the config: %+v", cfg)
	}

	SavePreferences(prefs, DirectionLeft, 12, 1500*time.Millisecond)

	cfg = DefaultConfig()
	cfg.LoadPreferences(prefs)
	if cfg.AutoScrollStep != 12 {
		t.Errorf("step = %v, want 12", cfg.AutoScrollStep)
	}
	if cfg.AutoScrollInterval != 1500*time.Millisecond {
		t.Errorf("interval = %v, want 1.5s", cfg.AutoScrollInterval)
	}
	if cfg.Direction != DirectionLeft {
		t.Errorf("direction = %v, want left", cfg.Direction)
	}
}

func TestParseDirection(t *testing.T) {
	for _, d := range []Direction{DirectionDown, DirectionUp, DirectionRight, DirectionLeft} {
		got, err := ParseDirection(" " + d.String() + " ")
		if err != nil || got != d {
			t.Errorf("ParseDirection(%q) = %v, %v", d.String(), got, err)
		}
	}
	if _, err := ParseDirection("sideways"); err == nil {
		t.Error("expected an error for an unknown direction")
	}
}

func TestScrollAxis(t *testing.T) {
	tests := []struct {
		dir                Direction
		reversed, vertical bool
	}{
		{DirectionDown, false, true},
		{DirectionUp, true, true},
		{DirectionRight, false, false},
		{DirectionLeft, true, false},
	}
	for _, tt := range tests {
		a := NewScrollAxis(tt.dir)
		if a.Reversed != tt.reversed || a.Vertical != tt.vertical {
			t.Errorf("%v: reversed=%v vertical=%v", tt.dir, a.Reversed, a.Vertical)
		}
		size := a.Size(640, 480)
		if a.Primary(size) != 640 || a.Extent(size) != 480 {
			t.Errorf("%v: size %v does not round trip", tt.dir, size)
		}
		if a.Offset(a.Position(3, 17)) != 17 {
			t.Errorf("%v: position does not round trip", tt.dir)
		}
		w, h := a.TargetPixels(size)
		if (tt.vertical && (w != 640 || h != 0)) || (!tt.vertical && (w != 0 || h != 640)) {
			t.Errorf("%v: target pixels %dx%d", tt.dir, w, h)
		}
	}
}
