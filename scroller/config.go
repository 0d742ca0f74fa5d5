package scroller

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"fyne.io/fyne/v2"

	"github.com/alexballas/xscroller/imgproc"
)

// Config holds everything the scroller needs to know at construction time.
// Values are copied; changing a Config after New has no effect.
type Config struct {
	Direction Direction

	QueueSize        int     // materialized items kept in the window
	PreloadThreshold float64 // fraction of the scroll range that triggers admission
	Spacing          float32 // gap between items along the scroll axis
	Attempts         int     // paths tried per admission slot

	ScrollDelay   time.Duration
	ResizeDelay   time.Duration
	ClickCooldown time.Duration

	// Workers selects the pipeline: 0 processes inline on the control
	// context, anything else starts a pool of that many goroutines.
	Workers int
	// BurstFactor is the viewport multiple processed synchronously on start.
	BurstFactor float32
	// CacheDir enables the on-disk cache of processed images (pool only).
	CacheDir string

	Algorithm  imgproc.Algorithm
	Brightness imgproc.Brightness

	AutoScrollStep     float32
	AutoScrollInterval time.Duration
	AutoScrollFactor   float64
	AutoScrollStart    bool
	PauseOnCenter      bool
	PauseDuration      time.Duration

	// OnItemClick is called with the item under a click, if any.
	OnItemClick func(*Item)

	Logger *slog.Logger
}

// DefaultConfig returns the stock configuration: three items, preloading at 70%.
func DefaultConfig() Config {
	return Config{
		Direction:          DirectionDown,
		QueueSize:          3,
		PreloadThreshold:   0.7,
		Spacing:            3,
		Attempts:           3,
		ScrollDelay:        300 * time.Millisecond,
		ResizeDelay:        200 * time.Millisecond,
		ClickCooldown:      500 * time.Millisecond,
		BurstFactor:        1.5,
		Algorithm:          imgproc.Bilinear,
		Brightness:         imgproc.DefaultBrightness(),
		AutoScrollStep:     8,
		AutoScrollInterval: time.Second,
		AutoScrollFactor:   1.5,
		PauseDuration:      3 * time.Second,
	}
}

// Validate reports the first invalid value.
func (c Config) Validate() error {
	switch {
	case c.Direction < DirectionDown || c.Direction > DirectionLeft:
		return fmt.Errorf("invalid direction %d", c.Direction)
	case c.QueueSize < 1:
		return errors.New("queue size must be at least 1")
	case c.PreloadThreshold <= 0 || c.PreloadThreshold > 1:
		return fmt.Errorf("preload threshold %v outside (0, 1]", c.PreloadThreshold)
	case c.Spacing < 0:
		return errors.New("spacing cannot be negative")
	case c.Attempts < 1:
		return errors.New("attempts must be at least 1")
	case c.Workers < 0:
		return errors.New("workers cannot be negative")
	case !c.Algorithm.Valid():
		return fmt.Errorf("invalid scaling algorithm %d", c.Algorithm)
	case c.Brightness.K < 0:
		return imgproc.ErrNegativeBrightness
	case !(c.Brightness.Target >= 0 && c.Brightness.Target <= 1):
		return fmt.Errorf("adaptive brightness target %v outside [0, 1]", c.Brightness.Target)
	case c.AutoScrollStep <= 0 || c.AutoScrollInterval <= 0:
		return errors.New("auto-scroll step and interval must be positive")
	case c.AutoScrollFactor <= 1:
		return errors.New("auto-scroll factor must be greater than 1")
	}
	return nil
}

func (c Config) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

// LoadPreferences overrides the auto-scroll speed and direction with
// values saved by SavePreferences, when present.
func (c *Config) LoadPreferences(p fyne.Preferences) {
	if step := p.Float(autoScrollStepKey); step > 0 {
		c.AutoScrollStep = float32(step)
	}
	if ms := p.Int(autoScrollIntervalKey); ms > 0 {
		c.AutoScrollInterval = time.Duration(ms) * time.Millisecond
	}
	if d, err := ParseDirection(p.String(directionKey)); err == nil {
		c.Direction = d
	}
}

// SavePreferences stores the current auto-scroll speed and direction.
func SavePreferences(p fyne.Preferences, dir Direction, step float32, interval time.Duration) {
	p.SetFloat(autoScrollStepKey, float64(step))
	p.SetInt(autoScrollIntervalKey, int(interval/time.Millisecond))
	p.SetString(directionKey, dir.String())
}
