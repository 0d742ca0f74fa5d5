package scroller

import (
	"fmt"
	"strings"
)

// Direction is the way new content grows along the scroll axis.
type Direction int

const (
	// DirectionDown appends images below, scrolling down.
	DirectionDown Direction = iota
	// DirectionUp appends images above, scrolling up.
	DirectionUp
	// DirectionRight appends images on the right.
	DirectionRight
	// DirectionLeft appends images on the left.
	DirectionLeft
)

var directionNames = [...]string{"down", "up", "right", "left"}

func (d Direction) String() string {
	if d < 0 || int(d) >= len(directionNames) {
		return fmt.Sprintf("Direction(%d)", int(d))
	}
	return directionNames[d]
}

// ParseDirection parses one of "down", "up", "right" or "left".
func ParseDirection(s string) (Direction, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range directionNames {
		if name == s {
			return Direction(i), nil
		}
	}
	return 0, fmt.Errorf("unknown scroll direction %q", s)
}

// AutoScrollAction is passed to Scroller.SetScrollAuto.
type AutoScrollAction int

const (
	AutoScrollToggle AutoScrollAction = iota
	AutoScrollFaster
	AutoScrollSlower
)

const (
	autoScrollStepKey     = "xscroller:autoScrollStep"
	autoScrollIntervalKey = "xscroller:autoScrollInterval"
	directionKey          = "xscroller:direction"
)

const (
	scrollEvent = "scroll"
	resizeEvent = "resize"
	clickEvent  = "click"
)
