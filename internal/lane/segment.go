package lane

import (
	"errors"
	"fmt"
)

// ErrInvalidFrame is returned when a frame has a non-positive dimension.
var ErrInvalidFrame = errors.New("invalid frame")

// Segment is a straight line between two pixel coordinates. The endpoints
// carry no ordering.
type Segment struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

// Side identifies which lane boundary a segment belongs to.
type Side int

const (
	// SideNone marks a segment whose slope cannot be classified.
	SideNone Side = iota
	SideLeft
	SideRight
)

// String returns the lowercase side name.
func (s Side) String() string {
	switch s {
	case SideLeft:
		return "left"
	case SideRight:
		return "right"
	default:
		return "none"
	}
}

// Side classifies the segment by the sign of (y2-y1)*(x2-x1), which has the
// same sign as the slope whenever the slope is defined. The signs of the two
// spans are compared rather than multiplied, so no coordinate range can
// overflow the test.
func (s Segment) Side() Side {
	dy := sign(s.Y2, s.Y1)
	dx := sign(s.X2, s.X1)
	switch {
	case dy == 0 || dx == 0:
		return SideNone
	case dy == dx:
		return SideRight
	default:
		return SideLeft
	}
}

// sign returns the sign of b-a without computing the difference.
func sign(b, a int) int {
	switch {
	case b > a:
		return 1
	case b < a:
		return -1
	default:
		return 0
	}
}

// Slope returns (y2-y1)/(x2-x1). ok is false for a vertical segment, in which
// case no division is performed.
func (s Segment) Slope() (slope float64, ok bool) {
	if s.X2 == s.X1 {
		return 0, false
	}
	return (float64(s.Y2) - float64(s.Y1)) / (float64(s.X2) - float64(s.X1)), true
}

// ordered returns the segment with its endpoints sorted by ascending x.
func (s Segment) ordered() Segment {
	if s.X2 < s.X1 {
		return Segment{X1: s.X2, Y1: s.Y2, X2: s.X1, Y2: s.Y1}
	}
	return s
}

// Frame holds the pixel dimensions of the image the segments came from.
type Frame struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Validate reports whether both dimensions are positive.
func (f Frame) Validate() error {
	if f.Width <= 0 || f.Height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidFrame, f.Width, f.Height)
	}
	return nil
}
