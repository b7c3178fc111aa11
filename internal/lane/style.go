package lane

import (
	"errors"
	"fmt"
	"image/color"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// ErrInvalidStyle is returned for a style that cannot be drawn.
var ErrInvalidStyle = errors.New("invalid style")

// DefaultThickness is the stroke width used when none is configured.
const DefaultThickness = 5

// Style carries the drawing parameters handed to the rasterizer along with the
// extrapolated boundaries.
type Style struct {
	Color     color.RGBA
	Thickness int
}

// DefaultStyle returns an opaque pure red stroke, DefaultThickness wide.
func DefaultStyle() Style {
	return Style{
		Color:     color.RGBA{R: 255, A: 255},
		Thickness: DefaultThickness,
	}
}

// Validate reports whether the stroke has a positive width.
func (s Style) Validate() error {
	if s.Thickness <= 0 {
		return fmt.Errorf("%w: thickness must be positive, got %d", ErrInvalidStyle, s.Thickness)
	}
	return nil
}

// Hex returns the stroke colour as "#RRGGBB".
func (s Style) Hex() string {
	return fmt.Sprintf("#%02X%02X%02X", s.Color.R, s.Color.G, s.Color.B)
}

// ParseColor parses a "#RRGGBB" or "#RGB" colour; the leading '#' is optional.
// The result is always opaque.
func ParseColor(hex string) (color.RGBA, error) {
	hex = strings.TrimSpace(hex)
	if hex == "" {
		return color.RGBA{}, fmt.Errorf("%w: empty color", ErrInvalidStyle)
	}
	if !strings.HasPrefix(hex, "#") {
		hex = "#" + hex
	}
	c, err := colorful.Hex(hex)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("%w: color %q: %v", ErrInvalidStyle, hex, err)
	}
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}, nil
}
