package imaging

import (
	"errors"
	"fmt"
	"image"

	"github.com/anthonynsimon/bild/blend"
	"github.com/anthonynsimon/bild/fcolor"
	"github.com/fogleman/gg"

	"github.com/ironsheep/lane-tools-mcp/internal/lane"
)

// ErrSizeMismatch is returned when two images that must line up do not.
var ErrSizeMismatch = errors.New("image size mismatch")

// NewCanvas returns a transparent black RGBA image of the given size, ready
// to have segments drawn on it.
func NewCanvas(width, height int) *image.RGBA {
	return image.NewRGBA(image.Rect(0, 0, width, height))
}

// DrawSegments strokes each segment onto dst with the style's colour and
// thickness. Line ends are rounded. dst is modified in place.
func DrawSegments(dst *image.RGBA, segs []lane.Segment, style lane.Style) {
	if len(segs) == 0 {
		return
	}
	dc := gg.NewContextForRGBA(dst)
	dc.SetColor(style.Color)
	dc.SetLineWidth(float64(style.Thickness))
	dc.SetLineCap(gg.LineCapRound)
	for _, s := range segs {
		dc.DrawLine(float64(s.X1), float64(s.Y1), float64(s.X2), float64(s.Y2))
		dc.Stroke()
	}
}

// Weighted composites lines over frame as frame*alpha + lines*beta + gamma per
// colour channel, with gamma on the 0-255 scale and every channel clamped.
// The result is opaque. Both images must be the same size.
func Weighted(frame, lines image.Image, alpha, beta, gamma float64) (*image.RGBA, error) {
	fb, lb := frame.Bounds(), lines.Bounds()
	if fb.Dx() != lb.Dx() || fb.Dy() != lb.Dy() {
		return nil, fmt.Errorf("%w: frame %dx%d, lines %dx%d", ErrSizeMismatch, fb.Dx(), fb.Dy(), lb.Dx(), lb.Dy())
	}

	g := gamma / 255
	return blend.Blend(frame, lines, func(bg, fg fcolor.RGBAF64) fcolor.RGBAF64 {
		c := fcolor.RGBAF64{
			R: bg.R*alpha + fg.R*beta + g,
			G: bg.G*alpha + fg.G*beta + g,
			B: bg.B*alpha + fg.B*beta + g,
			A: 1,
		}
		c.Clamp()
		return c
	}), nil
}
