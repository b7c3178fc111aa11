package imaging

import (
	"errors"
	"fmt"
	"image"
	"math"

	"github.com/fogleman/gg"
)

// ErrInvalidRegion is returned for a region whose fractions are out of range.
var ErrInvalidRegion = errors.New("invalid region")

// Region is the trapezoid that lane markings are expected to fall in, given
// as fractions of the frame size. Its bottom edge is the full bottom row of
// the frame; its top edge runs from TopLeftX to TopRightX at height TopY.
type Region struct {
	TopY      float64 `json:"top_y"`
	TopLeftX  float64 `json:"top_left_x"`
	TopRightX float64 `json:"top_right_x"`
}

// DefaultRegion returns a narrow apex just above the middle of the frame,
// suited to a forward-facing dash camera.
func DefaultRegion() Region {
	return Region{TopY: 0.58, TopLeftX: 0.49, TopRightX: 0.51}
}

// Validate checks that every fraction lies in [0, 1] and the top edge is not
// inverted.
func (r Region) Validate() error {
	for _, v := range []float64{r.TopY, r.TopLeftX, r.TopRightX} {
		if math.IsNaN(v) || v < 0 || v > 1 {
			return fmt.Errorf("%w: fraction %v outside [0,1]", ErrInvalidRegion, v)
		}
	}
	if r.TopLeftX > r.TopRightX {
		return fmt.Errorf("%w: top left x %v is right of top right x %v", ErrInvalidRegion, r.TopLeftX, r.TopRightX)
	}
	return nil
}

// Vertices returns the trapezoid corners in pixels for a width x height frame,
// truncated to whole pixels: top-right, top-left, bottom-left, bottom-right.
func (r Region) Vertices(width, height int) [4]image.Point {
	w, h := float64(width), float64(height)
	top := int(r.TopY * h)
	return [4]image.Point{
		{X: int(r.TopRightX * w), Y: top},
		{X: int(r.TopLeftX * w), Y: top},
		{X: 0, Y: height},
		{X: width, Y: height},
	}
}

// MaskRegion returns a copy of gray in which every pixel outside the region
// is set to zero.
func MaskRegion(gray *image.Gray, r Region) (*image.Gray, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}

	bounds := gray.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	out := image.NewGray(image.Rect(0, 0, width, height))
	if width == 0 || height == 0 {
		return out, nil
	}

	dc := gg.NewContext(width, height)
	v := r.Vertices(width, height)
	dc.MoveTo(float64(v[0].X), float64(v[0].Y))
	for _, p := range v[1:] {
		dc.LineTo(float64(p.X), float64(p.Y))
	}
	dc.ClosePath()
	dc.SetRGB(1, 1, 1)
	dc.Fill()
	mask := dc.Image()

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			// Antialiased border pixels count as inside from half coverage.
			if _, _, _, a := mask.At(x, y).RGBA(); a < 0x8000 {
				continue
			}
			out.Pix[y*out.Stride+x] = gray.Pix[gray.PixOffset(x+bounds.Min.X, y+bounds.Min.Y)]
		}
	}
	return out, nil
}
