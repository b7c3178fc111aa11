package imaging

import (
	"errors"
	"fmt"
	"image"
	"math"

	"github.com/anthonynsimon/bild/parallel"
)

// ErrInvalidThreshold is returned for an unusable pair of Canny thresholds.
var ErrInvalidThreshold = errors.New("invalid edge threshold")

var (
	sobelX = [3][3]float64{
		{-1, 0, 1},
		{-2, 0, 2},
		{-1, 0, 1},
	}
	sobelY = [3][3]float64{
		{-1, -2, -1},
		{0, 0, 0},
		{1, 2, 1},
	}
)

// Canny detects edges in a single-channel image and returns a binary map in
// which edge pixels are 255 and everything else is 0. The input should already
// be smoothed; see Blur.
//
// Thresholds are on the 0-255 intensity scale, compared against the L2
// gradient magnitude:
//   - magnitude >= high: strong edge, always kept
//   - low <= magnitude < high: weak edge, kept only when 8-connected to a
//     strong edge through other weak edges
//   - magnitude < low: discarded
//
// # Algorithm
//
//  1. Sobel gradients and magnitude/direction per pixel (rows in parallel)
//  2. Non-maximum suppression along the quantised gradient direction
//  3. Double threshold followed by hysteresis flood fill from strong edges
//
// Typical thresholds for road footage are 50 and 150.
func Canny(gray *image.Gray, low, high int) (*image.Gray, error) {
	if low < 0 || high < low {
		return nil, fmt.Errorf("%w: low=%d high=%d", ErrInvalidThreshold, low, high)
	}

	bounds := gray.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	out := image.NewGray(image.Rect(0, 0, width, height))
	if width == 0 || height == 0 {
		return out, nil
	}

	at := func(x, y int) float64 {
		x = clamp(x, 0, width-1)
		y = clamp(y, 0, height-1)
		return float64(gray.Pix[gray.PixOffset(x+bounds.Min.X, y+bounds.Min.Y)])
	}

	magnitude := make([]float64, width*height)
	direction := make([]float64, width*height)
	parallel.Line(height, func(start, end int) {
		for y := start; y < end; y++ {
			for x := 0; x < width; x++ {
				var gx, gy float64
				for ky := -1; ky <= 1; ky++ {
					for kx := -1; kx <= 1; kx++ {
						v := at(x+kx, y+ky)
						gx += v * sobelX[ky+1][kx+1]
						gy += v * sobelY[ky+1][kx+1]
					}
				}
				i := y*width + x
				magnitude[i] = math.Sqrt(gx*gx + gy*gy)
				direction[i] = math.Atan2(gy, gx)
			}
		}
	})

	mag := func(x, y int) float64 { return magnitude[y*width+x] }

	// Borders stay zero.
	suppressed := make([]float64, width*height)
	parallel.Line(height, func(start, end int) {
		for y := max(start, 1); y < min(end, height-1); y++ {
			for x := 1; x < width-1; x++ {
				i := y*width + x
				angle := direction[i]
				m := magnitude[i]

				var n1, n2 float64
				switch {
				case (angle >= -math.Pi/8 && angle < math.Pi/8) || angle >= 7*math.Pi/8 || angle < -7*math.Pi/8:
					n1, n2 = mag(x-1, y), mag(x+1, y)
				case (angle >= math.Pi/8 && angle < 3*math.Pi/8) || (angle >= -7*math.Pi/8 && angle < -5*math.Pi/8):
					n1, n2 = mag(x-1, y-1), mag(x+1, y+1)
				case (angle >= 3*math.Pi/8 && angle < 5*math.Pi/8) || (angle >= -5*math.Pi/8 && angle < -3*math.Pi/8):
					n1, n2 = mag(x, y-1), mag(x, y+1)
				default:
					n1, n2 = mag(x+1, y-1), mag(x-1, y+1)
				}

				if m >= n1 && m >= n2 {
					suppressed[i] = m
				}
			}
		}
	})

	lowT := float64(low)
	highT := float64(high)
	stack := make([]int, 0, 1024)
	for i, v := range suppressed {
		if v >= highT && out.Pix[i] == 0 {
			out.Pix[i] = 255
			stack = append(stack, i)
		}
		for len(stack) > 0 {
			j := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			cx, cy := j%width, j/width
			for ky := -1; ky <= 1; ky++ {
				for kx := -1; kx <= 1; kx++ {
					nx, ny := cx+kx, cy+ky
					if nx < 0 || nx >= width || ny < 0 || ny >= height {
						continue
					}
					k := ny*width + nx
					if out.Pix[k] == 0 && suppressed[k] >= lowT {
						out.Pix[k] = 255
						stack = append(stack, k)
					}
				}
			}
		}
	}

	return out, nil
}

// clamp constrains an integer value to the range [lo, hi].
func clamp(val, lo, hi int) int {
	if val < lo {
		return lo
	}
	if val > hi {
		return hi
	}
	return val
}
