package imaging

import (
	"image"
	"image/draw"

	"github.com/anthonynsimon/bild/blur"
	"github.com/anthonynsimon/bild/effect"
)

// Grayscale converts img to a single-channel intensity image whose bounds
// start at the origin.
func Grayscale(img image.Image) *image.Gray {
	return toGray(effect.Grayscale(img))
}

// Blur applies a Gaussian blur of the given radius. A radius of zero or less
// returns an unblurred copy. The result's bounds start at the origin.
func Blur(gray *image.Gray, radius float64) *image.Gray {
	if radius <= 0 {
		return toGray(gray)
	}
	return toGray(blur.Gaussian(gray, radius))
}

// toGray copies img into a new origin-based *image.Gray. bild returns RGBA
// whose channels are equal after Grayscale, so the luma conversion is exact.
func toGray(img image.Image) *image.Gray {
	b := img.Bounds()
	dst := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}
