package imaging

import (
	"errors"
	"image"
	"image/color"
	"testing"
)

// createStepImage returns a gray image that is black left of column split and
// white from split onwards.
func createStepImage(width, height, split int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := split; x < width; x++ {
			img.SetGray(x, y, color.Gray{255})
		}
	}
	return img
}

func countEdges(img *image.Gray) int {
	n := 0
	for _, v := range img.Pix {
		if v != 0 {
			n++
		}
	}
	return n
}

func TestCanny_VerticalStep(t *testing.T) {
	edges, err := Canny(createStepImage(40, 40, 20), 50, 150)
	if err != nil {
		t.Fatalf("Canny failed: %v", err)
	}

	if b := edges.Bounds(); b.Dx() != 40 || b.Dy() != 40 {
		t.Fatalf("bounds = %v, want 40x40", b)
	}

	y := 20
	if edges.GrayAt(19, y).Y == 0 && edges.GrayAt(20, y).Y == 0 {
		t.Error("expected an edge on the step boundary")
	}
	for _, x := range []int{2, 10, 30, 37} {
		if edges.GrayAt(x, y).Y != 0 {
			t.Errorf("unexpected edge at (%d,%d)", x, y)
		}
	}
}

func TestCanny_UniformImage(t *testing.T) {
	gray := Grayscale(createInMemoryImage(50, 50, color.RGBA{128, 128, 128, 255}))

	edges, err := Canny(gray, 50, 150)
	if err != nil {
		t.Fatalf("Canny failed: %v", err)
	}
	if n := countEdges(edges); n != 0 {
		t.Errorf("uniform image produced %d edge pixels", n)
	}
}

func TestCanny_HighThresholdSuppressesEdges(t *testing.T) {
	img := createStepImage(30, 30, 15)

	loose, err := Canny(img, 10, 50)
	if err != nil {
		t.Fatalf("Canny failed: %v", err)
	}
	strict, err := Canny(img, 5000, 6000)
	if err != nil {
		t.Fatalf("Canny failed: %v", err)
	}
	if countEdges(loose) == 0 {
		t.Error("loose thresholds found no edges")
	}
	if countEdges(strict) != 0 {
		t.Error("thresholds above the maximum gradient should find nothing")
	}
}

func TestCanny_InvalidThresholds(t *testing.T) {
	img := createStepImage(10, 10, 5)
	for _, th := range [][2]int{{-1, 10}, {100, 50}} {
		if _, err := Canny(img, th[0], th[1]); !errors.Is(err, ErrInvalidThreshold) {
			t.Errorf("thresholds %v: err = %v, want ErrInvalidThreshold", th, err)
		}
	}
}

func TestBlur_OffsetBounds(t *testing.T) {
	img := createStepImage(20, 20, 10).SubImage(image.Rect(4, 4, 16, 16)).(*image.Gray)

	for _, radius := range []float64{0, 1.5} {
		out := Blur(img, radius)
		if b := out.Bounds(); b != image.Rect(0, 0, 12, 12) {
			t.Errorf("radius %v: bounds = %v, want origin-based 12x12", radius, b)
		}
	}
	if got, want := Blur(img, 0).GrayAt(0, 0).Y, img.GrayAt(4, 4).Y; got != want {
		t.Errorf("copy starts with %d, want %d from the sub-image origin", got, want)
	}
}

func TestCanny_EmptyImage(t *testing.T) {
	edges, err := Canny(image.NewGray(image.Rect(0, 0, 0, 0)), 50, 150)
	if err != nil {
		t.Fatalf("Canny failed: %v", err)
	}
	if !edges.Bounds().Empty() {
		t.Errorf("expected empty output, got %v", edges.Bounds())
	}
}

func TestCanny_OffsetBounds(t *testing.T) {
	full := createStepImage(40, 40, 20)
	sub := full.SubImage(image.Rect(10, 10, 30, 30)).(*image.Gray)

	edges, err := Canny(sub, 50, 150)
	if err != nil {
		t.Fatalf("Canny failed: %v", err)
	}
	if b := edges.Bounds(); b.Min != (image.Point{}) || b.Dx() != 20 {
		t.Fatalf("bounds = %v, want origin-based 20x20", b)
	}
	if edges.GrayAt(9, 10).Y == 0 && edges.GrayAt(10, 10).Y == 0 {
		t.Error("expected the step edge in the shifted output")
	}
}

func TestGrayscale(t *testing.T) {
	gray := Grayscale(createInMemoryImage(8, 6, color.RGBA{200, 200, 200, 255}))
	if b := gray.Bounds(); b != image.Rect(0, 0, 8, 6) {
		t.Fatalf("bounds = %v, want origin-based 8x6", b)
	}
	for _, v := range gray.Pix {
		if v < 199 || v > 201 {
			t.Fatalf("gray value = %d, want about 200", v)
		}
	}
}

func TestGrayscale_SubImage(t *testing.T) {
	src := createInMemoryImage(20, 20, color.RGBA{0, 0, 0, 255})
	for y := 5; y < 15; y++ {
		for x := 10; x < 20; x++ {
			src.Set(x, y, color.RGBA{255, 255, 255, 255})
		}
	}
	sub := src.SubImage(image.Rect(10, 5, 20, 15))

	gray := Grayscale(sub)
	if b := gray.Bounds(); b != image.Rect(0, 0, 10, 10) {
		t.Fatalf("bounds = %v, want origin-based 10x10", b)
	}
	for _, v := range gray.Pix {
		if v < 254 {
			t.Fatalf("sub-image pixel = %d, want white", v)
		}
	}
}

func TestBlur(t *testing.T) {
	img := createStepImage(20, 20, 10)

	copied := Blur(img, 0)
	if copied == img {
		t.Error("zero radius should return a copy")
	}
	for i := range img.Pix {
		if copied.Pix[i] != img.Pix[i] {
			t.Fatal("zero radius copy differs from input")
		}
	}

	blurred := Blur(img, 2)
	if b := blurred.Bounds(); b != image.Rect(0, 0, 20, 20) {
		t.Fatalf("bounds = %v, want origin-based 20x20", b)
	}
	// The hard step gets softened on both sides.
	v := blurred.GrayAt(9, 10).Y
	if v == 0 || v == 255 {
		t.Errorf("pixel next to step = %d, want intermediate value", v)
	}
}
