package lane

import (
	"errors"
	"image/color"
	"math/rand/v2"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
)

var hdFrame = Frame{Width: 960, Height: 540}

func TestFind_BothSides(t *testing.T) {
	segs := []Segment{
		{700, 400, 720, 420},
		{300, 400, 280, 420},
	}

	res, err := Find(segs, hdFrame)
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}

	// Right: pair (700,400)-(720,420), slope 1, bottom at 700 + 140.
	wantRight := &Segment{X1: 840, Y1: 540, X2: 720, Y2: 420}
	// Left: ordered (280,420)-(300,400), slope -1, bottom at 280 - 120.
	wantLeft := &Segment{X1: 160, Y1: 540, X2: 300, Y2: 400}

	if diff := cmp.Diff(wantRight, res.Right); diff != "" {
		t.Errorf("right mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(wantLeft, res.Left); diff != "" {
		t.Errorf("left mismatch (-want +got):\n%s", diff)
	}
	if res.LeftCount != 1 || res.RightCount != 1 {
		t.Errorf("counts = %d/%d, want 1/1", res.LeftCount, res.RightCount)
	}
	if !res.Complete() {
		t.Error("expected both sides")
	}
}

func TestFind_RightFarPoint(t *testing.T) {
	res, err := Find([]Segment{{700, 400, 720, 420}}, hdFrame)
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	if res.Right == nil {
		t.Fatal("expected right boundary")
	}
	if res.Right.Y1 != 540 {
		t.Errorf("bottom y = %d, want 540", res.Right.Y1)
	}
	if res.Right.X2 != 720 || res.Right.Y2 != 420 {
		t.Errorf("far point = (%d,%d), want (720,420)", res.Right.X2, res.Right.Y2)
	}
	if res.Left != nil {
		t.Errorf("expected no left boundary, got %+v", *res.Left)
	}
}

func TestFind_PositiveProductSegmentsPoolRight(t *testing.T) {
	segs := []Segment{
		{700, 400, 720, 420},
		{300, 420, 280, 400},
	}

	res, err := Find(segs, hdFrame)
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	if res.Left != nil {
		t.Errorf("expected no left boundary, got %+v", *res.Left)
	}
	// Pair (280,400)-(720,420): slope 20/440, bottom at 280 + 140*22.
	want := &Segment{X1: 3360, Y1: 540, X2: 720, Y2: 420}
	if diff := cmp.Diff(want, res.Right); diff != "" {
		t.Errorf("right mismatch (-want +got):\n%s", diff)
	}
}

func TestFind_MultipleSegmentsUseExtremes(t *testing.T) {
	segs := []Segment{
		{550, 350, 500, 300},
		{600, 400, 650, 450},
	}

	res, err := Find(segs, hdFrame)
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	want := &Segment{X1: 740, Y1: 540, X2: 650, Y2: 450}
	if diff := cmp.Diff(want, res.Right); diff != "" {
		t.Errorf("right mismatch (-want +got):\n%s", diff)
	}
	if res.RightCount != 2 {
		t.Errorf("RightCount = %d, want 2", res.RightCount)
	}
}

func TestFind_EmptyInput(t *testing.T) {
	for _, segs := range [][]Segment{nil, {}} {
		res, err := Find(segs, hdFrame)
		if err != nil {
			t.Fatalf("Find failed: %v", err)
		}
		if res.Left != nil || res.Right != nil {
			t.Errorf("expected no boundaries, got left=%v right=%v", res.Left, res.Right)
		}
		if got := res.Boundaries(); len(got) != 0 {
			t.Errorf("Boundaries() = %v, want empty", got)
		}
	}
}

func TestFind_AllVertical(t *testing.T) {
	segs := []Segment{{100, 0, 100, 540}, {800, 300, 800, 500}, {480, 10, 480, 20}}

	res, err := Find(segs, hdFrame)
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	if res.Left != nil || res.Right != nil {
		t.Error("vertical segments should not produce boundaries")
	}
	if res.LeftCount != 0 || res.RightCount != 0 {
		t.Errorf("counts = %d/%d, want 0/0", res.LeftCount, res.RightCount)
	}
}

func TestFind_SingleHorizontal(t *testing.T) {
	res, err := Find([]Segment{{10, 300, 900, 300}}, hdFrame)
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	if res.Left != nil || res.Right != nil {
		t.Error("horizontal segment should not produce a boundary")
	}
}

func TestFind_InvalidFrame(t *testing.T) {
	for _, f := range []Frame{{0, 540}, {960, 0}, {-1, -1}} {
		_, err := Find([]Segment{{700, 400, 720, 420}}, f)
		if !errors.Is(err, ErrInvalidFrame) {
			t.Errorf("frame %v: err = %v, want ErrInvalidFrame", f, err)
		}
	}
}

func TestExtrapolator_InvalidStyle(t *testing.T) {
	e := NewExtrapolator(Style{Color: color.RGBA{A: 255}, Thickness: 0})
	_, err := e.Extrapolate(nil, hdFrame)
	if !errors.Is(err, ErrInvalidStyle) {
		t.Errorf("err = %v, want ErrInvalidStyle", err)
	}
}

func TestExtrapolator_StampsStyle(t *testing.T) {
	style := Style{Color: color.RGBA{G: 255, A: 255}, Thickness: 3}
	res, err := NewExtrapolator(style).Extrapolate([]Segment{{700, 400, 720, 420}}, hdFrame)
	if err != nil {
		t.Fatalf("Extrapolate failed: %v", err)
	}
	if res.Style != style {
		t.Errorf("Style = %+v, want %+v", res.Style, style)
	}
}

func TestFind_Idempotent(t *testing.T) {
	segs := randomSegments(rand.New(rand.NewPCG(1, 2)), 200, hdFrame)

	first, err := Find(segs, hdFrame)
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	second, err := Find(segs, hdFrame)
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("results differ between runs (-first +second):\n%s", diff)
	}
}

func TestFind_BottomEndpointOnLastRow(t *testing.T) {
	r := rand.New(rand.NewPCG(7, 11))
	frames := []Frame{{960, 540}, {1280, 720}, {64, 48}, {1, 1000}}

	for _, f := range frames {
		for i := 0; i < 50; i++ {
			segs := randomSegments(r, 1+r.IntN(20), f)
			res, err := Find(segs, f)
			if err != nil {
				t.Fatalf("Find failed: %v", err)
			}
			for _, b := range res.Boundaries() {
				if b.Y1 != f.Height {
					t.Fatalf("frame %v: boundary %+v does not start on row %d", f, b, f.Height)
				}
			}
		}
	}
}

func TestFind_Concurrent(t *testing.T) {
	segs := randomSegments(rand.New(rand.NewPCG(3, 5)), 100, hdFrame)
	want, err := Find(segs, hdFrame)
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}

	var wg sync.WaitGroup
	errs := make(chan string, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := Find(segs, hdFrame)
			if err != nil {
				errs <- err.Error()
				return
			}
			if diff := cmp.Diff(want, got); diff != "" {
				errs <- diff
			}
		}()
	}
	wg.Wait()
	close(errs)
	for e := range errs {
		t.Error(e)
	}
}

func TestGroup_EmptyIsAbsent(t *testing.T) {
	for _, side := range []Side{SideLeft, SideRight} {
		g := NewGroup(side, hdFrame)
		if _, ok := g.Extrapolate(); ok {
			t.Errorf("%v: empty group should not extrapolate", side)
		}
	}
}

func TestGroup_RejectsOtherSide(t *testing.T) {
	g := NewGroup(SideRight, hdFrame)
	if g.Add(Segment{300, 400, 280, 420}) {
		t.Error("right group accepted a left segment")
	}
	if g.Add(Segment{5, 0, 5, 10}) {
		t.Error("right group accepted a vertical segment")
	}
	if g.Len() != 0 {
		t.Errorf("Len() = %d, want 0", g.Len())
	}

	none := NewGroup(SideNone, hdFrame)
	if none.Add(Segment{700, 400, 720, 420}) {
		t.Error("SideNone group accepted a segment")
	}
}

func TestGroup_Pair(t *testing.T) {
	g := NewGroup(SideLeft, hdFrame)
	g.Add(Segment{300, 400, 280, 420})
	g.Add(Segment{200, 500, 250, 450})

	want := Segment{X1: 200, Y1: 500, X2: 300, Y2: 400}
	if diff := cmp.Diff(want, g.Pair()); diff != "" {
		t.Errorf("pair mismatch (-want +got):\n%s", diff)
	}
}

func TestGroup_DegenerateSpan(t *testing.T) {
	tests := []struct {
		name string
		g    Group
	}{
		{"zero horizontal span", Group{side: SideRight, frame: hdFrame, count: 1, x1: 10, y1: 0, x2: 10, y2: 50}},
		{"zero vertical span", Group{side: SideLeft, frame: hdFrame, count: 2, x1: 10, y1: 70, x2: 90, y2: 70}},
		{"coincident pair", Group{side: SideRight, frame: hdFrame, count: 1, x1: 33, y1: 44, x2: 33, y2: 44}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, ok := tt.g.Extrapolate(); ok {
				t.Error("degenerate pair should not extrapolate")
			}
		})
	}
}

func TestGroup_OutOfFramePairIgnoresFrameEdges(t *testing.T) {
	right := NewGroup(SideRight, hdFrame)
	right.Add(Segment{1000, 400, 1100, 500})
	if diff := cmp.Diff(Segment{X1: 1000, Y1: 400, X2: 1100, Y2: 500}, right.Pair()); diff != "" {
		t.Errorf("right pair mismatch (-want +got):\n%s", diff)
	}
	seg, ok := right.Extrapolate()
	if !ok {
		t.Fatal("right group should extrapolate")
	}
	if diff := cmp.Diff(Segment{X1: 1140, Y1: 540, X2: 1100, Y2: 500}, seg); diff != "" {
		t.Errorf("right boundary mismatch (-want +got):\n%s", diff)
	}

	left := NewGroup(SideLeft, hdFrame)
	left.Add(Segment{-10, 560, -50, 600})
	if diff := cmp.Diff(Segment{X1: -50, Y1: 600, X2: -10, Y2: 560}, left.Pair()); diff != "" {
		t.Errorf("left pair mismatch (-want +got):\n%s", diff)
	}
	seg, ok = left.Extrapolate()
	if !ok {
		t.Fatal("left group should extrapolate")
	}
	if diff := cmp.Diff(Segment{X1: 10, Y1: 540, X2: -10, Y2: 560}, seg); diff != "" {
		t.Errorf("left boundary mismatch (-want +got):\n%s", diff)
	}
}

func TestFind_CoordinatesBeyondInt32KeepTheirSide(t *testing.T) {
	res, err := Find([]Segment{
		{0, 0, 4_000_000_000, 4_000_000_000},
		{700, 400, 720, 420},
	}, hdFrame)
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	if res.LeftCount != 0 || res.RightCount != 2 {
		t.Errorf("counts = %d left, %d right; want 0 and 2", res.LeftCount, res.RightCount)
	}
}

func TestGroup_OutOfRangeBottom(t *testing.T) {
	g := Group{
		side:  SideRight,
		frame: Frame{Width: 10, Height: 2_000_000_000},
		count: 1,
		x2:    2_000_000_000,
		y2:    1,
	}
	if _, ok := g.Extrapolate(); ok {
		t.Error("bottom x beyond int32 range should be reported absent")
	}
}

func TestStyle(t *testing.T) {
	def := DefaultStyle()
	if def.Color != (color.RGBA{R: 255, A: 255}) || def.Thickness != 5 {
		t.Errorf("DefaultStyle() = %+v", def)
	}
	if def.Hex() != "#FF0000" {
		t.Errorf("Hex() = %s, want #FF0000", def.Hex())
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in      string
		want    color.RGBA
		wantErr bool
	}{
		{"#00FF00", color.RGBA{G: 255, A: 255}, false},
		{"ff0000", color.RGBA{R: 255, A: 255}, false},
		{"#fff", color.RGBA{R: 255, G: 255, B: 255, A: 255}, false},
		{"", color.RGBA{}, true},
		{"#GGGGGG", color.RGBA{}, true},
		{"red", color.RGBA{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseColor(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidStyle) {
					t.Errorf("err = %v, want ErrInvalidStyle", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseColor failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseColor(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

// randomSegments returns n segments with endpoints inside f, including some
// vertical and horizontal ones.
func randomSegments(r *rand.Rand, n int, f Frame) []Segment {
	segs := make([]Segment, n)
	for i := range segs {
		s := Segment{
			X1: r.IntN(f.Width), Y1: r.IntN(f.Height),
			X2: r.IntN(f.Width), Y2: r.IntN(f.Height),
		}
		switch r.IntN(10) {
		case 0:
			s.X2 = s.X1
		case 1:
			s.Y2 = s.Y1
		}
		segs[i] = s
	}
	return segs
}
