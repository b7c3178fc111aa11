package lane

import "math"

// Group accumulates the extremal pair for one side of the lane.
//
// Segments are put in ascending-x order before they are folded in. For the
// right side the pair is the top-left-most start and the bottom-right-most end;
// for the left side it is the bottom-left-most start and the top-right-most
// end. The four coordinates are tracked independently, so the pair need not
// come from any single segment. A Group belongs to one call and is not safe
// for concurrent use.
type Group struct {
	side  Side
	frame Frame
	count int

	x1, y1, x2, y2 int
}

// NewGroup returns an empty accumulator for side. The extremal pair is seeded
// from the first segment added, so segments reaching outside the frame never
// combine with a frame-edge starting value.
func NewGroup(side Side, frame Frame) *Group {
	return &Group{side: side, frame: frame}
}

// Add folds s into the extremal pair. Segments that do not belong to the
// group's side are ignored and Add reports false.
func (g *Group) Add(s Segment) bool {
	if g.side == SideNone || s.Side() != g.side {
		return false
	}
	s = s.ordered()
	if g.count == 0 {
		g.x1, g.y1, g.x2, g.y2 = s.X1, s.Y1, s.X2, s.Y2
		g.count = 1
		return true
	}
	g.count++
	g.x1 = min(g.x1, s.X1)
	g.x2 = max(g.x2, s.X2)
	if g.side == SideRight {
		g.y1 = min(g.y1, s.Y1)
		g.y2 = max(g.y2, s.Y2)
	} else {
		g.y1 = max(g.y1, s.Y1)
		g.y2 = min(g.y2, s.Y2)
	}
	return true
}

// Len returns the number of segments folded in so far.
func (g *Group) Len() int { return g.count }

// Pair returns the current extremal pair as a segment.
func (g *Group) Pair() Segment {
	return Segment{X1: g.x1, Y1: g.y1, X2: g.x2, Y2: g.y2}
}

// Extrapolate extends the line through the extremal pair to the bottom row of
// the frame. The returned segment runs from (x_bottom, height) to the far
// point of the pair, with x_bottom rounded to the nearest pixel.
//
// ok is false when the group is empty or the pair has no horizontal or no
// vertical span; both denominators are checked before any division.
func (g *Group) Extrapolate() (seg Segment, ok bool) {
	if g.count == 0 {
		return Segment{}, false
	}
	slope, ok := g.Pair().Slope()
	if !ok || slope == 0 {
		return Segment{}, false
	}

	h := g.frame.Height
	xb := float64(g.x1) + (float64(h)-float64(g.y1))/slope
	if math.IsNaN(xb) || math.IsInf(xb, 0) || math.Abs(xb) > math.MaxInt32 {
		return Segment{}, false
	}
	return Segment{X1: int(math.Round(xb)), Y1: h, X2: g.x2, Y2: g.y2}, true
}

// Result is the outcome for one frame. A nil Left or Right means no boundary
// was found for that side.
type Result struct {
	Frame      Frame    `json:"frame"`
	Left       *Segment `json:"left"`
	Right      *Segment `json:"right"`
	LeftCount  int      `json:"left_candidates"`
	RightCount int      `json:"right_candidates"`

	// Style is what the boundaries should be drawn with.
	Style Style `json:"-"`
}

// Boundaries returns the boundaries that were found, left first.
func (r *Result) Boundaries() []Segment {
	out := make([]Segment, 0, 2)
	if r.Left != nil {
		out = append(out, *r.Left)
	}
	if r.Right != nil {
		out = append(out, *r.Right)
	}
	return out
}

// Complete reports whether both sides were found.
func (r *Result) Complete() bool {
	return r.Left != nil && r.Right != nil
}

// Extrapolator turns a frame's segments into lane boundaries. It holds only
// the drawing style, which it stamps on every Result, and may be shared
// between goroutines.
type Extrapolator struct {
	style Style
}

// NewExtrapolator returns an Extrapolator that stamps style on its results.
func NewExtrapolator(style Style) *Extrapolator {
	return &Extrapolator{style: style}
}

// Style returns the configured drawing style.
func (e *Extrapolator) Style() Style { return e.style }

// Extrapolate classifies segs and reduces each side to a single boundary.
//
// The only errors are an invalid frame or style. Missing or degenerate
// geometry yields nil sides in the result.
func (e *Extrapolator) Extrapolate(segs []Segment, frame Frame) (*Result, error) {
	if err := frame.Validate(); err != nil {
		return nil, err
	}
	if err := e.style.Validate(); err != nil {
		return nil, err
	}

	leftSegs, rightSegs := Classify(segs)
	res := &Result{
		Frame:      frame,
		LeftCount:  len(leftSegs),
		RightCount: len(rightSegs),
		Style:      e.style,
	}
	res.Left = reduce(SideLeft, leftSegs, frame)
	res.Right = reduce(SideRight, rightSegs, frame)
	return res, nil
}

func reduce(side Side, segs []Segment, frame Frame) *Segment {
	g := NewGroup(side, frame)
	for _, s := range segs {
		g.Add(s)
	}
	seg, ok := g.Extrapolate()
	if !ok {
		return nil
	}
	return &seg
}

// Find runs Extrapolate with DefaultStyle.
func Find(segs []Segment, frame Frame) (*Result, error) {
	return NewExtrapolator(DefaultStyle()).Extrapolate(segs, frame)
}
