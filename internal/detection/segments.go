package detection

import (
	"errors"
	"fmt"
	"image"
	"math"
	"sort"

	"github.com/ironsheep/lane-tools-mcp/internal/lane"
)

// ErrInvalidParams is returned when HoughParams cannot be used.
var ErrInvalidParams = errors.New("invalid hough parameters")

// HoughParams configures DetectSegments.
type HoughParams struct {
	// Rho is the distance resolution of the accumulator in pixels.
	Rho float64 `json:"rho"`

	// ThetaBins is the number of angle bins over [0, pi).
	ThetaBins int `json:"theta_bins"`

	// Threshold is the minimum number of votes, and of unclaimed pixels, a
	// line needs before segments are extracted from it.
	Threshold int `json:"threshold"`

	// MinLineLength is the shortest segment reported, in pixels.
	MinLineLength int `json:"min_line_length"`

	// MaxLineGap is the largest gap, in pixels, bridged within one segment.
	MaxLineGap int `json:"max_line_gap"`

	// MaxSegments caps the number of segments returned.
	MaxSegments int `json:"max_segments"`
}

// DefaultHoughParams returns 1 px / 1 degree resolution, 35 votes, 5 px
// minimum length, 2 px maximum gap and at most 200 segments.
func DefaultHoughParams() HoughParams {
	return HoughParams{
		Rho:           1,
		ThetaBins:     180,
		Threshold:     35,
		MinLineLength: 5,
		MaxLineGap:    2,
		MaxSegments:   200,
	}
}

// Validate reports the first unusable parameter.
func (p HoughParams) Validate() error {
	switch {
	case !(p.Rho > 0):
		return fmt.Errorf("%w: rho must be positive, got %v", ErrInvalidParams, p.Rho)
	case p.ThetaBins < 2:
		return fmt.Errorf("%w: need at least 2 theta bins, got %d", ErrInvalidParams, p.ThetaBins)
	case p.Threshold < 1:
		return fmt.Errorf("%w: threshold must be at least 1, got %d", ErrInvalidParams, p.Threshold)
	case p.MinLineLength < 0 || p.MaxLineGap < 0:
		return fmt.Errorf("%w: negative length or gap", ErrInvalidParams)
	case p.MaxSegments < 1:
		return fmt.Errorf("%w: max segments must be at least 1, got %d", ErrInvalidParams, p.MaxSegments)
	}
	return nil
}

type peak struct {
	rho   int
	theta int
	votes int
}

// DetectSegments returns the line segments found among the non-zero pixels
// of edges. The result is empty, never nil, when nothing qualifies, and is
// identical across calls for the same input.
func DetectSegments(edges *image.Gray, p HoughParams) ([]lane.Segment, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	bounds := edges.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	points := make([]image.Point, 0, 1024)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if edges.Pix[edges.PixOffset(x+bounds.Min.X, y+bounds.Min.Y)] != 0 {
				points = append(points, image.Point{X: x, Y: y})
			}
		}
	}

	segments := make([]lane.Segment, 0)
	if len(points) == 0 {
		return segments, nil
	}

	numAngles := p.ThetaBins
	cosT := make([]float64, numAngles)
	sinT := make([]float64, numAngles)
	for t := range cosT {
		angle := float64(t) * math.Pi / float64(numAngles)
		cosT[t] = math.Cos(angle)
		sinT[t] = math.Sin(angle)
	}

	diag := math.Hypot(float64(width), float64(height))
	offset := int(math.Ceil(diag / p.Rho))
	numRho := 2*offset + 1
	accumulator := make([]int, numRho*numAngles)

	rhoIndex := func(pt image.Point, t int) int {
		r := float64(pt.X)*cosT[t] + float64(pt.Y)*sinT[t]
		return int(math.Round(r/p.Rho)) + offset
	}

	for _, pt := range points {
		for t := 0; t < numAngles; t++ {
			accumulator[rhoIndex(pt, t)*numAngles+t]++
		}
	}

	// Local maxima in a 3x3 neighbourhood; theta wraps around.
	peaks := make([]peak, 0)
	for r := 0; r < numRho; r++ {
		for t := 0; t < numAngles; t++ {
			votes := accumulator[r*numAngles+t]
			if votes < p.Threshold {
				continue
			}
			isMax := true
			for dr := -1; dr <= 1 && isMax; dr++ {
				for dt := -1; dt <= 1 && isMax; dt++ {
					if dr == 0 && dt == 0 {
						continue
					}
					nr := r + dr
					nt := (t + dt + numAngles) % numAngles
					if nr >= 0 && nr < numRho && accumulator[nr*numAngles+nt] > votes {
						isMax = false
					}
				}
			}
			if isMax {
				peaks = append(peaks, peak{rho: r, theta: t, votes: votes})
			}
		}
	}

	sort.Slice(peaks, func(i, j int) bool {
		if peaks[i].votes != peaks[j].votes {
			return peaks[i].votes > peaks[j].votes
		}
		if peaks[i].theta != peaks[j].theta {
			return peaks[i].theta < peaks[j].theta
		}
		return peaks[i].rho < peaks[j].rho
	})

	used := make([]bool, len(points))
	tolerance := math.Max(1, p.Rho)
	maxStep := float64(p.MaxLineGap + 1)

	type onLine struct {
		idx int
		pos float64
	}

	for _, pk := range peaks {
		if len(segments) >= p.MaxSegments {
			break
		}

		cosA, sinA := cosT[pk.theta], sinT[pk.theta]
		rho := float64(pk.rho-offset) * p.Rho

		candidates := make([]onLine, 0, pk.votes)
		for i, pt := range points {
			if used[i] {
				continue
			}
			d := float64(pt.X)*cosA + float64(pt.Y)*sinA - rho
			if math.Abs(d) <= tolerance {
				// Position along the line direction (-sin, cos).
				candidates = append(candidates, onLine{idx: i, pos: -float64(pt.X)*sinA + float64(pt.Y)*cosA})
			}
		}
		if len(candidates) < p.Threshold {
			continue
		}
		sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].pos < candidates[j].pos })

		start := 0
		for i := 1; i <= len(candidates); i++ {
			if i < len(candidates) && candidates[i].pos-candidates[i-1].pos <= maxStep {
				continue
			}
			run := candidates[start:i]
			start = i

			a := points[run[0].idx]
			b := points[run[len(run)-1].idx]
			if math.Hypot(float64(b.X-a.X), float64(b.Y-a.Y)) < float64(p.MinLineLength) {
				continue
			}
			for _, c := range run {
				used[c.idx] = true
			}
			segments = append(segments, lane.Segment{
				X1: a.X + bounds.Min.X, Y1: a.Y + bounds.Min.Y,
				X2: b.X + bounds.Min.X, Y2: b.Y + bounds.Min.Y,
			})
			if len(segments) >= p.MaxSegments {
				break
			}
		}
	}

	return segments, nil
}
