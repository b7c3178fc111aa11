// Package pipeline chains the image stages into lane detection for a single
// frame and for a directory of frames.
//
//	frame ─► grayscale ─► blur ─► canny ─► region mask ─► segments
//	      ─► classify/extrapolate ─► draw ─► weighted composite
package pipeline

import (
	"fmt"
	"image"

	"github.com/rs/zerolog"

	"github.com/ironsheep/lane-tools-mcp/internal/config"
	"github.com/ironsheep/lane-tools-mcp/internal/detection"
	"github.com/ironsheep/lane-tools-mcp/internal/imaging"
	"github.com/ironsheep/lane-tools-mcp/internal/lane"
	"github.com/ironsheep/lane-tools-mcp/internal/logger"
)

// Pipeline runs the full detection chain with one fixed configuration.
// It holds no per-frame state and is safe for concurrent use.
type Pipeline struct {
	cfg    config.Config
	region imaging.Region
	hough  detection.HoughParams
	ext    *lane.Extrapolator
	log    zerolog.Logger
}

// FrameResult is the outcome of processing one frame.
type FrameResult struct {
	// Segments are the raw detections that fed the extrapolator.
	Segments []lane.Segment `json:"segments"`

	// Lanes holds the extrapolated boundaries.
	Lanes *lane.Result `json:"lanes"`

	// Overlay is the input frame with the boundaries composited on top.
	Overlay *image.RGBA `json:"-"`
}

// New validates cfg and builds a pipeline from it.
func New(cfg config.Config, log zerolog.Logger) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	style, err := cfg.Style()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", config.ErrInvalid, err)
	}
	return &Pipeline{
		cfg:    cfg,
		region: cfg.Region(),
		hough:  cfg.Hough(),
		ext:    lane.NewExtrapolator(style),
		log:    logger.Component(log, "pipeline"),
	}, nil
}

// Config returns the configuration the pipeline was built with.
func (p *Pipeline) Config() config.Config { return p.cfg }

// Edges returns the masked edge map of img. The map's bounds start at the
// origin whatever img's bounds are.
func (p *Pipeline) Edges(img image.Image) (*image.Gray, error) {
	gray := imaging.Blur(imaging.Grayscale(img), p.cfg.BlurRadius)
	edges, err := imaging.Canny(gray, p.cfg.CannyLow, p.cfg.CannyHigh)
	if err != nil {
		return nil, err
	}
	return imaging.MaskRegion(edges, p.region)
}

// Segments returns the raw line segments detected in img.
func (p *Pipeline) Segments(img image.Image) ([]lane.Segment, error) {
	edges, err := p.Edges(img)
	if err != nil {
		return nil, err
	}
	return detection.DetectSegments(edges, p.hough)
}

// Detect runs the chain up to extrapolation without drawing anything.
//
// Every stage works on an origin-based copy of img, so segment and boundary
// coordinates are relative to img.Bounds().Min and the frame is
// img.Bounds().Size(). For a sub-image the bottom row is therefore
// Bounds().Dy(), not Bounds().Max.Y.
func (p *Pipeline) Detect(img image.Image) (*FrameResult, error) {
	segs, err := p.Segments(img)
	if err != nil {
		return nil, err
	}

	b := img.Bounds()
	res, err := p.ext.Extrapolate(segs, lane.Frame{Width: b.Dx(), Height: b.Dy()})
	if err != nil {
		return nil, err
	}

	ev := p.log.Debug()
	if !res.Complete() {
		ev = p.log.Warn()
	}
	ev.Int("segments", len(segs)).
		Int("left_candidates", res.LeftCount).
		Int("right_candidates", res.RightCount).
		Bool("left", res.Left != nil).
		Bool("right", res.Right != nil).
		Msg("lanes extrapolated")

	return &FrameResult{Segments: segs, Lanes: res}, nil
}

// Process runs the full chain and composites the boundaries onto img. The
// overlay is origin-based, in the same coordinates as the boundaries.
func (p *Pipeline) Process(img image.Image) (*FrameResult, error) {
	fr, err := p.Detect(img)
	if err != nil {
		return nil, err
	}

	b := img.Bounds()
	canvas := imaging.NewCanvas(b.Dx(), b.Dy())
	imaging.DrawSegments(canvas, fr.Lanes.Boundaries(), fr.Lanes.Style)

	overlay, err := imaging.Weighted(img, canvas, p.cfg.Alpha, p.cfg.Beta, p.cfg.Gamma)
	if err != nil {
		return nil, err
	}
	fr.Overlay = overlay
	return fr, nil
}
