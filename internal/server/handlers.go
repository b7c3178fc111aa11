package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"image"

	"github.com/ironsheep/lane-tools-mcp/internal/config"
	"github.com/ironsheep/lane-tools-mcp/internal/imaging"
	"github.com/ironsheep/lane-tools-mcp/internal/lane"
	"github.com/ironsheep/lane-tools-mcp/internal/pipeline"
)

// errInvalidArguments marks tool errors caused by the caller's arguments
// rather than by the tool itself.
var errInvalidArguments = errors.New("invalid arguments")

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "image_load", "lane_detect").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Argument errors return a JSON-RPC error response with code -32602, any
// other tool failure uses -32000.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	log := s.log.With().Str("tool", params.Name).Logger()
	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		log.Warn().Err(err).Msg("tool failed")
		if isArgumentError(err) {
			return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
		}
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}
	log.Debug().Msg("tool succeeded")

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

func isArgumentError(err error) bool {
	return errors.Is(err, errInvalidArguments) ||
		errors.Is(err, config.ErrInvalid) ||
		errors.Is(err, lane.ErrInvalidFrame) ||
		errors.Is(err, lane.ErrInvalidStyle)
}

// executeTool dispatches tool execution to the appropriate handler function.
//
// Each tool handler:
//  1. Unmarshals arguments from JSON
//  2. Applies per-call option overrides to the server configuration
//  3. Loads images from cache as needed
//  4. Calls the appropriate lane/pipeline/imaging function
//  5. Returns the result or error
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Basic Image Information
	case "image_load":
		return s.handleImageLoad(args)
	case "image_dimensions":
		return s.handleImageDimensions(args)

	// Lane Geometry
	case "lane_find_boundaries":
		return s.handleLaneFindBoundaries(args)

	// Lane Detection
	case "lane_edge_detect":
		return s.handleLaneEdgeDetect(args)
	case "lane_detect_segments":
		return s.handleLaneDetectSegments(args)
	case "lane_detect":
		return s.handleLaneDetect(args)
	case "lane_overlay":
		return s.handleLaneOverlay(args)
	case "lane_process_dir":
		return s.handleLaneProcessDir(args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// decodeArgs unmarshals tool arguments, tagging failures as argument errors.
func decodeArgs(args json.RawMessage, v interface{}) error {
	if err := json.Unmarshal(args, v); err != nil {
		return fmt.Errorf("%w: %v", errInvalidArguments, err)
	}
	return nil
}

// pipelineFor returns the server pipeline, or a one-off pipeline when the
// call carries option overrides.
func (s *Server) pipelineFor(options map[string]interface{}) (*pipeline.Pipeline, error) {
	if len(options) == 0 {
		return s.pipeline, nil
	}
	cfg, err := s.cfg.Apply(options)
	if err != nil {
		return nil, err
	}
	return pipeline.New(cfg, s.base)
}

// === Basic Image Information Handlers ===

type imageLoadArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleImageLoad(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	return imaging.LoadImageInfo(s.cache, a.Path)
}

func (s *Server) handleImageDimensions(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	return imaging.GetDimensions(s.cache, a.Path)
}

// === Lane Geometry Handlers ===

type laneFindBoundariesArgs struct {
	Width     int     `json:"width"`
	Height    int     `json:"height"`
	Segments  [][]int `json:"segments"`
	Color     string  `json:"color"`
	Thickness int     `json:"thickness"`
}

func (s *Server) handleLaneFindBoundaries(args json.RawMessage) (interface{}, error) {
	var a laneFindBoundariesArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}

	segs := make([]lane.Segment, 0, len(a.Segments))
	for i, v := range a.Segments {
		if len(v) != 4 {
			return nil, fmt.Errorf("%w: segment %d has %d values, want 4", errInvalidArguments, i, len(v))
		}
		segs = append(segs, lane.Segment{X1: v[0], Y1: v[1], X2: v[2], Y2: v[3]})
	}

	style, err := s.cfg.Style()
	if err != nil {
		return nil, err
	}
	if a.Color != "" {
		if style.Color, err = lane.ParseColor(a.Color); err != nil {
			return nil, err
		}
	}
	if a.Thickness != 0 {
		style.Thickness = a.Thickness
	}

	return lane.NewExtrapolator(style).Extrapolate(segs, lane.Frame{Width: a.Width, Height: a.Height})
}

// === Lane Detection Handlers ===

type laneImageArgs struct {
	Path    string                 `json:"path"`
	Options map[string]interface{} `json:"options"`
}

// loadFrame loads the image at path through the cache and picks the pipeline
// for the call.
func (s *Server) loadFrame(path string, options map[string]interface{}) (*pipeline.Pipeline, image.Image, error) {
	p, err := s.pipelineFor(options)
	if err != nil {
		return nil, nil, err
	}
	img, err := s.cache.Load(path)
	if err != nil {
		return nil, nil, err
	}
	return p, img, nil
}

type laneEdgeResult struct {
	*imaging.EncodedImage
	EdgePixels int `json:"edge_pixels"`
}

func (s *Server) handleLaneEdgeDetect(args json.RawMessage) (interface{}, error) {
	var a laneImageArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	p, img, err := s.loadFrame(a.Path, a.Options)
	if err != nil {
		return nil, err
	}

	edges, err := p.Edges(img)
	if err != nil {
		return nil, err
	}
	enc, err := imaging.EncodePNG(edges)
	if err != nil {
		return nil, err
	}

	n := 0
	for _, v := range edges.Pix {
		if v != 0 {
			n++
		}
	}
	return &laneEdgeResult{EncodedImage: enc, EdgePixels: n}, nil
}

type laneSegmentsResult struct {
	Width    int            `json:"width"`
	Height   int            `json:"height"`
	Count    int            `json:"count"`
	Segments []lane.Segment `json:"segments"`
}

func (s *Server) handleLaneDetectSegments(args json.RawMessage) (interface{}, error) {
	var a laneImageArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	p, img, err := s.loadFrame(a.Path, a.Options)
	if err != nil {
		return nil, err
	}

	segs, err := p.Segments(img)
	if err != nil {
		return nil, err
	}
	b := img.Bounds()
	return &laneSegmentsResult{
		Width:    b.Dx(),
		Height:   b.Dy(),
		Count:    len(segs),
		Segments: segs,
	}, nil
}

func (s *Server) handleLaneDetect(args json.RawMessage) (interface{}, error) {
	var a laneImageArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	p, img, err := s.loadFrame(a.Path, a.Options)
	if err != nil {
		return nil, err
	}
	return p.Detect(img)
}

type laneOverlayArgs struct {
	laneImageArgs
	OutputPath string `json:"output_path"`
}

type laneOverlayResult struct {
	Lanes      *lane.Result          `json:"lanes"`
	Segments   int                   `json:"segments"`
	OutputPath string                `json:"output_path,omitempty"`
	Image      *imaging.EncodedImage `json:"image"`
}

func (s *Server) handleLaneOverlay(args json.RawMessage) (interface{}, error) {
	var a laneOverlayArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	p, img, err := s.loadFrame(a.Path, a.Options)
	if err != nil {
		return nil, err
	}

	fr, err := p.Process(img)
	if err != nil {
		return nil, err
	}
	if a.OutputPath != "" {
		if err := imaging.Save(fr.Overlay, a.OutputPath); err != nil {
			return nil, err
		}
	}
	enc, err := imaging.EncodePNG(fr.Overlay)
	if err != nil {
		return nil, err
	}
	return &laneOverlayResult{
		Lanes:      fr.Lanes,
		Segments:   len(fr.Segments),
		OutputPath: a.OutputPath,
		Image:      enc,
	}, nil
}

type laneProcessDirArgs struct {
	InputDir  string                 `json:"input_dir"`
	OutputDir string                 `json:"output_dir"`
	Options   map[string]interface{} `json:"options"`
}

func (s *Server) handleLaneProcessDir(args json.RawMessage) (interface{}, error) {
	var a laneProcessDirArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.InputDir == "" || a.OutputDir == "" {
		return nil, fmt.Errorf("%w: input_dir and output_dir are required", errInvalidArguments)
	}
	p, err := s.pipelineFor(a.Options)
	if err != nil {
		return nil, err
	}
	return p.ProcessDir(s.ctx, a.InputDir, a.OutputDir)
}
