package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func pathProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Absolute path to the image file",
	}
}

// optionsProperty describes the per-call configuration overrides accepted by
// the image tools. Keys match the LANE_MCP_* environment variables in lower
// case without the prefix.
func optionsProperty() map[string]interface{} {
	num := func(desc string) map[string]interface{} {
		return map[string]interface{}{"type": "number", "description": desc}
	}
	integer := func(desc string) map[string]interface{} {
		return map[string]interface{}{"type": "integer", "description": desc}
	}
	return map[string]interface{}{
		"type":        "object",
		"description": "Optional overrides of the server configuration for this call only",
		"properties": map[string]interface{}{
			"blur_radius":        num("Gaussian blur radius before edge detection. 0 disables blurring"),
			"canny_low":          integer("Lower hysteresis threshold on gradient magnitude (0-255 scale)"),
			"canny_high":         integer("Upper hysteresis threshold on gradient magnitude (0-255 scale)"),
			"region_top_y":       num("Top edge of the region of interest as a fraction of height"),
			"region_top_left_x":  num("Left end of the region's top edge as a fraction of width"),
			"region_top_right_x": num("Right end of the region's top edge as a fraction of width"),
			"hough_rho":          num("Distance resolution of the segment detector in pixels"),
			"hough_theta_bins":   integer("Number of angle bins over 180 degrees"),
			"hough_threshold":    integer("Minimum votes for a candidate line"),
			"min_line_length":    integer("Minimum segment length in pixels"),
			"max_line_gap":       integer("Maximum gap in pixels bridged within one segment"),
			"max_segments":       integer("Upper bound on detected segments"),
			"color":              map[string]interface{}{"type": "string", "description": "Boundary colour as #RRGGBB"},
			"thickness":          integer("Boundary line thickness in pixels"),
			"alpha":              num("Weight of the original frame in the composite"),
			"beta":               num("Weight of the drawn boundaries in the composite"),
			"gamma":              num("Constant added to every channel of the composite (0-255)"),
			"workers":            integer("Frames processed in parallel by lane_process_dir"),
			"output_suffix":      map[string]interface{}{"type": "string", "description": "Appended to each source file name by lane_process_dir"},
		},
	}
}

func pathSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"path":    pathProperty(),
			"options": optionsProperty(),
		},
		"required": []string{"path"},
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Basic Image Information
		{
			Name:        "image_load",
			Description: "Load an image file and return its dimensions, format and file size. The decoded frame is cached for subsequent lane tools.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_dimensions",
			Description: "Get the width and height of an image file.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},

		// Lane Geometry
		{
			Name:        "lane_find_boundaries",
			Description: "Classify line segments into left and right lane markings by slope sign and extrapolate one boundary per side down to the bottom of the frame. Works on coordinates only; no image is read.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"width": map[string]interface{}{
						"type":        "integer",
						"description": "Frame width in pixels",
					},
					"height": map[string]interface{}{
						"type":        "integer",
						"description": "Frame height in pixels",
					},
					"segments": map[string]interface{}{
						"type":        "array",
						"description": "Line segments as [x1, y1, x2, y2] in pixel coordinates, origin top-left",
						"items": map[string]interface{}{
							"type":     "array",
							"items":    map[string]interface{}{"type": "integer"},
							"minItems": 4,
							"maxItems": 4,
						},
					},
					"color": map[string]interface{}{
						"type":        "string",
						"description": "Boundary colour as #RRGGBB. Default #FF0000",
					},
					"thickness": map[string]interface{}{
						"type":        "integer",
						"description": "Boundary thickness in pixels. Default 5",
					},
				},
				"required": []string{"width", "height", "segments"},
			},
		},

		// Lane Detection
		{
			Name:        "lane_edge_detect",
			Description: "Run grayscale, blur, Canny edge detection and the region-of-interest mask on an image. Returns the edge map as base64-encoded PNG.",
			InputSchema: pathSchema(),
		},
		{
			Name:        "lane_detect_segments",
			Description: "Detect raw line segments in the masked edge map of an image.",
			InputSchema: pathSchema(),
		},
		{
			Name:        "lane_detect",
			Description: "Detect the left and right lane boundaries in an image. Returns the boundaries, the candidate counts per side and the raw segments.",
			InputSchema: pathSchema(),
		},
		{
			Name:        "lane_overlay",
			Description: "Detect lane boundaries and draw them over the image. Returns the boundaries and the composite as base64-encoded PNG, and writes it to output_path when given.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"output_path": map[string]interface{}{
						"type":        "string",
						"description": "Optional file to save the composite to; the format follows the extension",
					},
					"options": optionsProperty(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "lane_process_dir",
			Description: "Detect and draw lane boundaries for every image directly inside a directory, writing each composite to the output directory as the source name plus a suffix (default \"1.jpg\").",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"input_dir": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path of the directory holding the frames",
					},
					"output_dir": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path of the directory to write results to; created if missing",
					},
					"options": optionsProperty(),
				},
				"required": []string{"input_dir", "output_dir"},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
