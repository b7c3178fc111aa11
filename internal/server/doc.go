// Package server implements the MCP (Model Context Protocol) server for lane
// detection tools.
//
// This package provides a JSON-RPC 2.0 server that exposes the lane pipeline
// through the MCP protocol, so an MCP client can inspect road frames, run the
// individual detection stages and render lane boundaries.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Logs go to the zerolog logger passed to New, never to stdout.
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Basic Image Information:
//   - image_load: Load image and get metadata
//   - image_dimensions: Get width and height
//
// Lane Geometry:
//   - lane_find_boundaries: Classify and extrapolate caller-supplied segments
//
// Lane Detection:
//   - lane_edge_detect: Masked Canny edge map as PNG
//   - lane_detect_segments: Raw line segments
//   - lane_detect: Left and right boundaries
//   - lane_overlay: Boundaries drawn over the frame
//   - lane_process_dir: Batch overlay for a directory of frames
//
// The detection tools accept an "options" object whose keys are the
// config.Config keys (canny_low, hough_threshold, color, ...). Options apply
// to that call only.
//
// # Image Caching
//
// The server maintains an in-memory cache of loaded images. Images are cached
// by path and reused across multiple tool calls, avoiding redundant disk I/O.
// lane_process_dir reads its frames directly and does not fill the cache.
//
// # Error Handling
//
// Tool errors are returned as JSON-RPC error responses with:
//   - code: -32602 for bad arguments or options, -32000 for other failures
//   - message: Human-readable error description
//   - data: The Go error string
//
// A frame in which no boundary can be found is not an error; the missing
// side is simply absent from the result.
//
// # Usage
//
//	srv, err := server.New(cfg, log)
//	if err != nil {
//	    return err
//	}
//	return srv.Run(ctx)
package server
