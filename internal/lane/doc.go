// Package lane reduces the raw line segments detected in one video frame to at
// most two lane boundaries, one per side, each extended to the bottom row of
// the frame.
//
// # Pipeline
//
// Processing a frame is two steps:
//
//  1. Classification: each segment is assigned to the left or right side by
//     the sign of its slope. Vertical and horizontal segments are dropped.
//  2. Extrapolation: each side keeps the extreme corners seen across its
//     segments, draws a straight line through them, and extends that line to
//     y = frame height.
//
// # Coordinate System
//
// Coordinates follow the image convention used throughout this module:
//   - Origin (0, 0) at the top-left corner
//   - X increases rightward
//   - Y increases downward
//
// With y pointing down, a lane marking on the right of a forward-facing camera
// runs down and to the right (positive slope) and a marking on the left runs
// down and to the left (negative slope). This assumes a conventionally mounted
// camera and is not validated against other orientations.
//
// # Degenerate Input
//
// Empty input, a side with no candidates, and a side whose extreme corners
// have no horizontal or vertical span all produce an absent boundary for that
// side. None of these are errors, and no division by zero is ever attempted.
//
// # Concurrency
//
// Every call owns its accumulators; nothing is shared between calls, so frames
// can be processed concurrently without locking.
package lane
