// Package detection finds straight line segments in a binary edge map.
//
// It is the step between edge detection and lane extraction: the segments it
// returns are the raw, noisy candidates that package lane classifies and
// reduces to two boundaries.
//
// # Algorithm Overview
//
// DetectSegments is a deterministic variant of the progressive probabilistic
// Hough transform:
//
//  1. Voting: every edge pixel votes for each (rho, theta) line through it.
//  2. Peak selection: accumulator cells that reach the vote threshold and are
//     local maxima are visited in descending vote order.
//  3. Segment extraction: the unclaimed edge pixels lying on a peak's line are
//     ordered along the line and split wherever the gap exceeds MaxLineGap.
//     Runs at least MinLineLength long become segments and claim their
//     pixels, so later peaks cannot report the same marking twice.
//
// # Coordinate System
//
// Segment endpoints are pixel coordinates of edge pixels in the input image,
// origin top-left, Y increasing downward. Endpoint order follows the line
// direction and carries no meaning.
//
// # Performance Considerations
//
// Voting is O(edge pixels x theta bins) and extraction is O(peaks x edge
// pixels). Mask the edge map to a region of interest first; on a masked road
// frame both terms are small.
package detection
