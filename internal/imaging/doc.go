// Package imaging provides the image operations that surround lane detection:
// loading and caching frames, grayscale conversion, smoothing, Canny edge
// detection, region-of-interest masking, drawing boundaries and compositing
// them back onto the frame.
//
// # Coordinate System
//
// All pixel coordinates are 0-based with the origin at the top-left corner,
// X increasing rightward and Y increasing downward. Images produced by this
// package always have bounds starting at (0, 0).
//
// # Thread Safety
//
// ImageCache is safe for concurrent use. The remaining functions are stateless
// and allocate their outputs, so they can run concurrently on different
// frames. DrawSegments mutates its destination and must not share one across
// goroutines.
//
// # Error Handling
//
// Functions return errors for invalid inputs such as:
//   - Inverted or negative edge thresholds (ErrInvalidThreshold)
//   - Region fractions outside [0, 1] (ErrInvalidRegion)
//   - Images that must line up but differ in size (ErrSizeMismatch)
//   - File I/O and encoding failures
package imaging
