// Package config holds the tunable parameters of the lane pipeline.
//
// Values start from Default, which mirrors the constants the pipeline was
// tuned with, and can be overlaid from LANE_MCP_* environment variables and
// from the "options" object of individual tool calls. Keys are the
// mapstructure tags below; string values are converted to the field type.
package config

import (
	"errors"
	"fmt"
	"runtime"
	"strings"

	"github.com/go-viper/mapstructure/v2"

	"github.com/ironsheep/lane-tools-mcp/internal/detection"
	"github.com/ironsheep/lane-tools-mcp/internal/imaging"
	"github.com/ironsheep/lane-tools-mcp/internal/lane"
	"github.com/ironsheep/lane-tools-mcp/internal/logger"
)

// EnvPrefix is prepended to upper-cased keys to form environment variables,
// e.g. LANE_MCP_CANNY_LOW.
const EnvPrefix = "LANE_MCP_"

// ErrInvalid wraps every configuration error.
var ErrInvalid = errors.New("invalid config")

// Config is the full set of pipeline parameters.
type Config struct {
	LogLevel string `mapstructure:"log_level" json:"log_level"`

	// Smoothing and edges.
	BlurRadius float64 `mapstructure:"blur_radius" json:"blur_radius"`
	CannyLow   int     `mapstructure:"canny_low" json:"canny_low"`
	CannyHigh  int     `mapstructure:"canny_high" json:"canny_high"`

	// Region of interest, as fractions of the frame.
	RegionTopY      float64 `mapstructure:"region_top_y" json:"region_top_y"`
	RegionTopLeftX  float64 `mapstructure:"region_top_left_x" json:"region_top_left_x"`
	RegionTopRightX float64 `mapstructure:"region_top_right_x" json:"region_top_right_x"`

	// Segment detection.
	HoughRho       float64 `mapstructure:"hough_rho" json:"hough_rho"`
	HoughThetaBins int     `mapstructure:"hough_theta_bins" json:"hough_theta_bins"`
	HoughThreshold int     `mapstructure:"hough_threshold" json:"hough_threshold"`
	MinLineLength  int     `mapstructure:"min_line_length" json:"min_line_length"`
	MaxLineGap     int     `mapstructure:"max_line_gap" json:"max_line_gap"`
	MaxSegments    int     `mapstructure:"max_segments" json:"max_segments"`

	// Drawing and compositing.
	Color     string  `mapstructure:"color" json:"color"`
	Thickness int     `mapstructure:"thickness" json:"thickness"`
	Alpha     float64 `mapstructure:"alpha" json:"alpha"`
	Beta      float64 `mapstructure:"beta" json:"beta"`
	Gamma     float64 `mapstructure:"gamma" json:"gamma"`

	// Batch processing.
	Workers      int    `mapstructure:"workers" json:"workers"`
	OutputSuffix string `mapstructure:"output_suffix" json:"output_suffix"`
}

// Default returns the stock configuration.
func Default() Config {
	region := imaging.DefaultRegion()
	hough := detection.DefaultHoughParams()
	return Config{
		LogLevel:        "info",
		BlurRadius:      1,
		CannyLow:        50,
		CannyHigh:       150,
		RegionTopY:      region.TopY,
		RegionTopLeftX:  region.TopLeftX,
		RegionTopRightX: region.TopRightX,
		HoughRho:        hough.Rho,
		HoughThetaBins:  hough.ThetaBins,
		HoughThreshold:  hough.Threshold,
		MinLineLength:   hough.MinLineLength,
		MaxLineGap:      hough.MaxLineGap,
		MaxSegments:     hough.MaxSegments,
		Color:           lane.DefaultStyle().Hex(),
		Thickness:       lane.DefaultThickness,
		Alpha:           0.8,
		Beta:            1,
		Gamma:           0,
		Workers:         runtime.NumCPU(),
		OutputSuffix:    "1.jpg",
	}
}

// FromEnv overlays every EnvPrefix variable in environ (as returned by
// os.Environ) onto Default and validates the result. Unknown keys are an
// error so typos do not go unnoticed.
func FromEnv(environ []string) (Config, error) {
	overrides := make(map[string]interface{})
	for _, kv := range environ {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(k, EnvPrefix) {
			continue
		}
		overrides[strings.ToLower(strings.TrimPrefix(k, EnvPrefix))] = v
	}
	return Default().Apply(overrides)
}

// Apply returns a copy of c with overrides decoded on top and validates it.
// c itself is never modified.
func (c Config) Apply(overrides map[string]interface{}) (Config, error) {
	if len(overrides) == 0 {
		return c, c.Validate()
	}

	out := c
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &out,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return c, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if err := dec.Decode(overrides); err != nil {
		return c, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if err := out.Validate(); err != nil {
		return c, err
	}
	return out, nil
}

// Validate checks every parameter group.
func (c Config) Validate() error {
	if _, err := logger.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if c.BlurRadius < 0 {
		return fmt.Errorf("%w: blur_radius must not be negative", ErrInvalid)
	}
	if c.CannyLow < 0 || c.CannyHigh < c.CannyLow {
		return fmt.Errorf("%w: canny thresholds %d/%d", ErrInvalid, c.CannyLow, c.CannyHigh)
	}
	if err := c.Region().Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if err := c.Hough().Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if _, err := c.Style(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if c.Alpha < 0 || c.Beta < 0 {
		return fmt.Errorf("%w: blend weights must not be negative", ErrInvalid)
	}
	if c.Workers < 1 {
		return fmt.Errorf("%w: workers must be at least 1", ErrInvalid)
	}
	if c.OutputSuffix == "" || strings.ContainsAny(c.OutputSuffix, `/\`) {
		return fmt.Errorf("%w: output_suffix %q", ErrInvalid, c.OutputSuffix)
	}
	return nil
}

// Region returns the region-of-interest trapezoid.
func (c Config) Region() imaging.Region {
	return imaging.Region{
		TopY:      c.RegionTopY,
		TopLeftX:  c.RegionTopLeftX,
		TopRightX: c.RegionTopRightX,
	}
}

// Hough returns the segment detector parameters.
func (c Config) Hough() detection.HoughParams {
	return detection.HoughParams{
		Rho:           c.HoughRho,
		ThetaBins:     c.HoughThetaBins,
		Threshold:     c.HoughThreshold,
		MinLineLength: c.MinLineLength,
		MaxLineGap:    c.MaxLineGap,
		MaxSegments:   c.MaxSegments,
	}
}

// Style returns the boundary drawing style.
func (c Config) Style() (lane.Style, error) {
	col, err := lane.ParseColor(c.Color)
	if err != nil {
		return lane.Style{}, err
	}
	s := lane.Style{Color: col, Thickness: c.Thickness}
	return s, s.Validate()
}
