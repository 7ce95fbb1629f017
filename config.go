package lanefind

import (
	"encoding/json"
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/swdee/go-lanefind/preprocess"
	"github.com/swdee/go-lanefind/tracker"
)

// Config holds the tuning parameters of a lane finding run.  Every field is
// optional, the Get methods return the default for fields not set.
type Config struct {
	// Search params
	Windows      *int `json:"windows,omitempty"`
	WindowMargin *int `json:"window_margin,omitempty"`
	MinPixels    *int `json:"min_pixels,omitempty"`
	TrackMargin  *int `json:"track_margin,omitempty"`

	// Metric params
	YMetersPerPixel *float64 `json:"ym_per_pix,omitempty"`
	XMetersPerPixel *float64 `json:"xm_per_pix,omitempty"`
	LaneWidthMeters *float64 `json:"lane_width_m,omitempty"`
	EvalY           *float64 `json:"eval_y,omitempty"`
	MaxRadiusMeters *float64 `json:"max_radius_m,omitempty"`

	// Validation params
	SanityEnabled    *bool    `json:"sanity_enabled,omitempty"`
	MinLaneWidthPx   *float64 `json:"min_lane_width_px,omitempty"`
	MaxLaneWidthPx   *float64 `json:"max_lane_width_px,omitempty"`
	MaxWidthDeltaPx  *float64 `json:"max_width_delta_px,omitempty"`
	MaxWidthSpreadPx *float64 `json:"max_width_spread_px,omitempty"`
	RevertOnFailure  *bool    `json:"revert_on_failure,omitempty"`

	// Smoothing params
	SmoothingEnabled      *bool    `json:"smoothing_enabled,omitempty"`
	SmoothingProcessNoise *float64 `json:"smoothing_process_noise,omitempty"`
	SmoothingMeasureNoise *float64 `json:"smoothing_measure_noise,omitempty"`

	// Frame params
	OverlayAlpha   *float64 `json:"overlay_alpha,omitempty"`
	ChessboardCols *int     `json:"chessboard_cols,omitempty"`
	ChessboardRows *int     `json:"chessboard_rows,omitempty"`
	SideMarginPx   *int     `json:"side_margin_px,omitempty"`
	HistorySize    *int     `json:"history_size,omitempty"`
	Workers        *int     `json:"workers,omitempty"`
}

// maxConfigSize is the largest config file accepted
const maxConfigSize = 1 * 1024 * 1024 // 1MB

// LoadConfig loads a Config from a JSON file.  Fields omitted from the file
// keep their default values so partial configs are safe.
func LoadConfig(path string) (*Config, error) {

	cleanPath := filepath.Clean(path)

	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)

	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}

	if fileInfo.Size() > maxConfigSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)",
			fileInfo.Size(), maxConfigSize)
	}

	data, err := os.ReadFile(cleanPath)

	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &Config{}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that the configuration values are valid
func (c *Config) Validate() error {

	if c.OverlayAlpha != nil && (*c.OverlayAlpha < 0 || *c.OverlayAlpha > 1) {
		return fmt.Errorf("overlay_alpha must be between 0 and 1, got %f", *c.OverlayAlpha)
	}

	if c.Workers != nil && *c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", *c.Workers)
	}

	if c.HistorySize != nil && *c.HistorySize < 1 {
		return fmt.Errorf("history_size must be at least 1, got %d", *c.HistorySize)
	}

	if c.ChessboardCols != nil && *c.ChessboardCols < 2 {
		return fmt.Errorf("chessboard_cols must be at least 2, got %d", *c.ChessboardCols)
	}

	if c.ChessboardRows != nil && *c.ChessboardRows < 2 {
		return fmt.Errorf("chessboard_rows must be at least 2, got %d", *c.ChessboardRows)
	}

	if c.SideMarginPx != nil && *c.SideMarginPx < 0 {
		return fmt.Errorf("side_margin_px must be non-negative, got %d", *c.SideMarginPx)
	}

	if err := c.TrackerParams().Validate(); err != nil {
		return err
	}

	return nil
}

// TrackerParams returns the tracker parameters with config values applied
// over the defaults
func (c *Config) TrackerParams() tracker.Params {

	p := tracker.DefaultParams()

	setInt(&p.Windows, c.Windows)
	setInt(&p.WindowMargin, c.WindowMargin)
	setInt(&p.MinPixels, c.MinPixels)
	setInt(&p.TrackMargin, c.TrackMargin)

	setFloat(&p.YMetersPerPixel, c.YMetersPerPixel)
	setFloat(&p.XMetersPerPixel, c.XMetersPerPixel)
	setFloat(&p.LaneWidthMeters, c.LaneWidthMeters)
	setFloat(&p.EvalY, c.EvalY)
	setFloat(&p.MaxRadius, c.MaxRadiusMeters)

	setBool(&p.Sanity.Enabled, c.SanityEnabled)
	setFloat(&p.Sanity.MinLaneWidth, c.MinLaneWidthPx)
	setFloat(&p.Sanity.MaxLaneWidth, c.MaxLaneWidthPx)
	setFloat(&p.Sanity.MaxWidthDelta, c.MaxWidthDeltaPx)
	setFloat(&p.Sanity.MaxWidthSpread, c.MaxWidthSpreadPx)
	setBool(&p.RevertOnFailure, c.RevertOnFailure)

	setBool(&p.Smoothing.Enabled, c.SmoothingEnabled)
	setFloat(&p.Smoothing.ProcessNoise, c.SmoothingProcessNoise)
	setFloat(&p.Smoothing.MeasureNoise, c.SmoothingMeasureNoise)

	return p
}

// RectifierParams returns the perspective mapping with the configured
// side margin
func (c *Config) RectifierParams() preprocess.RectifierParams {

	p := preprocess.DefaultRectifierParams()
	setInt(&p.Margin, c.SideMarginPx)

	return p
}

// ThresholdParams returns the lane pixel threshold parameters
func (c *Config) ThresholdParams() preprocess.ThresholdParams {
	return preprocess.DefaultThresholdParams()
}

// GetBoardSize returns the calibration chessboard inner corner count
func (c *Config) GetBoardSize() image.Point {

	size := preprocess.DefaultBoardSize
	setInt(&size.X, c.ChessboardCols)
	setInt(&size.Y, c.ChessboardRows)

	return size
}

// GetOverlayAlpha returns the weight the lane overlay is blended with
func (c *Config) GetOverlayAlpha() float64 {
	if c.OverlayAlpha == nil {
		return 0.3 // default
	}
	return *c.OverlayAlpha
}

// GetHistorySize returns the number of frames the displayed metrics are
// averaged over
func (c *Config) GetHistorySize() int {
	if c.HistorySize == nil {
		return 1 // default
	}
	return *c.HistorySize
}

// GetWorkers returns the number of concurrent frame preprocessors
func (c *Config) GetWorkers() int {
	if c.Workers == nil {
		return 4 // default
	}
	return *c.Workers
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func setFloat(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}
