package tracker

import (
	"errors"
	"image/color"
)

// SanityParams bound what is accepted as a plausible lane after a fit.
// The pixel bounds are given for a mask ReferenceWidth pixels wide and are
// scaled by the width of the mask checked.
type SanityParams struct {
	// Enabled turns on the sanity checks
	Enabled bool
	// ReferenceWidth is the mask width the pixel bounds are given for,
	// zero applies the bounds unscaled
	ReferenceWidth float64
	// MinLaneWidth is the minimum pixel distance between the lane lines at
	// the bottom of the frame
	MinLaneWidth float64
	// MaxLaneWidth is the maximum pixel distance between the lane lines at
	// the bottom of the frame
	MaxLaneWidth float64
	// MaxWidthSpread is the maximum difference between the widest and
	// narrowest lane width sampled down the frame, lane lines that diverge
	// more than this are not parallel
	MaxWidthSpread float64
	// MaxWidthDelta is the maximum change in bottom lane width compared to
	// the previous frame model
	MaxWidthDelta float64
	// Samples is the number of rows sampled for the width spread
	Samples int
}

// SmoothingParams configures the Kalman filter applied to the lane model
// used for display.  Each curve is filtered as its x position at the top,
// middle and bottom rows so noise values are in square pixels.
type SmoothingParams struct {
	Enabled bool
	// ProcessNoise is the variance added to each position per frame
	ProcessNoise float64
	// MeasureNoise is the variance of a measured position
	MeasureNoise float64
}

// Params are the tracker parameters
type Params struct {
	// Windows is the number of sliding window bands stacked over the frame
	Windows int
	// WindowMargin is the half width of a sliding window in pixels
	WindowMargin int
	// MinPixels is the count of pixels a window must exceed to recentre
	// the next window
	MinPixels int
	// TrackMargin is the half width of the band around the previous curve
	// searched by the incremental search
	TrackMargin int
	// YMetersPerPixel is the vertical scale of the top down image
	YMetersPerPixel float64
	// XMetersPerPixel is the horizontal scale of the top down image
	XMetersPerPixel float64
	// LaneWidthMeters is the physical lane width used for the centre offset
	LaneWidthMeters float64
	// EvalY is the row metrics are evaluated at, zero uses the mask height
	EvalY float64
	// MaxRadius caps the curvature radius in meters for straight lanes
	MaxRadius float64
	// RevertOnFailure returns the tracker to Uninitialized when a frame
	// fails while tracking
	RevertOnFailure bool
	// LaneColor is the fill colour of the lane overlay
	LaneColor color.NRGBA
	Sanity    SanityParams
	Smoothing SmoothingParams
}

// DefaultParams returns the default tracker parameters for a 1280x720 top
// down canvas.  The sanity lane width bounds scale with the mask width, the
// window and track margins do not.
func DefaultParams() Params {
	return Params{
		Windows:         9,
		WindowMargin:    70,
		MinPixels:       30,
		TrackMargin:     70,
		YMetersPerPixel: 30.0 / 720,
		XMetersPerPixel: 3.7 / 700,
		LaneWidthMeters: 3.7,
		EvalY:           0,
		MaxRadius:       1e9,
		RevertOnFailure: true,
		LaneColor:       color.NRGBA{R: 0, G: 255, B: 0, A: 255},
		Sanity: SanityParams{
			Enabled:        true,
			ReferenceWidth: 1280,
			MinLaneWidth:   400,
			MaxLaneWidth:   1000,
			MaxWidthSpread: 300,
			MaxWidthDelta:  100,
			Samples:        10,
		},
		Smoothing: SmoothingParams{
			Enabled:      false,
			ProcessNoise: 25,
			MeasureNoise: 400,
		},
	}
}

// Validate checks the parameters are usable
func (p Params) Validate() error {

	switch {
	case p.Windows < 1:
		return errors.New("windows must be at least 1")
	case p.WindowMargin < 1:
		return errors.New("window margin must be at least 1")
	case p.MinPixels < 0:
		return errors.New("min pixels can not be negative")
	case p.TrackMargin < 1:
		return errors.New("track margin must be at least 1")
	case p.YMetersPerPixel <= 0 || p.XMetersPerPixel <= 0:
		return errors.New("meters per pixel must be positive")
	case p.LaneWidthMeters <= 0:
		return errors.New("lane width must be positive")
	case p.EvalY < 0:
		return errors.New("eval y can not be negative")
	case p.MaxRadius <= 0:
		return errors.New("max radius must be positive")
	}

	if p.Sanity.Enabled {
		if p.Sanity.MinLaneWidth >= p.Sanity.MaxLaneWidth {
			return errors.New("min lane width must be less than max lane width")
		}
		if p.Sanity.ReferenceWidth < 0 {
			return errors.New("sanity reference width must not be negative")
		}
		if p.Sanity.Samples < 2 {
			return errors.New("sanity samples must be at least 2")
		}
	}

	if p.Smoothing.Enabled &&
		(p.Smoothing.ProcessNoise <= 0 || p.Smoothing.MeasureNoise <= 0) {
		return errors.New("smoothing noise must be positive")
	}

	return nil
}
