package tracker

import (
	"fmt"
	"math"
)

// Metrics are the physical lane measurements derived from a fit
type Metrics struct {
	// LeftRadius is the left lane line radius of curvature in meters
	LeftRadius float64
	// RightRadius is the right lane line radius of curvature in meters
	RightRadius float64
	// CenterOffset is the lateral offset between the image centre and the
	// lane centre in meters, positive when the image centre lies right of
	// the lane centre
	CenterOffset float64
}

// Radius returns the mean of the left and right radius
func (m Metrics) Radius() float64 {
	return (m.LeftRadius + m.RightRadius) / 2
}

// DeriveMetrics refits the pixel sets in meter space to compute the radius
// of curvature of each line, and uses the pixel space model to compute the
// vehicle offset from the lane centre.  Both are evaluated at row EvalY, or
// the bottom of the mask when unset.
func DeriveMetrics(left, right PixelSet, model LaneModel, width, height int,
	p Params) (Metrics, error) {

	evalY := p.EvalY

	if evalY == 0 {
		evalY = float64(height)
	}

	leftRadius, err := sideRadius(Left, left, evalY, p)

	if err != nil {
		return Metrics{}, err
	}

	rightRadius, err := sideRadius(Right, right, evalY, p)

	if err != nil {
		return Metrics{}, err
	}

	leftX := model.Left.At(evalY)
	rightX := model.Right.At(evalY)

	if leftX == rightX {
		return Metrics{}, fmt.Errorf("%w: lane lines meet at row %.0f",
			ErrDegenerateGeometry, evalY)
	}

	laneCenter := (leftX + rightX) / 2
	imageCenter := float64(width) / 2
	offset := p.LaneWidthMeters * (imageCenter - laneCenter) / (rightX - leftX)

	if !finite(offset) {
		return Metrics{}, fmt.Errorf("%w: offset not finite", ErrDegenerateGeometry)
	}

	return Metrics{
		LeftRadius:   leftRadius,
		RightRadius:  rightRadius,
		CenterOffset: offset,
	}, nil
}

// sideRadius fits a lane line in meter space and returns its radius of
// curvature at evalY pixels
func sideRadius(side Side, set PixelSet, evalY float64, p Params) (float64, error) {

	xs, ys := set.XY()

	for i := range xs {
		xs[i] *= p.XMetersPerPixel
		ys[i] *= p.YMetersPerPixel
	}

	curve, err := FitQuadratic(ys, xs)

	if err != nil {
		return 0, &FitError{Side: side, Points: set.Len(), Err: err}
	}

	if !finite(curve.A) || !finite(curve.B) {
		return 0, fmt.Errorf("%w: %s curve not finite", ErrDegenerateGeometry, side)
	}

	return Radius(curve, evalY*p.YMetersPerPixel, p.MaxRadius), nil
}

// Radius returns the radius of curvature of the curve at y, capped at
// maxRadius.  A straight curve returns maxRadius.
func Radius(c LaneCurve, y, maxRadius float64) float64 {

	den := math.Abs(2 * c.A)

	if den == 0 {
		return maxRadius
	}

	slope := 2*c.A*y + c.B
	r := math.Pow(1+slope*slope, 1.5) / den

	if math.IsNaN(r) || r > maxRadius {
		return maxRadius
	}

	return r
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
