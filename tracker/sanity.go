package tracker

import (
	"fmt"
	"math"
)

// CheckSanity returns ErrImplausibleFit when the lane model is not a
// plausible lane on a mask of the given size.  The bottom lane width
// must be within bounds, the lines must stay roughly parallel down the
// frame and, when prev is given, the bottom width must not jump from the
// previous model.
func CheckSanity(model LaneModel, prev *LaneModel, width, height int, p SanityParams) error {

	if !p.Enabled {
		return nil
	}

	p = p.scaled(width)

	bottom := float64(height)
	laneWidth := model.Width(bottom)

	if math.IsNaN(laneWidth) || laneWidth < p.MinLaneWidth || laneWidth > p.MaxLaneWidth {
		return fmt.Errorf("%w: lane width %.1fpx outside [%.0f, %.0f]",
			ErrImplausibleFit, laneWidth, p.MinLaneWidth, p.MaxLaneWidth)
	}

	// sample the lane width down the frame to check the lines are parallel
	minW, maxW := laneWidth, laneWidth
	step := bottom / float64(p.Samples-1)

	for i := 0; i < p.Samples; i++ {
		w := model.Width(float64(i) * step)
		minW = math.Min(minW, w)
		maxW = math.Max(maxW, w)
	}

	if maxW-minW > p.MaxWidthSpread {
		return fmt.Errorf("%w: lane width spread %.1fpx exceeds %.0fpx",
			ErrImplausibleFit, maxW-minW, p.MaxWidthSpread)
	}

	if prev != nil {
		delta := math.Abs(laneWidth - prev.Width(bottom))

		if delta > p.MaxWidthDelta {
			return fmt.Errorf("%w: lane width changed %.1fpx exceeds %.0fpx",
				ErrImplausibleFit, delta, p.MaxWidthDelta)
		}
	}

	return nil
}

// scaled returns the params with the pixel bounds scaled from the reference
// width to the mask width
func (p SanityParams) scaled(width int) SanityParams {

	if p.ReferenceWidth <= 0 || width <= 0 {
		return p
	}

	k := float64(width) / p.ReferenceWidth

	p.MinLaneWidth *= k
	p.MaxLaneWidth *= k
	p.MaxWidthSpread *= k
	p.MaxWidthDelta *= k

	return p
}
