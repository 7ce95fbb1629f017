package tracker

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// minFitPoints is the number of points needed to fit a second degree
// polynomial
const minFitPoints = 3

// FitQuadratic returns the least squares fit of x = A*y^2 + B*y + C over
// the paired ys and xs samples.  At least three samples on three distinct
// rows are required.
func FitQuadratic(ys, xs []float64) (LaneCurve, error) {

	if len(ys) != len(xs) {
		return LaneCurve{}, fmt.Errorf("mismatched sample lengths %d and %d",
			len(ys), len(xs))
	}

	if len(ys) < minFitPoints || distinctRows(ys) < minFitPoints {
		return LaneCurve{}, ErrInsufficientPixels
	}

	// build the vandermonde design matrix with columns y^2, y, 1
	n := len(ys)
	design := mat.NewDense(n, 3, nil)

	for i, y := range ys {
		design.Set(i, 0, y*y)
		design.Set(i, 1, y)
		design.Set(i, 2, 1)
	}

	target := mat.NewVecDense(n, append([]float64(nil), xs...))

	// solve by QR factorisation for the least squares solution
	var coef mat.VecDense

	if err := coef.SolveVec(design, target); err != nil {
		return LaneCurve{}, fmt.Errorf("%w: %v", ErrInsufficientPixels, err)
	}

	return LaneCurve{
		A: coef.AtVec(0),
		B: coef.AtVec(1),
		C: coef.AtVec(2),
	}, nil
}

// fitSide fits a pixel set and wraps failures with the lane side
func fitSide(side Side, set PixelSet) (LaneCurve, error) {

	xs, ys := set.XY()
	curve, err := FitQuadratic(ys, xs)

	if err != nil {
		return LaneCurve{}, &FitError{Side: side, Points: set.Len(), Err: err}
	}

	return curve, nil
}

// distinctRows counts unique values in ys, stopping once enough are found
// for a fit
func distinctRows(ys []float64) int {

	seen := make(map[float64]struct{}, minFitPoints)

	for _, y := range ys {
		seen[y] = struct{}{}

		if len(seen) >= minFitPoints {
			break
		}
	}

	return len(seen)
}
