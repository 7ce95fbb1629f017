package tracker

import (
	"errors"
	"fmt"
)

var (
	// ErrInsufficientPixels is returned when a lane line has too few pixels
	// to fit a quadratic
	ErrInsufficientPixels = errors.New("insufficient pixels to fit lane line")

	// ErrDegenerateGeometry is returned when metrics can not be derived as
	// both lane lines meet at the evaluation row or a value is not finite
	ErrDegenerateGeometry = errors.New("degenerate lane geometry")

	// ErrImplausibleFit is returned when a fit succeeds but the resulting
	// lane fails the sanity checks
	ErrImplausibleFit = errors.New("implausible lane fit")
)

// FitError reports which lane line failed to fit
type FitError struct {
	Side   Side
	Points int
	Err    error
}

// Error returns the error message
func (e *FitError) Error() string {
	return fmt.Sprintf("%s lane fit with %d points: %v", e.Side, e.Points, e.Err)
}

// Unwrap returns the underlying error
func (e *FitError) Unwrap() error {
	return e.Err
}
