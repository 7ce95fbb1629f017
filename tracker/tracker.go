package tracker

import (
	"fmt"
	"image"
)

// Result is the output of a successfully processed frame
type Result struct {
	// FrameID is the count of frames processed by the tracker
	FrameID int
	// Mode is the search that produced the result
	Mode SearchMode
	// Model is the fitted lane model now held by the tracker
	Model LaneModel
	// Display is the model drawn on the overlay, this is the smoothed
	// model when smoothing is enabled otherwise equal to Model
	Display LaneModel
	Metrics Metrics
	// Overlay is an image the same size as the mask with the lane area
	// filled
	Overlay *image.NRGBA
	Left    PixelSet
	Right   PixelSet
	// Diagnostics is set for full search results
	Diagnostics *Diagnostics
}

// LaneTracker tracks a lane across the frames of a single video stream.
// It holds the lane model between frames, running a full search until a
// lane is found and then an incremental search around the previous model.
// A LaneTracker is not safe for concurrent use and frames must be given in
// temporal order, you must create a new instance per stream.
type LaneTracker struct {
	params  Params
	state   DetectionState
	model   LaneModel
	filter  *CurveFilter
	frameID int
}

// NewLaneTracker returns a new tracker in the Uninitialized state
func NewLaneTracker(p Params) (*LaneTracker, error) {

	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("invalid tracker params: %w", err)
	}

	return &LaneTracker{
		params: p,
		state:  Uninitialized,
	}, nil
}

// State returns the current detection state
func (t *LaneTracker) State() DetectionState {
	return t.state
}

// Model returns the held lane model, false is returned when no model is held
func (t *LaneTracker) Model() (LaneModel, bool) {
	return t.model, t.state == Tracking
}

// Params returns the tracker parameters
func (t *LaneTracker) Params() Params {
	return t.params
}

// Reset discards the lane model and returns to the Uninitialized state
func (t *LaneTracker) Reset() {
	t.state = Uninitialized
	t.model = LaneModel{}
	t.frameID = 0

	if t.filter != nil {
		t.filter.Reset()
	}
}

// ProcessFrame runs the search for the current state on the top down mask,
// derives the lane metrics and renders the lane overlay.  The lane model
// and state are only updated when every step succeeds.  On failure while
// tracking the tracker reverts to Uninitialized when RevertOnFailure is set
// so the next frame runs a full search.
func (t *LaneTracker) ProcessFrame(mask *BinaryMask) (*Result, error) {

	if err := mask.Validate(); err != nil {
		return nil, err
	}

	t.frameID++

	var (
		fit  *Fit
		prev *LaneModel
		mode SearchMode
		err  error
	)

	switch t.state {
	case Uninitialized:
		mode = FullSearchMode
		fit, err = FullSearch(mask, t.params)

	case Tracking:
		mode = IncrementalSearchMode
		prevModel := t.model
		prev = &prevModel
		fit, err = IncrementalSearch(mask, t.model, t.params)

	default:
		return nil, fmt.Errorf("unknown detection state %d", t.state)
	}

	var metrics Metrics

	if err == nil {
		metrics, err = DeriveMetrics(fit.Left, fit.Right, fit.Model,
			mask.Width, mask.Height, t.params)
	}

	if err == nil {
		err = CheckSanity(fit.Model, prev, mask.Width, mask.Height, t.params.Sanity)
	}

	if err != nil {
		t.fail()
		return nil, fmt.Errorf("frame %d %s search: %w", t.frameID, mode, err)
	}

	// commit
	t.model = fit.Model
	t.state = Tracking

	display := fit.Model

	if t.params.Smoothing.Enabled {
		if t.filter == nil {
			t.filter = NewCurveFilter(mask.Height, t.params.Smoothing)
		}

		if smoothed, ferr := t.filter.Filter(fit.Model); ferr == nil {
			display = smoothed
		} else {
			t.filter.Reset()
		}
	}

	return &Result{
		FrameID:     t.frameID,
		Mode:        mode,
		Model:       fit.Model,
		Display:     display,
		Metrics:     metrics,
		Overlay:     RenderOverlay(display, mask.Width, mask.Height, t.params.LaneColor),
		Left:        fit.Left,
		Right:       fit.Right,
		Diagnostics: fit.Diagnostics,
	}, nil
}

// fail handles a frame that could not be processed
func (t *LaneTracker) fail() {

	if t.state != Tracking || !t.params.RevertOnFailure {
		return
	}

	t.state = Uninitialized
	t.model = LaneModel{}

	if t.filter != nil {
		t.filter.Reset()
	}
}

// Fit returns the search fit that produced the result
func (r *Result) Fit() *Fit {
	return &Fit{
		Model:       r.Model,
		Left:        r.Left,
		Right:       r.Right,
		Diagnostics: r.Diagnostics,
	}
}
