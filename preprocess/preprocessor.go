package preprocess

import (
	"fmt"

	"github.com/swdee/go-lanefind/tracker"
	"gocv.io/x/gocv"
)

// Prepared is a frame ready for lane tracking
type Prepared struct {
	// Mask is the top down binary lane mask
	Mask *tracker.BinaryMask
	// Frame is the undistorted colour frame at canvas size, used for
	// compositing the lane overlay
	Frame gocv.Mat
}

// Close frees the prepared frame
func (p *Prepared) Close() error {
	return p.Frame.Close()
}

// Preprocessor runs the stateless per frame stages, scaling a frame to the
// canvas, thresholding it, removing lens distortion and warping the mask to
// the top down view.  Calibration and Rectifier are only read and may be
// shared between Preprocessors, each Preprocessor holds its own scratch Mats
// and must only be used by one goroutine at a time.
type Preprocessor struct {
	cal       *Calibration
	rect      *Rectifier
	threshold *Thresholder
	resizer   *Resizer
	scaled    gocv.Mat
	binary    gocv.Mat
	undist    gocv.Mat
	topDown   gocv.Mat
}

// NewPreprocessor returns a preprocessor.  The calibration may be nil in
// which case frames are assumed to be free of lens distortion.
func NewPreprocessor(cal *Calibration, rect *Rectifier,
	p ThresholdParams) *Preprocessor {

	return &Preprocessor{
		cal:       cal,
		rect:      rect,
		threshold: NewThresholder(p),
		scaled:    gocv.NewMat(),
		binary:    gocv.NewMat(),
		undist:    gocv.NewMat(),
		topDown:   gocv.NewMat(),
	}
}

// Process prepares a BGR colour frame for lane tracking
func (p *Preprocessor) Process(frame gocv.Mat) (*Prepared, error) {

	if frame.Empty() {
		return nil, fmt.Errorf("frame is empty")
	}

	size := p.rect.Size()

	// create resizer on first frame or when the source size changes
	if p.resizer == nil || p.resizer.SrcWidth() != frame.Cols() ||
		p.resizer.SrcHeight() != frame.Rows() {
		p.resizer = NewResizer(frame.Cols(), frame.Rows(), size.X, size.Y)
	}

	p.resizer.Resize(frame, &p.scaled)

	// threshold before removing distortion
	p.threshold.Threshold(p.scaled, &p.binary)

	out := &Prepared{
		Frame: gocv.NewMat(),
	}

	if p.cal != nil {
		p.cal.Undistort(p.binary, &p.undist)
		p.cal.Undistort(p.scaled, &out.Frame)
	} else {
		p.binary.CopyTo(&p.undist)
		p.scaled.CopyTo(&out.Frame)
	}

	p.rect.ToTopDown(p.undist, &p.topDown)

	mask, err := MatToMask(p.topDown)

	if err != nil {
		out.Close()
		return nil, err
	}

	out.Mask = mask

	return out, nil
}

// Close frees the scratch Mats
func (p *Preprocessor) Close() error {

	var firstErr error

	for _, m := range []*gocv.Mat{&p.scaled, &p.binary, &p.undist, &p.topDown} {
		if err := m.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	if err := p.threshold.Close(); err != nil && firstErr == nil {
		firstErr = err
	}

	return firstErr
}
