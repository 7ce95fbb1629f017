package tracker

import (
	"errors"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTracker(t *testing.T, p Params) *LaneTracker {
	t.Helper()

	lt, err := NewLaneTracker(p)
	require.NoError(t, err)

	return lt
}

func TestLaneTrackerModes(t *testing.T) {
	t.Parallel()

	lt := newTestTracker(t, DefaultParams())
	assert.Equal(t, Uninitialized, lt.State())

	_, ok := lt.Model()
	assert.False(t, ok)

	mask := straightMask()

	res, err := lt.ProcessFrame(mask)
	require.NoError(t, err)
	assert.Equal(t, FullSearchMode, res.Mode)
	assert.NotNil(t, res.Diagnostics)
	assert.Equal(t, 1, res.FrameID)
	assert.Equal(t, Tracking, lt.State())

	model, ok := lt.Model()
	require.True(t, ok)
	assert.Equal(t, res.Model, model)
	assert.Equal(t, res.Model, res.Display)

	res, err = lt.ProcessFrame(mask)
	require.NoError(t, err)
	assert.Equal(t, IncrementalSearchMode, res.Mode)
	assert.Nil(t, res.Diagnostics)
	assert.Equal(t, 2, res.FrameID)
	assert.InDelta(t, 0, res.Metrics.CenterOffset, 1e-6)
}

func TestLaneTrackerRevertsOnFailure(t *testing.T) {
	t.Parallel()

	lt := newTestTracker(t, DefaultParams())

	_, err := lt.ProcessFrame(straightMask())
	require.NoError(t, err)
	require.Equal(t, Tracking, lt.State())

	// a blank frame loses the lane
	_, err = lt.ProcessFrame(NewBinaryMask(testWidth, testHeight))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInsufficientPixels))
	assert.Equal(t, Uninitialized, lt.State())

	_, ok := lt.Model()
	assert.False(t, ok)

	// the next frame runs a full search again
	res, err := lt.ProcessFrame(straightMask())
	require.NoError(t, err)
	assert.Equal(t, FullSearchMode, res.Mode)
}

func TestLaneTrackerKeepsModelWithoutRevert(t *testing.T) {
	t.Parallel()

	p := DefaultParams()
	p.RevertOnFailure = false
	lt := newTestTracker(t, p)

	res, err := lt.ProcessFrame(straightMask())
	require.NoError(t, err)

	_, err = lt.ProcessFrame(NewBinaryMask(testWidth, testHeight))
	require.Error(t, err)

	// the failed frame leaves the model untouched
	assert.Equal(t, Tracking, lt.State())

	model, ok := lt.Model()
	require.True(t, ok)
	assert.Equal(t, res.Model, model)
}

func TestLaneTrackerFullSearchFailureStaysUninitialized(t *testing.T) {
	t.Parallel()

	lt := newTestTracker(t, DefaultParams())

	m := NewBinaryMask(testWidth, testHeight)
	m.Set(300, 700)
	m.Set(300, 600)

	_, err := lt.ProcessFrame(m)

	var fitErr *FitError
	require.True(t, errors.As(err, &fitErr))
	assert.Equal(t, 2, fitErr.Points)
	assert.Equal(t, Uninitialized, lt.State())
}

func TestLaneTrackerRejectsImplausibleLane(t *testing.T) {
	t.Parallel()

	lt := newTestTracker(t, DefaultParams())

	// lines only 100 pixels apart either side of the midpoint
	mask := laneMask(LaneCurve{C: 590}, LaneCurve{C: 690})

	_, err := lt.ProcessFrame(mask)
	assert.ErrorIs(t, err, ErrImplausibleFit)
	assert.Equal(t, Uninitialized, lt.State())

	// without sanity checks the same lane is accepted
	p := DefaultParams()
	p.Sanity.Enabled = false
	lt = newTestTracker(t, p)

	_, err = lt.ProcessFrame(mask)
	assert.NoError(t, err)
}

func TestLaneTrackerSmallMask(t *testing.T) {
	t.Parallel()

	lt := newTestTracker(t, DefaultParams())

	// half size canvas with the lines 340 pixels apart
	mask := NewBinaryMask(640, 360)
	drawCurve(mask, LaneCurve{C: 150}, 3)
	drawCurve(mask, LaneCurve{C: 490}, 3)

	res, err := lt.ProcessFrame(mask)
	require.NoError(t, err)
	assert.Equal(t, FullSearchMode, res.Mode)
	assert.Equal(t, Tracking, lt.State())
	assert.InDelta(t, 340, res.Model.Width(360), 1)

	res, err = lt.ProcessFrame(mask)
	require.NoError(t, err)
	assert.Equal(t, IncrementalSearchMode, res.Mode)
}

func TestLaneTrackerRejectsWidthJump(t *testing.T) {
	t.Parallel()

	p := DefaultParams()
	p.TrackMargin = 200
	lt := newTestTracker(t, p)

	_, err := lt.ProcessFrame(straightMask())
	require.NoError(t, err)

	// right line moves 150 pixels outwards, within the track margin
	_, err = lt.ProcessFrame(laneMask(LaneCurve{C: 300}, LaneCurve{C: 1130}))
	assert.ErrorIs(t, err, ErrImplausibleFit)
	assert.Equal(t, Uninitialized, lt.State())
}

func TestLaneTrackerReset(t *testing.T) {
	t.Parallel()

	lt := newTestTracker(t, DefaultParams())

	_, err := lt.ProcessFrame(straightMask())
	require.NoError(t, err)

	lt.Reset()
	assert.Equal(t, Uninitialized, lt.State())

	res, err := lt.ProcessFrame(straightMask())
	require.NoError(t, err)
	assert.Equal(t, FullSearchMode, res.Mode)
	assert.Equal(t, 1, res.FrameID)
}

func TestLaneTrackerOverlay(t *testing.T) {
	t.Parallel()

	lt := newTestTracker(t, DefaultParams())

	res, err := lt.ProcessFrame(straightMask())
	require.NoError(t, err)

	b := res.Overlay.Bounds()
	assert.Equal(t, testWidth, b.Dx())
	assert.Equal(t, testHeight, b.Dy())

	green := color.NRGBA{0, 255, 0, 255}
	black := color.NRGBA{0, 0, 0, 255}

	assert.Equal(t, green, res.Overlay.NRGBAAt(640, 700))
	assert.Equal(t, green, res.Overlay.NRGBAAt(300, 0))
	assert.Equal(t, black, res.Overlay.NRGBAAt(100, 700))
	assert.Equal(t, black, res.Overlay.NRGBAAt(1200, 10))
}

func TestLaneTrackerSmoothing(t *testing.T) {
	t.Parallel()

	p := DefaultParams()
	p.Smoothing.Enabled = true
	lt := newTestTracker(t, p)

	_, err := lt.ProcessFrame(straightMask())
	require.NoError(t, err)

	res, err := lt.ProcessFrame(laneMask(LaneCurve{C: 320}, LaneCurve{C: 1000}))
	require.NoError(t, err)

	// tracking state holds the raw fit, the display lags behind it
	assert.InDelta(t, 320, res.Model.Left.C, 1e-6)
	assert.Greater(t, res.Display.Left.C, 300.0)
	assert.Less(t, res.Display.Left.C, 320.0)
}

func TestNewLaneTrackerInvalidParams(t *testing.T) {
	t.Parallel()

	p := DefaultParams()
	p.Windows = 0

	_, err := NewLaneTracker(p)
	assert.Error(t, err)
}

func TestLaneTrackerInvalidMask(t *testing.T) {
	t.Parallel()

	lt := newTestTracker(t, DefaultParams())

	_, err := lt.ProcessFrame(&BinaryMask{Width: 10, Height: 10})
	assert.Error(t, err)
	assert.Equal(t, Uninitialized, lt.State())
}
