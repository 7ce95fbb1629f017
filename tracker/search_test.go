package tracker

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFullSearchStraightLanes(t *testing.T) {
	t.Parallel()

	fit, err := FullSearch(straightMask(), DefaultParams())
	require.NoError(t, err)

	// first maximum of each 11 pixel wide band
	assert.Equal(t, 295, fit.Diagnostics.LeftBase)
	assert.Equal(t, 975, fit.Diagnostics.RightBase)
	assert.Len(t, fit.Diagnostics.Windows, 18)
	assert.Len(t, fit.Diagnostics.Histogram, testWidth)

	assert.InDelta(t, 0, fit.Model.Left.A, 1e-9)
	assert.InDelta(t, 0, fit.Model.Left.B, 1e-6)
	assert.InDelta(t, 300, fit.Model.Left.C, 1e-6)
	assert.InDelta(t, 0, fit.Model.Right.A, 1e-9)
	assert.InDelta(t, 0, fit.Model.Right.B, 1e-6)
	assert.InDelta(t, 980, fit.Model.Right.C, 1e-6)

	// every band pixel is collected
	assert.Equal(t, 11*testHeight, fit.Left.Len())
	assert.Equal(t, 11*testHeight, fit.Right.Len())
}

func TestFullSearchWindowsFollowLane(t *testing.T) {
	t.Parallel()

	fit, err := FullSearch(straightMask(), DefaultParams())
	require.NoError(t, err)

	// first window is centred on the histogram base, later windows are
	// recentred on the band mean
	first := fit.Diagnostics.Windows[0]
	assert.Equal(t, Left, first.Side)
	assert.Equal(t, 0, first.Band)
	assert.Equal(t, 295-70, first.Rect.Min.X)
	assert.Equal(t, 640, first.Rect.Min.Y)
	assert.Equal(t, 720, first.Rect.Max.Y)
	assert.Equal(t, 11*80, first.Count)

	second := fit.Diagnostics.Windows[2]
	assert.Equal(t, 1, second.Band)
	assert.Equal(t, 300-70, second.Rect.Min.X)
	assert.Equal(t, 300+70, second.Rect.Max.X)
}

func TestFullSearchCurvedLanes(t *testing.T) {
	t.Parallel()

	left := LaneCurve{A: 2e-4, B: -0.2, C: 300}
	right := LaneCurve{A: 2e-4, B: -0.2, C: 980}

	fit, err := FullSearch(laneMask(left, right), DefaultParams())
	require.NoError(t, err)

	for _, c := range []struct {
		want, got LaneCurve
	}{
		{left, fit.Model.Left},
		{right, fit.Model.Right},
	} {
		assert.InDelta(t, c.want.A, c.got.A, 1e-5)
		assert.InDelta(t, c.want.B, c.got.B, 1e-2)
		assert.InDelta(t, c.want.C, c.got.C, 1.0)
	}
}

func TestFullSearchTooFewPixels(t *testing.T) {
	t.Parallel()

	m := NewBinaryMask(testWidth, testHeight)
	m.Set(300, 700)
	m.Set(980, 700)

	_, err := FullSearch(m, DefaultParams())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInsufficientPixels))

	var fitErr *FitError
	require.True(t, errors.As(err, &fitErr))
	assert.Equal(t, Left, fitErr.Side)
	assert.Equal(t, 1, fitErr.Points)
}

func TestFullSearchSmallMask(t *testing.T) {
	t.Parallel()

	// fewer rows than windows gives zero height windows
	_, err := FullSearch(NewBinaryMask(20, 5), DefaultParams())
	assert.ErrorIs(t, err, ErrInsufficientPixels)
}

func TestIncrementalSearchRoundTrip(t *testing.T) {
	t.Parallel()

	p := DefaultParams()
	mask := laneMask(
		LaneCurve{A: 1e-4, B: -0.1, C: 320},
		LaneCurve{A: 1e-4, B: -0.1, C: 1000},
	)

	full, err := FullSearch(mask, p)
	require.NoError(t, err)

	inc, err := IncrementalSearch(mask, full.Model, p)
	require.NoError(t, err)
	assert.Nil(t, inc.Diagnostics)

	assert.Equal(t, full.Left.Len(), inc.Left.Len())
	assert.Equal(t, full.Right.Len(), inc.Right.Len())

	assert.InDelta(t, full.Model.Left.A, inc.Model.Left.A, 1e-9)
	assert.InDelta(t, full.Model.Left.B, inc.Model.Left.B, 1e-6)
	assert.InDelta(t, full.Model.Left.C, inc.Model.Left.C, 1e-4)
	assert.InDelta(t, full.Model.Right.A, inc.Model.Right.A, 1e-9)
	assert.InDelta(t, full.Model.Right.B, inc.Model.Right.B, 1e-6)
	assert.InDelta(t, full.Model.Right.C, inc.Model.Right.C, 1e-4)
}

func TestIncrementalSearchStrictMargin(t *testing.T) {
	t.Parallel()

	p := DefaultParams()
	p.TrackMargin = 10

	// pixels exactly on the margin boundary are excluded
	m := NewBinaryMask(100, 30)
	for y := 0; y < 30; y++ {
		m.Set(40, y)
		m.Set(50, y)
		m.Set(60, y)
	}

	model := LaneModel{Left: LaneCurve{C: 50}, Right: LaneCurve{C: 50}}

	fit, err := IncrementalSearch(m, model, p)
	require.NoError(t, err)

	// a pixel near both curves belongs to both sides
	assert.Equal(t, 30, fit.Left.Len())
	assert.Equal(t, 30, fit.Right.Len())

	for _, pt := range fit.Left.Points {
		assert.Equal(t, 50, pt.X)
	}
}

func TestIncrementalSearchLostLane(t *testing.T) {
	t.Parallel()

	model := LaneModel{Left: LaneCurve{C: 100}, Right: LaneCurve{C: 1200}}

	_, err := IncrementalSearch(straightMask(), model, DefaultParams())
	assert.ErrorIs(t, err, ErrInsufficientPixels)
}
