package tracker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCurveFilterSteadyModel(t *testing.T) {
	t.Parallel()

	f := NewCurveFilter(testHeight, DefaultParams().Smoothing)
	model := LaneModel{
		Left:  LaneCurve{A: 2e-4, B: -0.2, C: 300},
		Right: LaneCurve{A: 2e-4, B: -0.2, C: 980},
	}

	for i := 0; i < 5; i++ {
		got, err := f.Filter(model)
		require.NoError(t, err)

		assert.InDelta(t, model.Left.A, got.Left.A, 1e-9)
		assert.InDelta(t, model.Left.B, got.Left.B, 1e-6)
		assert.InDelta(t, model.Left.C, got.Left.C, 1e-6)
		assert.InDelta(t, model.Right.C, got.Right.C, 1e-6)
	}
}

func TestCurveFilterStep(t *testing.T) {
	t.Parallel()

	p := SmoothingParams{Enabled: true, ProcessNoise: 25, MeasureNoise: 400}
	f := NewCurveFilter(testHeight, p)

	_, err := f.Filter(LaneModel{Left: LaneCurve{C: 300}, Right: LaneCurve{C: 980}})
	require.NoError(t, err)

	got, err := f.Filter(LaneModel{Left: LaneCurve{C: 320}, Right: LaneCurve{C: 1000}})
	require.NoError(t, err)

	// gain is (400+25)/(400+25+400)
	gain := 425.0 / 825.0
	assert.InDelta(t, 300+gain*20, got.Left.C, 1e-6)
	assert.InDelta(t, 980+gain*20, got.Right.C, 1e-6)
	assert.InDelta(t, 0, got.Left.A, 1e-9)

	f.Reset()

	got, err = f.Filter(LaneModel{Left: LaneCurve{C: 10}, Right: LaneCurve{C: 20}})
	require.NoError(t, err)
	assert.Equal(t, 10.0, got.Left.C)
}
