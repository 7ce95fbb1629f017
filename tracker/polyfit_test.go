package tracker

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFitQuadraticExact(t *testing.T) {
	t.Parallel()

	want := LaneCurve{A: 3e-4, B: -0.25, C: 410}

	var ys, xs []float64

	for y := 0.0; y < 720; y += 10 {
		ys = append(ys, y)
		xs = append(xs, want.At(y))
	}

	got, err := FitQuadratic(ys, xs)
	require.NoError(t, err)

	assert.InDelta(t, want.A, got.A, 1e-9)
	assert.InDelta(t, want.B, got.B, 1e-6)
	assert.InDelta(t, want.C, got.C, 1e-4)
}

func TestFitQuadraticInsufficient(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		ys   []float64
		xs   []float64
	}{
		{"empty", nil, nil},
		{"two points", []float64{1, 2}, []float64{5, 6}},
		{"two distinct rows", []float64{1, 1, 2, 2}, []float64{5, 6, 5, 6}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := FitQuadratic(tt.ys, tt.xs)
			assert.True(t, errors.Is(err, ErrInsufficientPixels), "got %v", err)
		})
	}
}

func TestFitSideWrapsError(t *testing.T) {
	t.Parallel()

	var set PixelSet
	set.Add(10, 10)
	set.Add(11, 20)

	_, err := fitSide(Right, set)
	require.Error(t, err)

	var fitErr *FitError
	require.True(t, errors.As(err, &fitErr))
	assert.Equal(t, Right, fitErr.Side)
	assert.Equal(t, 2, fitErr.Points)
	assert.ErrorIs(t, err, ErrInsufficientPixels)
}
