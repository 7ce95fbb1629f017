package tracker

import (
	"math"
)

const (
	testWidth  = 1280
	testHeight = 720
)

// drawCurve marks a band of pixels halfWidth either side of the curve on
// every row of the mask
func drawCurve(m *BinaryMask, c LaneCurve, halfWidth int) {
	for y := 0; y < m.Height; y++ {
		xc := int(math.Round(c.At(float64(y))))

		for x := xc - halfWidth; x <= xc+halfWidth; x++ {
			m.Set(x, y)
		}
	}
}

// laneMask returns a standard size mask with the left and right curves
// drawn as bands 11 pixels wide
func laneMask(left, right LaneCurve) *BinaryMask {
	m := NewBinaryMask(testWidth, testHeight)
	drawCurve(m, left, 5)
	drawCurve(m, right, 5)
	return m
}

// straightMask returns the two band mask with lines at x=300 and x=980
func straightMask() *BinaryMask {
	return laneMask(LaneCurve{C: 300}, LaneCurve{C: 980})
}

// linePixels returns a pixel set following the curve on every row
func linePixels(c LaneCurve, height int) PixelSet {
	var set PixelSet

	for y := 0; y < height; y++ {
		set.Add(int(math.Round(c.At(float64(y)))), y)
	}

	return set
}
