package tracker

import (
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
)

// RenderOverlay draws the lane area enclosed by the model curves filled in
// colour c on a black canvas of the given size
func RenderOverlay(model LaneModel, width, height int, c color.NRGBA) *image.NRGBA {

	img := imaging.New(width, height, color.NRGBA{0, 0, 0, 255})

	for y := 0; y < height; y++ {

		fy := float64(y)
		x0 := math.Round(model.Left.At(fy))
		x1 := math.Round(model.Right.At(fy))

		if x0 > x1 {
			x0, x1 = x1, x0
		}

		// clamp span to the canvas
		start := int(math.Max(x0, 0))
		end := int(math.Min(x1, float64(width-1)))

		for x := start; x <= end; x++ {
			img.SetNRGBA(x, y, c)
		}
	}

	return img
}
