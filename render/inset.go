package render

import (
	"image"

	"gocv.io/x/gocv"
)

// Inset copies a scaled down version of src into the top right corner of
// img, the inset is width pixels wide and keeps the aspect ratio of src
func Inset(img *gocv.Mat, src gocv.Mat, width, margin int) {

	if src.Empty() || width <= 0 {
		return
	}

	height := src.Rows() * width / src.Cols()

	// limit inset to the image
	if width+margin > img.Cols() || height+margin > img.Rows() {
		return
	}

	small := gocv.NewMat()
	defer small.Close()

	gocv.Resize(src, &small, image.Pt(width, height), 0, 0, gocv.InterpolationArea)

	rect := image.Rect(img.Cols()-width-margin, margin, img.Cols()-margin, margin+height)

	region := img.Region(rect)
	defer region.Close()

	small.CopyTo(&region)
	gocv.Rectangle(img, rect, White, 2)
}
