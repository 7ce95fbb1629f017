package render

import (
	"fmt"

	"github.com/swdee/go-lanefind/tracker"
	"gocv.io/x/gocv"
)

// LanePixels renders the pixels attributed to each lane line as a
// transparent overlay on a BGR top down view image, left in red and right
// in blue
func LanePixels(img *gocv.Mat, left, right tracker.PixelSet, alpha float32) {

	// get dimensions
	width := img.Cols()
	height := img.Rows()

	// it is too slow to manipulate pixel by pixel using GoCV due to slowness
	// over CGO.  So we copy the bytes from the source image and manipulate
	// the bytes directly before copying back to a Mat
	imgData := img.ToBytes()

	for side, set := range []tracker.PixelSet{left, right} {

		clr := sideColors[side]

		for _, pt := range set.Points {

			if pt.X < 0 || pt.Y < 0 || pt.X >= width || pt.Y >= height {
				continue
			}

			// calculate position in the byte slice
			pixelPos := pt.Y*width*3 + pt.X*3

			// get original pixel colors directly from the byte slice
			b, g, r := imgData[pixelPos+0], imgData[pixelPos+1], imgData[pixelPos+2]

			// calculate blended colors based on alpha transparency
			imgData[pixelPos+0] = uint8(float32(b)*(1-alpha) + float32(clr.B)*alpha)
			imgData[pixelPos+1] = uint8(float32(g)*(1-alpha) + float32(clr.G)*alpha)
			imgData[pixelPos+2] = uint8(float32(r)*(1-alpha) + float32(clr.R)*alpha)
		}
	}

	// copy back to the original mat
	tmpImg, _ := gocv.NewMatFromBytes(height, width, gocv.MatTypeCV8UC3, imgData)
	defer tmpImg.Close()
	tmpImg.CopyTo(img)
}

// TopDownView renders the binary mask as a BGR image with the lane pixels,
// search windows and fitted curves drawn over it.  The returned Mat must
// be closed by the caller.
func TopDownView(mask *tracker.BinaryMask, res *tracker.Result) (gocv.Mat, error) {

	gray := make([]byte, len(mask.Pix))

	for i, v := range mask.Pix {
		if v != 0 {
			gray[i] = 255
		}
	}

	grayMat, err := gocv.NewMatFromBytes(mask.Height, mask.Width, gocv.MatTypeCV8UC1, gray)

	if err != nil {
		return gocv.NewMat(), fmt.Errorf("error creating mask mat: %w", err)
	}
	defer grayMat.Close()

	img := gocv.NewMat()
	gocv.CvtColor(grayMat, &img, gocv.ColorGrayToBGR)

	if res == nil {
		return img, nil
	}

	LanePixels(&img, res.Left, res.Right, 1.0)
	SearchWindows(&img, res.Diagnostics, LabelFont(), 2)
	Curves(&img, res.Display, DefaultCurveStyle())

	return img, nil
}

// PaintTopDownToFile paints the top down view of a frame to an image file
func PaintTopDownToFile(filename string, mask *tracker.BinaryMask,
	res *tracker.Result) error {

	img, err := TopDownView(mask, res)

	if err != nil {
		return err
	}
	defer img.Close()

	if gocv.IMWrite(filename, img) {
		return nil
	}

	return fmt.Errorf("failed to write to file %s", filename)
}
