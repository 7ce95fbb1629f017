package tracker

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

var (
	diagMaskColor   = color.NRGBA{255, 255, 255, 255}
	diagLeftColor   = color.NRGBA{255, 0, 0, 255}
	diagRightColor  = color.NRGBA{0, 0, 255, 255}
	diagWindowColor = color.NRGBA{0, 255, 0, 255}
	diagCurveColor  = color.NRGBA{255, 255, 0, 255}
)

// DiagnosticImage renders the full search state of a frame.  The mask is
// drawn in white, left lane pixels in red, right lane pixels in blue, the
// sliding windows in green with their band number, and the fitted curves
// in yellow.
func DiagnosticImage(mask *BinaryMask, fit *Fit) *image.NRGBA {

	img := imaging.New(mask.Width, mask.Height, color.NRGBA{0, 0, 0, 255})

	for y := 0; y < mask.Height; y++ {
		for x := 0; x < mask.Width; x++ {
			if mask.Pix[y*mask.Width+x] != 0 {
				img.SetNRGBA(x, y, diagMaskColor)
			}
		}
	}

	if fit == nil {
		return img
	}

	for _, pt := range fit.Left.Points {
		img.SetNRGBA(pt.X, pt.Y, diagLeftColor)
	}

	for _, pt := range fit.Right.Points {
		img.SetNRGBA(pt.X, pt.Y, diagRightColor)
	}

	if fit.Diagnostics != nil {
		drawer := &font.Drawer{
			Dst:  img,
			Src:  image.NewUniform(diagWindowColor),
			Face: basicfont.Face7x13,
		}

		for _, w := range fit.Diagnostics.Windows {
			drawRect(img, w.Rect, diagWindowColor)

			// label left windows only to keep the image readable
			if w.Side == Left {
				drawer.Dot = fixed.P(w.Rect.Min.X+2, w.Rect.Min.Y+13)
				drawer.DrawString(fmt.Sprintf("%d", w.Band))
			}
		}
	}

	for y := 0; y < mask.Height; y++ {
		fy := float64(y)

		for _, c := range []LaneCurve{fit.Model.Left, fit.Model.Right} {
			x := int(math.Round(c.At(fy)))

			if x >= 0 && x < mask.Width {
				img.SetNRGBA(x, y, diagCurveColor)
			}
		}
	}

	return img
}

// drawRect outlines r in colour c, clipped to the image
func drawRect(img *image.NRGBA, r image.Rectangle, c color.NRGBA) {

	b := img.Bounds()

	for x := r.Min.X; x < r.Max.X; x++ {
		if (image.Point{X: x, Y: r.Min.Y}).In(b) {
			img.SetNRGBA(x, r.Min.Y, c)
		}
		if (image.Point{X: x, Y: r.Max.Y - 1}).In(b) {
			img.SetNRGBA(x, r.Max.Y-1, c)
		}
	}

	for y := r.Min.Y; y < r.Max.Y; y++ {
		if (image.Point{X: r.Min.X, Y: y}).In(b) {
			img.SetNRGBA(r.Min.X, y, c)
		}
		if (image.Point{X: r.Max.X - 1, Y: y}).In(b) {
			img.SetNRGBA(r.Max.X-1, y, c)
		}
	}
}

// SaveDiagnosticImage writes the diagnostic image of a full search to file,
// the image format is chosen from the file extension
func SaveDiagnosticImage(path string, mask *BinaryMask, fit *Fit) error {

	if err := imaging.Save(DiagnosticImage(mask, fit), path); err != nil {
		return fmt.Errorf("error saving diagnostic image: %w", err)
	}

	return nil
}
