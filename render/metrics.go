package render

import (
	"fmt"
	"image"

	"github.com/swdee/go-lanefind/tracker"
	"gocv.io/x/gocv"
)

// lineSpacing is the vertical distance between text lines at font scale 1
const lineSpacing = 25

// MetricsText returns the text lines describing the lane metrics
func MetricsText(m tracker.Metrics) []string {
	return []string{
		fmt.Sprintf("Curve radius: %1.0f m", m.Radius()),
		fmt.Sprintf("Center offset: %1.2f m", m.CenterOffset),
	}
}

// Metrics writes the curve radius and centre offset in the top left of the
// image
func Metrics(img *gocv.Mat, m tracker.Metrics, font Font) {
	Text(img, MetricsText(m), image.Pt(50, 50), font)
}

// Text writes lines of text starting at origin
func Text(img *gocv.Mat, lines []string, origin image.Point, font Font) {

	step := int(float64(lineSpacing) * font.Scale)

	for i, line := range lines {
		gocv.PutTextWithParams(img, line, image.Pt(origin.X, origin.Y+i*step),
			font.Face, font.Scale, font.Color, font.Thickness,
			font.LineType, false)
	}
}
