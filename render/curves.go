package render

import (
	"image"
	"image/color"
	"math"

	"github.com/swdee/go-lanefind/tracker"
	"gocv.io/x/gocv"
)

// CurveStyle defines the parameters used for rendering lane curves
type CurveStyle struct {
	LineColor     color.RGBA
	LineThickness int
	// Step is the number of rows between curve line segments
	Step int
	// CircleColor is the color of the circle marking the base of each curve
	CircleColor  color.RGBA
	CircleRadius int
}

// DefaultCurveStyle returns default curve style settings
func DefaultCurveStyle() CurveStyle {
	return CurveStyle{
		LineColor:     Yellow,
		LineThickness: 2,
		Step:          10,
		CircleColor:   Pink,
		CircleRadius:  6,
	}
}

// Curves draws both lane model curves from the top to the bottom of a top
// down view image
func Curves(img *gocv.Mat, model tracker.LaneModel, style CurveStyle) {
	for _, c := range []tracker.LaneCurve{model.Left, model.Right} {
		Curve(img, c, style)
	}
}

// Curve draws a single lane curve as a polyline
func Curve(img *gocv.Mat, c tracker.LaneCurve, style CurveStyle) {

	height := img.Rows()
	points := CurvePoints(c, height, style.Step)

	if len(points) < 2 {
		return
	}

	for i := 1; i < len(points); i++ {
		// draw line segment of curve
		gocv.Line(img, points[i-1], points[i], style.LineColor, style.LineThickness)

		if i == len(points)-1 {
			// mark base of curve
			gocv.Circle(img, points[i], style.CircleRadius, style.CircleColor, -1)
		}
	}
}

// CurvePoints samples the curve every step rows from the top of the image
// down to the last row
func CurvePoints(c tracker.LaneCurve, height, step int) []image.Point {

	if step < 1 {
		step = 1
	}

	points := make([]image.Point, 0, height/step+2)

	for y := 0; y < height; y += step {
		points = append(points, curvePoint(c, y))
	}

	// always finish on the bottom row
	if last := height - 1; last >= 0 && (len(points) == 0 || points[len(points)-1].Y != last) {
		points = append(points, curvePoint(c, last))
	}

	return points
}

func curvePoint(c tracker.LaneCurve, y int) image.Point {
	return image.Pt(int(math.Round(c.At(float64(y)))), y)
}
