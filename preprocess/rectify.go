package preprocess

import (
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"
)

// RectifierParams define the perspective mapping between the camera view
// and the top down view
type RectifierParams struct {
	// Src are the corners of a straight lane section in the undistorted
	// camera image, ordered top left, top right, bottom right, bottom left
	Src [4]gocv.Point2f
	// Margin is the horizontal margin left either side of the lane in the
	// top down view
	Margin int
	// Size is the canvas size of both views
	Size image.Point
}

// DefaultRectifierParams returns the mapping measured for a 1280x720 dash
// camera where the lane lines are centred and straight
func DefaultRectifierParams() RectifierParams {
	return RectifierParams{
		Src: [4]gocv.Point2f{
			{X: 587, Y: 455},
			{X: 703, Y: 455},
			{X: 1130, Y: 720},
			{X: 190, Y: 720},
		},
		Margin: 280,
		Size:   image.Pt(1280, 720),
	}
}

// Dst returns the corners of the lane in the top down view
func (p RectifierParams) Dst() [4]gocv.Point2f {

	w := float32(p.Size.X)
	h := float32(p.Size.Y)
	m := float32(p.Margin)

	return [4]gocv.Point2f{
		{X: m, Y: 0},
		{X: w - m, Y: 0},
		{X: w - m, Y: h},
		{X: m, Y: h},
	}
}

// Rectifier warps images between the camera view and the top down view.
// The transform matrices are fixed at creation.
type Rectifier struct {
	size    image.Point
	forward gocv.Mat
	inverse gocv.Mat
}

// NewRectifier returns a rectifier for the given mapping
func NewRectifier(p RectifierParams) (*Rectifier, error) {

	if p.Size.X <= 0 || p.Size.Y <= 0 {
		return nil, fmt.Errorf("invalid canvas size %v", p.Size)
	}

	if p.Margin < 0 || 2*p.Margin >= p.Size.X {
		return nil, fmt.Errorf("invalid margin %d for canvas width %d",
			p.Margin, p.Size.X)
	}

	dstPts := p.Dst()

	src := gocv.NewPoint2fVectorFromPoints(p.Src[:])
	defer src.Close()
	dst := gocv.NewPoint2fVectorFromPoints(dstPts[:])
	defer dst.Close()

	return &Rectifier{
		size:    p.Size,
		forward: gocv.GetPerspectiveTransform2f(src, dst),
		inverse: gocv.GetPerspectiveTransform2f(dst, src),
	}, nil
}

// ToTopDown warps a camera view image to the top down view
func (r *Rectifier) ToTopDown(src gocv.Mat, dst *gocv.Mat) {
	r.warp(src, dst, r.forward)
}

// ToOriginal warps a top down view image back to the camera view
func (r *Rectifier) ToOriginal(src gocv.Mat, dst *gocv.Mat) {
	r.warp(src, dst, r.inverse)
}

func (r *Rectifier) warp(src gocv.Mat, dst *gocv.Mat, m gocv.Mat) {
	gocv.WarpPerspectiveWithParams(src, dst, m, r.size,
		gocv.InterpolationLinear, gocv.BorderConstant, color.RGBA{})
}

// Size returns the canvas size
func (r *Rectifier) Size() image.Point {
	return r.size
}

// Close frees the transform matrices
func (r *Rectifier) Close() error {
	if err := r.forward.Close(); err != nil {
		return err
	}
	return r.inverse.Close()
}
