package preprocess

import (
	"image"

	"gocv.io/x/gocv"
)

// Resizer defines the struct used for scaling video frames onto the
// processing canvas
type Resizer struct {
	// srcWidth is the width of the source image
	srcWidth int
	// srcHeight is the height of the source image
	srcHeight int
	// destWidth is the width to scale to
	destWidth int
	// destHeight is the height to scale to
	destHeight int
	// scaling factors
	scaleX float32
	scaleY float32
	// interp is the interpolation used, area when shrinking and linear
	// when enlarging
	interp gocv.InterpolationFlags
}

// NewResizer returns a resizer used for scaling frames of the source size
// to the canvas size
func NewResizer(srcWidth, srcHeight, destWidth, destHeight int) *Resizer {
	r := &Resizer{
		srcWidth:   srcWidth,
		srcHeight:  srcHeight,
		destWidth:  destWidth,
		destHeight: destHeight,
	}

	// precalculate scaling factors
	r.preCalc()

	return r
}

// preCalc the scaling factors for source and destination Mats
func (r *Resizer) preCalc() {

	r.scaleX = float32(r.destWidth) / float32(r.srcWidth)
	r.scaleY = float32(r.destHeight) / float32(r.srcHeight)

	r.interp = gocv.InterpolationLinear

	if r.scaleX < 1 && r.scaleY < 1 {
		r.interp = gocv.InterpolationArea
	}
}

// Passthrough returns true when the source is already the canvas size
func (r *Resizer) Passthrough() bool {
	return r.srcWidth == r.destWidth && r.srcHeight == r.destHeight
}

// Resize scales src to the canvas size into dest.  When no scaling is
// needed src is copied.
func (r *Resizer) Resize(src gocv.Mat, dest *gocv.Mat) {

	if r.Passthrough() {
		src.CopyTo(dest)
		return
	}

	gocv.Resize(src, dest, image.Pt(r.destWidth, r.destHeight), 0, 0, r.interp)
}

// ScaleX returns the horizontal scale factor
func (r *Resizer) ScaleX() float32 {
	return r.scaleX
}

// ScaleY returns the vertical scale factor
func (r *Resizer) ScaleY() float32 {
	return r.scaleY
}

// SrcWidth returns the width of the source image
func (r *Resizer) SrcWidth() int {
	return r.srcWidth
}

// SrcHeight returns the height of the source image
func (r *Resizer) SrcHeight() int {
	return r.srcHeight
}
