package render

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"
)

// Unwarper maps a top down view image back to the camera view
type Unwarper interface {
	ToOriginal(src gocv.Mat, dst *gocv.Mat)
}

// Compositor blends the top down lane overlay onto camera frames
type Compositor struct {
	unwarp Unwarper
	alpha  float64
	// scratch Mats reused between frames
	overlay gocv.Mat
	warped  gocv.Mat
}

// NewCompositor returns a compositor blending the overlay with the given
// alpha weight.  It must only be used by one goroutine at a time.
func NewCompositor(unwarp Unwarper, alpha float64) *Compositor {
	return &Compositor{
		unwarp:  unwarp,
		alpha:   alpha,
		overlay: gocv.NewMat(),
		warped:  gocv.NewMat(),
	}
}

// Composite warps the overlay back to the camera view and blends it onto
// frame writing the result to dst.  Frame and the overlay must be the same
// size.
func (c *Compositor) Composite(frame gocv.Mat, overlay image.Image, dst *gocv.Mat) error {

	ov, err := gocv.ImageToMatRGB(overlay)

	if err != nil {
		return fmt.Errorf("error converting overlay: %w", err)
	}

	c.overlay.Close()
	c.overlay = ov

	if c.overlay.Cols() != frame.Cols() || c.overlay.Rows() != frame.Rows() {
		return fmt.Errorf("overlay size %dx%d does not match frame %dx%d",
			c.overlay.Cols(), c.overlay.Rows(), frame.Cols(), frame.Rows())
	}

	c.unwarp.ToOriginal(c.overlay, &c.warped)

	gocv.AddWeighted(frame, 1, c.warped, c.alpha, 0, dst)

	return nil
}

// Close frees the scratch Mats
func (c *Compositor) Close() error {
	if err := c.overlay.Close(); err != nil {
		return err
	}
	return c.warped.Close()
}
