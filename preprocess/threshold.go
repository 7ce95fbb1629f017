package preprocess

import (
	"image"

	"gocv.io/x/gocv"
)

// ThresholdParams configure the lane pixel thresholding
type ThresholdParams struct {
	// BlurSize is the Gaussian blur kernel size
	BlurSize int
	// BlockSize is the adaptive threshold neighbourhood size, must be odd
	BlockSize int
	// C is the constant subtracted from the neighbourhood mean
	C float32
}

// DefaultThresholdParams returns the default threshold parameters
func DefaultThresholdParams() ThresholdParams {
	return ThresholdParams{
		BlurSize:  3,
		BlockSize: 33,
		C:         -10,
	}
}

// Thresholder produces a binary lane mask from a BGR colour frame.  The red
// and blue channels pick out white and yellow paint, the HLS saturation
// channel picks out coloured paint under changing light, and the blend of
// both is passed through an adaptive Gaussian threshold.
type Thresholder struct {
	params  ThresholdParams
	blurred gocv.Mat
	hls     gocv.Mat
	rb      gocv.Mat
	mixed   gocv.Mat
}

// NewThresholder returns a thresholder, the scratch Mats it holds are
// reused between frames so it must not be shared between goroutines
func NewThresholder(p ThresholdParams) *Thresholder {

	if p.BlockSize%2 == 0 {
		p.BlockSize++
	}

	return &Thresholder{
		params:  p,
		blurred: gocv.NewMat(),
		hls:     gocv.NewMat(),
		rb:      gocv.NewMat(),
		mixed:   gocv.NewMat(),
	}
}

// Threshold writes the single channel mask of src to dst, lane pixels are
// 255 and everything else 0
func (t *Thresholder) Threshold(src gocv.Mat, dst *gocv.Mat) {

	k := t.params.BlurSize
	gocv.GaussianBlur(src, &t.blurred, image.Pt(k, k), 0, 0, gocv.BorderDefault)

	// blend the blue and red channels
	bgr := gocv.Split(t.blurred)
	gocv.AddWeighted(bgr[0], 0.5, bgr[2], 0.5, 0, &t.rb)

	for _, ch := range bgr {
		ch.Close()
	}

	// extract the saturation channel
	gocv.CvtColor(t.blurred, &t.hls, gocv.ColorBGRToHLS)
	hls := gocv.Split(t.hls)
	gocv.AddWeighted(hls[2], 0.5, t.rb, 0.5, 0, &t.mixed)

	for _, ch := range hls {
		ch.Close()
	}

	gocv.AdaptiveThreshold(t.mixed, dst, 255, gocv.AdaptiveThresholdGaussian,
		gocv.ThresholdBinary, t.params.BlockSize, t.params.C)
}

// Close frees the scratch Mats
func (t *Thresholder) Close() error {
	for _, m := range []*gocv.Mat{&t.blurred, &t.hls, &t.rb, &t.mixed} {
		if err := m.Close(); err != nil {
			return err
		}
	}
	return nil
}
