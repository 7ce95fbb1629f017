package preprocess

import (
	"testing"

	"gocv.io/x/gocv"
)

func TestResize(t *testing.T) {

	tests := []struct {
		srcWidth       int
		srcHeight      int
		expectedScaleX float32
		expectedScaleY float32
		passthrough    bool
	}{
		{1280, 720, 1.0, 1.0, true},
		{1920, 1080, 0.6666667, 0.6666667, false},
		{640, 360, 2.0, 2.0, false},
		{640, 480, 2.0, 1.5, false},
	}

	for _, tc := range tests {
		img := gocv.NewMatWithSize(tc.srcHeight, tc.srcWidth, gocv.MatTypeCV8UC3)

		resizedImg := gocv.NewMat()

		resizer := NewResizer(tc.srcWidth, tc.srcHeight, 1280, 720)

		resizer.Resize(img, &resizedImg)

		if resizedImg.Cols() != 1280 || resizedImg.Rows() != 720 {
			t.Errorf("Test failed for src (%d, %d): expected 1280x720, got %dx%d",
				tc.srcWidth, tc.srcHeight, resizedImg.Cols(), resizedImg.Rows())
		}

		if resizer.Passthrough() != tc.passthrough {
			t.Errorf("Test failed for src (%d, %d): expected passthrough %v",
				tc.srcWidth, tc.srcHeight, tc.passthrough)
		}

		if diff := resizer.ScaleX() - tc.expectedScaleX; diff > 1e-6 || diff < -1e-6 {
			t.Errorf("Test failed for src (%d, %d): ScaleX incorrect, expected %f, got %f",
				tc.srcWidth, tc.srcHeight, tc.expectedScaleX, resizer.ScaleX())
		}

		if diff := resizer.ScaleY() - tc.expectedScaleY; diff > 1e-6 || diff < -1e-6 {
			t.Errorf("Test failed for src (%d, %d): ScaleY incorrect, expected %f, got %f",
				tc.srcWidth, tc.srcHeight, tc.expectedScaleY, resizer.ScaleY())
		}

		img.Close()
		resizedImg.Close()
	}
}
