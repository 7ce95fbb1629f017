package preprocess

import (
	"fmt"

	"github.com/swdee/go-lanefind/tracker"
	"gocv.io/x/gocv"
)

// MatToMask converts a single channel 8 bit Mat into a tracker mask, any
// non zero pixel is marked on
func MatToMask(m gocv.Mat) (*tracker.BinaryMask, error) {

	if m.Empty() {
		return nil, fmt.Errorf("mask mat is empty")
	}

	if m.Type() != gocv.MatTypeCV8UC1 {
		return nil, fmt.Errorf("mask mat must be CV8UC1, got %v", m.Type())
	}

	mask := tracker.NewBinaryMask(m.Cols(), m.Rows())

	if !m.IsContinuous() {
		for y := 0; y < mask.Height; y++ {
			for x := 0; x < mask.Width; x++ {
				if m.GetUCharAt(y, x) != 0 {
					mask.Pix[y*mask.Width+x] = 1
				}
			}
		}
		return mask, nil
	}

	data, err := m.DataPtrUint8()

	if err != nil {
		return nil, fmt.Errorf("error reading mask data: %w", err)
	}

	for i, v := range data[:len(mask.Pix)] {
		if v != 0 {
			mask.Pix[i] = 1
		}
	}

	return mask, nil
}

// MaskToMat converts a tracker mask into a single channel 8 bit Mat with
// on pixels set to 255
func MaskToMat(mask *tracker.BinaryMask) (gocv.Mat, error) {

	buf := make([]byte, len(mask.Pix))

	for i, v := range mask.Pix {
		if v != 0 {
			buf[i] = 255
		}
	}

	return gocv.NewMatFromBytes(mask.Height, mask.Width, gocv.MatTypeCV8UC1, buf)
}
