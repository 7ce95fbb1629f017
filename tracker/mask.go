package tracker

import (
	"fmt"
	"image"
)

// BinaryMask is a single channel top-down image where any non-zero value
// marks a candidate lane pixel.  Pixels are stored row major.
type BinaryMask struct {
	Width  int
	Height int
	Pix    []uint8
}

// NewBinaryMask returns an empty mask of the given dimensions
func NewBinaryMask(width, height int) *BinaryMask {
	return &BinaryMask{
		Width:  width,
		Height: height,
		Pix:    make([]uint8, width*height),
	}
}

// MaskFromGray converts a grayscale image into a BinaryMask, pixels with a
// value above threshold are marked on
func MaskFromGray(img *image.Gray, threshold uint8) *BinaryMask {

	b := img.Bounds()
	m := NewBinaryMask(b.Dx(), b.Dy())

	for y := 0; y < m.Height; y++ {
		off := img.PixOffset(b.Min.X, b.Min.Y+y)
		row := img.Pix[off : off+m.Width]

		for x, v := range row {
			if v > threshold {
				m.Pix[y*m.Width+x] = 1
			}
		}
	}

	return m
}

// Validate checks the pixel buffer matches the mask dimensions
func (m *BinaryMask) Validate() error {

	if m == nil {
		return fmt.Errorf("mask is nil")
	}

	if m.Width <= 0 || m.Height <= 0 {
		return fmt.Errorf("invalid mask dimensions %dx%d", m.Width, m.Height)
	}

	if len(m.Pix) != m.Width*m.Height {
		return fmt.Errorf("mask buffer length %d does not match %dx%d",
			len(m.Pix), m.Width, m.Height)
	}

	return nil
}

// At returns true if the pixel at x,y is on.  Coordinates outside the mask
// are off.
func (m *BinaryMask) At(x, y int) bool {
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return false
	}
	return m.Pix[y*m.Width+x] != 0
}

// Set marks the pixel at x,y as on
func (m *BinaryMask) Set(x, y int) {
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return
	}
	m.Pix[y*m.Width+x] = 1
}

// FillRect marks every pixel in the half open rectangle r as on
func (m *BinaryMask) FillRect(r image.Rectangle) {

	r = r.Intersect(image.Rect(0, 0, m.Width, m.Height))

	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			m.Pix[y*m.Width+x] = 1
		}
	}
}

// Histogram returns the count of on pixels per column over rows
// [fromY, m.Height)
func (m *BinaryMask) Histogram(fromY int) []int {

	hist := make([]int, m.Width)

	if fromY < 0 {
		fromY = 0
	}

	for y := fromY; y < m.Height; y++ {
		row := m.Pix[y*m.Width : (y+1)*m.Width]

		for x, v := range row {
			if v != 0 {
				hist[x]++
			}
		}
	}

	return hist
}

// Count returns the number of on pixels in the mask
func (m *BinaryMask) Count() int {
	n := 0
	for _, v := range m.Pix {
		if v != 0 {
			n++
		}
	}
	return n
}
