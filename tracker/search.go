package tracker

import (
	"image"
)

// Window is one sliding window scanned by the full search
type Window struct {
	// Band is the window band index counted from the bottom of the frame
	Band int
	Side Side
	// Rect is the half open pixel area scanned
	Rect image.Rectangle
	// Count is the number of on pixels found in the window
	Count int
}

// Diagnostics describes the intermediate state of a full search
type Diagnostics struct {
	// Histogram is the count of on pixels per column over the lower half
	// of the mask
	Histogram []int
	LeftBase  int
	RightBase int
	Windows   []Window
}

// Fit is the result of a successful lane search
type Fit struct {
	Model LaneModel
	Left  PixelSet
	Right PixelSet
	// Diagnostics is only set by the full search
	Diagnostics *Diagnostics
}

// FullSearch locates both lane lines from scratch using a column histogram
// of the lower half of the mask to find each line base, then following the
// line up the frame with a stack of sliding windows
func FullSearch(mask *BinaryMask, p Params) (*Fit, error) {

	if err := mask.Validate(); err != nil {
		return nil, err
	}

	diag := &Diagnostics{
		Histogram: mask.Histogram(mask.Height / 2),
	}

	// find the peak column either side of the midpoint
	midpoint := mask.Width / 2
	diag.LeftBase = argmax(diag.Histogram[:midpoint])
	diag.RightBase = argmax(diag.Histogram[midpoint:]) + midpoint

	windowHeight := mask.Height / p.Windows
	leftX := diag.LeftBase
	rightX := diag.RightBase

	var left, right PixelSet

	for band := 0; band < p.Windows; band++ {

		yLow := mask.Height - (band+1)*windowHeight
		yHigh := mask.Height - band*windowHeight

		lw := scanWindow(mask, &left, leftX, yLow, yHigh, p.WindowMargin)
		lw.Band, lw.Side = band, Left
		rw := scanWindow(mask, &right, rightX, yLow, yHigh, p.WindowMargin)
		rw.Band, rw.Side = band, Right

		diag.Windows = append(diag.Windows, lw, rw)

		// recentre the next window on the mean position of the pixels
		// found when there were enough of them
		if lw.Count > p.MinPixels {
			leftX = meanX(left.Points[len(left.Points)-lw.Count:])
		}
		if rw.Count > p.MinPixels {
			rightX = meanX(right.Points[len(right.Points)-rw.Count:])
		}
	}

	model, err := fitModel(left, right)

	if err != nil {
		return nil, err
	}

	return &Fit{
		Model:       model,
		Left:        left,
		Right:       right,
		Diagnostics: diag,
	}, nil
}

// scanWindow appends every on pixel within [centre-margin, centre+margin)
// and [yLow, yHigh) to set
func scanWindow(mask *BinaryMask, set *PixelSet, centre, yLow, yHigh,
	margin int) Window {

	win := Window{
		Rect: image.Rect(centre-margin, yLow, centre+margin, yHigh),
	}

	r := win.Rect.Intersect(image.Rect(0, 0, mask.Width, mask.Height))

	for y := r.Min.Y; y < r.Max.Y; y++ {
		row := mask.Pix[y*mask.Width : (y+1)*mask.Width]

		for x := r.Min.X; x < r.Max.X; x++ {
			if row[x] != 0 {
				set.Add(x, y)
				win.Count++
			}
		}
	}

	return win
}

// fitModel fits both pixel sets, either failing fails the model
func fitModel(left, right PixelSet) (LaneModel, error) {

	l, err := fitSide(Left, left)

	if err != nil {
		return LaneModel{}, err
	}

	r, err := fitSide(Right, right)

	if err != nil {
		return LaneModel{}, err
	}

	return LaneModel{Left: l, Right: r}, nil
}

// argmax returns the index of the first maximum value
func argmax(vals []int) int {

	idx := 0

	for i, v := range vals {
		if v > vals[idx] {
			idx = i
		}
	}

	return idx
}

// meanX returns the truncated mean x coordinate of the points
func meanX(pts []Point) int {

	sum := 0

	for _, pt := range pts {
		sum += pt.X
	}

	return sum / len(pts)
}
