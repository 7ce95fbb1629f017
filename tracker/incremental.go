package tracker

// IncrementalSearch collects the on pixels lying strictly within
// TrackMargin of each curve of the previous model and refits both lines.
// A pixel close to both curves is attributed to both lines.
func IncrementalSearch(mask *BinaryMask, prev LaneModel, p Params) (*Fit, error) {

	if err := mask.Validate(); err != nil {
		return nil, err
	}

	margin := float64(p.TrackMargin)

	var left, right PixelSet

	for y := 0; y < mask.Height; y++ {

		fy := float64(y)
		lc := prev.Left.At(fy)
		rc := prev.Right.At(fy)
		row := mask.Pix[y*mask.Width : (y+1)*mask.Width]

		for x, v := range row {
			if v == 0 {
				continue
			}

			fx := float64(x)

			if fx > lc-margin && fx < lc+margin {
				left.Add(x, y)
			}
			if fx > rc-margin && fx < rc+margin {
				right.Add(x, y)
			}
		}
	}

	model, err := fitModel(left, right)

	if err != nil {
		return nil, err
	}

	return &Fit{
		Model: model,
		Left:  left,
		Right: right,
	}, nil
}
