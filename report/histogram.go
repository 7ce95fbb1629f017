package report

import (
	"fmt"
	"image/color"

	"github.com/swdee/go-lanefind/tracker"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

var (
	histColor  = color.RGBA{R: 40, G: 40, B: 40, A: 255}
	leftColor  = color.RGBA{R: 220, A: 255}
	rightColor = color.RGBA{B: 220, A: 255}
)

// HistogramPlot builds a plot of the column histogram of a full search with
// the left and right base columns marked
func HistogramPlot(diag tracker.Diagnostics, title string) (*plot.Plot, error) {

	if len(diag.Histogram) == 0 {
		return nil, fmt.Errorf("no histogram in diagnostics")
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Column"
	p.Y.Label.Text = "Pixels"

	pts := make(plotter.XYs, len(diag.Histogram))
	peak := 0

	for x, v := range diag.Histogram {
		pts[x] = plotter.XY{X: float64(x), Y: float64(v)}

		if v > peak {
			peak = v
		}
	}

	line, err := plotter.NewLine(pts)

	if err != nil {
		return nil, err
	}

	line.Color = histColor
	line.Width = vg.Points(1)
	p.Add(line)

	for _, base := range []struct {
		label string
		x     int
		col   color.Color
	}{
		{"left base", diag.LeftBase, leftColor},
		{"right base", diag.RightBase, rightColor},
	} {
		marker, err := plotter.NewLine(plotter.XYs{
			{X: float64(base.x), Y: 0},
			{X: float64(base.x), Y: float64(peak)},
		})

		if err != nil {
			return nil, err
		}

		marker.Color = base.col
		marker.Width = vg.Points(2)
		marker.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
		p.Add(marker)
		p.Legend.Add(fmt.Sprintf("%s %d", base.label, base.x), marker)
	}

	p.Legend.Top = true
	p.X.Min = 0
	p.X.Max = float64(len(diag.Histogram) - 1)

	return p, nil
}

// SaveHistogram writes the histogram plot to path, the image format is
// chosen by the file extension
func SaveHistogram(diag tracker.Diagnostics, title, path string) error {

	p, err := HistogramPlot(diag, title)

	if err != nil {
		return err
	}

	if err := p.Save(10*vg.Inch, 4*vg.Inch, path); err != nil {
		return fmt.Errorf("save histogram plot: %w", err)
	}

	return nil
}
