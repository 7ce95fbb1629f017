package report

import (
	"fmt"
	"io"
	"math"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/swdee/go-lanefind/record"
)

// radiusLimit clamps the radius series, straight road radii are capped at
// a very large value that flattens the chart otherwise
const radiusLimit = 5000.0

// RenderHTML writes an HTML page charting the curve radius, centre offset
// and detected pixel counts per frame of the recording
func RenderHTML(w io.Writer, title string, recs []record.FrameRecord) error {

	frames := make([]int, len(recs))
	left := make([]opts.LineData, len(recs))
	right := make([]opts.LineData, len(recs))
	offset := make([]opts.LineData, len(recs))
	leftPx := make([]opts.BarData, len(recs))
	rightPx := make([]opts.BarData, len(recs))

	for i, rec := range recs {
		frames[i] = rec.Index

		if !rec.OK {
			// gaps mark failed frames
			left[i] = opts.LineData{Value: "-"}
			right[i] = opts.LineData{Value: "-"}
			offset[i] = opts.LineData{Value: "-"}
			leftPx[i] = opts.BarData{Value: 0}
			rightPx[i] = opts.BarData{Value: 0}
			continue
		}

		left[i] = opts.LineData{Value: math.Min(rec.LeftRadius, radiusLimit)}
		right[i] = opts.LineData{Value: math.Min(rec.RightRadius, radiusLimit)}
		offset[i] = opts.LineData{Value: rec.Offset}
		leftPx[i] = opts.BarData{Value: rec.LeftPixels}
		rightPx[i] = opts.BarData{Value: rec.RightPixels}
	}

	radius := charts.NewLine()
	radius.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "100%", Height: "400px"}),
		charts.WithTitleOpts(opts.Title{Title: "Curve Radius", Subtitle: title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Frame"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Radius (m)"}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider"}),
	)
	radius.SetXAxis(frames).
		AddSeries("left", left).
		AddSeries("right", right)

	center := charts.NewLine()
	center.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "100%", Height: "300px"}),
		charts.WithTitleOpts(opts.Title{Title: "Centre Offset"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Frame"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Offset (m)"}),
	)
	center.SetXAxis(frames).AddSeries("offset", offset)

	pixels := charts.NewBar()
	pixels.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "100%", Height: "300px"}),
		charts.WithTitleOpts(opts.Title{Title: "Lane Pixels"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
	)
	pixels.SetXAxis(frames).
		AddSeries("left", leftPx).
		AddSeries("right", rightPx)

	page := components.NewPage()
	page.PageTitle = "Lane Report"
	page.AddCharts(radius, center, pixels)

	return page.Render(w)
}

// WriteHTML renders the recording report to the file at path
func WriteHTML(path, title string, recs []record.FrameRecord) error {

	f, err := os.Create(path)

	if err != nil {
		return fmt.Errorf("error creating report: %w", err)
	}

	if err := RenderHTML(f, title, recs); err != nil {
		_ = f.Close()
		return fmt.Errorf("error rendering report: %w", err)
	}

	return f.Close()
}
