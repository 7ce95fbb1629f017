package render

import (
	"fmt"
	"image"
	"image/color"

	"github.com/swdee/go-lanefind/tracker"
	"gocv.io/x/gocv"
)

// windowLabel defines where a search window label should be rendered
type windowLabel struct {
	rect    image.Rectangle
	clr     color.RGBA
	text    string
	textPos image.Point
}

// SearchWindows renders the full search sliding windows on a top down view
// image, labelled with their side and band number
func SearchWindows(img *gocv.Mat, diag *tracker.Diagnostics, font Font,
	lineThickness int) {

	if diag == nil {
		return
	}

	// keep a record of all window labels for later rendering
	labels := make([]windowLabel, 0, len(diag.Windows))

	for _, win := range diag.Windows {

		useClr := sideColors[int(win.Side)%len(sideColors)]

		gocv.Rectangle(img, win.Rect, useClr, lineThickness)

		// create text for label
		text := fmt.Sprintf("%s%d %d", sideLetter(win.Side), win.Band, win.Count)
		textSize := gocv.GetTextSize(text, font.Face, font.Scale, font.Thickness)

		// calculate the alignment of text label
		var centerX int

		switch font.Alignment {
		case Center:
			centerX = (win.Rect.Min.X + win.Rect.Max.X) / 2

		case Right:
			centerX = win.Rect.Max.X - (textSize.X / 2) - font.RightPad + (lineThickness / 2)

		case Left:
			fallthrough
		default:
			centerX = win.Rect.Min.X + (textSize.X / 2) + font.LeftPad - (lineThickness / 2)
		}

		// place label inside the top of the window
		top := win.Rect.Min.Y + textSize.Y + font.TopPad + font.BottomPad

		labels = append(labels, windowLabel{
			rect: image.Rect(centerX-textSize.X/2-font.LeftPad, win.Rect.Min.Y,
				centerX+textSize.X/2+font.RightPad, top),
			clr:     useClr,
			text:    text,
			textPos: image.Pt(centerX-textSize.X/2, top-font.BottomPad),
		})
	}

	// draw all labels last so they are the top most layer
	for _, label := range labels {
		gocv.Rectangle(img, label.rect, label.clr, -1)

		gocv.PutTextWithParams(img, label.text, label.textPos,
			font.Face, font.Scale, font.Color, font.Thickness,
			font.LineType, false)
	}
}

// sideLetter returns the short label for a lane side
func sideLetter(s tracker.Side) string {
	if s == tracker.Right {
		return "R"
	}
	return "L"
}
