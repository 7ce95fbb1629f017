package render

import (
	"image/color"

	"gocv.io/x/gocv"
)

type Alignment int

const (
	Left   Alignment = 1
	Center Alignment = 2
	Right  Alignment = 3
)

// Font defines the parameters for rendering text on an image using GoCV
type Font struct {
	Face      gocv.HersheyFont
	Scale     float64
	Color     color.RGBA
	Thickness int
	LineType  gocv.LineType
	// Padding to place around text
	LeftPad   int
	RightPad  int
	TopPad    int
	BottomPad int
	// Alignment of the text label to the window box
	Alignment Alignment
}

// DefaultFont returns default font settings used for the lane metrics text
func DefaultFont() Font {
	return Font{
		Face:      gocv.FontHersheySimplex,
		Scale:     2,
		Color:     Red,
		Thickness: 3,
		LineType:  gocv.LineAA,
		LeftPad:   4,
		RightPad:  4,
		TopPad:    4,
		BottomPad: 6,
		Alignment: Left,
	}
}

// LabelFont returns font settings for small labels such as search window
// band numbers
func LabelFont() Font {
	f := DefaultFont()
	f.Scale = 0.5
	f.Color = White
	f.Thickness = 1
	return f
}
