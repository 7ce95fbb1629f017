package tracker

// Point is the x,y pixel coordinate of an on pixel in a BinaryMask
type Point struct {
	X, Y int
}

// PixelSet is the collection of on pixels attributed to one lane line
type PixelSet struct {
	Points []Point
}

// Add a point to the set
func (p *PixelSet) Add(x, y int) {
	p.Points = append(p.Points, Point{X: x, Y: y})
}

// Len returns the number of points in the set
func (p PixelSet) Len() int {
	return len(p.Points)
}

// XY returns the points split into x and y coordinate slices
func (p PixelSet) XY() (xs, ys []float64) {

	xs = make([]float64, len(p.Points))
	ys = make([]float64, len(p.Points))

	for i, pt := range p.Points {
		xs[i] = float64(pt.X)
		ys[i] = float64(pt.Y)
	}

	return xs, ys
}

// LaneCurve is a second degree polynomial x = A*y^2 + B*y + C giving the
// horizontal position of a lane line as a function of the row
type LaneCurve struct {
	A, B, C float64
}

// At evaluates the curve at row y
func (c LaneCurve) At(y float64) float64 {
	return c.A*y*y + c.B*y + c.C
}

// LaneModel is the pair of lane line curves carried between frames
type LaneModel struct {
	Left  LaneCurve
	Right LaneCurve
}

// Width returns the horizontal distance between the right and left curve
// at row y
func (m LaneModel) Width(y float64) float64 {
	return m.Right.At(y) - m.Left.At(y)
}

// Side identifies which lane line a result refers to
type Side int

const (
	Left Side = iota
	Right
)

// String returns the side name
func (s Side) String() string {
	switch s {
	case Left:
		return "left"
	case Right:
		return "right"
	default:
		return "unknown"
	}
}

// DetectionState is the tracker mode deciding which search runs on the
// next frame
type DetectionState int

const (
	// Uninitialized means no lane model is held and a full search is needed
	Uninitialized DetectionState = iota
	// Tracking means a lane model from the previous frame is held
	Tracking
)

// String returns the state name
func (s DetectionState) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Tracking:
		return "tracking"
	default:
		return "unknown"
	}
}

// SearchMode records which search produced a frame result
type SearchMode int

const (
	FullSearchMode SearchMode = iota
	IncrementalSearchMode
)

// String returns the search mode name
func (m SearchMode) String() string {
	if m == IncrementalSearchMode {
		return "incremental"
	}
	return "full"
}
