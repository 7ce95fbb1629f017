package preprocess

import (
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"os"

	"gocv.io/x/gocv"
)

// ErrNoCorners is returned when no calibration image contained a
// detectable chessboard
var ErrNoCorners = errors.New("no chessboard corners found in calibration images")

// DefaultBoardSize is the number of inner corners of the calibration
// chessboard, columns by rows
var DefaultBoardSize = image.Pt(9, 6)

// Calibration holds the camera intrinsics used to undistort frames
type Calibration struct {
	// CameraMatrix is the 3x3 camera matrix
	CameraMatrix gocv.Mat
	// DistCoeffs are the lens distortion coefficients
	DistCoeffs gocv.Mat
	// ImageSize is the size of the calibration images
	ImageSize image.Point
	// Used is the number of images a chessboard was found in
	Used int
	// RMS is the reprojection error of the calibration
	RMS float64
}

// Calibrate computes the camera calibration from a set of chessboard images.
// Board is the number of inner corners per chessboard row and column.
// Images where the chessboard can not be found are skipped, ErrNoCorners is
// returned when it is not found in any image.
func Calibrate(files []string, board image.Point) (*Calibration, error) {

	objPoints := gocv.NewPoints3fVector()
	defer objPoints.Close()

	imgPoints := gocv.NewPoints2fVector()
	defer imgPoints.Close()

	// object points on the unit grid (0,0,0), (1,0,0) ... (cols-1,rows-1,0)
	grid := make([]gocv.Point3f, 0, board.X*board.Y)

	for y := 0; y < board.Y; y++ {
		for x := 0; x < board.X; x++ {
			grid = append(grid, gocv.Point3f{X: float32(x), Y: float32(y)})
		}
	}

	var size image.Point
	used := 0

	for _, file := range files {

		found, imgSize, err := findCorners(file, board, grid, &objPoints, &imgPoints)

		if err != nil {
			return nil, err
		}

		if found {
			size = imgSize
			used++
		}
	}

	if used == 0 {
		return nil, ErrNoCorners
	}

	cal := &Calibration{
		CameraMatrix: gocv.NewMat(),
		DistCoeffs:   gocv.NewMat(),
		ImageSize:    size,
		Used:         used,
	}

	rvecs := gocv.NewMat()
	defer rvecs.Close()
	tvecs := gocv.NewMat()
	defer tvecs.Close()

	cal.RMS = gocv.CalibrateCamera(objPoints, imgPoints, size,
		&cal.CameraMatrix, &cal.DistCoeffs, &rvecs, &tvecs, 0)

	return cal, nil
}

// findCorners searches a single image for the chessboard and appends the
// object and image points when found
func findCorners(file string, board image.Point, grid []gocv.Point3f,
	objPoints *gocv.Points3fVector, imgPoints *gocv.Points2fVector) (bool, image.Point, error) {

	img := gocv.IMRead(file, gocv.IMReadColor)
	defer img.Close()

	if img.Empty() {
		return false, image.Point{}, fmt.Errorf("error reading calibration image: %s", file)
	}

	gray := gocv.NewMat()
	defer gray.Close()

	gocv.CvtColor(img, &gray, gocv.ColorBGRToGray)

	corners := gocv.NewMat()
	defer corners.Close()

	if !gocv.FindChessboardCorners(gray, board, &corners,
		gocv.CalibCBAdaptiveThresh|gocv.CalibCBNormalizeImage) {
		return false, image.Point{}, nil
	}

	obj := gocv.NewPoint3fVectorFromPoints(grid)
	defer obj.Close()
	objPoints.Append(obj)

	pts := gocv.NewPoint2fVectorFromMat(corners)
	defer pts.Close()
	imgPoints.Append(pts)

	return true, image.Pt(gray.Cols(), gray.Rows()), nil
}

// Undistort removes lens distortion from src into dst
func (c *Calibration) Undistort(src gocv.Mat, dst *gocv.Mat) {
	gocv.Undistort(src, dst, c.CameraMatrix, c.DistCoeffs, c.CameraMatrix)
}

// Close frees the calibration matrices
func (c *Calibration) Close() error {
	if err := c.CameraMatrix.Close(); err != nil {
		return err
	}
	return c.DistCoeffs.Close()
}

// calibrationFile is the on disk representation of a Calibration
type calibrationFile struct {
	CameraMatrix []float64 `json:"camera_matrix"`
	DistCoeffs   []float64 `json:"dist_coeffs"`
	Width        int       `json:"width"`
	Height       int       `json:"height"`
	Used         int       `json:"used"`
	RMS          float64   `json:"rms"`
}

// Save writes the calibration to a JSON file so it can be reused without
// repeating the chessboard search
func (c *Calibration) Save(path string) error {

	f := calibrationFile{
		CameraMatrix: matValues(c.CameraMatrix),
		DistCoeffs:   matValues(c.DistCoeffs),
		Width:        c.ImageSize.X,
		Height:       c.ImageSize.Y,
		Used:         c.Used,
		RMS:          c.RMS,
	}

	data, err := json.MarshalIndent(f, "", "  ")

	if err != nil {
		return fmt.Errorf("error encoding calibration: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("error writing calibration file: %w", err)
	}

	return nil
}

// LoadCalibration reads a calibration previously written by Save
func LoadCalibration(path string) (*Calibration, error) {

	data, err := os.ReadFile(path)

	if err != nil {
		return nil, fmt.Errorf("error reading calibration file: %w", err)
	}

	var f calibrationFile

	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("error parsing calibration file: %w", err)
	}

	if len(f.CameraMatrix) != 9 || len(f.DistCoeffs) == 0 {
		return nil, fmt.Errorf("invalid calibration file: %s", path)
	}

	return &Calibration{
		CameraMatrix: valuesMat(3, 3, f.CameraMatrix),
		DistCoeffs:   valuesMat(1, len(f.DistCoeffs), f.DistCoeffs),
		ImageSize:    image.Pt(f.Width, f.Height),
		Used:         f.Used,
		RMS:          f.RMS,
	}, nil
}

// matValues flattens a CV_64F Mat in row major order
func matValues(m gocv.Mat) []float64 {

	vals := make([]float64, 0, m.Rows()*m.Cols())

	for r := 0; r < m.Rows(); r++ {
		for c := 0; c < m.Cols(); c++ {
			vals = append(vals, m.GetDoubleAt(r, c))
		}
	}

	return vals
}

// valuesMat creates a CV_64F Mat from row major values
func valuesMat(rows, cols int, vals []float64) gocv.Mat {

	m := gocv.NewMatWithSize(rows, cols, gocv.MatTypeCV64F)

	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			m.SetDoubleAt(r, c, vals[r*cols+c])
		}
	}

	return m
}
