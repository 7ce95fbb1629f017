package preprocess

import (
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"gocv.io/x/gocv"
)

var (
	white = color.RGBA{R: 255, G: 255, B: 255, A: 255}
)

// zeros returns a Mat with every element set to zero
func zeros(rows, cols int, mt gocv.MatType) gocv.Mat {
	return gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), rows, cols, mt)
}

func TestMatToMask(t *testing.T) {

	m := zeros(4, 6, gocv.MatTypeCV8UC1)
	defer m.Close()

	m.SetUCharAt(1, 2, 255)
	m.SetUCharAt(3, 5, 1)

	mask, err := MatToMask(m)

	if err != nil {
		t.Fatalf("MatToMask returned error: %v", err)
	}

	if mask.Width != 6 || mask.Height != 4 {
		t.Errorf("expected 6x4 mask, got %dx%d", mask.Width, mask.Height)
	}

	if !mask.At(2, 1) || !mask.At(5, 3) {
		t.Errorf("expected pixels 2,1 and 5,3 on")
	}

	if mask.Count() != 2 {
		t.Errorf("expected 2 pixels on, got %d", mask.Count())
	}

	back, err := MaskToMat(mask)

	if err != nil {
		t.Fatalf("MaskToMat returned error: %v", err)
	}
	defer back.Close()

	if back.GetUCharAt(3, 5) != 255 {
		t.Errorf("expected converted pixel to be 255, got %d", back.GetUCharAt(3, 5))
	}
}

func TestMatToMaskWrongType(t *testing.T) {

	m := gocv.NewMatWithSize(4, 6, gocv.MatTypeCV8UC3)
	defer m.Close()

	if _, err := MatToMask(m); err == nil {
		t.Errorf("expected error for 3 channel mat")
	}
}

func TestRectifierDst(t *testing.T) {

	dst := DefaultRectifierParams().Dst()

	want := [4]gocv.Point2f{{X: 280, Y: 0}, {X: 1000, Y: 0}, {X: 1000, Y: 720}, {X: 280, Y: 720}}

	if dst != want {
		t.Errorf("expected dst %v, got %v", want, dst)
	}
}

func TestRectifierRoundTrip(t *testing.T) {

	rect, err := NewRectifier(DefaultRectifierParams())

	if err != nil {
		t.Fatalf("NewRectifier returned error: %v", err)
	}
	defer rect.Close()

	src := zeros(720, 1280, gocv.MatTypeCV8UC1)
	defer src.Close()

	gocv.Rectangle(&src, image.Rect(600, 620, 680, 700), white, -1)

	top := gocv.NewMat()
	defer top.Close()
	back := gocv.NewMat()
	defer back.Close()

	rect.ToTopDown(src, &top)

	if top.Cols() != 1280 || top.Rows() != 720 {
		t.Errorf("expected 1280x720 top down view, got %dx%d", top.Cols(), top.Rows())
	}

	// lane centre stays at the canvas centre
	if top.GetUCharAt(690, 640) == 0 {
		t.Errorf("expected lane centre to map to the top down centre")
	}

	rect.ToOriginal(top, &back)

	if back.GetUCharAt(660, 640) == 0 {
		t.Errorf("expected round trip to keep the marked region")
	}

	if back.GetUCharAt(100, 100) != 0 {
		t.Errorf("expected unmarked region to stay empty")
	}
}

func TestNewRectifierInvalid(t *testing.T) {

	p := DefaultRectifierParams()
	p.Margin = 700

	if _, err := NewRectifier(p); err == nil {
		t.Errorf("expected error for margin wider than canvas")
	}
}

func TestThreshold(t *testing.T) {

	frame := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(50, 50, 50, 0),
		720, 1280, gocv.MatTypeCV8UC3)
	defer frame.Close()

	gocv.Rectangle(&frame, image.Rect(300, 0, 310, 720), white, -1)

	th := NewThresholder(DefaultThresholdParams())
	defer th.Close()

	out := gocv.NewMat()
	defer out.Close()

	th.Threshold(frame, &out)

	if out.Type() != gocv.MatTypeCV8UC1 {
		t.Fatalf("expected single channel output, got %v", out.Type())
	}

	if out.Cols() != 1280 || out.Rows() != 720 {
		t.Errorf("expected output size to match input, got %dx%d", out.Cols(), out.Rows())
	}

	if out.GetUCharAt(360, 305) != 255 {
		t.Errorf("expected lane paint to be on")
	}

	if out.GetUCharAt(360, 100) != 0 {
		t.Errorf("expected road surface to be off")
	}
}

func TestCalibrateNoCorners(t *testing.T) {

	blank := zeros(480, 640, gocv.MatTypeCV8UC3)
	defer blank.Close()

	file := filepath.Join(t.TempDir(), "blank.png")

	if ok := gocv.IMWrite(file, blank); !ok {
		t.Fatalf("failed to write test image")
	}

	_, err := Calibrate([]string{file}, DefaultBoardSize)

	if !errors.Is(err, ErrNoCorners) {
		t.Errorf("expected ErrNoCorners, got %v", err)
	}
}

func TestCalibrateMissingImage(t *testing.T) {

	_, err := Calibrate([]string{filepath.Join(t.TempDir(), "missing.jpg")}, DefaultBoardSize)

	if err == nil || errors.Is(err, ErrNoCorners) {
		t.Errorf("expected read error, got %v", err)
	}
}

func TestLoadCalibrationInvalid(t *testing.T) {

	file := filepath.Join(t.TempDir(), "cal.json")

	if err := os.WriteFile(file, []byte(`{"camera_matrix":[1,2]}`), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadCalibration(file); err == nil {
		t.Errorf("expected error for truncated camera matrix")
	}
}

func TestPreprocessor(t *testing.T) {

	rect, err := NewRectifier(DefaultRectifierParams())

	if err != nil {
		t.Fatalf("NewRectifier returned error: %v", err)
	}
	defer rect.Close()

	pre := NewPreprocessor(nil, rect, DefaultThresholdParams())
	defer pre.Close()

	// half size frame is scaled up to the canvas
	frame := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(50, 50, 50, 0),
		360, 640, gocv.MatTypeCV8UC3)
	defer frame.Close()

	gocv.Line(&frame, image.Pt(150, 360), image.Pt(290, 228), white, 4)
	gocv.Line(&frame, image.Pt(565, 360), image.Pt(355, 228), white, 4)

	prep, err := pre.Process(frame)

	if err != nil {
		t.Fatalf("Process returned error: %v", err)
	}
	defer prep.Close()

	if prep.Mask.Width != 1280 || prep.Mask.Height != 720 {
		t.Errorf("expected 1280x720 mask, got %dx%d", prep.Mask.Width, prep.Mask.Height)
	}

	if prep.Frame.Cols() != 1280 || prep.Frame.Rows() != 720 {
		t.Errorf("expected 1280x720 frame, got %dx%d", prep.Frame.Cols(), prep.Frame.Rows())
	}

	if prep.Mask.Count() == 0 {
		t.Errorf("expected lane pixels in the top down mask")
	}

}

func TestPreprocessorEmptyFrame(t *testing.T) {

	rect, err := NewRectifier(DefaultRectifierParams())

	if err != nil {
		t.Fatalf("NewRectifier returned error: %v", err)
	}
	defer rect.Close()

	pre := NewPreprocessor(nil, rect, DefaultThresholdParams())
	defer pre.Close()

	empty := gocv.NewMat()
	defer empty.Close()

	if _, err := pre.Process(empty); err == nil {
		t.Errorf("expected error for empty frame")
	}
}
