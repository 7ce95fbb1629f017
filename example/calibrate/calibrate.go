package main

import (
	"flag"
	"log"
	"os"
	"path/filepath"

	"github.com/swdee/go-lanefind"
	"github.com/swdee/go-lanefind/preprocess"
	"github.com/swdee/go-lanefind/render"
	"github.com/swdee/go-lanefind/tracker"
	"gocv.io/x/gocv"
)

func main() {
	// disable logging timestamps
	log.SetFlags(0)

	// read in cli flags
	calImages := flag.String("cal", "../data/camera_cal/calibration*.jpg", "Glob of chessboard images to calibrate the camera with")
	calFile := flag.String("cal-file", "../data/calibration.json", "File to save the calibration to")
	imgFile := flag.String("i", "../data/test_images/test1.jpg", "Road image to run each processing stage on")
	outDir := flag.String("o", "../data/output_images", "Directory to write the stage images to")
	configFile := flag.String("config", "", "JSON config file of tuning parameters")

	flag.Parse()

	cfg := &lanefind.Config{}

	if *configFile != "" {
		var err error
		cfg, err = lanefind.LoadConfig(*configFile)

		if err != nil {
			log.Fatalf("Error loading config: %v", err)
		}
	}

	files, err := lanefind.FindCalibrationImages(*calImages)

	if err != nil {
		log.Fatalf("Error finding calibration images: %v", err)
	}

	cal, err := preprocess.Calibrate(files, cfg.GetBoardSize())

	if err != nil {
		log.Fatalf("Error calibrating camera: %v", err)
	}

	defer cal.Close()

	log.Printf("Calibrated camera from %d of %d images, RMS error %.4f",
		cal.Used, len(files), cal.RMS)

	if err := cal.Save(*calFile); err != nil {
		log.Fatalf("Error saving calibration: %v", err)
	}

	log.Printf("Calibration saved to %s", *calFile)

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		log.Fatalf("Error creating output directory: %v", err)
	}

	// undistort the first chessboard image
	board := gocv.IMRead(files[0], gocv.IMReadColor)
	defer board.Close()

	undistBoard := gocv.NewMat()
	defer undistBoard.Close()

	cal.Undistort(board, &undistBoard)
	write(filepath.Join(*outDir, "undistorted_board.jpg"), undistBoard)

	img := gocv.IMRead(*imgFile, gocv.IMReadColor)
	defer img.Close()

	if img.Empty() {
		log.Fatalf("Error reading image %s", *imgFile)
	}

	undist := gocv.NewMat()
	defer undist.Close()

	cal.Undistort(img, &undist)
	write(filepath.Join(*outDir, "undistorted.jpg"), undist)

	// thresholded binary image
	thresh := preprocess.NewThresholder(cfg.ThresholdParams())
	defer thresh.Close()

	binary := gocv.NewMat()
	defer binary.Close()

	thresh.Threshold(img, &binary)
	write(filepath.Join(*outDir, "binary.jpg"), binary)

	// birds eye view of the undistorted image
	rect, err := preprocess.NewRectifier(cfg.RectifierParams())

	if err != nil {
		log.Fatalf("Error creating rectifier: %v", err)
	}

	defer rect.Close()

	warped := gocv.NewMat()
	defer warped.Close()

	rect.ToTopDown(undist, &warped)
	write(filepath.Join(*outDir, "warped.jpg"), warped)

	// full pipeline on the single image
	pipeline, err := lanefind.NewPipeline(cfg, cal)

	if err != nil {
		log.Fatalf("Error creating pipeline: %v", err)
	}

	defer pipeline.Close()

	out := gocv.NewMat()
	defer out.Close()

	fr, err := pipeline.ProcessFrame(img, &out)

	if err != nil {
		log.Fatalf("Error processing image: %v", err)
	}

	if fr.Err != nil {
		log.Fatalf("Error finding lane: %v", fr.Err)
	}

	write(filepath.Join(*outDir, "lane.jpg"), out)

	err = tracker.SaveDiagnosticImage(filepath.Join(*outDir, "search.png"), fr.Mask, fr.Result.Fit())

	if err != nil {
		log.Fatalf("Error saving search image: %v", err)
	}

	err = render.PaintTopDownToFile(filepath.Join(*outDir, "topdown.jpg"), fr.Mask, fr.Result)

	if err != nil {
		log.Fatalf("Error saving top down image: %v", err)
	}

	log.Printf("Left curve: %+v", fr.Result.Model.Left)
	log.Printf("Right curve: %+v", fr.Result.Model.Right)

	for _, line := range render.MetricsText(fr.Metrics) {
		log.Println(line)
	}

	log.Printf("Stage images written to %s", *outDir)
}

// write saves the image Mat to file
func write(file string, img gocv.Mat) {
	if ok := gocv.IMWrite(file, img); !ok {
		log.Fatalf("Error writing image %s", file)
	}
}
