package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/swdee/go-lanefind"
	"github.com/swdee/go-lanefind/preprocess"
	"github.com/swdee/go-lanefind/record"
	"github.com/swdee/go-lanefind/render"
	"github.com/swdee/go-lanefind/report"
	"github.com/swdee/go-lanefind/tracker"
	"gocv.io/x/gocv"
)

func main() {
	// disable logging timestamps
	log.SetFlags(0)

	// read in cli flags
	vidFile := flag.String("i", "../data/project_video.mp4", "Video file to find lanes in")
	outFile := flag.String("o", "../data/project_video_out.mp4", "Video file to write annotated frames to")
	calImages := flag.String("cal", "../data/camera_cal/calibration*.jpg", "Glob of chessboard images to calibrate the camera with, empty disables undistortion")
	calFile := flag.String("cal-file", "", "Calibration file to load instead of calibrating, or to save to after calibrating")
	configFile := flag.String("config", "", "JSON config file of tuning parameters")
	recFile := flag.String("record", "", "File to record per frame telemetry to")
	reportFile := flag.String("report", "", "HTML file to write the run report to")
	debugDir := flag.String("debug-dir", "", "Directory to save search diagnostics images of every full search to")
	workers := flag.Int("workers", 0, "Number of frames to preprocess in parallel, overrides config")
	insetWidth := flag.Int("inset", 0, "Width of the top down view inset, zero disables it")

	flag.Parse()

	cfg := &lanefind.Config{}

	if *configFile != "" {
		var err error
		cfg, err = lanefind.LoadConfig(*configFile)

		if err != nil {
			log.Fatalf("Error loading config: %v", err)
		}
	}

	if *workers > 0 {
		cfg.Workers = workers
	}

	cal, err := loadCalibration(*calImages, *calFile, cfg)

	if err != nil {
		log.Fatalf("Error calibrating camera: %v", err)
	}

	if cal != nil {
		defer cal.Close()
	}

	pipeline, err := lanefind.NewPipeline(cfg, cal)

	if err != nil {
		log.Fatalf("Error creating pipeline: %v", err)
	}

	defer pipeline.Close()

	pipeline.InsetWidth = *insetWidth

	// open handle to read frames of video file
	video, err := gocv.VideoCaptureFile(*vidFile)

	if err != nil {
		log.Fatalf("Error opening video file: %v", err)
	}

	defer video.Close()

	fps := video.Get(gocv.VideoCaptureFPS)
	width := int(video.Get(gocv.VideoCaptureFrameWidth))
	height := int(video.Get(gocv.VideoCaptureFrameHeight))

	log.Printf("Video %s: %dx%d at %.2f FPS", *vidFile, width, height, fps)

	// frames are scaled onto the canvas so the output is written at the
	// canvas size
	canvas := pipeline.Size()

	if width != canvas.X || height != canvas.Y {
		log.Printf("Scaling frames from %dx%d to %dx%d canvas", width, height,
			canvas.X, canvas.Y)
	}

	writer, err := gocv.VideoWriterFile(*outFile, "mp4v", fps, canvas.X, canvas.Y, true)

	if err != nil {
		log.Fatalf("Error creating output video: %v", err)
	}

	defer writer.Close()

	var rec *record.Writer

	if *recFile != "" {
		rec, err = record.Create(*recFile, *vidFile)

		if err != nil {
			log.Fatalf("Error creating recording: %v", err)
		}

		defer rec.Close()

		log.Printf("Recording session %s to %s", rec.Session(), *recFile)
	}

	if *debugDir != "" {
		if err := os.MkdirAll(*debugDir, 0o755); err != nil {
			log.Fatalf("Error creating debug directory: %v", err)
		}
	}

	records := make([]record.FrameRecord, 0)

	pipeline.OnFrame = func(fr lanefind.FrameResult) {

		frec := record.NewFrameRecord(fr.Index, fr.Result, fr.Err, fr.Held)

		if *reportFile != "" {
			records = append(records, frec)
		}

		if rec != nil {
			if err := rec.Record(frec); err != nil {
				log.Printf("Frame %d: error recording frame: %v", fr.Index, err)
			}
		}

		if *debugDir != "" {
			saveDebug(*debugDir, fr)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stats, err := pipeline.Run(ctx, video, writer)

	log.Printf("Processed %s", stats)

	if err != nil {
		log.Fatalf("Error processing video: %v", err)
	}

	if *reportFile != "" {
		if err := report.WriteHTML(*reportFile, filepath.Base(*vidFile), records); err != nil {
			log.Fatalf("Error writing report: %v", err)
		}

		log.Printf("Report written to %s", *reportFile)
	}
}

// loadCalibration loads the camera calibration from file when it exists,
// otherwise calibrates from the chessboard images and saves the result
func loadCalibration(pattern, file string, cfg *lanefind.Config) (*preprocess.Calibration, error) {

	if file != "" {
		if _, err := os.Stat(file); err == nil {
			log.Printf("Loading calibration from %s", file)
			return preprocess.LoadCalibration(file)
		}
	}

	if pattern == "" {
		log.Printf("No calibration images given, frames will not be undistorted")
		return nil, nil
	}

	files, err := lanefind.FindCalibrationImages(pattern)

	if err != nil {
		return nil, err
	}

	cal, err := preprocess.Calibrate(files, cfg.GetBoardSize())

	if err != nil {
		return nil, err
	}

	log.Printf("Calibrated camera from %d of %d images, RMS error %.4f",
		cal.Used, len(files), cal.RMS)

	if file != "" {
		if err := cal.Save(file); err != nil {
			cal.Close()
			return nil, err
		}

		log.Printf("Calibration saved to %s", file)
	}

	return cal, nil
}

// saveDebug writes the search diagnostics of full search frames along with
// the top down view and histogram plot
func saveDebug(dir string, fr lanefind.FrameResult) {

	if fr.Result == nil || fr.Result.Mode != tracker.FullSearchMode {
		return
	}

	base := filepath.Join(dir, fmt.Sprintf("frame_%05d", fr.Index))

	if err := tracker.SaveDiagnosticImage(base+"_search.png", fr.Mask, fr.Result.Fit()); err != nil {
		log.Printf("Frame %d: %v", fr.Index, err)
	}

	if err := render.PaintTopDownToFile(base+"_topdown.jpg", fr.Mask, fr.Result); err != nil {
		log.Printf("Frame %d: %v", fr.Index, err)
	}

	if fr.Result.Diagnostics != nil {
		err := report.SaveHistogram(*fr.Result.Diagnostics,
			fmt.Sprintf("Frame %d histogram", fr.Index), base+"_histogram.png")

		if err != nil {
			log.Printf("Frame %d: %v", fr.Index, err)
		}
	}
}
