package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/swdee/go-lanefind"
	"github.com/swdee/go-lanefind/preprocess"
	"github.com/swdee/go-lanefind/render"
	"gocv.io/x/gocv"
)

var (
	// FPS is the number of FPS to simulate
	FPS         = 25
	FPSinterval = time.Duration(float64(time.Second) / float64(FPS))
)

// Demo defines the struct for running the lane streaming demo
type Demo struct {
	// vidBuffer buffers the video frames into memory
	vidBuffer []gocv.Mat
	// cfg is the lane finding config shared by every stream
	cfg *lanefind.Config
	// cal is the camera calibration, nil when frames are not undistorted
	cal *preprocess.Calibration
	// hub broadcasts lane telemetry to websocket clients
	hub *Hub
	// inset is the width of the top down view inset
	inset int
}

// NewDemo returns and instance of Demo, a streaming HTTP server showing
// video with the detected lane drawn on it
func NewDemo(vidFile string, cfg *lanefind.Config, cal *preprocess.Calibration,
	hub *Hub, inset int) (*Demo, error) {

	d := &Demo{
		cfg:   cfg,
		cal:   cal,
		hub:   hub,
		inset: inset,
	}

	if err := d.bufferVideo(vidFile); err != nil {
		return nil, fmt.Errorf("Error buffering video: %w", err)
	}

	if len(d.vidBuffer) == 0 {
		return nil, fmt.Errorf("no frames in video %s", vidFile)
	}

	log.Printf("Buffered %d frames of %dx%d video", len(d.vidBuffer),
		d.vidBuffer[0].Cols(), d.vidBuffer[0].Rows())

	return d, nil
}

// bufferVideo reads in the video frames and saves them to a buffer
func (d *Demo) bufferVideo(vidFile string) error {

	// open handle to read frames of video file
	video, err := gocv.VideoCaptureFile(vidFile)

	if err != nil {
		return err
	}

	defer video.Close()

	d.vidBuffer = make([]gocv.Mat, 0)

	for {
		img := gocv.NewMat()

		// read the next frame from the video
		if ok := video.Read(&img); !ok {
			// reached last video frame
			img.Close()
			break
		}

		// Check if the frame is empty
		if img.Empty() {
			img.Close()
			continue
		}

		// push frame onto buffer
		d.vidBuffer = append(d.vidBuffer, img)
	}

	return nil
}

// Stream is the HTTP handler function used to stream video frames to browser
func (d *Demo) Stream(w http.ResponseWriter, r *http.Request) {

	streamID := uuid.NewString()[:8]

	log.Printf("New client connection established, stream %s\n", streamID)

	// you must create a new pipeline per stream as its lane tracker keeps
	// the lane found in past frames
	pipeline, err := lanefind.NewPipeline(d.cfg, d.cal)

	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	defer pipeline.Close()

	pipeline.InsetWidth = d.inset

	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")

	// pointer to position in video buffer
	frameNum := -1

	// create Mat for annotated image
	resImg := gocv.NewMat()
	defer resImg.Close()

	// used for calculating FPS
	frameCount := 0
	startTime := time.Now()
	fps := float64(0)

	ticker := time.NewTicker(FPSinterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			log.Printf("Client disconnected, stream %s %s\n", streamID, pipeline.Stats())
			return

		// simulate reading a video camera
		case <-ticker.C:

			// increment pointer to next image in the video buffer
			frameNum++
			if frameNum > len(d.vidBuffer)-1 {
				// last frame reached so loop back to start of video
				frameNum = 0
				// clear lane tracker data
				pipeline.Reset()
			}

			start := time.Now()
			fr, err := pipeline.ProcessFrame(d.vidBuffer[frameNum], &resImg)

			if err != nil {
				log.Printf("Error occured during ProcessFrame: %v", err)
				continue
			}

			d.publish(streamID, fr)
			annotate(&resImg, fr, fps, frameNum, time.Since(start))

			// Encode the image to JPEG format
			buf, err := gocv.IMEncode(".jpg", resImg)

			if err != nil {
				log.Printf("Error encoding frame: %v", err)
				continue
			}

			// Write the image to the response writer
			w.Write([]byte("--frame\r\n"))
			w.Write([]byte("Content-Type: image/jpeg\r\n\r\n"))
			w.Write(buf.GetBytes())
			w.Write([]byte("\r\n"))

			buf.Close()

			// Flush the buffer
			flusher, ok := w.(http.Flusher)
			if ok {
				flusher.Flush()
			}

			// calculate FPS
			frameCount++
			elapsed := time.Since(startTime).Seconds()

			if elapsed >= 1.0 {
				fps = float64(frameCount) / elapsed
				frameCount = 0
				startTime = time.Now()
			}
		}
	}
}

// publish sends the lane telemetry of the frame to websocket clients
func (d *Demo) publish(streamID string, fr lanefind.FrameResult) {

	msg := LaneMessage{
		Stream:      streamID,
		Frame:       fr.Index,
		LeftRadius:  fr.Metrics.LeftRadius,
		RightRadius: fr.Metrics.RightRadius,
		Radius:      fr.Metrics.Radius(),
		Offset:      fr.Metrics.CenterOffset,
		Held:        fr.Held,
	}

	if fr.Result != nil {
		msg.Mode = fr.Result.Mode.String()
	}

	if fr.Err != nil {
		msg.Error = fr.Err.Error()
	}

	d.hub.Publish(msg)
}

// annotate draws the processing statistics at the bottom of the image
func annotate(img *gocv.Mat, fr lanefind.FrameResult, fps float64,
	frameNum int, total time.Duration) {

	mode := "failed"

	if fr.Result != nil {
		mode = fr.Result.Mode.String()
	}

	// blank out background video
	top := img.Rows() - 36
	gocv.Rectangle(img, image.Rect(0, top, img.Cols(), img.Rows()), render.Black, -1)

	font := render.LabelFont()
	font.Color = render.Pink

	render.Text(img, []string{
		fmt.Sprintf("Frame: %d, FPS: %.2f, Search: %s", frameNum, fps, mode),
		fmt.Sprintf("Preprocess: %.2fms, Tracking: %.2fms, Rendering: %.2fms, Total Time: %.2fms",
			float32(fr.Timing.Preprocess)/float32(time.Millisecond),
			float32(fr.Timing.Tracking)/float32(time.Millisecond),
			float32(fr.Timing.Rendering)/float32(time.Millisecond),
			float32(total)/float32(time.Millisecond),
		),
	}, image.Pt(4, top+14), font)
}

func main() {
	// disable logging timestamps
	log.SetFlags(0)

	// read in cli flags
	vidFile := flag.String("v", "../data/project_video.mp4", "Video file to run lane finding on")
	calFile := flag.String("cal-file", "", "Calibration file created by the calibrate example, empty disables undistortion")
	configFile := flag.String("config", "", "JSON config file of tuning parameters")
	httpAddr := flag.String("a", "localhost:8080", "HTTP Address to run server on, format address:port")
	inset := flag.Int("inset", 320, "Width of the top down view inset, zero disables it")

	flag.Parse()

	cfg := &lanefind.Config{}

	if *configFile != "" {
		var err error
		cfg, err = lanefind.LoadConfig(*configFile)

		if err != nil {
			log.Fatalf("Error loading config: %v", err)
		}
	}

	var cal *preprocess.Calibration

	if *calFile != "" {
		var err error
		cal, err = preprocess.LoadCalibration(*calFile)

		if err != nil {
			log.Fatalf("Error loading calibration: %v", err)
		}

		defer cal.Close()
	}

	hub := NewHub(FPS * 4)
	go hub.Run(context.Background())

	demo, err := NewDemo(*vidFile, cfg, cal, hub, *inset)

	if err != nil {
		log.Fatalf("Error creating demo: %v", err)
	}

	http.HandleFunc("/stream", demo.Stream)
	http.HandleFunc("/ws", hub.ServeWS)

	// start http server
	log.Printf("Open browser and view video at http://%s/stream", *httpAddr)
	log.Printf("Lane telemetry is published on ws://%s/ws", *httpAddr)
	log.Fatal(http.ListenAndServe(*httpAddr, nil))
}
