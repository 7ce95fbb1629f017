package lanefind

import (
	"context"
	"fmt"
	"image"
	"log"
	"time"

	"github.com/swdee/go-lanefind/preprocess"
	"github.com/swdee/go-lanefind/render"
	"github.com/swdee/go-lanefind/tracker"
	"gocv.io/x/gocv"
)

// FrameSource provides video frames in order, gocv.VideoCapture satisfies it
type FrameSource interface {
	Read(m *gocv.Mat) bool
}

// FrameSink receives annotated video frames, gocv.VideoWriter satisfies it
type FrameSink interface {
	Write(m gocv.Mat) error
}

// Timing holds the execution time of the stages of a frame
type Timing struct {
	Preprocess time.Duration
	Tracking   time.Duration
	Rendering  time.Duration
}

// FrameResult describes the outcome of a processed frame
type FrameResult struct {
	// Index is the zero based frame number in the stream
	Index int
	// Result is the tracker output, nil when the frame failed
	Result *tracker.Result
	// Mask is the top down mask the tracker was given
	Mask *tracker.BinaryMask
	// Metrics are the metrics drawn on the frame, averaged over the
	// history when configured
	Metrics tracker.Metrics
	// Held is true when the frame failed and the previous overlay and
	// metrics were drawn instead
	Held bool
	// Reverted is true when the failure returned the tracker to a full
	// search
	Reverted bool
	// Err is the tracking error of the frame
	Err    error
	Timing Timing
}

// Stats count the outcomes of the frames processed by a Pipeline
type Stats struct {
	Frames      int `json:"frames"`
	Full        int `json:"full_searches"`
	Incremental int `json:"incremental_searches"`
	Failures    int `json:"failures"`
	Reverts     int `json:"reverts"`
	Held        int `json:"held"`
}

// String returns a one line summary of the stats
func (s Stats) String() string {
	return fmt.Sprintf("frames=%d full=%d incremental=%d failures=%d reverts=%d held=%d",
		s.Frames, s.Full, s.Incremental, s.Failures, s.Reverts, s.Held)
}

// Pipeline runs the complete lane finding process over the frames of a
// single video stream.  Frame preparation runs concurrently across a pool
// of preprocessors while lane tracking and compositing run on the frames
// strictly in order.
type Pipeline struct {
	cfg        *Config
	rect       *preprocess.Rectifier
	pool       *Pool
	lanes      *tracker.LaneTracker
	compositor *render.Compositor
	history    *tracker.History
	font       render.Font
	stats      Stats
	index      int
	// last successful overlay and metrics, drawn on failed frames
	lastOverlay *image.NRGBA
	lastMetrics tracker.Metrics
	// OnFrame is called after every frame is processed
	OnFrame func(FrameResult)
	// InsetWidth is the width of the top down view inset drawn in the top
	// right of output frames, zero disables it
	InsetWidth int
}

// NewPipeline creates a pipeline, calibration may be nil when the video has
// no lens distortion.  The calibration must remain open until the pipeline
// is closed.
func NewPipeline(cfg *Config, cal *preprocess.Calibration) (*Pipeline, error) {

	if cfg == nil {
		cfg = &Config{}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	lanes, err := tracker.NewLaneTracker(cfg.TrackerParams())

	if err != nil {
		return nil, err
	}

	rect, err := preprocess.NewRectifier(cfg.RectifierParams())

	if err != nil {
		return nil, fmt.Errorf("error creating rectifier: %w", err)
	}

	return &Pipeline{
		cfg:        cfg,
		rect:       rect,
		pool:       NewPool(cfg.GetWorkers(), cal, rect, cfg.ThresholdParams()),
		lanes:      lanes,
		compositor: render.NewCompositor(rect, cfg.GetOverlayAlpha()),
		history:    tracker.NewHistory(cfg.GetHistorySize()),
		font:       render.DefaultFont(),
	}, nil
}

// Size returns the canvas size, every frame written by the pipeline has
// this size whatever the size of the source frames
func (p *Pipeline) Size() image.Point {
	return p.rect.Size()
}

// Stats returns the counts of frames processed so far
func (p *Pipeline) Stats() Stats {
	return p.stats
}

// Reset clears the tracker state, history and stats so the pipeline can
// start a new stream
func (p *Pipeline) Reset() {
	p.lanes.Reset()
	p.history.Reset()
	p.stats = Stats{}
	p.index = 0
	p.lastOverlay = nil
	p.lastMetrics = tracker.Metrics{}
}

// ProcessFrame runs a single frame through the pipeline writing the
// annotated frame to dst
func (p *Pipeline) ProcessFrame(frame gocv.Mat, dst *gocv.Mat) (FrameResult, error) {

	start := time.Now()

	pre := p.pool.Get()
	prep, err := pre.Process(frame)
	p.pool.Return(pre)

	if err != nil {
		return FrameResult{}, fmt.Errorf("error preparing frame: %w", err)
	}
	defer prep.Close()

	return p.step(prep, time.Since(start), dst)
}

// prepared carries the outcome of a concurrently prepared frame
type prepared struct {
	prep    *preprocess.Prepared
	elapsed time.Duration
	err     error
}

// Run processes every frame from src writing annotated frames to sink until
// the source is exhausted or ctx is cancelled.  Frames that fail
// preparation are logged and skipped.
func (p *Pipeline) Run(ctx context.Context, src FrameSource, sink FrameSink) (Stats, error) {

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// each frame gets its own result channel, the channels are queued in
	// frame order so results are consumed in order regardless of which
	// preprocessor finishes first
	queue := make(chan chan prepared, p.pool.Size())

	go p.readFrames(ctx, src, queue)

	out := gocv.NewMat()
	defer out.Close()

	for resCh := range queue {

		res := <-resCh

		if res.err != nil {
			log.Printf("Frame %d: error preparing frame: %v", p.index, res.err)
			p.index++
			continue
		}

		fr, err := p.step(res.prep, res.elapsed, &out)
		res.prep.Close()

		if err != nil {
			cancel()
			drain(queue)
			return p.stats, err
		}

		if fr.Err != nil {
			log.Printf("Frame %d: %v", fr.Index, fr.Err)
		}

		if err := sink.Write(out); err != nil {
			cancel()
			drain(queue)
			return p.stats, fmt.Errorf("error writing frame %d: %w", fr.Index, err)
		}
	}

	// source stopped early because the caller cancelled
	if err := ctx.Err(); err != nil {
		return p.stats, err
	}

	return p.stats, nil
}

// readFrames reads frames from src and dispatches each to a preprocessor
// from the pool, the pool size limits the frames in flight
func (p *Pipeline) readFrames(ctx context.Context, src FrameSource,
	queue chan<- chan prepared) {

	defer close(queue)

	for {
		frame := gocv.NewMat()

		// read the next frame from the video
		if ok := src.Read(&frame); !ok {
			// reached last video frame
			frame.Close()
			return
		}

		if frame.Empty() {
			frame.Close()
			continue
		}

		resCh := make(chan prepared, 1)

		select {
		case queue <- resCh:
		case <-ctx.Done():
			frame.Close()
			return
		}

		pre := p.pool.Get()

		go func(frame gocv.Mat) {
			defer frame.Close()

			start := time.Now()
			prep, err := pre.Process(frame)
			p.pool.Return(pre)

			resCh <- prepared{prep: prep, elapsed: time.Since(start), err: err}
		}(frame)
	}
}

// drain frees the prepared frames left in the queue after Run stops early
func drain(queue <-chan chan prepared) {
	for resCh := range queue {
		if res := <-resCh; res.prep != nil {
			res.prep.Close()
		}
	}
}

// step tracks the lane on a prepared frame and renders the annotated frame
func (p *Pipeline) step(prep *preprocess.Prepared, prepTime time.Duration,
	dst *gocv.Mat) (FrameResult, error) {

	fr := FrameResult{
		Index: p.index,
		Mask:  prep.Mask,
	}
	fr.Timing.Preprocess = prepTime
	p.index++
	p.stats.Frames++

	// track lanes
	wasTracking := p.lanes.State() == tracker.Tracking
	trackStart := time.Now()
	res, err := p.lanes.ProcessFrame(prep.Mask)
	fr.Timing.Tracking = time.Since(trackStart)

	renderStart := time.Now()
	overlay := p.lastOverlay

	if err != nil {
		fr.Err = err
		fr.Reverted = wasTracking && p.lanes.State() == tracker.Uninitialized
		p.stats.Failures++

		if fr.Reverted {
			p.stats.Reverts++
		}

		if p.lastOverlay != nil {
			fr.Held = true
			p.stats.Held++
		}

		fr.Metrics = p.lastMetrics

	} else {
		fr.Result = res
		overlay = res.Overlay

		if res.Mode == tracker.FullSearchMode {
			p.stats.Full++
		} else {
			p.stats.Incremental++
		}

		p.history.Add(res.Metrics)
		fr.Metrics, _ = p.history.Mean()

		p.lastOverlay = res.Overlay
		p.lastMetrics = fr.Metrics
	}

	// composite lane overlay onto the undistorted frame
	if overlay != nil {
		if err := p.compositor.Composite(prep.Frame, overlay, dst); err != nil {
			return fr, err
		}
		render.Metrics(dst, fr.Metrics, p.font)
	} else {
		prep.Frame.CopyTo(dst)
	}

	if p.InsetWidth > 0 {
		view, err := render.TopDownView(prep.Mask, res)

		if err != nil {
			return fr, err
		}

		render.Inset(dst, view, p.InsetWidth, 20)
		view.Close()
	}

	fr.Timing.Rendering = time.Since(renderStart)

	if p.OnFrame != nil {
		p.OnFrame(fr)
	}

	return fr, nil
}

// Close frees the pipeline resources
func (p *Pipeline) Close() error {

	p.pool.Close()

	if err := p.compositor.Close(); err != nil {
		return err
	}

	return p.rect.Close()
}
