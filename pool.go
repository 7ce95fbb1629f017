package lanefind

import (
	"sync"

	"github.com/swdee/go-lanefind/preprocess"
)

// Pool is a simple pool of frame preprocessors so frames can be prepared
// concurrently, each preprocessor holds its own scratch Mats
type Pool struct {
	// pool of preprocessors
	preprocessors chan *preprocess.Preprocessor
	// size of pool
	size  int
	close sync.Once
}

// NewPool creates a new preprocessor pool sharing the calibration and
// rectifier, calibration may be nil
func NewPool(size int, cal *preprocess.Calibration, rect *preprocess.Rectifier,
	params preprocess.ThresholdParams) *Pool {

	if size < 1 {
		size = 1
	}

	p := &Pool{
		preprocessors: make(chan *preprocess.Preprocessor, size),
		size:          size,
	}

	for i := 0; i < size; i++ {
		// attach to pool
		p.Return(preprocess.NewPreprocessor(cal, rect, params))
	}

	return p
}

// Get a preprocessor from the pool, blocks until one is available
func (p *Pool) Get() *preprocess.Preprocessor {
	return <-p.preprocessors
}

// Return a preprocessor to the pool
func (p *Pool) Return(pre *preprocess.Preprocessor) {
	select {
	case p.preprocessors <- pre:
	default:
		// pool is full or closed
	}
}

// Size returns the number of preprocessors in the pool
func (p *Pool) Size() int {
	return p.size
}

// Close the pool and all preprocessors in it
func (p *Pool) Close() {
	p.close.Do(func() {
		// close channel
		close(p.preprocessors)

		// close all preprocessors
		for next := range p.preprocessors {
			_ = next.Close()
		}
	})
}
