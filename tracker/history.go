package tracker

import "sync"

// History keeps the most recent lane metrics of a stream, used to steady
// the displayed values
type History struct {
	// size is the maximum number of most recent metrics to keep
	size int
	// recent metrics, oldest first
	metrics []Metrics
	sync.Mutex
}

// NewHistory returns a new metrics history instance.  Size is the number of
// most recent frames to keep
func NewHistory(size int) *History {
	if size < 1 {
		size = 1
	}

	return &History{
		size: size,
	}
}

// Reset clears all history
func (h *History) Reset() {
	h.Lock()
	defer h.Unlock()

	h.metrics = nil
}

// Add metrics to the history
func (h *History) Add(m Metrics) {
	h.Lock()
	defer h.Unlock()

	h.metrics = append(h.metrics, m)

	// check if history is exceeded and drop oldest entry
	if len(h.metrics) > h.size {
		h.metrics = h.metrics[1:]
	}
}

// Len returns the number of metrics held
func (h *History) Len() int {
	h.Lock()
	defer h.Unlock()

	return len(h.metrics)
}

// Mean returns the average of the held metrics, false is returned when the
// history is empty
func (h *History) Mean() (Metrics, bool) {
	h.Lock()
	defer h.Unlock()

	if len(h.metrics) == 0 {
		return Metrics{}, false
	}

	var sum Metrics

	for _, m := range h.metrics {
		sum.LeftRadius += m.LeftRadius
		sum.RightRadius += m.RightRadius
		sum.CenterOffset += m.CenterOffset
	}

	n := float64(len(h.metrics))

	return Metrics{
		LeftRadius:   sum.LeftRadius / n,
		RightRadius:  sum.RightRadius / n,
		CenterOffset: sum.CenterOffset / n,
	}, true
}

// Last returns the most recent metrics
func (h *History) Last() (Metrics, bool) {
	h.Lock()
	defer h.Unlock()

	if len(h.metrics) == 0 {
		return Metrics{}, false
	}

	return h.metrics[len(h.metrics)-1], true
}
