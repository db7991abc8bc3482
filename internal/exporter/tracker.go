package exporter

import "sync"

// Stage percentage floors. Early stages occupy [0,40), processing maps
// into [40,85], finalizing takes (85,100].
const (
	percentPreparing  = 5
	percentStaging    = 20
	percentCompiling  = 30
	percentProcessing = 40
	percentFinalizing = 85
	percentDone       = 100
)

// Tracker maintains the run's displayed progress. Values are clamped
// to [0,100] and never regress, even when the engine reports repeated
// or out-of-order ratios.
type Tracker struct {
	mu      sync.Mutex
	percent int
}

// Set raises the progress to the given percentage; lower values are ignored
func (t *Tracker) Set(percent int) {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if percent > t.percent {
		t.percent = percent
	}
}

// FromRatio remaps an engine completion ratio in [0,1] into the
// processing band [40,85].
func (t *Tracker) FromRatio(ratio float64) {
	if ratio < 0 {
		ratio = 0
	}
	if ratio > 1 {
		ratio = 1
	}
	t.Set(percentProcessing + int(ratio*float64(percentFinalizing-percentProcessing)))
}

// Percent returns the current progress
func (t *Tracker) Percent() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.percent
}

// Reset clears the tracker for a new run
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.percent = 0
}
