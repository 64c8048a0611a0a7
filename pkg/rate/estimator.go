// Package rate estimates instantaneous transfer rates from a stream of
// timestamped byte-count samples.
package rate

import (
	"sync"
	"time"
)

type sample struct {
	at   time.Time
	size int64
}

// Estimator tracks recent transfer samples and reports the rate they
// imply over a trailing window. One goroutine may call Add while another
// calls Rate; the two serialize through an internal lock. Samples older
// than the queried window are discarded lazily.
type Estimator struct {
	mu      sync.Mutex
	samples []sample

	now func() time.Time // swappable in tests
}

// NewEstimator returns an empty Estimator.
func NewEstimator() *Estimator {
	return &Estimator{now: time.Now}
}

// Add records that size bytes were transferred now.
func (e *Estimator) Add(size int64) {
	e.mu.Lock()
	e.samples = append(e.samples, sample{at: e.now(), size: size})
	e.mu.Unlock()
}

// Rate returns the transfer rate in bytes per second implied by the
// samples inside the trailing window. Older samples are dropped. With no
// samples in the window the rate is 0.
func (e *Estimator) Rate(window time.Duration) float64 {
	if window <= 0 {
		return 0
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	cutoff := e.now().Add(-window)
	drop := 0
	for drop < len(e.samples) && e.samples[drop].at.Before(cutoff) {
		drop++
	}
	if drop > 0 {
		e.samples = e.samples[drop:]
	}

	var total int64
	for _, s := range e.samples {
		total += s.size
	}
	return float64(total) / window.Seconds()
}
