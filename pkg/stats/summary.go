// Package stats accumulates periodic throughput observations and
// reduces them to summary figures once a run completes.
package stats

import (
	"errors"
	"sort"
)

// MinRobustSamples is the sample count below which the trimmed mean is
// considered statistically unreliable.
const MinRobustSamples = 100

// ErrTooFewSamples is returned by RobustMin when fewer than 3 samples
// have been recorded.
var ErrTooFewSamples = errors.New("stats: too few samples")

// Summary is an append-only series of throughput samples kept for the
// whole run. Reductions over the series discard likely outliers: the
// trimmed mean drops the extremes by rank, the robust minimum drops the
// first samples chronologically (those are skewed by process warm-up).
type Summary struct {
	samples []float64
}

// NewSummary returns an empty Summary.
func NewSummary() *Summary {
	return &Summary{}
}

// Add appends one observation.
func (s *Summary) Add(v float64) {
	s.samples = append(s.samples, v)
}

// Count returns the number of recorded observations.
func (s *Summary) Count() int {
	return len(s.samples)
}

// Mean returns the arithmetic mean of all samples. The caller must
// guard against an empty Summary.
func (s *Summary) Mean() float64 {
	var sum float64
	for _, v := range s.samples {
		sum += v
	}
	return sum / float64(len(s.samples))
}

// Min returns the smallest recorded sample. The caller must guard
// against an empty Summary.
func (s *Summary) Min() float64 {
	min := s.samples[0]
	for _, v := range s.samples[1:] {
		if v < min {
			min = v
		}
	}
	return min
}

// RobustMean sorts a copy of the samples and averages the middle 90%,
// dropping the lowest and highest 5% by rank to suppress startup and
// shutdown transients. The second return value is false when fewer than
// MinRobustSamples were collected; the trimmed range is then too small
// to be trusted and the caller should flag it.
func (s *Summary) RobustMean() (float64, bool) {
	sorted := make([]float64, len(s.samples))
	copy(sorted, s.samples)
	sort.Float64s(sorted)

	trim := len(sorted) * 5 / 100
	mid := sorted[trim : len(sorted)-trim]

	var sum float64
	for _, v := range mid {
		sum += v
	}
	return sum / float64(len(mid)), len(s.samples) >= MinRobustSamples
}

// RobustMin returns the minimum sample excluding the first two
// chronological observations. It fails with ErrTooFewSamples when fewer
// than 3 samples exist.
func (s *Summary) RobustMin() (float64, error) {
	if len(s.samples) < 3 {
		return 0, ErrTooFewSamples
	}
	rest := s.samples[2:]
	min := rest[0]
	for _, v := range rest[1:] {
		if v < min {
			min = v
		}
	}
	return min, nil
}
