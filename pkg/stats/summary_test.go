package stats

import (
	"errors"
	"math"
	"testing"
)

func TestMeanAndMin(t *testing.T) {
	s := NewSummary()
	for _, v := range []float64{4, 2, 8, 6} {
		s.Add(v)
	}
	if got := s.Mean(); got != 5 {
		t.Errorf("Mean = %f, want 5", got)
	}
	if got := s.Min(); got != 2 {
		t.Errorf("Min = %f, want 2", got)
	}
	if got := s.Count(); got != 4 {
		t.Errorf("Count = %d, want 4", got)
	}
}

func TestRobustMeanTrimsExtremes(t *testing.T) {
	s := NewSummary()
	// 1..100 shuffled order must not matter: trimming is by rank.
	for i := 100; i >= 1; i-- {
		s.Add(float64(i))
	}

	got, reliable := s.RobustMean()
	// Drops {1..5} and {96..100}; mean of 6..95 is 50.5.
	if math.Abs(got-50.5) > 1e-9 {
		t.Errorf("RobustMean = %f, want 50.5", got)
	}
	if !reliable {
		t.Error("100 samples flagged unreliable")
	}
}

func TestRobustMeanFewSamples(t *testing.T) {
	s := NewSummary()
	for _, v := range []float64{10, 20, 30} {
		s.Add(v)
	}
	got, reliable := s.RobustMean()
	if got != 20 {
		t.Errorf("RobustMean = %f, want 20", got)
	}
	if reliable {
		t.Error("3 samples flagged reliable")
	}
}

func TestRobustMinSkipsWarmup(t *testing.T) {
	s := NewSummary()
	for _, v := range []float64{5, 1, 1, 3, 4} {
		s.Add(v)
	}
	got, err := s.RobustMin()
	if err != nil {
		t.Fatalf("RobustMin: %v", err)
	}
	if got != 1 {
		t.Errorf("RobustMin = %f, want 1", got)
	}
}

func TestRobustMinTooFewSamples(t *testing.T) {
	s := NewSummary()
	s.Add(1)
	s.Add(2)
	if _, err := s.RobustMin(); !errors.Is(err, ErrTooFewSamples) {
		t.Errorf("err = %v, want ErrTooFewSamples", err)
	}
}
