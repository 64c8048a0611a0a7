package pace

import (
	"testing"
	"time"
)

// fakeClock lets tests step time manually instead of sleeping.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestPacemaker(fps float64, accumulate bool) (*Pacemaker, *fakeClock) {
	clock := &fakeClock{t: time.Unix(1000, 0)}
	p := &Pacemaker{accumulate: accumulate, now: clock.now}
	p.lastBeat = clock.t
	p.SetTargetFPS(fps)
	return p, clock
}

func TestIsDueBasicCadence(t *testing.T) {
	p, clock := newTestPacemaker(10, false)

	if p.IsDue() {
		t.Error("due immediately after construction")
	}
	clock.advance(50 * time.Millisecond)
	if p.IsDue() {
		t.Error("due before a full interval elapsed")
	}
	clock.advance(60 * time.Millisecond)
	if !p.IsDue() {
		t.Error("not due after a full interval")
	}
	if p.IsDue() {
		t.Error("due twice without time passing")
	}
}

func TestUnfetchedTicksExpire(t *testing.T) {
	p, clock := newTestPacemaker(10, false)

	// Poll once every 5 beat intervals: each poll may return true at
	// most once, with no catch-up burst afterwards.
	for i := 0; i < 3; i++ {
		clock.advance(500 * time.Millisecond)
		if !p.IsDue() {
			t.Fatalf("poll %d: expected due after 5 intervals", i)
		}
		if p.IsDue() {
			t.Fatalf("poll %d: burst after delayed poll", i)
		}
	}
}

func TestUnfetchedTicksAccumulate(t *testing.T) {
	p, clock := newTestPacemaker(10, true)

	clock.advance(500 * time.Millisecond)
	due := 0
	for p.IsDue() {
		due++
		if due > 10 {
			t.Fatal("accumulating pacemaker never drained")
		}
	}
	if due != 5 {
		t.Errorf("banked ticks = %d, want 5", due)
	}
}

func TestZeroAndNegativeTargets(t *testing.T) {
	p, clock := newTestPacemaker(0, false)
	clock.advance(time.Hour)
	if p.IsDue() {
		t.Error("zero-target pacemaker fired")
	}

	p, _ = newTestPacemaker(-1, false)
	for i := 0; i < 3; i++ {
		if !p.IsDue() {
			t.Error("negative-target pacemaker did not fire")
		}
	}
}

func TestPauseResume(t *testing.T) {
	p, clock := newTestPacemaker(10, false)

	p.Pause()
	clock.advance(time.Second)
	if p.IsDue() {
		t.Error("paused pacemaker fired")
	}
	p.Resume()
	if !p.IsDue() {
		t.Error("resumed pacemaker lost its elapsed time")
	}
}

func TestReset(t *testing.T) {
	p, clock := newTestPacemaker(10, false)

	clock.advance(time.Second)
	p.Reset()
	if p.IsDue() {
		t.Error("due right after Reset")
	}
	clock.advance(100 * time.Millisecond)
	if !p.IsDue() {
		t.Error("not due one interval after Reset")
	}
}

func TestSetTargetFPSAtRuntime(t *testing.T) {
	p, clock := newTestPacemaker(1, false)

	clock.advance(100 * time.Millisecond)
	if p.IsDue() {
		t.Error("1 fps pacemaker fired after 100ms")
	}
	p.SetTargetFPS(20)
	if !p.IsDue() {
		t.Error("20 fps pacemaker not due after 100ms")
	}
}
