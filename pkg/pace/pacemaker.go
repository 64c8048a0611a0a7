// Package pace provides a query-able clock that beats a fixed number of
// times per second. It is used to gate periodic work: call IsDue in a
// loop and act only when it returns true.
package pace

import (
	"sync"
	"time"
)

// Pacemaker is a rate gate with a configurable beat frequency.
//
// With accumulation disabled (the default), beats that are not polled in
// time expire: an irregular caller never receives a burst of true
// results, because each fetched beat resynchronizes the clock to the
// beat grid. With accumulation enabled, unfetched beats are banked and
// handed out on subsequent polls, so the gate returns true exactly
// targetFPS times per second of wall time no matter how the caller
// polls.
type Pacemaker struct {
	mu sync.Mutex

	paused     bool
	targetFPS  float64
	interval   time.Duration
	lastBeat   time.Time
	accumulate bool

	now func() time.Time // swappable in tests
}

// New creates a Pacemaker beating targetFPS times per second.
// A target of 0 disables the gate (IsDue is always false); a negative
// target removes it (IsDue is always true).
func New(targetFPS float64, accumulateUnfetched bool) *Pacemaker {
	p := &Pacemaker{
		accumulate: accumulateUnfetched,
		now:        time.Now,
	}
	p.lastBeat = p.now()
	p.SetTargetFPS(targetFPS)
	return p
}

// IsDue reports whether at least one beat interval has elapsed since the
// last true-returning call. Concurrent callers serialize through an
// internal lock, so at most one of them advances the beat state per
// tick.
func (p *Pacemaker) IsDue() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.paused {
		return false
	}
	if p.targetFPS == 0 {
		return false
	}
	if p.targetFPS < 0 {
		return true
	}

	now := p.now()
	elapsed := now.Sub(p.lastBeat)
	if elapsed < p.interval {
		return false
	}

	if p.accumulate {
		p.lastBeat = p.lastBeat.Add(p.interval)
	} else {
		// Skip all expired beats and snap back onto the grid.
		p.lastBeat = p.lastBeat.Add(elapsed - elapsed%p.interval)
	}
	return true
}

// Pause suspends beat emission. Elapsed-time bookkeeping is untouched,
// so beats banked in accumulating mode survive a pause.
func (p *Pacemaker) Pause() {
	p.mu.Lock()
	p.paused = true
	p.mu.Unlock()
}

// Resume re-enables beat emission.
func (p *Pacemaker) Resume() {
	p.mu.Lock()
	p.paused = false
	p.mu.Unlock()
}

// Reset moves the time of the last beat to now.
func (p *Pacemaker) Reset() {
	p.mu.Lock()
	p.lastBeat = p.now()
	p.mu.Unlock()
}

// SetTargetFPS changes the beat frequency at runtime.
func (p *Pacemaker) SetTargetFPS(targetFPS float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.targetFPS = targetFPS
	if targetFPS > 0 {
		p.interval = time.Duration(float64(time.Second) / targetFPS)
	}
}
