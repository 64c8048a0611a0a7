package host

import (
	"runtime"

	"golang.org/x/sys/unix"
)

// UsageInvalid is the sentinel Usage returns when the tick counters
// went backwards (overflow or clock weirdness). The affected sample
// must be discarded; the next one is measured from a fresh baseline.
const UsageInvalid = -1.0

// tickSource returns cumulative elapsed, user and kernel ticks for the
// process. The default reads the times(2) accounting counters; tests
// substitute a scripted source.
type tickSource func() (elapsed, user, system int64, err error)

func processTicks() (int64, int64, int64, error) {
	var tms unix.Tms
	clock, err := unix.Times(&tms)
	if err != nil {
		return 0, 0, 0, err
	}
	return int64(clock), int64(tms.Utime), int64(tms.Stime), nil
}

// CPUMonitor measures the busy fraction of this process between
// consecutive Usage calls. Every query rebases the counters, so the
// returned fraction always covers the interval since the previous
// query; callers should sample at a roughly fixed cadence for the
// number to mean anything.
type CPUMonitor struct {
	ticks tickSource

	lastClock  int64
	lastUser   int64
	lastSystem int64
	numCPU     int
}

// NewCPUMonitor captures the initial tick baseline.
func NewCPUMonitor() (*CPUMonitor, error) {
	return newCPUMonitor(processTicks)
}

func newCPUMonitor(src tickSource) (*CPUMonitor, error) {
	clock, user, system, err := src()
	if err != nil {
		return nil, err
	}
	return &CPUMonitor{
		ticks:      src,
		lastClock:  clock,
		lastUser:   user,
		lastSystem: system,
		numCPU:     runtime.NumCPU(),
	}, nil
}

// NumCPU returns the logical processor count.
func (m *CPUMonitor) NumCPU() int {
	return m.numCPU
}

// Usage returns the fraction of one CPU this process kept busy since
// the previous call, as (user+kernel tick delta) / (elapsed tick
// delta). A value above 1.0 means more than one core busy. When the
// counters are non-monotonic the sample is unusable and UsageInvalid is
// returned instead; the baseline is rebased either way so the next
// sample recovers.
func (m *CPUMonitor) Usage() float64 {
	clock, user, system, err := m.ticks()
	if err != nil {
		return UsageInvalid
	}

	usage := UsageInvalid
	if clock > m.lastClock && user >= m.lastUser && system >= m.lastSystem {
		busy := float64(user-m.lastUser) + float64(system-m.lastSystem)
		usage = busy / float64(clock-m.lastClock)
	}

	m.lastClock = clock
	m.lastUser = user
	m.lastSystem = system
	return usage
}
