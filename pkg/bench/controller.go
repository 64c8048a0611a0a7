package bench

import (
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/spinloop/thrash/pkg/host"
	"github.com/spinloop/thrash/pkg/pace"
	"github.com/spinloop/thrash/pkg/stats"
)

// Options is the resolved configuration the controller runs with.
type Options struct {
	Workers   int
	Mode      Mode
	Split     Split
	Randomize bool  // shuffle the index set before partitioning
	WriteSize int64 // synthesized buffer size for write mode

	ReportHz        float64 // report rows per second; 0 disables, <0 unthrottles
	MaxOpsPerWorker float64 // per-worker ops/sec throttle; 0 = unthrottled
	Seed            int64   // shuffle seed; 0 derives one from the clock
}

// Result carries the final headline numbers of a run.
type Result struct {
	RobustMean   float64 // trimmed mean of the periodic throughput samples, B/s
	MeanReliable bool    // false when fewer than stats.MinRobustSamples samples
	RobustMin    float64 // minimum throughput excluding warm-up samples, B/s
	RobustMinOK  bool    // false when too few samples for a robust minimum
	Samples      int
	Elapsed      time.Duration
}

// Reporter receives the controller's periodic output. The terminal
// printer implements it; tests substitute a recorder.
type Reporter interface {
	Header(workers int)
	Row(progressPct, totalBps, perWorkerBps, cpu, perWorkerCPU float64)
	CPUBoundWarning()
	CacheWarning(diskBps float64)
	Summary(res Result)
}

// cpuProbe and diskProbe are what the controller needs from the host
// monitors; the host package types satisfy them.
type cpuProbe interface {
	Usage() float64
	NumCPU() int
}

type diskProbe interface {
	Available() bool
	Update()
	FastestRead() int64
}

// Controller owns the worker pool and the monitoring loop.
type Controller struct {
	opts    Options
	files   *FileSet
	workers []*Worker

	clock   *pace.Pacemaker
	cpu     cpuProbe
	disks   diskProbe
	summary *stats.Summary
	rep     Reporter
	logger  *slog.Logger

	totalAssigned int64
	lastSample    time.Time
}

// NewController partitions the file index space and builds the worker
// pool. It wires the real host monitors; nothing starts running until
// Run.
func NewController(files *FileSet, opts Options, rep Reporter, logger *slog.Logger) (*Controller, error) {
	cpu, err := host.NewCPUMonitor()
	if err != nil {
		return nil, fmt.Errorf("init CPU monitor: %w", err)
	}
	return newController(files, opts, rep, cpu, host.NewDiskMonitor(logger), logger)
}

func newController(files *FileSet, opts Options, rep Reporter, cpu cpuProbe, disks diskProbe, logger *slog.Logger) (*Controller, error) {
	if opts.Workers < 1 {
		return nil, fmt.Errorf("need at least one worker, got %d", opts.Workers)
	}

	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	indices := IndexSet(files.Len())
	if opts.Randomize {
		rng.Shuffle(len(indices), func(a, b int) {
			indices[a], indices[b] = indices[b], indices[a]
		})
	}

	c := &Controller{
		opts:    opts,
		files:   files,
		clock:   pace.New(opts.ReportHz, false),
		cpu:     cpu,
		disks:   disks,
		summary: stats.NewSummary(),
		rep:     rep,
		logger:  logger,
	}
	for i, assignment := range Partition(indices, opts.Workers, opts.Split, rng) {
		c.workers = append(c.workers, NewWorker(i, files, assignment, opts, logger))
		c.totalAssigned += int64(len(assignment))
	}
	return c, nil
}

// Workers exposes the pool, mainly for inspection after a run.
func (c *Controller) Workers() []*Worker {
	return c.workers
}

// Run starts the pool, drives the monitoring loop until every worker
// has finished, joins the pool and returns the summary figures.
func (c *Controller) Run() Result {
	start := time.Now()
	c.lastSample = start

	for _, w := range c.workers {
		w.Start()
	}
	c.rep.Header(len(c.workers))

	for !c.allDone() {
		if c.clock.IsDue() {
			c.sample()
		} else {
			time.Sleep(10 * time.Millisecond)
		}
	}

	for _, w := range c.workers {
		w.Stop()
	}

	res := Result{
		Samples: c.summary.Count(),
		Elapsed: time.Since(start),
	}
	if c.summary.Count() > 0 {
		res.RobustMean, res.MeanReliable = c.summary.RobustMean()
	}
	if min, err := c.summary.RobustMin(); err == nil {
		res.RobustMin = min
		res.RobustMinOK = true
	}
	c.rep.Summary(res)
	return res
}

func (c *Controller) allDone() bool {
	for _, w := range c.workers {
		if !w.Done() {
			return false
		}
	}
	return true
}

// sample aggregates worker progress and throughput, polls the host
// monitors, records the throughput history and emits one report row
// plus any quality warnings.
func (c *Controller) sample() {
	now := time.Now()
	interval := now.Sub(c.lastSample)
	c.lastSample = now

	var doneSum int64
	var totalBps float64
	for _, w := range c.workers {
		doneSum += w.Progress()
		totalBps += w.Throughput()
	}

	cpuUsage := c.cpu.Usage()
	c.disks.Update()
	diskBps := diskRate(c.disks.FastestRead(), interval)

	progress := 0.0
	if c.totalAssigned > 0 {
		progress = 100 * float64(doneSum) / float64(c.totalAssigned)
	}

	c.summary.Add(totalBps)

	nw := float64(len(c.workers))
	c.rep.Row(progress, totalBps, totalBps/nw, cpuUsage, cpuUsage/nw)

	if cpuBound(cpuUsage, len(c.workers)) {
		c.rep.CPUBoundWarning()
	}
	if cacheSuspect(totalBps, diskBps, c.disks.Available()) {
		c.rep.CacheWarning(diskBps)
	}
}

// diskRate converts the busiest disk's byte delta into a rate over the
// sampling interval.
func diskRate(bytes int64, interval time.Duration) float64 {
	if interval <= 0 {
		return 0
	}
	return float64(bytes) / interval.Seconds()
}

// cpuBound reports whether the measurement looks compute-constrained:
// aggregate CPU usage at or above 90% per active worker. A negative
// usage is the monitor's discarded-sample sentinel and never warns.
func cpuBound(cpuUsage float64, workers int) bool {
	return cpuUsage >= 0 && cpuUsage >= 0.9*float64(workers)
}

// cacheSuspect reports whether the measured throughput exceeds what the
// busiest physical disk plausibly delivered (110% of its observed read
// rate), which means data was served from a cache. Suppressed when disk
// monitoring is unavailable.
func cacheSuspect(totalBps, diskBps float64, diskAvailable bool) bool {
	return diskAvailable && totalBps > 1.1*diskBps
}
