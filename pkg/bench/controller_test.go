package bench

import (
	"sync"
	"testing"
	"time"
)

// recordingReporter captures controller output for assertions.
type recordingReporter struct {
	mu        sync.Mutex
	headers   int
	rows      int
	cpuWarns  int
	cacheWarn int
	summary   *Result
}

func (r *recordingReporter) Header(int) {
	r.mu.Lock()
	r.headers++
	r.mu.Unlock()
}

func (r *recordingReporter) Row(_, _, _, _, _ float64) {
	r.mu.Lock()
	r.rows++
	r.mu.Unlock()
}

func (r *recordingReporter) CPUBoundWarning() {
	r.mu.Lock()
	r.cpuWarns++
	r.mu.Unlock()
}

func (r *recordingReporter) CacheWarning(float64) {
	r.mu.Lock()
	r.cacheWarn++
	r.mu.Unlock()
}

func (r *recordingReporter) Summary(res Result) {
	r.mu.Lock()
	r.summary = &res
	r.mu.Unlock()
}

type fakeCPU struct{ usage float64 }

func (f *fakeCPU) Usage() float64 { return f.usage }
func (f *fakeCPU) NumCPU() int    { return 4 }

type fakeDisks struct {
	available bool
	delta     int64
	updates   int
}

func (f *fakeDisks) Available() bool    { return f.available }
func (f *fakeDisks) Update()            { f.updates++ }
func (f *fakeDisks) FastestRead() int64 { return f.delta }

func TestControllerRunToCompletion(t *testing.T) {
	files := &FileSet{In: makeInputs(t, 30, 1024)}
	opts := Options{
		Workers:  3,
		Mode:     ModeRead,
		Split:    SplitSeparate,
		ReportHz: -1, // every loop iteration
		Seed:     42,
	}
	rep := &recordingReporter{}
	c, err := newController(files, opts, rep, &fakeCPU{usage: 0.1}, &fakeDisks{}, discardLogger())
	if err != nil {
		t.Fatal(err)
	}

	res := c.Run()

	if rep.headers != 1 {
		t.Errorf("headers = %d, want 1", rep.headers)
	}
	var doneSum int64
	for _, w := range c.Workers() {
		if !w.Done() {
			t.Error("worker still running after Run returned")
		}
		doneSum += w.Progress()
	}
	if doneSum != 30 {
		t.Errorf("aggregate progress = %d, want 30", doneSum)
	}
	if res.Elapsed <= 0 {
		t.Error("Elapsed not measured")
	}
	if res.Samples != rep.rows {
		t.Errorf("Samples = %d but %d rows emitted", res.Samples, rep.rows)
	}
	if rep.summary == nil {
		t.Fatal("no final summary emitted")
	}
}

func TestControllerThrottledRunCollectsSamples(t *testing.T) {
	files := &FileSet{In: makeInputs(t, 10, 256)}
	opts := Options{
		Workers:         2,
		Mode:            ModeRead,
		Split:           SplitSeparate,
		ReportHz:        40,
		MaxOpsPerWorker: 20, // stretch the run across several report beats
		Seed:            1,
	}
	rep := &recordingReporter{}
	c, err := newController(files, opts, rep, &fakeCPU{usage: 0.1}, &fakeDisks{}, discardLogger())
	if err != nil {
		t.Fatal(err)
	}

	res := c.Run()

	if res.Samples < 3 {
		t.Errorf("Samples = %d, want a few", res.Samples)
	}
	if !res.RobustMinOK {
		t.Error("robust minimum unavailable despite enough samples")
	}
	if res.MeanReliable {
		t.Error("short run flagged as statistically reliable")
	}
}

func TestControllerRejectsZeroWorkers(t *testing.T) {
	files := &FileSet{In: []string{"a"}}
	_, err := newController(files, Options{Workers: 0}, &recordingReporter{}, &fakeCPU{}, &fakeDisks{}, discardLogger())
	if err == nil {
		t.Error("expected error for zero workers")
	}
}

func TestControllerEmptyIndexSet(t *testing.T) {
	files := &FileSet{}
	opts := Options{Workers: 2, Mode: ModeRead, Split: SplitSeparate, ReportHz: 1}
	rep := &recordingReporter{}
	c, err := newController(files, opts, rep, &fakeCPU{}, &fakeDisks{}, discardLogger())
	if err != nil {
		t.Fatal(err)
	}

	done := make(chan Result, 1)
	go func() { done <- c.Run() }()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return for an empty index set")
	}
}

func TestCPUBound(t *testing.T) {
	tests := []struct {
		usage   float64
		workers int
		want    bool
	}{
		{usage: 1.9, workers: 2, want: true},
		{usage: 1.7, workers: 2, want: false},
		{usage: 0.95, workers: 1, want: true},
		{usage: -1, workers: 1, want: false}, // discarded sample
	}
	for _, tt := range tests {
		if got := cpuBound(tt.usage, tt.workers); got != tt.want {
			t.Errorf("cpuBound(%f, %d) = %v, want %v", tt.usage, tt.workers, got, tt.want)
		}
	}
}

func TestCacheSuspect(t *testing.T) {
	tests := []struct {
		tput  float64
		disk  float64
		avail bool
		want  bool
	}{
		{tput: 500, disk: 100, avail: true, want: true},
		{tput: 105, disk: 100, avail: true, want: false},
		{tput: 500, disk: 100, avail: false, want: false},
	}
	for _, tt := range tests {
		if got := cacheSuspect(tt.tput, tt.disk, tt.avail); got != tt.want {
			t.Errorf("cacheSuspect(%f, %f, %v) = %v, want %v", tt.tput, tt.disk, tt.avail, got, tt.want)
		}
	}
}
