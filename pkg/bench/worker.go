package bench

import (
	"log/slog"
	"math/rand"
	"os"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/spinloop/thrash/pkg/pace"
	"github.com/spinloop/thrash/pkg/rate"
)

// Status is a worker's lifecycle state. Transitions only move forward:
// Init -> Running -> {Stopping} -> Finished.
type Status int32

const (
	StatusInit Status = iota
	StatusRunning
	StatusStopping
	StatusFinished
)

func (s Status) String() string {
	switch s {
	case StatusInit:
		return "init"
	case StatusRunning:
		return "running"
	case StatusStopping:
		return "stopping"
	case StatusFinished:
		return "finished"
	}
	return "unknown"
}

// Worker sequentially performs I/O over its assigned index list on a
// dedicated OS thread. The controller reads progress, rate and status
// concurrently with the worker writing them; status is additionally
// written by the controller during Stop, which is why all three live in
// atomics. Per-file failures are logged and skipped, never fatal.
type Worker struct {
	id        int
	files     *FileSet
	indices   []int
	mode      Mode
	writeSize int64
	throttle  *pace.Pacemaker // nil when unthrottled
	logger    *slog.Logger

	status   atomic.Int32
	done     atomic.Int64
	est      *rate.Estimator
	finished chan struct{}
}

// NewWorker creates a worker in the Init state. The FileSet is shared
// read-only; the index list becomes the worker's exclusive property.
func NewWorker(id int, files *FileSet, indices []int, opts Options, logger *slog.Logger) *Worker {
	w := &Worker{
		id:        id,
		files:     files,
		indices:   indices,
		mode:      opts.Mode,
		writeSize: opts.WriteSize,
		logger:    logger.With("worker", id),
		est:       rate.NewEstimator(),
		finished:  make(chan struct{}),
	}
	if opts.MaxOpsPerWorker != 0 {
		// Accumulating so that slow file operations don't eat into the
		// op budget of later iterations.
		w.throttle = pace.New(opts.MaxOpsPerWorker, true)
	}
	return w
}

// Start transitions Init -> Running and launches the execution thread.
// Calling Start on a worker that is not in Init does nothing.
func (w *Worker) Start() {
	if !w.status.CompareAndSwap(int32(StatusInit), int32(StatusRunning)) {
		return
	}
	go w.loop()
}

// Stop requests cooperative cancellation and blocks until the execution
// thread has exited. An in-flight file operation always completes first.
// Stopping an already finished worker just joins it.
func (w *Worker) Stop() {
	w.status.CompareAndSwap(int32(StatusRunning), int32(StatusStopping))
	if w.Status() == StatusInit {
		return
	}
	<-w.finished
}

// Status returns the current lifecycle state.
func (w *Worker) Status() Status {
	return Status(w.status.Load())
}

// Done reports whether the execution thread has exited.
func (w *Worker) Done() bool {
	return w.Status() == StatusFinished
}

// Progress returns how many assigned indices have been handled,
// including skipped ones. It never exceeds Assigned().
func (w *Worker) Progress() int64 {
	return w.done.Load()
}

// Assigned returns the size of the worker's assignment.
func (w *Worker) Assigned() int {
	return len(w.indices)
}

// Throughput returns the worker's read rate in bytes per second over
// the trailing second.
func (w *Worker) Throughput() float64 {
	return w.est.Rate(time.Second)
}

func (w *Worker) loop() {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	defer close(w.finished)

	var payload []byte
	if w.mode == ModeWrite {
		payload = makePayload(w.writeSize, int64(w.id))
	}

	for _, idx := range w.indices {
		if !w.waitTurn() {
			break
		}
		w.process(idx, payload)
		w.done.Add(1)
	}
	w.status.Store(int32(StatusFinished))
}

// waitTurn blocks until the throttle permits the next operation. It
// returns false as soon as cancellation is observed.
func (w *Worker) waitTurn() bool {
	for {
		if w.Status() != StatusRunning {
			return false
		}
		if w.throttle == nil || w.throttle.IsDue() {
			return true
		}
		time.Sleep(time.Millisecond)
	}
}

func (w *Worker) process(idx int, payload []byte) {
	switch w.mode {
	case ModeRead:
		w.readIndex(idx)
	case ModeWrite:
		path, ok := w.files.outPath(idx)
		if !ok {
			w.logger.Warn("no output path for index", "index", idx)
			return
		}
		w.writeFile(path, payload)
	case ModeReadWrite:
		content, ok := w.readIndex(idx)
		if !ok {
			return
		}
		path, ok := w.files.outPath(idx)
		if !ok {
			w.logger.Warn("no output path for index", "index", idx)
			return
		}
		w.writeFile(path, content)
	}
}

// readIndex reads the input file at idx in full and feeds the byte
// count into the rate estimator.
func (w *Worker) readIndex(idx int) ([]byte, bool) {
	path, ok := w.files.inPath(idx)
	if !ok {
		w.logger.Warn("no input path for index", "index", idx)
		return nil, false
	}
	content, err := os.ReadFile(path)
	if err != nil {
		w.logger.Warn("bad file", "path", path, "err", err)
		return nil, false
	}
	w.est.Add(int64(len(content)))
	return content, true
}

func (w *Worker) writeFile(path string, payload []byte) {
	if err := os.WriteFile(path, payload, 0644); err != nil {
		w.logger.Warn("bad file", "path", path, "err", err)
	}
}

// makePayload builds the synthesized content written in write mode.
// Pseudorandom so that compressing or deduplicating storage cannot
// cheat the measurement.
func makePayload(size int64, seed int64) []byte {
	payload := make([]byte, size)
	rand.New(rand.NewSource(seed)).Read(payload)
	return payload
}
