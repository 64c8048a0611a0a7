// Package bench contains the benchmark engine: workers that perform
// timed file I/O over assigned index lists, the split strategies that
// hand out those lists, and the controller that drives the pool and the
// periodic monitoring loop.
package bench

import "fmt"

// Mode selects the I/O a worker performs per assigned index.
type Mode int

const (
	// ModeRead reads each input file in full.
	ModeRead Mode = iota
	// ModeWrite writes a fixed-size synthesized buffer to each output file.
	ModeWrite
	// ModeReadWrite reads each input file and writes its content to the
	// corresponding output file.
	ModeReadWrite
)

// ParseMode maps the CLI spelling to a Mode.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "read":
		return ModeRead, nil
	case "write":
		return ModeWrite, nil
	case "readwrite":
		return ModeReadWrite, nil
	}
	return 0, fmt.Errorf("unknown mode %q (want read, write or readwrite)", s)
}

func (m Mode) String() string {
	switch m {
	case ModeRead:
		return "read"
	case ModeWrite:
		return "write"
	case ModeReadWrite:
		return "readwrite"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// Reads reports whether the mode opens input files.
func (m Mode) Reads() bool { return m == ModeRead || m == ModeReadWrite }

// Writes reports whether the mode opens output files.
func (m Mode) Writes() bool { return m == ModeWrite || m == ModeReadWrite }

// Split is the policy for distributing the file-index space among
// workers.
type Split int

const (
	// SplitSeparate gives each worker a disjoint contiguous slice.
	SplitSeparate Split = iota
	// SplitOverlap gives each worker the full index set in its own
	// random order.
	SplitOverlap
	// SplitSame gives each worker the identical index sequence.
	SplitSame
)

// ParseSplit maps the CLI spelling to a Split.
func ParseSplit(s string) (Split, error) {
	switch s {
	case "separate":
		return SplitSeparate, nil
	case "overlap":
		return SplitOverlap, nil
	case "same":
		return SplitSame, nil
	}
	return 0, fmt.Errorf("unknown split %q (want separate, overlap or same)", s)
}

func (s Split) String() string {
	switch s {
	case SplitSeparate:
		return "separate"
	case SplitOverlap:
		return "overlap"
	case SplitSame:
		return "same"
	}
	return fmt.Sprintf("Split(%d)", int(s))
}

// FileSet is the immutable pair of parallel path lists a run operates
// on. It is shared read-only by every worker; indexes address both
// lists.
type FileSet struct {
	In  []string
	Out []string
}

// Len is the size of the file index space: the longer of the two lists.
func (fs *FileSet) Len() int {
	return max(len(fs.In), len(fs.Out))
}

func (fs *FileSet) inPath(idx int) (string, bool) {
	if idx < 0 || idx >= len(fs.In) {
		return "", false
	}
	return fs.In[idx], true
}

func (fs *FileSet) outPath(idx int) (string, bool) {
	if idx < 0 || idx >= len(fs.Out) {
		return "", false
	}
	return fs.Out[idx], true
}
