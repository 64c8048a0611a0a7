// Package report renders the benchmark's terminal output: the periodic
// progress table, inline measurement-quality warnings and the final
// summary.
package report

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"golang.org/x/term"

	"github.com/spinloop/thrash/pkg/bench"
	"github.com/spinloop/thrash/pkg/stats"
)

const mib = 1024 * 1024

// Printer writes human-readable benchmark output. It satisfies
// bench.Reporter.
type Printer struct {
	w     io.Writer
	width int

	bold    *color.Color
	redBold *color.Color
}

// NewPrinter builds a Printer for w. When w is a terminal its width is
// used for the horizontal rules; otherwise a fixed width is assumed.
func NewPrinter(w io.Writer) *Printer {
	width := 80
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		if tw, _, err := term.GetSize(int(f.Fd())); err == nil && tw > 0 {
			width = tw
		}
	}
	return &Printer{
		w:       w,
		width:   width,
		bold:    color.New(color.Bold),
		redBold: color.New(color.FgRed, color.Bold),
	}
}

func (p *Printer) hline() {
	fmt.Fprintln(p.w, strings.Repeat("-", p.width))
}

// Header prints the report column titles.
func (p *Printer) Header(workers int) {
	fmt.Fprintf(p.w, "Spawning %d worker threads...\n", workers)
	p.hline()
	fmt.Fprintf(p.w, "%-10s %-15s %-15s %-12s %-12s\n",
		"Progress", "read speed", "read speed", "CPU usage", "CPU usage")
	fmt.Fprintf(p.w, "%-10s %-15s %-15s %-12s %-12s\n",
		"", "(total)", "(per worker)", "(total)", "(per worker)")
	p.hline()
}

// Row prints one periodic report line. Rates are bytes per second; CPU
// figures are fractions of one core, negative when that sample was
// discarded by the monitor.
func (p *Printer) Row(progressPct, totalBps, perWorkerBps, cpu, perWorkerCPU float64) {
	fmt.Fprintf(p.w, "%6.2f%%    %-15s %10.1f MB/s %-12s %-12s\n",
		progressPct,
		p.bold.Sprintf("%7.1f MB/s", totalBps/mib),
		perWorkerBps/mib,
		cpuCell(cpu),
		cpuCell(perWorkerCPU))
}

func cpuCell(frac float64) string {
	if frac < 0 {
		return "     n/a"
	}
	return fmt.Sprintf("%7.1f%%", frac*100)
}

func (p *Printer) warn(msg string) {
	fmt.Fprintf(p.w, "     %s %s\n", p.redBold.Sprint("!!!"), msg)
}

// CPUBoundWarning flags a sample where the measurement itself was
// compute-constrained.
func (p *Printer) CPUBoundWarning() {
	p.warn("(benchmark might be CPU-constrained; use more workers!)")
}

// CacheWarning flags a sample whose throughput exceeds what the
// busiest physical disk delivered.
func (p *Printer) CacheWarning(diskBps float64) {
	p.warn(fmt.Sprintf("(actual disk is much slower (%.1f MB/s); data may be cached!)",
		diskBps/mib))
}

// Summary prints the final headline numbers.
func (p *Printer) Summary(res bench.Result) {
	p.hline()

	table := tablewriter.NewWriter(p.w)
	table.Header("Metric", "Value")
	if res.Samples > 0 {
		table.Append("Robust average", fmt.Sprintf("%.1f MB/s", res.RobustMean/mib))
	} else {
		table.Append("Robust average", "n/a")
	}
	if res.RobustMinOK {
		table.Append("Robust minimum", fmt.Sprintf("%.1f MB/s", res.RobustMin/mib))
	} else {
		table.Append("Robust minimum", "n/a (too few samples)")
	}
	table.Append("Samples", fmt.Sprintf("%d", res.Samples))
	table.Append("Elapsed", res.Elapsed.Round(time.Millisecond).String())
	table.Render()

	if res.Samples > 0 && !res.MeanReliable {
		p.warn(fmt.Sprintf("(only %d samples collected; robust average needs %d to be trustworthy)",
			res.Samples, stats.MinRobustSamples))
	}
}
