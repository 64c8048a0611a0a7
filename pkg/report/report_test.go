package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"

	"github.com/spinloop/thrash/pkg/bench"
)

func newTestPrinter() (*Printer, *bytes.Buffer) {
	color.NoColor = true
	var buf bytes.Buffer
	return NewPrinter(&buf), &buf
}

func TestHeaderAndRow(t *testing.T) {
	p, buf := newTestPrinter()

	p.Header(4)
	p.Row(25.0, 512*mib, 128*mib, 0.8, 0.2)

	out := buf.String()
	for _, want := range []string{"Progress", "read speed", "CPU usage", "25.00%", "512.0 MB/s", "128.0 MB/s", "80.0%", "20.0%"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRowDiscardedCPUSample(t *testing.T) {
	p, buf := newTestPrinter()

	p.Row(50, 0, 0, -1, -1)
	if !strings.Contains(buf.String(), "n/a") {
		t.Errorf("discarded CPU sample not marked n/a:\n%s", buf.String())
	}
}

func TestWarnings(t *testing.T) {
	p, buf := newTestPrinter()

	p.CPUBoundWarning()
	p.CacheWarning(10 * mib)

	out := buf.String()
	if !strings.Contains(out, "CPU-constrained") {
		t.Errorf("missing CPU warning:\n%s", out)
	}
	if !strings.Contains(out, "data may be cached") || !strings.Contains(out, "10.0 MB/s") {
		t.Errorf("missing cache warning:\n%s", out)
	}
}

func TestSummary(t *testing.T) {
	p, buf := newTestPrinter()

	p.Summary(bench.Result{
		RobustMean:   200 * mib,
		MeanReliable: false,
		RobustMin:    150 * mib,
		RobustMinOK:  true,
		Samples:      42,
		Elapsed:      3 * time.Second,
	})

	out := buf.String()
	for _, want := range []string{"200.0 MB/s", "150.0 MB/s", "42", "3s"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
	if !strings.Contains(out, "needs 100") {
		t.Errorf("unreliable mean not flagged:\n%s", out)
	}
}

func TestSummaryNoSamples(t *testing.T) {
	p, buf := newTestPrinter()

	p.Summary(bench.Result{})
	if !strings.Contains(buf.String(), "n/a") {
		t.Errorf("empty run summary missing n/a markers:\n%s", buf.String())
	}
}
