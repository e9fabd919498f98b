// Package report writes benchmark results. Only the reporting rank writes, so
// the output of two ranks sharing a terminal never interleaves.
package report

import (
	"fmt"
	"io"
	"sync"
)

// ReportingRank is the only rank whose lines are written.
const ReportingRank = 0

// Printer writes lines on the reporting rank and drops them on every other
// rank.
type Printer struct {
	rank int
	out  io.Writer

	// AllRanks makes every rank print, each line prefixed with its rank.
	// Useful when debugging the runtime itself.
	AllRanks bool

	lock sync.Mutex
}

// NewPrinter creates a printer for the given rank.
func NewPrinter(rank int, out io.Writer) *Printer {
	return &Printer{rank: rank, out: out}
}

// Enabled reports whether lines written on this rank reach the output.
func (p *Printer) Enabled() bool {
	return p.AllRanks || p.rank == ReportingRank
}

// Printf formats a line like fmt.Printf.
func (p *Printer) Printf(format string, args ...any) {
	if !p.Enabled() {
		return
	}

	p.lock.Lock()
	defer p.lock.Unlock()

	if p.rank != ReportingRank {
		format = fmt.Sprintf("P%d: ", p.rank) + format
	}

	fmt.Fprintf(p.out, format, args...)
}

// Bandwidth writes one "<size> bandwidth <throughput> MB/s" line.
func (p *Printer) Bandwidth(size string, mbPerSecond float64) {
	p.Printf("%s bandwidth %f MB/s\n", size, mbPerSecond)
}
