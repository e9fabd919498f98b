// Package bench measures point-to-point bandwidth. A Benchmark calibrates how
// many transfers fill about one second, agrees on that number with the peer
// and times the real run between two barriers.
package bench

import (
	"os"
	"strconv"

	"github.com/pkg/errors"

	"github.com/sarchlab/bandwidth/comm"
	"github.com/sarchlab/bandwidth/hooking"
	"github.com/sarchlab/bandwidth/report"
	"github.com/sarchlab/bandwidth/transfer"
)

// Float64Width is the size of one buffer element in bytes.
const Float64Width = 8

// Hook positions of a Benchmark.
var (
	// HookPosRunStart fires before a sweep or single run. Item is a RunInfo.
	HookPosRunStart = &hooking.HookPos{Name: "RunStart"}

	// HookPosTrialEnd fires after the calibration run. Item is the Result
	// with TrialSeconds filled.
	HookPosTrialEnd = &hooking.HookPos{Name: "TrialEnd"}

	// HookPosRepeatAgreed fires after the broadcast of the repeat count. Item
	// is the Result, Detail the repeat count computed locally.
	HookPosRepeatAgreed = &hooking.HookPos{Name: "RepeatAgreed"}

	// HookPosStepEnd fires after every measured message size. Item is the
	// Result, Detail a Step.
	HookPosStepEnd = &hooking.HookPos{Name: "StepEnd"}

	// HookPosRunEnd fires after a sweep or single run. Item is a RunInfo.
	HookPosRunEnd = &hooking.HookPos{Name: "RunEnd"}
)

// RunInfo describes a sweep or a single run.
type RunInfo struct {
	Kind     string
	Strategy string
	Steps    int
}

// Step locates a measurement within a run.
type Step struct {
	Index int
	Total int
}

// Result is the outcome of measuring one message size.
type Result struct {
	Strategy     string
	Rank         int
	Elements     int
	Bytes        int
	TrialCount   int
	TrialSeconds float64
	Repeat       int
	Seconds      float64
}

// KB returns the message size in kB (1024 bytes).
func (r Result) KB() float64 {
	return float64(r.Bytes) / 1024
}

// MBPerSecond returns the throughput of the measured run in MB/s (1024*1024
// bytes per second).
func (r Result) MBPerSecond() float64 {
	if r.Seconds <= 0 {
		return 0
	}

	return float64(r.Repeat) * r.KB() / r.Seconds / 1024
}

// SizeLabel formats the message size for report lines.
func (r Result) SizeLabel() string {
	return strconv.FormatFloat(r.KB(), 'f', -1, 64) + " kB"
}

// Builder can build Benchmarks.
type Builder struct {
	comm     comm.Communicator
	strategy transfer.Strategy
	clock    Clock
	policy   Policy
	printer  *report.Printer
	verify   bool
}

// MakeBuilder returns a Builder with the default strategy and policy.
func MakeBuilder() Builder {
	s, err := transfer.Lookup(transfer.DefaultStrategy)
	if err != nil {
		panic(err)
	}

	return Builder{
		strategy: s,
		clock:    WallClock{},
		policy:   PolicyFast,
	}
}

// WithComm sets the communicator the benchmark runs on.
func (b Builder) WithComm(c comm.Communicator) Builder {
	b.comm = c
	return b
}

// WithStrategy sets the transfer strategy under test.
func (b Builder) WithStrategy(s transfer.Strategy) Builder {
	b.strategy = s
	return b
}

// WithClock replaces the wall clock.
func (b Builder) WithClock(c Clock) Builder {
	b.clock = c
	return b
}

// WithPolicy sets the calibration policy.
func (b Builder) WithPolicy(p Policy) Builder {
	b.policy = p
	return b
}

// WithPrinter sets where report lines go. By default, they go to stdout on
// the reporting rank.
func (b Builder) WithPrinter(p *report.Printer) Builder {
	b.printer = p
	return b
}

// WithVerification makes the receiver check every received buffer against
// the content the sender generates.
func (b Builder) WithVerification(verify bool) Builder {
	b.verify = verify
	return b
}

// Build creates a Benchmark.
func (b Builder) Build(name string) *Benchmark {
	if b.comm == nil {
		panic("benchmark requires a communicator")
	}

	if b.policy.TrialCount < 1 {
		panic("policy must run at least one trial transfer")
	}

	printer := b.printer
	if printer == nil {
		printer = report.NewPrinter(b.comm.Rank(), os.Stdout)
	}

	return &Benchmark{
		name:     name,
		comm:     b.comm,
		strategy: b.strategy,
		clock:    b.clock,
		policy:   b.policy,
		printer:  printer,
		verify:   b.verify,
	}
}

// Benchmark measures one transfer strategy on one communicator.
type Benchmark struct {
	hooking.HookableBase

	name     string
	comm     comm.Communicator
	strategy transfer.Strategy
	clock    Clock
	policy   Policy
	printer  *report.Printer
	verify   bool
}

// Name returns the name of the benchmark.
func (b *Benchmark) Name() string {
	return b.name
}

// Rank returns the rank the benchmark runs on.
func (b *Benchmark) Rank() int {
	return b.comm.Rank()
}

// Strategy returns the strategy under test.
func (b *Benchmark) Strategy() transfer.Strategy {
	return b.strategy
}

// Policy returns the calibration policy.
func (b *Benchmark) Policy() Policy {
	return b.policy
}

func (b *Benchmark) newResult(buf []float64, trialCount int) Result {
	return Result{
		Strategy:   b.strategy.Name(),
		Rank:       b.comm.Rank(),
		Elements:   len(buf),
		Bytes:      len(buf) * Float64Width,
		TrialCount: trialCount,
	}
}

// Measure calibrates, agrees on the repeat count with the peer and times the
// real run. Both ranks must call Measure with buffers of the same length.
func (b *Benchmark) Measure(buf *[]float64) (Result, error) {
	n := len(*buf)
	res := b.newResult(*buf, b.policy.TrialCount)

	trial, err := TimedRun(b.comm, b.clock, b.policy.TrialCount,
		b.strategy, buf)
	if err != nil {
		return res, errors.Wrap(err, "trial run")
	}

	res.TrialSeconds = trial.Seconds()
	b.InvokeHook(hooking.HookCtx{Domain: b, Pos: HookPosTrialEnd, Item: res})

	local := b.policy.RepeatCount(res.TrialSeconds)

	repeat, err := b.comm.BroadcastInt(comm.Root, local)
	if err != nil {
		return res, errors.Wrap(err, "repeat count agreement")
	}

	res.Repeat = repeat
	b.InvokeHook(hooking.HookCtx{
		Domain: b,
		Pos:    HookPosRepeatAgreed,
		Item:   res,
		Detail: local,
	})

	elapsed, err := TimedRun(b.comm, b.clock, repeat, b.strategy, buf)
	if err != nil {
		return res, errors.Wrap(err, "measured run")
	}

	res.Seconds = elapsed.Seconds()

	return res, b.check(*buf, n)
}

// newBuffer allocates the buffer of one measurement. The sender fills it with
// Pattern so the receiver can verify what it got.
func (b *Benchmark) newBuffer(n int) []float64 {
	buf := make([]float64, n)
	if b.comm.Rank() == comm.Sender {
		Pattern(buf)
	}

	return buf
}

// Pattern fills buf with the content the sender transmits.
func Pattern(buf []float64) {
	for i := range buf {
		buf[i] = float64(i) + 0.5
	}
}

func (b *Benchmark) check(buf []float64, n int) error {
	if !b.verify || b.comm.Rank() == comm.Sender {
		return nil
	}

	if len(buf) != n {
		return errors.Wrapf(ErrCorrupted,
			"received %d elements, want %d", len(buf), n)
	}

	for i, v := range buf {
		if v != float64(i)+0.5 {
			return errors.Wrapf(ErrCorrupted,
				"element %d is %v, want %v", i, v, float64(i)+0.5)
		}
	}

	return nil
}
