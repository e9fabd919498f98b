package bench

import (
	"math"

	"github.com/pkg/errors"

	"github.com/sarchlab/bandwidth/hooking"
)

// MaxBufferBytes is the largest message a sweep may reach. It matches the
// largest heap allocation the Go runtime serves on 64-bit platforms.
const MaxBufferBytes int64 = 1 << 48

// A Sweep is a geometric range of message sizes. It starts at MinBytes and
// doubles until the next size would reach MaxBytes.
type Sweep struct {
	MinBytes     int
	MaxBytes     int
	ElementWidth int
}

// NewSweep creates a sweep over float64 buffers.
func NewSweep(minBytes, maxBytes int) Sweep {
	return Sweep{
		MinBytes:     minBytes,
		MaxBytes:     maxBytes,
		ElementWidth: Float64Width,
	}
}

// Validate rejects bounds that do not describe at least one message size.
func (s Sweep) Validate() error {
	if s.ElementWidth <= 0 {
		return errors.Wrapf(ErrArgument,
			"element width must be positive, got %d", s.ElementWidth)
	}

	if s.MinBytes < s.ElementWidth {
		return errors.Wrapf(ErrArgument,
			"minimum size %d bytes is smaller than one %d-byte element",
			s.MinBytes, s.ElementWidth)
	}

	if s.MaxBytes <= s.MinBytes {
		return errors.Wrapf(ErrArgument,
			"maximum size %d bytes must be larger than minimum size %d bytes",
			s.MaxBytes, s.MinBytes)
	}

	if int64(s.MaxBytes) > MaxBufferBytes {
		return errors.Wrapf(ErrArgument,
			"maximum size %d bytes exceeds the %d-byte buffer limit",
			s.MaxBytes, MaxBufferBytes)
	}

	return nil
}

// Steps returns the element counts the sweep visits. It returns nil for an
// invalid sweep.
func (s Sweep) Steps() []int {
	if s.Validate() != nil {
		return nil
	}

	// n*ElementWidth < MaxBytes, written so that it cannot overflow.
	last := (s.MaxBytes - 1) / s.ElementWidth

	var steps []int
	for n := s.MinBytes / s.ElementWidth; n <= last; n *= 2 {
		steps = append(steps, n)

		if n > math.MaxInt/2 {
			break
		}
	}

	return steps
}

// RunSweep measures every size of the sweep and reports one line per size on
// the reporting rank.
func (b *Benchmark) RunSweep(s Sweep) ([]Result, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	steps := s.Steps()
	info := RunInfo{Kind: "sweep", Strategy: b.strategy.Name(), Steps: len(steps)}
	b.InvokeHook(hooking.HookCtx{Domain: b, Pos: HookPosRunStart, Item: info})

	results := make([]Result, 0, len(steps))
	for i, n := range steps {
		buf := b.newBuffer(n)

		res, err := b.Measure(&buf)
		if err != nil {
			return results, errors.Wrapf(err, "%d elements", n)
		}

		results = append(results, res)

		b.InvokeHook(hooking.HookCtx{
			Domain: b,
			Pos:    HookPosStepEnd,
			Item:   res,
			Detail: Step{Index: i, Total: len(steps)},
		})

		b.printer.Bandwidth(res.SizeLabel(), res.MBPerSecond())
	}

	b.InvokeHook(hooking.HookCtx{Domain: b, Pos: HookPosRunEnd, Item: info})

	return results, nil
}
