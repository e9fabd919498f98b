package bench

import (
	"strconv"

	"github.com/pkg/errors"

	"github.com/sarchlab/bandwidth/hooking"
)

// RunSingle times a fixed number of transfers of a fixed size, without
// calibration. The reporting rank prints the elapsed seconds and the
// throughput.
func (b *Benchmark) RunSingle(repeat, elements int) (Result, error) {
	if repeat < 1 {
		return Result{}, errors.Wrapf(ErrArgument,
			"repeat count must be positive, got %d", repeat)
	}

	if elements < 0 {
		return Result{}, errors.Wrapf(ErrArgument,
			"element count must not be negative, got %d", elements)
	}

	if int64(elements) > MaxBufferBytes/Float64Width {
		return Result{}, errors.Wrapf(ErrArgument,
			"%d elements exceed the %d-byte buffer limit",
			elements, MaxBufferBytes)
	}

	info := RunInfo{Kind: "single", Strategy: b.strategy.Name(), Steps: 1}
	b.InvokeHook(hooking.HookCtx{Domain: b, Pos: HookPosRunStart, Item: info})

	buf := b.newBuffer(elements)
	res := b.newResult(buf, 0)
	res.Repeat = repeat

	elapsed, err := TimedRun(b.comm, b.clock, repeat, b.strategy, &buf)
	if err != nil {
		return res, err
	}

	res.Seconds = elapsed.Seconds()
	if err := b.check(buf, elements); err != nil {
		return res, err
	}

	b.InvokeHook(hooking.HookCtx{
		Domain: b,
		Pos:    HookPosStepEnd,
		Item:   res,
		Detail: Step{Index: 0, Total: 1},
	})

	b.printer.Bandwidth(strconv.FormatFloat(res.Seconds, 'f', 6, 64),
		res.MBPerSecond())

	b.InvokeHook(hooking.HookCtx{Domain: b, Pos: HookPosRunEnd, Item: info})

	return res, nil
}
