package bench

import (
	"log"

	"github.com/sarchlab/bandwidth/hooking"
)

// StepLogger logs the progress of a benchmark.
type StepLogger struct {
	hooking.LogHookBase
}

// NewStepLogger creates a StepLogger that writes to logger.
func NewStepLogger(logger *log.Logger) *StepLogger {
	h := new(StepLogger)
	h.Logger = logger

	return h
}

// Func logs the hook context.
func (h *StepLogger) Func(ctx hooking.HookCtx) {
	switch ctx.Pos {
	case HookPosRunStart:
		info := ctx.Item.(RunInfo)
		h.Printf("%s with %s, %d sizes", info.Kind, info.Strategy, info.Steps)
	case HookPosTrialEnd:
		res := ctx.Item.(Result)
		h.Printf("%d elements: %d trial transfers took %.6fs",
			res.Elements, res.TrialCount, res.TrialSeconds)
	case HookPosRepeatAgreed:
		res := ctx.Item.(Result)
		h.Printf("%d elements: repeat %d (local estimate %d)",
			res.Elements, res.Repeat, ctx.Detail.(int))
	case HookPosStepEnd:
		res := ctx.Item.(Result)
		step := ctx.Detail.(Step)
		h.Printf("step %d/%d: %d elements, %d transfers in %.6fs, %.3f MB/s",
			step.Index+1, step.Total, res.Elements, res.Repeat, res.Seconds,
			res.MBPerSecond())
	case HookPosRunEnd:
		info := ctx.Item.(RunInfo)
		h.Printf("%s with %s done", info.Kind, info.Strategy)
	}
}
