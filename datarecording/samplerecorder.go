package datarecording

import (
	"context"
	"log"

	"github.com/sarchlab/bandwidth/bench"
	"github.com/sarchlab/bandwidth/hooking"
)

// SampleTable is the table that holds one row per measured message size.
const SampleTable = "samples"

// Sample is one recorded measurement.
type Sample struct {
	RunID        string
	Rank         int
	Strategy     string
	Policy       string
	Step         int
	Elements     int
	Bytes        int
	TrialCount   int
	TrialSeconds float64
	Repeat       int
	Seconds      float64
	MBPerSecond  float64
}

// SampleRecorder is a hook that records every measurement of a benchmark.
type SampleRecorder struct {
	runID    string
	recorder DataRecorder
}

// NewSampleRecorder creates the sample table on recorder.
func NewSampleRecorder(recorder DataRecorder, runID string) *SampleRecorder {
	recorder.CreateTable(SampleTable, Sample{})

	return &SampleRecorder{
		runID:    runID,
		recorder: recorder,
	}
}

// Func records the result of each step and flushes when a run ends.
func (h *SampleRecorder) Func(ctx hooking.HookCtx) {
	switch ctx.Pos {
	case bench.HookPosStepEnd:
		h.recorder.InsertData(SampleTable, h.sample(ctx))
	case bench.HookPosRunEnd:
		if err := h.recorder.Flush(); err != nil {
			log.Printf("flush samples: %v", err)
		}
	}
}

func (h *SampleRecorder) sample(ctx hooking.HookCtx) Sample {
	res := ctx.Item.(bench.Result)

	s := Sample{
		RunID:        h.runID,
		Rank:         res.Rank,
		Strategy:     res.Strategy,
		Step:         ctx.Detail.(bench.Step).Index,
		Elements:     res.Elements,
		Bytes:        res.Bytes,
		TrialCount:   res.TrialCount,
		TrialSeconds: res.TrialSeconds,
		Repeat:       res.Repeat,
		Seconds:      res.Seconds,
		MBPerSecond:  res.MBPerSecond(),
	}

	if b, ok := ctx.Domain.(*bench.Benchmark); ok {
		s.Policy = b.Policy().Name
	}

	return s
}

// ReadSamples returns the samples of a run in step order. An empty runID
// selects every run.
func ReadSamples(
	ctx context.Context,
	reader DataReader,
	runID string,
) ([]Sample, error) {
	reader.MapTable(SampleTable, Sample{})

	params := QueryParams{OrderBy: "RunID, Rank, Step"}
	if runID != "" {
		params.Where = "RunID = ?"
		params.Args = []any{runID}
	}

	rows, _, err := reader.Query(ctx, SampleTable, params)
	if err != nil {
		return nil, err
	}

	samples := make([]Sample, 0, len(rows))
	for _, row := range rows {
		samples = append(samples, *row.(*Sample))
	}

	return samples, nil
}
