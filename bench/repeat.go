package bench

import (
	"math"

	"github.com/pkg/errors"
)

// MinResolvableSeconds is the shortest trial duration considered meaningful.
// Shorter trials, including zero and negative readings, fall back to the
// policy's floor.
const MinResolvableSeconds = 1e-6

// MaxRepeat bounds the repeat count so that it fits an int everywhere.
const MaxRepeat = 1 << 30

// A Policy determines how the repeat count of a measurement is calibrated.
type Policy struct {
	Name string

	// TrialCount is the number of transfers in the calibration run.
	TrialCount int

	// Floor is the smallest repeat count a measurement may use.
	Floor int

	// TargetSeconds is the duration the measured run aims for.
	TargetSeconds float64
}

// Bundled policies.
var (
	PolicyFast = Policy{Name: "fast", TrialCount: 10, Floor: 10, TargetSeconds: 1}
	PolicyLong = Policy{Name: "long", TrialCount: 100, Floor: 100, TargetSeconds: 1}
)

// LookupPolicy returns the bundled policy with the given name.
func LookupPolicy(name string) (Policy, error) {
	switch name {
	case PolicyFast.Name:
		return PolicyFast, nil
	case PolicyLong.Name:
		return PolicyLong, nil
	default:
		return Policy{}, errors.Wrapf(ErrArgument,
			"unknown policy %q, use %q or %q",
			name, PolicyFast.Name, PolicyLong.Name)
	}
}

// RepeatCount returns the number of transfers needed to fill the policy's
// target duration, given that trialCount transfers took trialSeconds.
func (p Policy) RepeatCount(trialSeconds float64) int {
	return RepeatCount(trialSeconds, p.TrialCount, p.Floor, p.TargetSeconds)
}

// RepeatCount computes max(floor, round(target / (trial / trialCount))). The
// result is never below floor (or 1 if floor is not positive) and never above
// MaxRepeat.
func RepeatCount(
	trialSeconds float64,
	trialCount int,
	floor int,
	targetSeconds float64,
) int {
	if floor < 1 {
		floor = 1
	}

	if trialCount < 1 || !(trialSeconds >= MinResolvableSeconds) {
		return floor
	}

	perTransfer := trialSeconds / float64(trialCount)

	repeat := math.Round(targetSeconds / perTransfer)
	if math.IsNaN(repeat) || repeat < float64(floor) {
		return floor
	}

	if repeat > MaxRepeat {
		return MaxRepeat
	}

	return int(repeat)
}
