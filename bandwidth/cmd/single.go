package cmd

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/sarchlab/bandwidth/bench"
)

var singleCmd = &cobra.Command{
	Use:   "single REPEAT ELEMENTS",
	Short: "Time REPEAT transfers of ELEMENTS float64 values.",
	Long: `Single runs REPEAT transfers of a buffer of ELEMENTS float64 values ` +
		`without calibration and prints "<seconds> bandwidth <x> MB/s" on ` +
		`rank 0.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		repeat, elements, err := parseSingle(args)
		if err != nil {
			return err
		}

		return run(cmd, func(b *bench.Benchmark) error {
			_, err := b.RunSingle(repeat, elements)
			return err
		})
	},
}

func parseSingle(args []string) (repeat, elements int, err error) {
	counts, err := parseCounts([]string{"REPEAT", "ELEMENTS"}, args)
	if err != nil {
		return 0, 0, err
	}

	repeat, elements = counts[0], counts[1]

	if repeat < 1 {
		return 0, 0, errors.Wrapf(bench.ErrArgument,
			"REPEAT must be positive, got %d", repeat)
	}

	if elements < 0 {
		return 0, 0, errors.Wrapf(bench.ErrArgument,
			"ELEMENTS must not be negative, got %d", elements)
	}

	if int64(elements) > bench.MaxBufferBytes/bench.Float64Width {
		return 0, 0, errors.Wrapf(bench.ErrArgument,
			"ELEMENTS %d exceeds the %d-byte buffer limit",
			elements, bench.MaxBufferBytes)
	}

	return repeat, elements, nil
}

func init() {
	rootCmd.AddCommand(singleCmd)
}
