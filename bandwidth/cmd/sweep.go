package cmd

import (
	"github.com/spf13/cobra"

	"github.com/sarchlab/bandwidth/bench"
)

var sweepCmd = &cobra.Command{
	Use:   "sweep MIN_BYTES MAX_BYTES",
	Short: "Measure every size from MIN_BYTES, doubling, below MAX_BYTES.",
	Long: `Sweep starts at MIN_BYTES and doubles the message size until it ` +
		`reaches MAX_BYTES. For each size, it calibrates a repeat count that ` +
		`fills about one second and prints "<size> kB bandwidth <x> MB/s" ` +
		`on rank 0.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		sweep, err := parseSweep(args)
		if err != nil {
			return err
		}

		return run(cmd, func(b *bench.Benchmark) error {
			_, err := b.RunSweep(sweep)
			return err
		})
	},
}

func parseSweep(args []string) (bench.Sweep, error) {
	counts, err := parseCounts([]string{"MIN_BYTES", "MAX_BYTES"}, args)
	if err != nil {
		return bench.Sweep{}, err
	}

	sweep := bench.NewSweep(counts[0], counts[1])
	if err := sweep.Validate(); err != nil {
		return bench.Sweep{}, err
	}

	return sweep, nil
}

func init() {
	rootCmd.AddCommand(sweepCmd)
}
