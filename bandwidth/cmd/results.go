package cmd

import (
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/sarchlab/bandwidth/bench"
	"github.com/sarchlab/bandwidth/datarecording"
	"github.com/sarchlab/bandwidth/report"
)

var resultsRunID string

var resultsCmd = &cobra.Command{
	Use:   "results FILE",
	Short: "Print the report lines of a recorded run.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := os.Stat(args[0]); err != nil {
			return errors.Wrap(bench.ErrArgument, err.Error())
		}

		reader, err := datarecording.NewReader(args[0])
		if err != nil {
			return err
		}
		defer reader.Close()

		samples, err := datarecording.ReadSamples(cmd.Context(), reader,
			resultsRunID)
		if err != nil {
			return err
		}

		printer := report.NewPrinter(report.ReportingRank, cmd.OutOrStdout())
		for _, s := range samples {
			res := bench.Result{Bytes: s.Bytes}
			printer.Bandwidth(res.SizeLabel(), s.MBPerSecond)
		}

		return nil
	},
}

func init() {
	resultsCmd.Flags().StringVar(&resultsRunID, "run", "",
		"only print the run with this ID")

	rootCmd.AddCommand(resultsCmd)
}
