// Package cmd provides the command-line interface of the bandwidth benchmark.
package cmd

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"

	"github.com/sarchlab/bandwidth/bench"
	"github.com/sarchlab/bandwidth/transfer"
)

type options struct {
	strategy    string
	policy      string
	envFile     string
	record      string
	monitor     bool
	monitorPort int
	openBrowser bool
	verbose     bool
	verify      bool
}

var opts options

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "bandwidth [MIN_BYTES MAX_BYTES]",
	Short: "Measure point-to-point bandwidth between two processes.",
	Long: `Bandwidth measures how fast a buffer of float64 values moves from ` +
		`rank 0 to rank 1 with different transfer strategies. Start two ` +
		`ranks with "bandwidth launch -- sweep MIN MAX", or start each rank ` +
		`yourself with BANDWIDTH_RANK and BANDWIDTH_ADDR set. Called with two ` +
		`sizes and no subcommand, it runs a sweep.`,
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return nil
		}

		return sweepCmd.Args(cmd, args)
	},
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return cmd.Help()
		}

		return sweepCmd.RunE(cmd, args)
	},
}

func init() {
	flags := rootCmd.PersistentFlags()

	flags.StringVar(&opts.strategy, "strategy", transfer.DefaultStrategy,
		"transfer strategy, see \"bandwidth strategies\"")
	flags.StringVar(&opts.policy, "policy", bench.PolicyFast.Name,
		"calibration policy, fast (10 trial transfers) or long (100)")
	flags.StringVar(&opts.envFile, "env-file", "",
		"file with BANDWIDTH_* variables, defaults to .env when present")
	flags.StringVar(&opts.record, "record", "",
		"record every measurement into PATH_rank<N>.sqlite3")
	flags.BoolVar(&opts.monitor, "monitor", false,
		"serve the progress of rank 0 over HTTP")
	flags.IntVar(&opts.monitorPort, "monitor-port", 0,
		"port of the monitor, random when 0")
	flags.BoolVar(&opts.openBrowser, "open-browser", false,
		"open the monitor in a browser")
	flags.BoolVar(&opts.verbose, "verbose", false,
		"log every stage of the run to stderr")
	flags.BoolVar(&opts.verify, "verify", false,
		"check the content of every received buffer")
}

// Execute adds all child commands to the root command and sets flags
// appropriately. It exits the process through atexit so that registered
// finalizers run.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		atexit.Exit(1)
	}

	atexit.Exit(0)
}
