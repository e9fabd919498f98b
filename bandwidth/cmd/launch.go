package cmd

import (
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/sarchlab/bandwidth/launch"
)

var (
	execPrefix string
	launchAddr string
)

var launchCmd = &cobra.Command{
	Use:   "launch [flags] -- COMMAND [ARGS...]",
	Short: "Run a bandwidth command on two local ranks.",
	Long: `Launch starts two processes of this executable, rank 0 and rank 1, ` +
		`and passes them everything after "--". Flags of the ranks, such as ` +
		`--strategy, also go after "--". With --exec-prefix, every rank is ` +
		`started through a wrapper command in which {rank} is replaced by ` +
		`the rank, for example --exec-prefix "taskset -c {rank}".`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		exe, err := os.Executable()
		if err != nil {
			return errors.Wrap(err, "locate executable")
		}

		l := &launch.Launcher{
			Executable: exe,
			Args:       args,
			Prefix:     execPrefix,
			Addr:       launchAddr,
			Stdout:     cmd.OutOrStdout(),
			Stderr:     cmd.ErrOrStderr(),
		}

		return l.Run(cmd.Context())
	},
}

func init() {
	launchCmd.Flags().StringVar(&execPrefix, "exec-prefix", "",
		"command that wraps every rank, {rank} is replaced by the rank")
	launchCmd.Flags().StringVar(&launchAddr, "addr", "",
		"rendezvous address of the ranks, a free local port when empty")

	rootCmd.AddCommand(launchCmd)
}
