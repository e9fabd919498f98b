package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sarchlab/bandwidth/transfer"
)

var strategiesCmd = &cobra.Command{
	Use:   "strategies",
	Short: "List the transfer strategies.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		for _, name := range transfer.Names() {
			if name == transfer.DefaultStrategy {
				fmt.Fprintf(cmd.OutOrStdout(), "%s (default)\n", name)
				continue
			}

			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
	},
}

func init() {
	rootCmd.AddCommand(strategiesCmd)
}
