package main

import (
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var logger = log.NewWithOptions(os.Stderr, log.Options{
	ReportTimestamp: true,
	Prefix:          "qerasure",
})

func main() {
	if err := newRootCmd().Execute(); err != nil {
		logger.Error("command failed", "err", err)
		os.Exit(1)
	}
}

type rootOptions struct {
	configPath string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "qerasure",
		Short: "Run and analyze the quantum erasure correlation experiment",
		Long: `qerasure prepares a Bell pair, couples one half to a marker qubit,
tries to erase the marker again, and measures whether the pair's correlation
comes back. Results are stored as JSON and analyzed separately.`,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if opts.verbose {
				logger.SetLevel(log.DebugLevel)
			}
		},
	}

	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "YAML config file")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(
		newRunCmd(opts),
		newAnalyzeCmd(opts),
		newCircuitsCmd(opts),
	)

	return root
}
