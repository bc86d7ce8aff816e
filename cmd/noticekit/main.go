package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"noticekit/internal/version"
)

// newRootCmd wires every subcommand and the global flags around a fresh app.
// The caller must call app.finish once Execute returns.
func newRootCmd() (*cobra.Command, *app) {
	a := &app{}
	root := &cobra.Command{
		Use:           "noticekit",
		Short:         "Validation notice aggregation and report comparison",
		Long:          `noticekit merges validation notices collected by parallel tasks into capped JSON reports and compares reports across runs`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	root.AddCommand(newMergeCmd(a))
	root.AddCommand(newSummarizeCmd(a))
	root.AddCommand(newCompareCmd(a))
	root.AddCommand(newAcceptanceCmd(a))
	root.AddCommand(newVersionCmd())

	root.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	root.PersistentFlags().Bool("verbose", false, "log debug information to stderr")
	root.PersistentFlags().Bool("timings", false, "show timing information")
	root.PersistentFlags().String("config", "", "path to "+configFileHint+" (default: discovered from the working directory)")
	root.PersistentFlags().String("cpu-profile", "", "write CPU profile to file")
	root.PersistentFlags().String("mem-profile", "", "write heap profile to file on exit")
	root.PersistentFlags().String("runtime-trace", "", "write runtime trace to file")
	return root, a
}

func main() {
	root, a := newRootCmd()
	err := root.Execute()
	a.finish(root.ErrOrStderr())
	if err != nil {
		printError(root.ErrOrStderr(), err)
		os.Exit(1)
	}
}

// isTerminal reports whether f is attached to a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
