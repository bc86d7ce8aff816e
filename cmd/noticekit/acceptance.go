package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"noticekit/internal/compare"
)

// AcceptanceReportName is the default file the acceptance summary is written to.
const AcceptanceReportName = "acceptance_report.json"

var errAcceptanceFailed = errors.New("acceptance failed")

type acceptanceFlags struct {
	output    string
	reference string
	latest    string
	threshold float64
	jobs      int
	ui        string
}

func newAcceptanceCmd(a *app) *cobra.Command {
	var flags acceptanceFlags
	cmd := &cobra.Command{
		Use:   "acceptance [flags] <datasets-dir>",
		Short: "Compare reference and latest reports across many datasets",
		Long: `Every subdirectory of datasets-dir is a dataset holding a reference and a latest
validation report. Datasets whose latest report has error codes missing from the
reference count as regressed; acceptance fails when their share exceeds the threshold.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAcceptance(cmd, a, flags, args[0])
		},
	}
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "summary path (default <datasets-dir>/"+AcceptanceReportName+")")
	cmd.Flags().StringVar(&flags.reference, "reference", "", "reference report file name inside each dataset")
	cmd.Flags().StringVar(&flags.latest, "latest", "", "latest report file name inside each dataset")
	cmd.Flags().Float64Var(&flags.threshold, "threshold", compare.DefaultThresholdPercent, "max percent of datasets allowed to gain new error codes")
	cmd.Flags().IntVar(&flags.jobs, "jobs", 0, "max datasets loaded in parallel (0=auto)")
	cmd.Flags().String("ui", "auto", "progress UI mode (auto|on|off)")
	return cmd
}

func runAcceptance(cmd *cobra.Command, a *app, flags acceptanceFlags, root string) error {
	uiFlag, err := cmd.Flags().GetString("ui")
	if err != nil {
		return fmt.Errorf("failed to get ui flag: %w", err)
	}
	uiMode, err := readTriState("ui", uiFlag)
	if err != nil {
		return err
	}

	opts := a.cfg.CompareOptions()
	if cmd.Flags().Changed("reference") {
		opts.ReferenceName = flags.reference
	}
	if cmd.Flags().Changed("latest") {
		opts.LatestName = flags.latest
	}
	if cmd.Flags().Changed("threshold") {
		opts.ThresholdPercent = flags.threshold
	}
	opts.Jobs = flags.jobs
	opts.Logger = a.log

	var summary *compare.Summary
	err = a.timer.Track("compare", func() error {
		var err error
		if uiMode.enabled(os.Stdout) {
			summary, err = runAcceptanceWithUI(cmd.Context(), "acceptance "+root, root, opts)
		} else {
			summary, err = compare.Acceptance(cmd.Context(), root, opts)
		}
		return err
	})
	if err != nil {
		return err
	}

	output := flags.output
	if output == "" {
		output = filepath.Join(root, AcceptanceReportName)
	}
	if err := writeSummary(output, summary); err != nil {
		return err
	}

	renderAcceptance(cmd.OutOrStdout(), summary)
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", output)
	if !summary.Passed {
		return errAcceptanceFailed
	}
	return nil
}

func writeSummary(path string, summary *compare.Summary) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = cerr
		}
	}()
	return summary.Write(f)
}

func renderAcceptance(out io.Writer, s *compare.Summary) {
	fmt.Fprintf(out, "datasets: %d, corrupted: %d, with new errors: %d (%.2f%%, threshold %.2f%%)\n",
		s.DatasetCount, s.CorruptedCount, s.NewErrorDatasetCount, s.InvalidPercent, s.ThresholdPercent)
	for _, impact := range s.NewErrors {
		fmt.Fprintf(out, "  %s in %d dataset(s)\n", color.New(color.FgRed).Sprint(impact.Code), impact.AffectedDatasetsCount)
	}
	for _, ds := range s.Datasets {
		if ds.Corrupted {
			fmt.Fprintf(out, "  %s %s: %s\n", color.New(color.FgYellow).Sprint("corrupted"), ds.DatasetID, ds.Reason)
		}
	}
	if s.Passed {
		fmt.Fprintln(out, color.New(color.FgGreen, color.Bold).Sprint("PASSED"))
	} else {
		fmt.Fprintln(out, color.New(color.FgRed, color.Bold).Sprint("FAILED"))
	}
}
