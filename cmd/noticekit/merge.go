package main

import (
	"fmt"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"noticekit/internal/notice"
	"noticekit/internal/report"
	"noticekit/internal/runner"
	"noticekit/internal/snapshot"
)

type mergeOptions struct {
	outDir           string
	reportName       string
	systemErrorsName string
	maxExport        int
}

func newMergeCmd(a *app) *cobra.Command {
	var opts mergeOptions
	cmd := &cobra.Command{
		Use:   "merge [flags] <snapshot.mp>...",
		Short: "Merge recorder snapshots and write the notice reports",
		Long: `Merge recorder snapshots in argument order into a single recorder bounded by the
configured limits, then write the validation report and the system errors report.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMerge(cmd, a, opts, args)
		},
	}
	defaults := report.DefaultFileNames()
	cmd.Flags().StringVarP(&opts.outDir, "output", "o", ".", "directory for the generated reports")
	cmd.Flags().StringVar(&opts.reportName, "report-name", defaults.Validation, "file name of the validation report")
	cmd.Flags().StringVar(&opts.systemErrorsName, "system-errors-name", defaults.SystemErrors, "file name of the system errors report")
	cmd.Flags().IntVar(&opts.maxExport, "max-export", 0, "max sample notices exported per type (0 = config value)")
	return cmd
}

func runMerge(cmd *cobra.Command, a *app, opts mergeOptions, paths []string) error {
	limits := a.cfg.Limits
	if opts.maxExport < 0 {
		return fmt.Errorf("--max-export must not be negative, got %d", opts.maxExport)
	}
	if opts.maxExport > 0 {
		limits.MaxExportPerNoticeType = opts.maxExport
	}

	var recs []*notice.Recorder
	err := a.timer.Track("load", func() error {
		var err error
		recs, err = snapshot.ReadAll(paths)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to load snapshots: %w", err)
	}

	var merged *notice.Recorder
	_ = a.timer.Track("merge", func() error {
		merged = runner.Join(limits, recs...)
		return nil
	})
	a.log.Debug("snapshots merged",
		zap.Int("snapshots", len(recs)),
		zap.Int("validation", len(merged.ValidationNotices())),
		zap.Int("system", len(merged.SystemErrors())))

	names := report.FileNames{Validation: opts.reportName, SystemErrors: opts.systemErrorsName}
	err = a.timer.Track("export", func() error {
		return report.WriteFiles(opts.outDir, names, merged)
	})
	if err != nil {
		return fmt.Errorf("failed to write reports: %w", err)
	}

	out := cmd.OutOrStdout()
	status := color.New(color.FgGreen).Sprint("ok")
	if merged.HasValidationErrors() {
		status = color.New(color.FgRed).Sprint("has errors")
	}
	fmt.Fprintf(out, "merged %d snapshot(s): %d validation notice(s), %d system error(s) [%s]\n",
		len(recs), len(merged.ValidationNotices()), len(merged.SystemErrors()), status)
	fmt.Fprintf(out, "wrote %s\n", filepath.Join(opts.outDir, names.Validation))
	fmt.Fprintf(out, "wrote %s\n", filepath.Join(opts.outDir, names.SystemErrors))
	return nil
}
