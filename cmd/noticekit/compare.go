package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"noticekit/internal/compare"
	"noticekit/internal/report"
)

// errNewErrors is returned when the candidate introduces error codes and
// --fail-on-new is set.
var errNewErrors = errors.New("candidate report introduces new error codes")

type compareOptions struct {
	format    string
	failOnNew bool
}

func newCompareCmd(a *app) *cobra.Command {
	var opts compareOptions
	cmd := &cobra.Command{
		Use:   "compare [flags] <baseline.json> <candidate.json>",
		Short: "Compare the error codes of two validation reports",
		Long: `Compare two validation reports and list the error codes that are new in the
candidate and the ones it resolved. Counts and warnings are ignored.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompare(cmd, a, opts, args[0], args[1])
		},
	}
	cmd.Flags().StringVar(&opts.format, "format", "pretty", "output format (pretty|json)")
	cmd.Flags().BoolVar(&opts.failOnNew, "fail-on-new", true, "exit with status 1 when new error codes appear")
	return cmd
}

func runCompare(cmd *cobra.Command, a *app, opts compareOptions, baselinePath, candidatePath string) error {
	format := strings.ToLower(opts.format)
	switch format {
	case "pretty", "json":
	default:
		return fmt.Errorf("unsupported format %q (must be pretty or json)", opts.format)
	}

	var baseline, candidate *report.ValidationReport
	err := a.timer.Track("parse", func() error {
		var err error
		if baseline, err = report.ParseFile(baselinePath); err != nil {
			return fmt.Errorf("baseline: %w", err)
		}
		if candidate, err = report.ParseFile(candidatePath); err != nil {
			return fmt.Errorf("candidate: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	res := compare.Diff(baseline, candidate)
	a.log.Debug("reports compared",
		zap.Strings("new", res.NewErrors),
		zap.Strings("resolved", res.ResolvedErrors))

	out := cmd.OutOrStdout()
	if format == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res); err != nil {
			return err
		}
	} else {
		renderDiff(out, res, candidate)
	}

	if opts.failOnNew && res.HasRegression() {
		return errNewErrors
	}
	return nil
}

func renderDiff(out io.Writer, res compare.Result, candidate *report.ValidationReport) {
	if !res.HasRegression() && len(res.ResolvedErrors) == 0 {
		fmt.Fprintln(out, color.New(color.FgGreen).Sprint("no error code changes"))
		return
	}
	added := color.New(color.FgRed, color.Bold)
	removed := color.New(color.FgGreen)
	if len(res.NewErrors) > 0 {
		fmt.Fprintf(out, "new errors (%d):\n", len(res.NewErrors))
		for _, code := range res.NewErrors {
			fmt.Fprintf(out, "  %s %s (%d notices)\n", added.Sprint("+"), code, candidate.ErrorNotices(code))
		}
	}
	if len(res.ResolvedErrors) > 0 {
		fmt.Fprintf(out, "resolved errors (%d):\n", len(res.ResolvedErrors))
		for _, code := range res.ResolvedErrors {
			fmt.Fprintf(out, "  %s %s\n", removed.Sprint("-"), code)
		}
	}
}
