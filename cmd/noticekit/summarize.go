package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"noticekit/internal/notice"
	"noticekit/internal/report"
)

func newSummarizeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "summarize <report.json>",
		Short: "Print a table of the notice summaries in a validation report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var rep *report.ValidationReport
			err := a.timer.Track("parse", func() error {
				var err error
				rep, err = report.ParseFile(args[0])
				return err
			})
			if err != nil {
				return err
			}
			renderSummary(cmd.OutOrStdout(), rep)
			return nil
		},
	}
}

var severityColors = map[notice.Severity]*color.Color{
	notice.SevInfo:    color.New(color.FgCyan),
	notice.SevWarning: color.New(color.FgYellow),
	notice.SevError:   color.New(color.FgRed, color.Bold),
}

func severityColor(sev notice.Severity) *color.Color {
	if c, ok := severityColors[sev]; ok {
		return c
	}
	return color.New(color.Reset)
}

func renderSummary(out io.Writer, rep *report.ValidationReport) {
	summaries := rep.Notices()
	if len(summaries) == 0 {
		fmt.Fprintln(out, "no notices")
		return
	}

	codeWidth := runewidth.StringWidth("CODE")
	for _, s := range summaries {
		codeWidth = max(codeWidth, runewidth.StringWidth(s.Code))
	}
	const sevWidth = len("SEVERITY")

	fmt.Fprintf(out, "%s  %s  %10s  %8s\n", "SEVERITY", runewidth.FillRight("CODE", codeWidth), "TOTAL", "SAMPLES")
	total := 0
	for _, s := range summaries {
		sev := severityColor(s.Severity).Sprint(runewidth.FillRight(s.Severity.String(), sevWidth))
		fmt.Fprintf(out, "%s  %s  %10d  %8d\n", sev, runewidth.FillRight(s.Code, codeWidth), s.TotalNotices, len(s.Notices))
		total += s.TotalNotices
	}
	fmt.Fprintf(out, "%d type(s), %d notice(s)", len(summaries), total)
	if codes := rep.ErrorCodes(); len(codes) > 0 {
		fmt.Fprintf(out, ", %s", color.New(color.FgRed).Sprintf("%d error code(s)", len(codes)))
	}
	fmt.Fprintln(out)
}
