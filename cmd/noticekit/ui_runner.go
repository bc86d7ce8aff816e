package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"noticekit/internal/compare"
	"noticekit/internal/ui"
)

type acceptanceOutcome struct {
	summary *compare.Summary
	err     error
}

func runAcceptanceWithUI(ctx context.Context, title, root string, opts compare.Options) (*compare.Summary, error) {
	events := make(chan compare.Event, 256)
	outcomeCh := make(chan acceptanceOutcome, 1)

	go func() {
		opts.Progress = compare.ChannelSink{Ch: events}
		summary, err := compare.Acceptance(ctx, root, opts)
		outcomeCh <- acceptanceOutcome{summary: summary, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, nil, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	if uiErr != nil {
		// keep the producer unblocked once the view is gone
		go func() {
			for range events {
			}
		}()
	}
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.summary, uiErr
	}
	return outcome.summary, outcome.err
}
