package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"balsa/internal/driver"
	"balsa/internal/ui"
)

type analyzeOutcome struct {
	result *driver.ProjectResult
	err    error
}

// runAnalyzeWithUI analyzes p while a progress view consumes its events.
func runAnalyzeWithUI(ctx context.Context, title string, p *driver.Project, opts driver.Options) (*driver.ProjectResult, error) {
	units := make([]string, 0, len(p.Units))
	for _, u := range p.Units {
		units = append(units, u.Name)
	}
	events := make(chan driver.Event, 256)
	outcomeCh := make(chan analyzeOutcome, 1)

	go func() {
		opts.Progress = driver.ChannelSink{Ch: events}
		res, err := driver.AnalyzeProject(ctx, p, opts)
		outcomeCh <- analyzeOutcome{result: res, err: err}
		close(events)
	}()

	program := tea.NewProgram(ui.NewProgressModel(title, units, events), tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	// the view may quit early; keep the analysis from blocking on a full channel
	go func() {
		for range events {
		}
	}()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.result, uiErr
	}
	return outcome.result, outcome.err
}
