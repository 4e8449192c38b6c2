package main

import (
	"context"
	"errors"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"docgap/internal/cargo"
	"docgap/internal/ui"
)

type runOutcome struct {
	result *cargo.Result
	err    error
}

// runCargoWithUI runs clippy while a spinner follows its progress on stderr.
func runCargoWithUI(ctx context.Context, title string, runner *cargo.Runner, command *cargo.Command) (*cargo.Result, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	events := make(chan cargo.Event, 256)
	outcomeCh := make(chan runOutcome, 1)

	go func() {
		r := *runner
		r.Progress = cargo.ChannelSink{Ch: events}
		res, err := r.Run(ctx, command)
		outcomeCh <- runOutcome{result: res, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, events)
	program := tea.NewProgram(model,
		tea.WithOutput(os.Stderr),
		tea.WithContext(ctx),
	)
	final, uiErr := program.Run()
	if uiErr == nil && ui.Canceled(final) {
		uiErr = errors.New("interrupted")
	}
	if uiErr != nil {
		// ctrl-c или ошибка терминала: останавливаем cargo и дочитываем события
		cancel()
	}
	go func() {
		for range events {
		}
	}()
	outcome := <-outcomeCh
	if uiErr != nil && outcome.err == nil {
		return outcome.result, uiErr
	}
	return outcome.result, outcome.err
}
