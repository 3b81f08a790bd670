package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"dispatchgen/internal/genpipeline"
	"dispatchgen/internal/ui"
)

type generateOutcome struct {
	result genpipeline.Result
	err    error
}

func runGenerateWithUI(ctx context.Context, title string, req *genpipeline.Request) (genpipeline.Result, error) {
	if req == nil {
		return genpipeline.Result{}, fmt.Errorf("missing generate request")
	}
	events := make(chan genpipeline.Event, 256)
	outcomeCh := make(chan generateOutcome, 1)

	go func() {
		reqCopy := *req
		reqCopy.Progress = genpipeline.ChannelSink{Ch: events}
		res, err := genpipeline.Generate(ctx, &reqCopy)
		outcomeCh <- generateOutcome{result: res, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, req.Files, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.result, uiErr
	}
	return outcome.result, outcome.err
}
