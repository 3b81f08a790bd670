package main

import (
	"fmt"
	"os"
	"strings"
)

// progressMode selects how generate reports per-document progress.
type progressMode string

const (
	progressAuto  progressMode = "auto"
	progressShow  progressMode = "on"
	progressPlain progressMode = "off"
)

func readProgressMode(value string) (progressMode, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", string(progressAuto):
		return progressAuto, nil
	case string(progressShow):
		return progressShow, nil
	case string(progressPlain):
		return progressPlain, nil
	}
	return "", fmt.Errorf("--ui %q: want auto, on or off", value)
}

// useProgressView decides whether the document list is drawn. In auto mode
// a single document finishes too fast to be worth a redraw, and the view
// needs a terminal on stdout.
func useProgressView(mode progressMode, quiet bool, documents int) bool {
	if quiet {
		return false
	}
	switch mode {
	case progressShow:
		return true
	case progressPlain:
		return false
	}
	return documents > 1 && isTerminal(os.Stdout)
}
