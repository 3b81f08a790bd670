package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"dispatchgen/internal/diag"
)

var (
	errorColor   = color.New(color.FgRed, color.Bold)
	codeColor    = color.New(color.FgYellow)
	summaryColor = color.New(color.FgGreen)
)

func readColorMode(value string) (bool, error) {
	switch strings.TrimSpace(strings.ToLower(value)) {
	case "", "auto":
		return isTerminal(os.Stderr) && os.Getenv("NO_COLOR") == "", nil
	case "on":
		return true, nil
	case "off":
		return false, nil
	default:
		return false, fmt.Errorf("invalid --color value %q (expected auto|on|off)", value)
	}
}

func applyColorFlag(cmd *cobra.Command) error {
	value, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return fmt.Errorf("failed to get color flag: %w", err)
	}
	enabled, err := readColorMode(value)
	if err != nil {
		return err
	}
	color.NoColor = !enabled
	return nil
}

// reportError prints err, highlighting the diagnostic code when there is one.
func reportError(out io.Writer, err error) {
	var de *diag.Error
	if errors.As(err, &de) {
		// The wrapped chain may carry a path prefix in front of the code.
		msg := err.Error()
		id := de.Code.ID()
		if before, after, ok := strings.Cut(msg, id); ok {
			fmt.Fprintf(out, "%s %s%s%s\n", errorColor.Sprint("error:"), before, codeColor.Sprint(id), after)
			return
		}
	}
	fmt.Fprintf(out, "%s %v\n", errorColor.Sprint("error:"), err)
}
