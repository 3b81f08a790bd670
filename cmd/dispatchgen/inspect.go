package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"dispatchgen/internal/snapshot"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect model.msgpack",
	Short: "Print the provider model written by generate --emit-model",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := snapshot.Read(args[0])
		if err != nil {
			return fmt.Errorf("%s: %w", args[0], err)
		}
		printModel(cmd.OutOrStdout(), m)
		return nil
	},
}

func printModel(out io.Writer, m *snapshot.Model) {
	fmt.Fprintf(out, "target %s\n", m.Target)
	fmt.Fprintf(out, "providers (%d):\n", len(m.Providers))
	for _, p := range m.Providers {
		fmt.Fprintf(out, "  %3d %-40s %s\n", p.Ordinal, p.Token, p.Condition)
	}
	fmt.Fprintln(out, "resolvers:")
	for _, f := range m.Functions {
		if f.Alias != "" {
			continue
		}
		fmt.Fprintf(out, "  %s", f.Name)
		if len(f.Members) > 0 {
			fmt.Fprintf(out, " (+%d aliases)", len(f.Members))
		}
		fmt.Fprintln(out)
		for _, e := range f.Entries {
			label := fmt.Sprintf("#%d", e.Provider)
			if p, ok := m.Provider(e.Provider); ok {
				label = p.Label
			}
			fmt.Fprintf(out, "    %s -> %s\n", label, e.EntryPoint)
		}
	}
}
