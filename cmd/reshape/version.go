package main

import (
	"fmt"
	"os"

	"github.com/aretw0/reshape"
	"github.com/aretw0/reshape/internal/presentation/tui"
	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of reshape",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			if out == os.Stdout && tui.IsTerminal(os.Stdout) {
				tui.PrintBanner(out, reshape.Version)
				return
			}
			fmt.Fprintf(out, "reshape version %s\n", reshape.Version)
		},
	}
}
